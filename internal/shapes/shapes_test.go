package shapes

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// square returns a closed 10x10 shapefile square with its lower-left
// corner at (x, y).
func square(x, y float64) *shp.Polygon {
	points := []shp.Point{
		{X: x, Y: y},
		{X: x, Y: y + 10},
		{X: x + 10, Y: y + 10},
		{X: x + 10, Y: y},
		{X: x, Y: y},
	}
	return &shp.Polygon{
		Box:       shp.BBoxFromPoints(points),
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	}
}

func TestToGeomPolygon(t *testing.T) {
	g := ToGeom(square(0, 0))
	require.NotNil(t, g)

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.InDelta(t, 100.0, Area(mp), 1e-9)
}

func TestToGeomNilAndUnsupported(t *testing.T) {
	assert.Nil(t, ToGeom(nil))
	assert.Nil(t, ToGeom(&shp.Polygon{}))
	assert.Nil(t, ToGeom(&shp.PolyLine{}))
}

func TestAreaNonAreal(t *testing.T) {
	pt := geom.NewPointFlat(geom.XY, []float64{1, 2})
	assert.Zero(t, Area(pt))
}

func TestRoundTripThroughShp(t *testing.T) {
	g := ToGeom(square(5, 5))
	require.NotNil(t, g)

	back := ToShp(g)
	require.NotNil(t, back)
	assert.Equal(t, int32(1), back.NumParts)
	assert.Equal(t, int32(5), back.NumPoints)

	again := ToGeom(back)
	require.NotNil(t, again)
	assert.InDelta(t, 100.0, Area(again), 1e-9)
}

func TestRingsMultiPart(t *testing.T) {
	// Two disjoint squares as one multi-part shapefile polygon.
	a, b := square(0, 0), square(100, 100)
	points := append(append([]shp.Point{}, a.Points...), b.Points...)
	multi := &shp.Polygon{
		Box:       shp.BBoxFromPoints(points),
		NumParts:  2,
		NumPoints: int32(len(points)),
		Parts:     []int32{0, int32(len(a.Points))},
		Points:    points,
	}

	g := ToGeom(multi)
	require.NotNil(t, g)
	assert.Len(t, Rings(g), 2)
	assert.InDelta(t, 200.0, Area(g), 1e-9)
}
