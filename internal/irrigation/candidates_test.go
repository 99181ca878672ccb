package irrigation

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeep(t *testing.T) {
	tests := []struct {
		name string
		dn   int
		area float64
		kept bool
	}{
		{name: "class 60 above min area", dn: 60, area: 150_000, kept: true},
		{name: "class 60 below min area", dn: 60, area: 90_000, kept: false},
		{name: "class 60 at min area", dn: 60, area: 100_000, kept: false},
		{name: "wrong class", dn: 70, area: 150_000, kept: false},
		{name: "class 55", dn: 55, area: 150_000, kept: false},
		{name: "class 60 oversized", dn: 60, area: 60_000_000, kept: false},
		{name: "class 60 at max area", dn: 60, area: 50_000_000, kept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kept, Keep(tt.dn, tt.area))
		})
	}
}

// writeCandidateFixture writes a polygonizer-style shapefile with a DN
// attribute. Each entry is a square sized to the requested area.
func writeCandidateFixture(t *testing.T, path string, dns []int, areas []float64) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.NumberField("DN", 10)})

	for i, dn := range dns {
		side := math.Sqrt(areas[i])
		x := float64(i) * 2 * side
		points := []shp.Point{
			{X: x, Y: 0},
			{X: x, Y: side},
			{X: x + side, Y: side},
			{X: x + side, Y: 0},
			{X: x, Y: 0},
		}
		poly := &shp.Polygon{
			Box:       shp.BBoxFromPoints(points),
			NumParts:  1,
			NumPoints: int32(len(points)),
			Parts:     []int32{0},
			Points:    points,
		}
		w.Write(poly)
		require.NoError(t, w.WriteAttribute(i, 0, dn))
	}
	w.Close()
}

func TestReadAndFilterCandidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.shp")
	writeCandidateFixture(t, path,
		[]int{60, 60, 70, 60},
		[]float64{150_000, 90_000, 150_000, 60_000_000},
	)

	cands, err := ReadCandidates(path)
	require.NoError(t, err)
	require.Len(t, cands, 4)
	assert.Equal(t, 60, cands[0].DN)
	assert.InDelta(t, 150_000, cands[0].Area, 1)

	kept := Filter(cands)
	require.Len(t, kept, 1)
	assert.Equal(t, 60, kept[0].DN)
	assert.InDelta(t, 150_000, kept[0].Area, 1)
}

func TestReadCandidatesMissingDN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodn.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.NumberField("code", 10)})
	w.Close()

	_, err = ReadCandidates(path)
	assert.ErrorContains(t, err, "DN field")
}

func TestWriteCandidatesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "candidates.shp")
	writeCandidateFixture(t, src, []int{60, 60}, []float64{150_000, 90_000})

	cands, err := ReadCandidates(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "filtered.shp")
	require.NoError(t, WriteCandidates(dst, Filter(cands)))

	back, err := ReadCandidates(dst)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, 60, back[0].DN)
	assert.InDelta(t, 150_000, back[0].Area, 1)
}

func TestLayoutSeasonDirectory(t *testing.T) {
	p := NewPipeline(testConfig(t.TempDir()))

	pth, err := p.layout("ndvi_max_mdb_2010_summer.tif")
	require.NoError(t, err)

	assert.Equal(t, "SA_MDB_Summer10_11", pth.base)
	assert.Equal(t, filepath.Join(p.cfg.ResultsDir, "SA_MDB_Summer10_11"), pth.dir)
	assert.Equal(t, filepath.Join(pth.dir, "SA_MDB_Summer10_11_multithreshold.tif"), pth.classified)
	assert.Equal(t, filepath.Join(pth.dir, "SA_MDB_Summer10_11_60polys_10ha.shp"), pth.final)
}
