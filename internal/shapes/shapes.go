// Package shapes converts go-shp geometries to go-geom types for planar
// math (area, bounds, masking).
package shapes

import (
	"math"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ToGeom converts a go-shp shape to a go-geom geometry in the shapefile's
// projected coordinates. Returns nil for unsupported or empty shapes.
func ToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	default:
		return nil
	}
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Each shapefile part becomes one single-ring polygon; hole assignment is
// not reconstructed, the even-odd mask rule handles holes downstream.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("shapes: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("shapes: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// Area returns the absolute planar area of a polygonal geometry in squared
// map units. Non-areal geometries have area 0.
func Area(g geom.T) float64 {
	switch t := g.(type) {
	case *geom.Polygon:
		return math.Abs(t.Area())
	case *geom.MultiPolygon:
		return math.Abs(t.Area())
	default:
		return 0
	}
}

// Rings returns the flat coordinate rings of a polygonal geometry. Every
// ring of every member polygon is included.
func Rings(g geom.T) [][]float64 {
	var rings [][]float64
	switch t := g.(type) {
	case *geom.Polygon:
		for i := 0; i < t.NumLinearRings(); i++ {
			rings = append(rings, t.LinearRing(i).FlatCoords())
		}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			p := t.Polygon(i)
			for j := 0; j < p.NumLinearRings(); j++ {
				rings = append(rings, p.LinearRing(j).FlatCoords())
			}
		}
	}
	return rings
}

// ToShp converts a polygonal go-geom geometry back to a go-shp Polygon.
// Returns nil when the geometry has no rings.
func ToShp(g geom.T) *shp.Polygon {
	rings := Rings(g)
	if len(rings) == 0 {
		return nil
	}

	var points []shp.Point
	var parts []int32
	for _, flat := range rings {
		parts = append(parts, int32(len(points)))
		for i := 0; i+1 < len(flat); i += 2 {
			points = append(points, shp.Point{X: flat[i], Y: flat[i+1]})
		}
	}

	p := &shp.Polygon{
		NumParts:  int32(len(parts)),
		NumPoints: int32(len(points)),
		Parts:     parts,
		Points:    points,
	}
	p.Box = shp.BBoxFromPoints(points)
	return p
}
