// Package waterbody loads the monitored water-body polygon set from a
// shapefile.
package waterbody

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/basinwatch/basin-cli/internal/shapes"
)

// Required attribute fields in the source shapefile.
const (
	FieldID   = "ID"
	FieldArea = "area"
)

// Waterbody is one monitored polygon from the source shapefile.
type Waterbody struct {
	ID       string
	Area     float64
	Geometry geom.T
}

// Bounds returns the geometry's bounding box in projected coordinates.
func (w Waterbody) Bounds() *geom.Bounds {
	return w.Geometry.Bounds()
}

// Load reads all water-body polygons from a shapefile, in file order.
// The ID and area attribute fields are required; a shapefile without them
// cannot be processed. Records with unreadable geometry are dropped.
func Load(path string) ([]Waterbody, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "waterbody: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	idIdx, areaIdx := -1, -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		switch strings.ToLower(name) {
		case strings.ToLower(FieldID):
			idIdx = i
		case strings.ToLower(FieldArea):
			areaIdx = i
		}
	}
	if idIdx < 0 {
		return nil, eris.Errorf("waterbody: shapefile %s has no %s field", path, FieldID)
	}
	if areaIdx < 0 {
		return nil, eris.Errorf("waterbody: shapefile %s has no %s field", path, FieldArea)
	}

	var bodies []Waterbody
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		g := shapes.ToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		id := strings.TrimSpace(strings.TrimRight(reader.Attribute(idIdx), "\x00"))
		if id == "" {
			skipped++
			continue
		}

		area, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(reader.Attribute(areaIdx), "\x00")), 64)
		if err != nil {
			area = shapes.Area(g)
		}

		bodies = append(bodies, Waterbody{ID: id, Area: area, Geometry: g})
	}

	if skipped > 0 {
		zap.L().Debug("waterbody: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return bodies, nil
}
