package irrigation

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/basinwatch/basin-cli/internal/shapes"
)

// Polygon filter bounds, in squared map units.
const (
	// MaxArea drops oversized features (forests, floodplains) that the
	// segmentation merges into one region.
	MaxArea = 50_000_000.0
	// MinArea keeps only candidate fields above 10 ha.
	MinArea = 100_000.0
	// KeepClass is the confidence code retained in the final polygon set.
	KeepClass = Code60
)

// Candidate is one polygonized feature with its class code and computed
// planar area.
type Candidate struct {
	DN       int
	Area     float64
	Geometry geom.T
}

// Keep applies the candidate filter: features at most MaxArea, then only
// KeepClass features strictly above MinArea.
func Keep(dn int, area float64) bool {
	if area > MaxArea {
		return false
	}
	return dn == KeepClass && area > MinArea
}

// ReadCandidates loads the polygonizer's output shapefile. Area comes
// from the feature geometry, not an attribute.
func ReadCandidates(path string) ([]Candidate, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "irrigation: open candidate shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	dnIdx := -1
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), "DN") {
			dnIdx = i
		}
	}
	if dnIdx < 0 {
		return nil, eris.Errorf("irrigation: shapefile %s has no DN field", path)
	}

	var cands []Candidate
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		g := shapes.ToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		dn, err := strconv.Atoi(strings.TrimSpace(strings.TrimRight(reader.Attribute(dnIdx), "\x00")))
		if err != nil {
			skipped++
			continue
		}

		cands = append(cands, Candidate{DN: dn, Area: shapes.Area(g), Geometry: g})
	}
	if skipped > 0 {
		zap.L().Debug("irrigation: skipped candidate records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return cands, nil
}

// Filter returns the candidates passing Keep, preserving order.
func Filter(cands []Candidate) []Candidate {
	var kept []Candidate
	for _, c := range cands {
		if Keep(c.DN, c.Area) {
			kept = append(kept, c)
		}
	}
	return kept
}

// WriteCandidates writes the filtered polygon set as an ESRI shapefile
// with DN and area attributes.
func WriteCandidates(path string, cands []Candidate) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "irrigation: create shapefile %s", path)
	}

	w.SetFields([]shp.Field{
		shp.NumberField("DN", 10),
		shp.FloatField("area", 19, 4),
	})

	for i, c := range cands {
		poly := shapes.ToShp(c.Geometry)
		if poly == nil {
			continue
		}
		w.Write(poly)
		if err := w.WriteAttribute(i, 0, c.DN); err != nil {
			w.Close()
			return eris.Wrapf(err, "irrigation: write DN attribute %d", i)
		}
		if err := w.WriteAttribute(i, 1, c.Area); err != nil {
			w.Close()
			return eris.Wrapf(err, "irrigation: write area attribute %d", i)
		}
	}

	w.Close()
	return nil
}
