package irrigation

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/basinwatch/basin-cli/internal/config"
)

// EPSG code of the analysis projection (equal-area, so polygon areas are
// in square metres).
const analysisEPSG = 3577

// Pipeline runs the irrigated-extent stage sequence for one raster. Every
// stage failure is fatal for the run; there is no recovery or resume.
type Pipeline struct {
	cfg config.IrrigateConfig
	log *zap.Logger
}

// NewPipeline returns a pipeline over the given configuration.
func NewPipeline(cfg config.IrrigateConfig) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		log: zap.L().With(zap.String("component", "irrigation")),
	}
}

// paths holds the per-raster artifact locations under the season
// directory.
type paths struct {
	dir        string
	base       string
	kea        string
	segments   string
	means      string
	classified string
	polygons   string
	final      string
}

func (p *Pipeline) layout(rasterName string) (paths, error) {
	label, err := Label(rasterName, p.cfg.Season)
	if err != nil {
		return paths{}, err
	}

	base := p.cfg.AOI + "_" + label
	dir := filepath.Join(p.cfg.ResultsDir, base)

	return paths{
		dir:        dir,
		base:       base,
		kea:        filepath.Join(dir, base+".kea"),
		segments:   filepath.Join(dir, base+"_shepherdSEG.kea"),
		means:      filepath.Join(dir, base+"_clumpMean.kea"),
		classified: filepath.Join(dir, base+p.cfg.OutputSuffix+".tif"),
		polygons:   filepath.Join(dir, base+p.cfg.OutputSuffix+".shp"),
		final:      filepath.Join(dir, base+"_60polys_10ha.shp"),
	}, nil
}

// Run processes one statistic raster end to end: translate, segment,
// threshold, export, polygonize, filter, write the final shapefile.
func (p *Pipeline) Run(ctx context.Context, rasterName string) error {
	pth, err := p.layout(rasterName)
	if err != nil {
		return err
	}

	log := p.log.With(zap.String("raster", rasterName), zap.String("output", pth.dir))
	log.Info("starting irrigated-extent run")

	if err := os.MkdirAll(pth.dir, 0o755); err != nil {
		return eris.Wrapf(err, "irrigation: create results dir %s", pth.dir)
	}

	input := filepath.Join(p.cfg.InputDir, rasterName)

	log.Info("translating raster to KEA")
	if err := translate(input, pth.kea); err != nil {
		return err
	}

	log.Info("running image segmentation")
	if err := p.segment(ctx, pth, rasterName); err != nil {
		return err
	}

	log.Info("thresholding segment means")
	if err := p.classify(pth); err != nil {
		return err
	}

	log.Info("polygonizing classified raster")
	if err := p.polygonize(ctx, pth); err != nil {
		return err
	}

	log.Info("filtering candidate polygons")
	cands, err := ReadCandidates(pth.polygons)
	if err != nil {
		return err
	}
	kept := Filter(cands)
	if err := WriteCandidates(pth.final, kept); err != nil {
		return err
	}

	log.Info("finished irrigated-extent run",
		zap.Int("candidates", len(cands)),
		zap.Int("kept", len(kept)),
	)
	return nil
}

// translate converts the input GeoTIFF to KEA in the analysis projection.
func translate(src, dst string) error {
	ds, err := godal.Open(src)
	if err != nil {
		return eris.Wrapf(err, "irrigation: open raster %s", src)
	}
	defer func() { _ = ds.Close() }()

	out, err := ds.Translate(dst, []string{
		"-of", "KEA",
		"-a_srs", fmt.Sprintf("EPSG:%d", analysisEPSG),
	})
	if err != nil {
		return eris.Wrapf(err, "irrigation: translate %s to KEA", src)
	}
	return eris.Wrap(out.Close(), "irrigation: close KEA dataset")
}

// segment invokes the external Shepherd segmentation tool, which emits
// the segment raster and the per-segment mean raster.
func (p *Pipeline) segment(ctx context.Context, pth paths, rasterName string) error {
	tmp := filepath.Join(p.cfg.TempDir, rasterName)
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return eris.Wrapf(err, "irrigation: create temp dir %s", tmp)
	}

	args := []string{
		"--input", pth.kea,
		"--segments", pth.segments,
		"--means", pth.means,
		"--clusters", fmt.Sprintf("%d", p.cfg.Clusters),
		"--minpxls", fmt.Sprintf("%d", p.cfg.MinPixels),
		"--tmp", tmp,
	}
	cmd := exec.CommandContext(ctx, p.cfg.SegmentPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return eris.Wrapf(err, "irrigation: segmentation: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

// classify reads the segment-mean band, applies the multi-level threshold
// and writes the classified GeoTIFF with the source georeferencing.
func (p *Pipeline) classify(pth paths) error {
	src, err := godal.Open(pth.means)
	if err != nil {
		return eris.Wrapf(err, "irrigation: open segment means %s", pth.means)
	}
	defer func() { _ = src.Close() }()

	bands := src.Bands()
	if len(bands) == 0 {
		return eris.Errorf("irrigation: segment means %s has no bands", pth.means)
	}
	band := bands[0]
	st := band.Structure()

	vals := make([]float32, st.SizeX*st.SizeY)
	if err := band.Read(0, 0, vals, st.SizeX, st.SizeY); err != nil {
		return eris.Wrapf(err, "irrigation: read segment means %s", pth.means)
	}

	ClassifyGrid(vals)

	gt, err := src.GeoTransform()
	if err != nil {
		return eris.Wrap(err, "irrigation: read geotransform")
	}

	dst, err := godal.Create(godal.GTiff, pth.classified, 1, godal.Float32, st.SizeX, st.SizeY)
	if err != nil {
		return eris.Wrapf(err, "irrigation: create classified raster %s", pth.classified)
	}
	defer func() { _ = dst.Close() }()

	if err := dst.SetGeoTransform(gt); err != nil {
		return eris.Wrap(err, "irrigation: set geotransform")
	}
	sr, err := godal.NewSpatialRefFromEPSG(analysisEPSG)
	if err != nil {
		return eris.Wrap(err, "irrigation: spatial ref")
	}
	defer sr.Close()
	if err := dst.SetSpatialRef(sr); err != nil {
		return eris.Wrap(err, "irrigation: set spatial ref")
	}

	out := dst.Bands()[0]
	if err := out.SetNoData(math.NaN()); err != nil {
		return eris.Wrap(err, "irrigation: set nodata")
	}
	if err := out.Write(0, 0, vals, st.SizeX, st.SizeY); err != nil {
		return eris.Wrapf(err, "irrigation: write classified raster %s", pth.classified)
	}
	return nil
}

// polygonize shells out to the external raster-to-vector tool.
func (p *Pipeline) polygonize(ctx context.Context, pth paths) error {
	cmd := exec.CommandContext(ctx, p.cfg.PolygonizePath,
		pth.classified,
		"-f", "ESRI Shapefile",
		pth.polygons,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return eris.Wrapf(err, "irrigation: polygonize: %s", strings.TrimSpace(string(output)))
	}
	return nil
}
