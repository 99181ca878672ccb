package fullness

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/basinwatch/basin-cli/internal/checkpoint"
	"github.com/basinwatch/basin-cli/internal/timeseries"
	"github.com/basinwatch/basin-cli/internal/waterbody"
	"github.com/basinwatch/basin-cli/pkg/datacube"
)

// Status is the outcome class of one polygon drill.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
)

// Result is the explicit per-polygon outcome of a drill. Skips carry a
// reason; rows already appended before a skip stay on disk.
type Result struct {
	ID     string
	Status Status
	Reason string
	Rows   int
}

// Series is the append-only sink for retained observations.
type Series interface {
	Append(id string, rows []timeseries.Row) error
}

// Archive is the subset of the datacube client the drill needs.
type Archive interface {
	Drill(ctx context.Context, product string, bbox datacube.BBox, from time.Time) ([]datacube.SceneGrid, error)
}

// Driller runs the per-polygon fullness calculation.
type Driller struct {
	archive     Archive
	product     string
	checkpoints checkpoint.Store
	series      Series
	log         *zap.Logger
}

// NewDriller wires a driller from its collaborators.
func NewDriller(archive Archive, product string, cps checkpoint.Store, series Series) *Driller {
	return &Driller{
		archive:     archive,
		product:     product,
		checkpoints: cps,
		series:      series,
		log:         zap.L().With(zap.String("component", "fullness")),
	}
}

// Drill processes one water body: query the archive from the polygon's
// checkpoint forward, derive per-scene percentages, filter low-quality
// scenes, append retained rows and advance the checkpoint.
//
// A returned error is fatal for the invocation (missing checkpoint, query
// failure). Failures past the query stage produce a skipped Result and the
// invocation continues with the next polygon.
func (d *Driller) Drill(ctx context.Context, wb waterbody.Waterbody) (Result, error) {
	last, err := d.checkpoints.LastObserved(ctx, wb.ID)
	if err != nil {
		return Result{}, eris.Wrapf(err, "fullness: checkpoint for %s", wb.ID)
	}

	bounds := wb.Bounds()
	bbox := datacube.BBox{
		MinX: bounds.Min(0), MinY: bounds.Min(1),
		MaxX: bounds.Max(0), MaxY: bounds.Max(1),
	}

	grids, err := d.archive.Drill(ctx, d.product, bbox, last)
	if err != nil {
		return Result{}, eris.Wrapf(err, "fullness: query archive for %s", wb.ID)
	}

	rows := make([]timeseries.Row, 0, len(grids))
	for _, sg := range grids {
		mask := Mask(wb.Geometry, sg.Grid.Transform, sg.Grid.Width, sg.Grid.Height)
		tally := Count(sg.Grid.Flags, mask)
		pct := tally.Percentages()
		if !pct.Retained() {
			continue
		}
		rows = append(rows, timeseries.Row{
			Time:       sg.Scene.Time,
			WetCount:   tally.Wet,
			WetPercent: pct.Wet,
		})
	}

	if len(rows) == 0 {
		d.log.Debug("no retained observations", zap.String("polygon", wb.ID), zap.Int("scenes", len(grids)))
		return Result{ID: wb.ID, Status: StatusOK}, nil
	}

	if err := d.series.Append(wb.ID, rows); err != nil {
		d.log.Warn("polygon skipped", zap.String("polygon", wb.ID), zap.Error(err))
		return Result{ID: wb.ID, Status: StatusSkipped, Reason: eris.ToString(err, false)}, nil
	}

	newest := rows[len(rows)-1].Time
	if err := d.checkpoints.SetLastObserved(ctx, wb.ID, newest); err != nil {
		d.log.Warn("polygon skipped", zap.String("polygon", wb.ID), zap.Error(err))
		return Result{ID: wb.ID, Status: StatusSkipped, Reason: eris.ToString(err, false)}, nil
	}

	return Result{ID: wb.ID, Status: StatusOK, Rows: len(rows)}, nil
}

// DrillAll drills a chunk of water bodies strictly one at a time and
// aggregates the per-polygon results. The first fatal error aborts the
// remainder of the chunk.
func (d *Driller) DrillAll(ctx context.Context, bodies []waterbody.Waterbody) ([]Result, error) {
	results := make([]Result, 0, len(bodies))
	for _, wb := range bodies {
		res, err := d.Drill(ctx, wb)
		if err != nil {
			return results, err
		}
		d.log.Info("polygon drilled",
			zap.String("polygon", wb.ID),
			zap.String("status", string(res.Status)),
			zap.Int("rows", res.Rows),
		)
		results = append(results, res)
	}
	return results, nil
}

// Summarize counts the processed and skipped polygons of a chunk.
func Summarize(results []Result) (processed, skipped int) {
	for _, r := range results {
		if r.Status == StatusSkipped {
			skipped++
		} else {
			processed++
		}
	}
	return processed, skipped
}
