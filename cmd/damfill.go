package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/basinwatch/basin-cli/internal/checkpoint"
	"github.com/basinwatch/basin-cli/internal/chunk"
	"github.com/basinwatch/basin-cli/internal/config"
	"github.com/basinwatch/basin-cli/internal/fullness"
	"github.com/basinwatch/basin-cli/internal/timeseries"
	"github.com/basinwatch/basin-cli/internal/waterbody"
	"github.com/basinwatch/basin-cli/pkg/datacube"
)

var damfillCmd = &cobra.Command{
	Use:   "damfill <chunk-index>",
	Short: "Drill water-body fullness time series for one polygon chunk",
	Long: `Selects one chunk of the configured water-body shapefile by 1-based index,
queries the water-observation archive for each polygon from its checkpoint
forward, and appends retained (timestamp, wet count, wet percent) rows to the
per-polygon series files.

Parallelism is external: launch one invocation per chunk index. Chunks write
disjoint polygon sets, so concurrent invocations never share output files.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		index, err := parseChunkIndex(args[0])
		if err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "damfill"), zap.Int("chunk", index))

		bodies, err := waterbody.Load(cfg.Damfill.Shapefile)
		if err != nil {
			return err
		}

		r, err := chunk.Select(len(bodies), cfg.Damfill.Fanout, index)
		if err != nil {
			return err
		}
		log.Info("chunk selected",
			zap.Int("polygons", len(bodies)),
			zap.Int("start", r.Start),
			zap.Int("end", r.End),
		)
		if r.Empty() {
			fmt.Println("chunk is empty, nothing to do")
			return nil
		}

		cps, err := openCheckpoints(cfg.Damfill)
		if err != nil {
			return err
		}
		defer func() { _ = cps.Close() }()

		series, err := timeseries.NewWriter(cfg.Damfill.OutputDir)
		if err != nil {
			return err
		}

		archive := datacube.NewClient(datacube.Options{
			BaseURL:          cfg.Archive.BaseURL,
			Token:            cfg.Archive.Token,
			Timeout:          time.Duration(cfg.Archive.TimeoutSecs) * time.Second,
			MaxRetries:       cfg.Archive.MaxRetries,
			RatePerSec:       cfg.Archive.RatePerSec,
			FetchConcurrency: cfg.Archive.FetchConcurrency,
		})

		runID := logRunStart(ctx, cps, index)

		driller := fullness.NewDriller(archive, cfg.Damfill.Product, cps, series)
		results, drillErr := driller.DrillAll(ctx, bodies[r.Start:r.End])

		processed, skipped := fullness.Summarize(results)
		logRunFinish(ctx, cps, runID, processed, skipped)

		for _, res := range results {
			if res.Status == fullness.StatusSkipped {
				fmt.Printf("skipped %s: %s\n", res.ID, res.Reason)
			}
		}
		fmt.Printf("chunk %d: %d processed, %d skipped\n", index, processed, skipped)

		if drillErr != nil {
			return eris.Wrap(drillErr, "damfill")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(damfillCmd)
}

// parseChunkIndex parses the positional 1-based chunk index argument.
func parseChunkIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, eris.Errorf("damfill: chunk index %q is not an integer", arg)
	}
	if index < 1 {
		return 0, eris.Errorf("damfill: chunk index %d is not 1-based", index)
	}
	return index, nil
}

// openCheckpoints opens the configured checkpoint backend.
func openCheckpoints(dc config.DamfillConfig) (checkpoint.Store, error) {
	switch dc.CheckpointDriver {
	case "sqlite":
		return checkpoint.NewSQLite(dc.CheckpointDB)
	case "series":
		return checkpoint.NewSeriesFile(dc.OutputDir), nil
	default:
		return nil, eris.Errorf("damfill: unknown checkpoint driver %q", dc.CheckpointDriver)
	}
}

// logRunStart records the invocation in the runs log when the backend
// supports one.
func logRunStart(ctx context.Context, cps checkpoint.Store, index int) string {
	s, ok := cps.(*checkpoint.SQLiteStore)
	if !ok {
		return ""
	}
	runID, err := s.BeginRun(ctx, index)
	if err != nil {
		zap.L().Warn("run log unavailable", zap.Error(err))
		return ""
	}
	return runID
}

func logRunFinish(ctx context.Context, cps checkpoint.Store, runID string, processed, skipped int) {
	if runID == "" {
		return
	}
	s, ok := cps.(*checkpoint.SQLiteStore)
	if !ok {
		return
	}
	if err := s.FinishRun(ctx, runID, processed, skipped); err != nil {
		zap.L().Warn("run log unavailable", zap.Error(err))
	}
}
