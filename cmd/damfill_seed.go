package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/basinwatch/basin-cli/internal/checkpoint"
	"github.com/basinwatch/basin-cli/internal/waterbody"
)

var damfillSeedFrom string

var damfillSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register shapefile polygons in the checkpoint store",
	Long: `Seeds a checkpoint for every polygon in the configured shapefile, so a
fresh checkpoint database can be drilled from a chosen start date. Polygons
that already have a checkpoint are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Damfill.CheckpointDriver != "sqlite" {
			return eris.Errorf("damfill seed: checkpoint driver %q cannot be seeded", cfg.Damfill.CheckpointDriver)
		}

		from, err := parseSeedDate(damfillSeedFrom)
		if err != nil {
			return err
		}

		bodies, err := waterbody.Load(cfg.Damfill.Shapefile)
		if err != nil {
			return err
		}

		cps, err := checkpoint.NewSQLite(cfg.Damfill.CheckpointDB)
		if err != nil {
			return err
		}
		defer func() { _ = cps.Close() }()

		for _, wb := range bodies {
			if err := cps.Seed(cmd.Context(), wb.ID, from); err != nil {
				return err
			}
		}

		fmt.Printf("seeded %d polygons from %s\n", len(bodies), from.Format("2006-01-02"))
		return nil
	},
}

func init() {
	damfillSeedCmd.Flags().StringVar(&damfillSeedFrom, "from", "1986-01-01", "start date for new checkpoints (YYYY-MM-DD)")
	damfillCmd.AddCommand(damfillSeedCmd)
}

func parseSeedDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, eris.Errorf("damfill seed: date %q is not YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}
