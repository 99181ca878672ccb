package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/basinwatch/basin-cli/internal/checkpoint"
)

var damfillStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-polygon checkpoint state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Damfill.CheckpointDriver != "sqlite" {
			return eris.Errorf("damfill status: checkpoint driver %q has no status view", cfg.Damfill.CheckpointDriver)
		}

		cps, err := checkpoint.NewSQLite(cfg.Damfill.CheckpointDB)
		if err != nil {
			return err
		}
		defer func() { _ = cps.Close() }()

		entries, err := cps.List(cmd.Context())
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No polygons checkpointed yet")
			return nil
		}

		fmt.Printf("%-20s %-26s %s\n", "Polygon", "Last Observed", "Updated At")
		fmt.Println(strings.Repeat("-", 70))
		for _, e := range entries {
			fmt.Printf("%-20s %-26s %s\n",
				e.PolygonID,
				e.LastObserved.Format("2006-01-02 15:04:05"),
				e.UpdatedAt.Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

func init() {
	damfillCmd.AddCommand(damfillStatusCmd)
}
