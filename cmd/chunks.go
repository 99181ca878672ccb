package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basinwatch/basin-cli/internal/chunk"
	"github.com/basinwatch/basin-cli/internal/waterbody"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Print the partition plan for the configured shapefile",
	Long: `Prints the [start, end) polygon index range each chunk index would select,
so boundary chunks can be inspected without running a drill.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		bodies, err := waterbody.Load(cfg.Damfill.Shapefile)
		if err != nil {
			return err
		}

		plan := chunk.Plan(len(bodies), cfg.Damfill.Fanout)

		fmt.Printf("%d polygons, fan-out %d, chunk size %d\n",
			len(bodies), cfg.Damfill.Fanout, chunk.Size(len(bodies), cfg.Damfill.Fanout))
		fmt.Printf("%-8s %10s %10s %10s\n", "Chunk", "Start", "End", "Polygons")
		fmt.Println(strings.Repeat("-", 42))
		for _, r := range plan {
			fmt.Printf("%-8d %10d %10d %10d\n", r.Index, r.Start, r.End, r.Len())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chunksCmd)
}
