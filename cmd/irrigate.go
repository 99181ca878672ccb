package main

import (
	"os/signal"
	"syscall"

	"github.com/airbusgeo/godal"
	"github.com/spf13/cobra"

	"github.com/basinwatch/basin-cli/internal/irrigation"
)

var irrigateCmd = &cobra.Command{
	Use:   "irrigate <raster-file>",
	Short: "Classify irrigated-land extent from one vegetation-index raster",
	Long: `Processes one seasonal statistic raster (named relative to the configured
input directory) end to end: format conversion, image segmentation,
multi-level thresholding, polygonization, and area/class filtering into the
final candidate shapefile.

Stages run strictly in sequence; any stage failure aborts the run. Fan-out
across rasters is one invocation per raster.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		godal.RegisterAll()

		return irrigation.NewPipeline(cfg.Irrigate).Run(ctx, args[0])
	},
}

func init() {
	rootCmd.AddCommand(irrigateCmd)
}
