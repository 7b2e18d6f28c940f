package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"shoreline/internal/app"
	"shoreline/internal/operations"
)

func main() {
	configFile := flag.String("config", "", "path to the YAML config file (defaults to shoreline.yaml or $SHORE_CONFIG)")
	baseDir := flag.String("base", "", "base directory for relative input and output paths (defaults to the executable directory)")
	inputDir := flag.String("in", "", "offsets directory holding one sub-directory per level")
	outputDir := flag.String("out", "", "output directory for series, workbook, figure and summary")
	tolerance := flag.Float64("tol", 0, "longitude bin width in degrees (default 0.25)")
	mode := flag.String("mode", "", "reduction reported in the summary: min, mean or max")
	radius := flag.Float64("radius", 0, "sphere radius in km (default Mars mean radius)")
	flag.Parse()

	application, err := app.NewApplication(app.Options{
		Name:       "offsets",
		ConfigFile: *configFile,
		Overrides: app.Overrides{
			BaseDir:    *baseDir,
			OffsetsDir: *inputDir,
			OutputDir:  *outputDir,
			Tolerance:  *tolerance,
			Mode:       *mode,
			RadiusKm:   *radius,
		},
		Pipeline: operations.OffsetsPipeline,
	})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	// Run logs its own outcome and closes the log file
	if _, err := application.Run(context.Background()); err != nil {
		os.Exit(1)
	}
}
