// Command hit-report runs the full hit analysis pipeline over a song
// feature CSV and writes the report tables.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"hitpulse/internal/config"
	"hitpulse/internal/exporter"
	"hitpulse/internal/infrastructure"
	"hitpulse/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	input := flag.String("input", "", "song feature CSV (overrides config)")
	out := flag.String("out", "", "report output directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *out != "" {
		cfg.Output.Dir = *out
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	logger.Info("Starting hit analysis",
		slog.String("input", cfg.Input.Path),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Float64("super_hit_threshold", cfg.Analysis.SuperHitThreshold),
		slog.Int64("seed", cfg.Analysis.Seed))

	ctx := context.Background()
	report, err := pipeline.New(cfg, logger).Run(ctx)
	if err != nil {
		logger.Error("Pipeline failed", "error", err)
		os.Exit(1)
	}

	if report.ClassifierErr != nil {
		logger.Warn("Classifier branch failed; its tables will be empty",
			"error", report.ClassifierErr)
	} else {
		logger.Info("Classifier evaluated", slog.Float64("accuracy", report.Accuracy))
	}

	writer := exporter.NewCSVWriter(cfg.Output.Dir)
	if err := exporter.WriteReport(writer, report); err != nil {
		logger.Error("Failed to write report tables", "error", err)
		os.Exit(1)
	}

	if cfg.Output.Workbook != "" {
		workbookPath := filepath.Join(cfg.Output.Dir, cfg.Output.Workbook)
		if err := exporter.WriteWorkbook(workbookPath, report); err != nil {
			logger.Error("Failed to write report workbook", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Hit analysis finished",
		slog.Int("features_tested", len(report.FeatureTests)),
		slog.Int("degenerate_features", len(report.DegenerateFeatures)),
		slog.Int("years_covered", len(report.Trends)))
}
