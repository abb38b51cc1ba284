// Package pipeline runs the full analysis: load, label, then the
// three independent branches (distribution tests, classifier, yearly
// trends) over the same immutable labeled table.
//
// The branches run concurrently; each one only reads the labeled
// table and writes its own report section, so there is no shared
// mutable state. A branch failure is recorded in the report and never
// stops the other branches. Only loading and labeling are fatal.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"hitpulse/internal/classifier"
	"hitpulse/internal/config"
	"hitpulse/internal/dataset"
	"hitpulse/internal/distribution"
	"hitpulse/internal/trends"
)

// Report aggregates every table the pipeline produces. Branch errors
// are carried alongside their (possibly empty) sections.
type Report struct {
	ClassFrequency []dataset.ClassCount

	FeatureTests       []distribution.TestResult
	DegenerateFeatures []*distribution.DegenerateComparisonError

	Partition     classifier.Partition
	Coefficients  []classifier.Coefficient
	OddsRatios    []classifier.OddsRatio
	Confusion     classifier.ConfusionMatrix
	Accuracy      float64
	Predictions   []classifier.Prediction
	ClassifierErr error

	Trends []trends.YearlyTrend
}

// Runner executes the pipeline for one configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a runner. A nil logger falls back to slog's default.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run loads the configured input file and analyzes it.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	songs, err := dataset.Load(r.cfg.Input.Path)
	if err != nil {
		return nil, err
	}
	return r.RunOn(ctx, songs)
}

// RunOn analyzes an already loaded table. Labeling is the last hard
// dependency; after it the three branches are independent.
func (r *Runner) RunOn(ctx context.Context, songs []dataset.Song) (*Report, error) {
	labeled := dataset.Label(songs, r.cfg.Analysis.SuperHitThreshold)

	report := &Report{ClassFrequency: dataset.ClassFrequency(labeled)}
	for _, row := range report.ClassFrequency {
		r.logger.InfoContext(ctx, "labeled records",
			slog.String("class", row.Class.String()),
			slog.Int("count", row.Count))
	}

	// Each branch writes only its own report fields, so the group
	// needs no locking. Branches report failure through the report,
	// not the group: one branch must not cancel the others.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		analyzer := distribution.NewAnalyzer(r.cfg.Analysis.SignificanceLevel, r.logger)
		report.FeatureTests, report.DegenerateFeatures =
			analyzer.Compare(gctx, labeled, r.cfg.Analysis.Features)
		return nil
	})

	g.Go(func() error {
		report.ClassifierErr = r.runClassifier(gctx, labeled, report)
		if report.ClassifierErr != nil {
			r.logger.WarnContext(gctx, "classifier branch failed",
				slog.String("error", report.ClassifierErr.Error()))
		}
		return nil
	})

	g.Go(func() error {
		report.Trends = trends.Aggregate(labeled)
		r.logger.InfoContext(gctx, "aggregated yearly trends",
			slog.Int("years", len(report.Trends)))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Runner) runClassifier(ctx context.Context, labeled []dataset.LabeledSong, report *Report) error {
	partition, err := classifier.Split(labeled, r.cfg.Analysis.TrainProportion, r.cfg.Analysis.Seed)
	if err != nil {
		return err
	}
	report.Partition = partition

	model := classifier.New(r.cfg.Analysis.Predictors, r.logger)
	model.SetMaxIterations(r.cfg.Analysis.MaxIterations)

	if err := model.Fit(ctx, partition.Train); err != nil {
		return err
	}

	coefs, err := model.Coefficients()
	if err != nil {
		return err
	}
	report.Coefficients = coefs

	ratios, err := model.OddsRatios(r.cfg.Analysis.ConfidenceLevel)
	if err != nil {
		return err
	}
	report.OddsRatios = ratios

	cm, preds, err := model.Evaluate(partition.Test)
	if err != nil {
		return err
	}
	report.Confusion = cm
	report.Accuracy = cm.Accuracy()
	report.Predictions = preds

	r.logger.InfoContext(ctx, "classifier evaluated",
		slog.Int("train_rows", len(partition.Train)),
		slog.Int("test_rows", len(partition.Test)),
		slog.Float64("accuracy", report.Accuracy))
	return nil
}
