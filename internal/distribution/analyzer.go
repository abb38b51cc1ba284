package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"hitpulse/internal/dataset"
)

// DefaultSignificanceLevel is the p-value threshold for flagging a
// feature as significant.
const DefaultSignificanceLevel = 0.05

// TestResult is one feature's two-sample comparison.
type TestResult struct {
	Feature      string
	MeanSuperHit float64
	MeanRegular  float64
	TStatistic   float64
	DF           float64
	PValue       float64
	Significant  bool
}

// DegenerateComparisonError marks a feature whose Welch test cannot be
// run: one class is empty, has fewer than two observations, or has
// zero variance.
type DegenerateComparisonError struct {
	Feature string
	Class   dataset.HitClass
	Reason  string
}

func (e *DegenerateComparisonError) Error() string {
	return fmt.Sprintf("distribution: feature %s is degenerate for class %q: %s",
		e.Feature, e.Class, e.Reason)
}

// Analyzer runs per-feature comparisons between the two hit classes.
type Analyzer struct {
	alpha  float64
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer flagging significance below alpha.
func NewAnalyzer(alpha float64, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultSignificanceLevel
	}
	return &Analyzer{alpha: alpha, logger: logger}
}

// Compare tests every feature independently and returns the results in
// input order. Degenerate features are returned separately; they never
// abort the remaining comparisons.
func (a *Analyzer) Compare(ctx context.Context, songs []dataset.LabeledSong, features []string) ([]TestResult, []*DegenerateComparisonError) {
	results := make([]TestResult, 0, len(features))
	var degenerate []*DegenerateComparisonError

	for _, feature := range features {
		res, err := a.CompareFeature(songs, feature)
		if err != nil {
			var degErr *DegenerateComparisonError
			if errors.As(err, &degErr) {
				a.logger.WarnContext(ctx, "skipping degenerate feature comparison",
					slog.String("feature", feature),
					slog.String("reason", degErr.Reason))
				degenerate = append(degenerate, degErr)
				continue
			}
			a.logger.WarnContext(ctx, "feature comparison failed",
				slog.String("feature", feature),
				slog.String("error", err.Error()))
			continue
		}
		results = append(results, res)
	}

	a.logger.InfoContext(ctx, "feature comparisons finished",
		slog.Int("tested", len(results)),
		slog.Int("degenerate", len(degenerate)))

	return results, degenerate
}

// CompareFeature runs the Welch t-test for a single feature.
func (a *Analyzer) CompareFeature(songs []dataset.LabeledSong, feature string) (TestResult, error) {
	super := classValues(songs, feature, dataset.SuperHit)
	regular := classValues(songs, feature, dataset.RegularHit)

	if err := checkGroup(feature, dataset.SuperHit, super); err != nil {
		return TestResult{}, err
	}
	if err := checkGroup(feature, dataset.RegularHit, regular); err != nil {
		return TestResult{}, err
	}

	meanSuper := stat.Mean(super, nil)
	meanRegular := stat.Mean(regular, nil)

	t, df := welch(super, regular)
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(-math.Abs(t))

	return TestResult{
		Feature:      feature,
		MeanSuperHit: meanSuper,
		MeanRegular:  meanRegular,
		TStatistic:   t,
		DF:           df,
		PValue:       p,
		Significant:  p < a.alpha,
	}, nil
}

// welch computes the Welch t statistic and the Welch-Satterthwaite
// degrees of freedom. Both groups are known non-degenerate here.
func welch(x, y []float64) (t, df float64) {
	mx, vx := stat.MeanVariance(x, nil)
	my, vy := stat.MeanVariance(y, nil)
	nx, ny := float64(len(x)), float64(len(y))

	sx := vx / nx
	sy := vy / ny
	se := math.Sqrt(sx + sy)

	t = (mx - my) / se
	df = (sx + sy) * (sx + sy) / (sx*sx/(nx-1) + sy*sy/(ny-1))
	return t, df
}

func checkGroup(feature string, class dataset.HitClass, values []float64) error {
	switch {
	case len(values) == 0:
		return &DegenerateComparisonError{Feature: feature, Class: class, Reason: "empty group"}
	case len(values) < 2:
		return &DegenerateComparisonError{Feature: feature, Class: class, Reason: "fewer than two observations"}
	}
	if _, variance := stat.MeanVariance(values, nil); variance == 0 {
		return &DegenerateComparisonError{Feature: feature, Class: class, Reason: "zero variance"}
	}
	return nil
}

// classValues pulls the non-missing values of one feature for one
// class. Unlabeled records never contribute.
func classValues(songs []dataset.LabeledSong, feature string, class dataset.HitClass) []float64 {
	var values []float64
	for _, s := range songs {
		if !s.Labeled || s.Class != class {
			continue
		}
		if v, ok := s.Feature(feature); ok && !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}
