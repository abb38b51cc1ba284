package classifier

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hitpulse/internal/dataset"
)

// DefaultPredictors are the model's predictor features.
func DefaultPredictors() []string {
	return []string{"danceability", "energy", "loudness", "valence", "tempo"}
}

// Defaults for fitting and splitting.
const (
	DefaultTrainProportion = 0.7
	DefaultSeed            = 123
	DefaultMaxIterations   = 25
	DefaultConfidence      = 0.95

	// convergenceTol is the max absolute coefficient update below
	// which the IRLS loop is considered converged.
	convergenceTol = 1e-8
	// separationBound is the coefficient magnitude beyond which the
	// classes are treated as perfectly separated.
	separationBound = 1e3
)

// State tracks the model lifecycle.
type State int

const (
	StateUnfit State = iota
	StateFit
	StateEvaluated
)

// String returns the lifecycle stage name.
func (s State) String() string {
	switch s {
	case StateUnfit:
		return "unfit"
	case StateFit:
		return "fit"
	case StateEvaluated:
		return "evaluated"
	default:
		return "unknown"
	}
}

// ErrNotFitted is returned when interpretation or prediction is
// requested before Fit.
var ErrNotFitted = errors.New("classifier: model is not fitted")

// NonConvergenceError reports an IRLS optimization that did not settle
// within the iteration cap.
type NonConvergenceError struct {
	Iterations int
	LastDelta  float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("classifier: optimization did not converge after %d iterations (last update %.3g)",
		e.Iterations, e.LastDelta)
}

// SeparationError reports perfectly separated classes: the likelihood
// has no finite maximum and the coefficients diverge.
type SeparationError struct {
	Term string
}

func (e *SeparationError) Error() string {
	return fmt.Sprintf("classifier: predictors perfectly separate the classes (term %s diverged)", e.Term)
}

// Coefficient is one fitted model term with its Wald statistics.
type Coefficient struct {
	Term     string
	Estimate float64
	StdErr   float64
	Z        float64
	PValue   float64
}

// OddsRatio is the exp-transform of a non-intercept coefficient and
// its confidence interval.
type OddsRatio struct {
	Term     string
	Estimate float64
	ConfLow  float64
	ConfHigh float64
}

// Prediction is one test record's predicted probability and class.
type Prediction struct {
	RecordID uuid.UUID
	Prob     float64
	Class    dataset.HitClass
	Actual   dataset.HitClass
}

// ConfusionMatrix counts predictions against actuals; rows are
// predicted classes, columns actual classes, both in canonical order.
type ConfusionMatrix struct {
	Counts [2][2]int
}

// Add records one (predicted, actual) pair.
func (m *ConfusionMatrix) Add(predicted, actual dataset.HitClass) {
	m.Counts[predicted][actual]++
}

// Total is the number of recorded pairs.
func (m ConfusionMatrix) Total() int {
	total := 0
	for _, row := range m.Counts {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// Accuracy is the diagonal share of the matrix; NaN-free, zero on an
// empty matrix.
func (m ConfusionMatrix) Accuracy() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	correct := m.Counts[dataset.RegularHit][dataset.RegularHit] +
		m.Counts[dataset.SuperHit][dataset.SuperHit]
	return float64(correct) / float64(total)
}
