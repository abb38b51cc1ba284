package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"hitpulse/internal/dataset"
)

// Model is a binary logistic regression of hit class on a fixed
// predictor set. The zero value is not usable; call New.
type Model struct {
	predictors []string
	maxIter    int
	logger     *slog.Logger

	state State
	coefs []Coefficient // intercept first, read-only once fitted
}

// New creates an unfitted model. A nil or empty predictor list falls
// back to DefaultPredictors.
func New(predictors []string, logger *slog.Logger) *Model {
	if len(predictors) == 0 {
		predictors = DefaultPredictors()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		predictors: append([]string(nil), predictors...),
		maxIter:    DefaultMaxIterations,
		logger:     logger,
	}
}

// SetMaxIterations overrides the IRLS iteration cap.
func (m *Model) SetMaxIterations(n int) {
	if n > 0 {
		m.maxIter = n
	}
}

// State reports the model lifecycle stage.
func (m *Model) State() State { return m.state }

// Predictors returns the predictor feature names.
func (m *Model) Predictors() []string {
	return append([]string(nil), m.predictors...)
}

// Fit estimates the coefficients on the train partition by maximum
// likelihood (IRLS). Rows with a missing predictor are excluded, as is
// convention for likelihood fits. Fitting again with the same inputs
// produces the same coefficients; the optimizer is deterministic.
func (m *Model) Fit(ctx context.Context, train []dataset.LabeledSong) error {
	X, y, err := m.designMatrix(train)
	if err != nil {
		return err
	}
	n, p := X.Dims()

	positives := 0
	for _, v := range y {
		if v == 1 {
			positives++
		}
	}
	if positives == 0 || positives == n {
		// Only one class present: the likelihood has no finite
		// maximum in the intercept direction.
		return &SeparationError{Term: "(Intercept)"}
	}

	beta := make([]float64, p)
	lastDelta := math.Inf(1)

	for iter := 1; iter <= m.maxIter; iter++ {
		xtwx, score := m.normalEquations(X, y, beta)

		var delta mat.VecDense
		if err := delta.SolveVec(xtwx, score); err != nil {
			return &SeparationError{Term: m.widestTerm(beta)}
		}

		lastDelta = 0
		for j := 0; j < p; j++ {
			beta[j] += delta.AtVec(j)
			if d := math.Abs(delta.AtVec(j)); d > lastDelta {
				lastDelta = d
			}
		}

		for j, b := range beta {
			if math.Abs(b) > separationBound {
				return &SeparationError{Term: m.termName(j)}
			}
		}

		if lastDelta < convergenceTol {
			coefs, err := m.waldStatistics(X, y, beta)
			if err != nil {
				return err
			}
			m.coefs = coefs
			m.state = StateFit

			m.logger.InfoContext(ctx, "logistic model fitted",
				slog.Int("rows", n),
				slog.Int("terms", p),
				slog.Int("iterations", iter))
			return nil
		}
	}

	if perfectlySeparated(X, y, beta) {
		return &SeparationError{Term: m.widestTerm(beta)}
	}
	return &NonConvergenceError{Iterations: m.maxIter, LastDelta: lastDelta}
}

// perfectlySeparated reports whether every fitted probability has been
// pushed to its response's boundary, the signature of divergence under
// complete separation.
func perfectlySeparated(X *mat.Dense, y, beta []float64) bool {
	n, _ := X.Dims()
	for i := 0; i < n; i++ {
		eta := 0.0
		for j, v := range X.RawRowView(i) {
			eta += beta[j] * v
		}
		if math.Abs(y[i]-sigmoid(eta)) > 1e-6 {
			return false
		}
	}
	return true
}

// Coefficients returns the fitted terms, intercept first.
func (m *Model) Coefficients() ([]Coefficient, error) {
	if m.state < StateFit {
		return nil, ErrNotFitted
	}
	return append([]Coefficient(nil), m.coefs...), nil
}

// OddsRatios exp-transforms every non-intercept coefficient and its
// Wald confidence interval at the given confidence level.
func (m *Model) OddsRatios(confidence float64) ([]OddsRatio, error) {
	if m.state < StateFit {
		return nil, ErrNotFitted
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("classifier: confidence level must be in (0,1), got %v", confidence)
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (1-confidence)/2)

	ratios := make([]OddsRatio, 0, len(m.coefs)-1)
	for _, c := range m.coefs[1:] {
		ratios = append(ratios, OddsRatio{
			Term:     c.Term,
			Estimate: math.Exp(c.Estimate),
			ConfLow:  math.Exp(c.Estimate - z*c.StdErr),
			ConfHigh: math.Exp(c.Estimate + z*c.StdErr),
		})
	}
	return ratios, nil
}

// Predict computes the Super-Hit probability for every test record via
// the logistic link and thresholds at 0.5. Records with a missing
// predictor are skipped.
func (m *Model) Predict(test []dataset.LabeledSong) ([]Prediction, error) {
	if m.state < StateFit {
		return nil, ErrNotFitted
	}

	preds := make([]Prediction, 0, len(test))
	for _, s := range test {
		row, ok := m.predictorRow(s.Song)
		if !ok {
			continue
		}

		eta := m.coefs[0].Estimate
		for j, v := range row {
			eta += m.coefs[j+1].Estimate * v
		}
		prob := sigmoid(eta)

		class := dataset.RegularHit
		if prob > 0.5 {
			class = dataset.SuperHit
		}
		preds = append(preds, Prediction{
			RecordID: s.ID,
			Prob:     prob,
			Class:    class,
			Actual:   s.Class,
		})
	}
	return preds, nil
}

// Evaluate predicts the test partition and tallies the confusion
// matrix. Moves the model to Evaluated.
func (m *Model) Evaluate(test []dataset.LabeledSong) (ConfusionMatrix, []Prediction, error) {
	preds, err := m.Predict(test)
	if err != nil {
		return ConfusionMatrix{}, nil, err
	}

	var cm ConfusionMatrix
	for _, p := range preds {
		cm.Add(p.Class, p.Actual)
	}

	m.state = StateEvaluated
	return cm, preds, nil
}

// designMatrix builds the n x (p+1) design matrix with a leading
// intercept column and the 0/1 response, Super-Hit coded 1. Unlabeled
// rows and rows with a missing predictor are dropped.
func (m *Model) designMatrix(songs []dataset.LabeledSong) (*mat.Dense, []float64, error) {
	p := len(m.predictors) + 1

	var rows []float64
	var y []float64
	for _, s := range songs {
		if !s.Labeled {
			continue
		}
		row, ok := m.predictorRow(s.Song)
		if !ok {
			continue
		}

		rows = append(rows, 1)
		rows = append(rows, row...)
		if s.Class == dataset.SuperHit {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}

	if len(y) == 0 {
		return nil, nil, fmt.Errorf("classifier: no complete training rows")
	}
	if len(y) <= p {
		return nil, nil, fmt.Errorf("classifier: %d rows cannot identify %d terms", len(y), p)
	}

	return mat.NewDense(len(y), p, rows), y, nil
}

// predictorRow extracts the predictor values for one song; false when
// any value is missing.
func (m *Model) predictorRow(s dataset.Song) ([]float64, bool) {
	row := make([]float64, len(m.predictors))
	for j, name := range m.predictors {
		v, ok := s.Feature(name)
		if !ok || math.IsNaN(v) {
			return nil, false
		}
		row[j] = v
	}
	return row, true
}

// normalEquations assembles X'WX and the score X'(y-mu) at beta.
func (m *Model) normalEquations(X *mat.Dense, y, beta []float64) (*mat.Dense, *mat.VecDense) {
	n, p := X.Dims()

	xtwx := mat.NewDense(p, p, nil)
	score := mat.NewVecDense(p, nil)

	for i := 0; i < n; i++ {
		row := X.RawRowView(i)

		eta := 0.0
		for j, v := range row {
			eta += beta[j] * v
		}
		mu := sigmoid(eta)

		w := mu * (1 - mu)
		if w < 1e-10 {
			w = 1e-10
		}
		r := y[i] - mu

		for j := 0; j < p; j++ {
			score.SetVec(j, score.AtVec(j)+row[j]*r)
			for k := j; k < p; k++ {
				v := xtwx.At(j, k) + w*row[j]*row[k]
				xtwx.Set(j, k, v)
				if k != j {
					xtwx.Set(k, j, v)
				}
			}
		}
	}
	return xtwx, score
}

// waldStatistics derives standard errors from the inverse observed
// information at the fitted coefficients.
func (m *Model) waldStatistics(X *mat.Dense, y, beta []float64) ([]Coefficient, error) {
	xtwx, _ := m.normalEquations(X, y, beta)

	var cov mat.Dense
	if err := cov.Inverse(xtwx); err != nil {
		return nil, &SeparationError{Term: m.widestTerm(beta)}
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	coefs := make([]Coefficient, len(beta))
	for j, b := range beta {
		se := math.Sqrt(cov.At(j, j))
		z := b / se
		coefs[j] = Coefficient{
			Term:     m.termName(j),
			Estimate: b,
			StdErr:   se,
			Z:        z,
			PValue:   2 * normal.CDF(-math.Abs(z)),
		}
	}
	return coefs, nil
}

func (m *Model) termName(j int) string {
	if j == 0 {
		return "(Intercept)"
	}
	return m.predictors[j-1]
}

// widestTerm names the largest-magnitude coefficient, the usual
// suspect when the information matrix degenerates.
func (m *Model) widestTerm(beta []float64) string {
	widest, max := 0, 0.0
	for j, b := range beta {
		if math.Abs(b) >= max {
			widest, max = j, math.Abs(b)
		}
	}
	return m.termName(widest)
}

func sigmoid(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}
