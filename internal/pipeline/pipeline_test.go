package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitpulse/internal/config"
	"hitpulse/internal/dataset"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Analysis.Features = []string{"danceability", "energy", "valence"}
	return cfg
}

// TestRunOnFourRowScenario checks the canonical 4-row table: two years,
// a 2/2 class split, exact yearly means, and the classifier branch
// failing without dragging the others down (4 rows cannot identify the
// model).
func TestRunOnFourRowScenario(t *testing.T) {
	songs := []dataset.Song{
		{Year: 2000, Danceability: 0.9, Energy: 0.8, Valence: 0.7, Loudness: -5, Tempo: 120},
		{Year: 2000, Danceability: 0.9, Energy: 0.9, Valence: 0.5, Loudness: -6, Tempo: 110},
		{Year: 2001, Danceability: 0.1, Energy: 0.3, Valence: 0.4, Loudness: -9, Tempo: 90},
		{Year: 2001, Danceability: 0.1, Energy: 0.2, Valence: 0.3, Loudness: -12, Tempo: 80},
	}

	r := New(testConfig(), nil)
	report, err := r.RunOn(context.Background(), songs)
	require.NoError(t, err)

	// Label split 2/2 in canonical class order.
	require.Len(t, report.ClassFrequency, 2)
	assert.Equal(t, dataset.RegularHit, report.ClassFrequency[0].Class)
	assert.Equal(t, 2, report.ClassFrequency[0].Count)
	assert.Equal(t, 2, report.ClassFrequency[1].Count)

	// Yearly means are the exact per-year arithmetic means.
	require.Len(t, report.Trends, 2)
	assert.Equal(t, 2000, report.Trends[0].Year)
	assert.InDelta(t, 0.9, report.Trends[0].AvgDanceability, 1e-12)
	assert.InDelta(t, 0.85, report.Trends[0].AvgEnergy, 1e-12)
	assert.InDelta(t, 0.6, report.Trends[0].AvgValence, 1e-12)
	assert.Equal(t, 2001, report.Trends[1].Year)
	assert.InDelta(t, 0.1, report.Trends[1].AvgDanceability, 1e-12)
	assert.InDelta(t, 0.25, report.Trends[1].AvgEnergy, 1e-12)
	assert.InDelta(t, 0.35, report.Trends[1].AvgValence, 1e-12)

	// The classifier cannot fit four rows; its failure stays in its
	// own lane while the degenerate features are flagged per feature.
	assert.Error(t, report.ClassifierErr)
	assert.NotEmpty(t, report.DegenerateFeatures)
}

// syntheticSongs returns 40 rows where danceability overlaps heavily
// between classes, so the logistic fit is well posed.
func syntheticSongs() []dataset.Song {
	songs := make([]dataset.Song, 0, 40)
	for i := 0; i < 40; i++ {
		k := i % 20
		// Small within-class wiggles keep every feature's variance
		// positive without ever crossing the labeling threshold.
		energy := 0.3 + 0.001*float64(i%5)
		valence := 0.3 + 0.002*float64(i%3)
		if k%2 == 0 {
			energy = 0.9 - 0.001*float64(i%5)
			valence = 0.9 - 0.002*float64(i%3)
		}
		songs = append(songs, dataset.Song{
			Year:         1990 + i%4,
			Danceability: float64(k) / 20,
			Energy:       energy,
			Valence:      valence,
			Loudness:     -5 - float64(i%7),
			Tempo:        100 + float64(i%13),
		})
	}
	return songs
}

func TestRunOnFullPipeline(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Predictors = []string{"danceability"}

	r := New(cfg, nil)
	report, err := r.RunOn(context.Background(), syntheticSongs())
	require.NoError(t, err)
	require.NoError(t, report.ClassifierErr)

	// 14 Super-Hits and 26 Regular Hits; 70/30 split rounded per
	// class gives 28 train rows and 12 test rows.
	assert.Equal(t, 26, report.ClassFrequency[0].Count)
	assert.Equal(t, 14, report.ClassFrequency[1].Count)
	assert.Len(t, report.Partition.Train, 28)
	assert.Len(t, report.Partition.Test, 12)

	require.Len(t, report.Coefficients, 2)
	assert.Equal(t, "(Intercept)", report.Coefficients[0].Term)
	require.Len(t, report.OddsRatios, 1)
	assert.Equal(t, "danceability", report.OddsRatios[0].Term)

	assert.Equal(t, 12, report.Confusion.Total())
	assert.GreaterOrEqual(t, report.Accuracy, 0.0)
	assert.LessOrEqual(t, report.Accuracy, 1.0)
	assert.Len(t, report.Predictions, 12)

	require.Len(t, report.FeatureTests, 3)
	assert.Equal(t, "danceability", report.FeatureTests[0].Feature)
	assert.Empty(t, report.DegenerateFeatures)

	require.Len(t, report.Trends, 4)
	assert.Equal(t, 1990, report.Trends[0].Year)
}

func TestRunOnIsReproducible(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.Predictors = []string{"danceability"}
	songs := syntheticSongs()

	r := New(cfg, nil)
	first, err := r.RunOn(context.Background(), songs)
	require.NoError(t, err)
	second, err := r.RunOn(context.Background(), songs)
	require.NoError(t, err)

	assert.Equal(t, first.Coefficients, second.Coefficients)
	assert.Equal(t, first.Confusion, second.Confusion)
	assert.Equal(t, first.Accuracy, second.Accuracy)
}
