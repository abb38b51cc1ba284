package exporter

import (
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hitpulse/internal/classifier"
	"hitpulse/internal/dataset"
	"hitpulse/internal/distribution"
	"hitpulse/internal/pipeline"
	"hitpulse/internal/trends"
)

func sampleReport(t *testing.T) *pipeline.Report {
	t.Helper()

	report := &pipeline.Report{
		ClassFrequency: []dataset.ClassCount{
			{Class: dataset.RegularHit, Count: 3},
			{Class: dataset.SuperHit, Count: 2},
		},
		FeatureTests: []distribution.TestResult{
			{Feature: "danceability", MeanSuperHit: 0.8, MeanRegular: 0.2,
				TStatistic: 5.1, DF: 7.3, PValue: 0.001, Significant: true},
		},
		DegenerateFeatures: []*distribution.DegenerateComparisonError{
			{Feature: "energy", Class: dataset.SuperHit, Reason: "zero variance"},
		},
		Coefficients: []classifier.Coefficient{
			{Term: "(Intercept)", Estimate: -1.5, StdErr: 0.3, Z: -5, PValue: 0.0001},
			{Term: "danceability", Estimate: 2.0, StdErr: 0.5, Z: 4, PValue: 0.0002},
		},
		OddsRatios: []classifier.OddsRatio{
			{Term: "danceability", Estimate: 7.389, ConfLow: 2.77, ConfHigh: 19.7},
		},
		Accuracy: 0.75,
		Trends: []trends.YearlyTrend{
			{Year: 2000, AvgDanceability: 0.5, AvgEnergy: math.NaN(), AvgValence: 0.25},
		},
	}
	report.Confusion.Add(dataset.SuperHit, dataset.SuperHit)
	report.Confusion.Add(dataset.RegularHit, dataset.RegularHit)
	report.Confusion.Add(dataset.RegularHit, dataset.RegularHit)
	report.Confusion.Add(dataset.SuperHit, dataset.RegularHit)
	return report
}

func TestTablesContent(t *testing.T) {
	tables := Tables(sampleReport(t))

	byName := make(map[string]Table, len(tables))
	for _, table := range tables {
		byName[table.Name] = table
	}

	freq := byName["class_frequency"]
	require.Len(t, freq.Records, 2)
	assert.Equal(t, []string{"Regular Hit", "3"}, freq.Records[0])
	assert.Equal(t, []string{"Super-Hit", "2"}, freq.Records[1])

	tests := byName["feature_tests"]
	require.Len(t, tests.Records, 2)
	assert.Equal(t, "Significant", tests.Records[0][6])
	// The degenerate feature is flagged, not silently dropped.
	assert.Equal(t, "energy", tests.Records[1][0])
	assert.Equal(t, "NA", tests.Records[1][5])
	assert.Contains(t, tests.Records[1][6], "zero variance")

	confusion := byName["confusion_matrix"]
	require.Len(t, confusion.Records, 2)
	assert.Equal(t, []string{"predicted", "actual Regular Hit", "actual Super-Hit"}, confusion.Headers)
	assert.Equal(t, []string{"Regular Hit", "2", "0"}, confusion.Records[0])
	assert.Equal(t, []string{"Super-Hit", "1", "1"}, confusion.Records[1])

	trendsTable := byName["yearly_trends"]
	require.Len(t, trendsTable.Records, 1)
	// Undefined mean comes out as NA, not zero.
	assert.Equal(t, []string{"2000", "0.5", "NA", "0.25"}, trendsTable.Records[0])

	summary := byName["summary"]
	assert.Equal(t, []string{"accuracy", "0.75"}, summary.Records[0])
	assert.Equal(t, []string{"classifier_status", "ok"}, summary.Records[1])
}

func TestTablesClassifierFailure(t *testing.T) {
	report := sampleReport(t)
	report.ClassifierErr = errors.New("boom")

	byName := make(map[string]Table)
	for _, table := range Tables(report) {
		byName[table.Name] = table
	}

	assert.Empty(t, byName["confusion_matrix"].Records)
	assert.Equal(t, []string{"accuracy", "NA"}, byName["summary"].Records[0])
	assert.Equal(t, []string{"classifier_status", "boom"}, byName["summary"].Records[1])
}

func TestWriteReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, WriteReport(w, sampleReport(t)))

	data, err := os.ReadFile(filepath.Join(dir, "feature_tests.csv"))
	require.NoError(t, err)

	// Strip the BOM before parsing.
	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3) // header + welch row + degenerate row
	assert.Equal(t, "feature", rows[0][0])
	assert.Equal(t, "danceability", rows[1][0])
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hit_report.xlsx")

	require.NoError(t, WriteWorkbook(path, sampleReport(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "class_frequency")
	assert.Contains(t, sheets, "yearly_trends")
	assert.NotContains(t, sheets, "Sheet1")

	cell, err := f.GetCellValue("yearly_trends", "C2")
	require.NoError(t, err)
	assert.Equal(t, "NA", cell)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "NA", formatFloat(math.NaN()))
	assert.Equal(t, "NA", formatFloat(math.Inf(1)))
	assert.Equal(t, "0.5", formatFloat(0.5))
	assert.Equal(t, "1", formatFloat(1.0))
}
