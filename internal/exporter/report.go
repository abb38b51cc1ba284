package exporter

import (
	"fmt"
	"strconv"

	"hitpulse/internal/dataset"
	"hitpulse/internal/pipeline"
)

// Table is one report table ready for rendering.
type Table struct {
	Name    string
	Headers []string
	Records [][]string
}

// Tables flattens the report into its output tables, in a stable
// order. Sections of failed branches come out empty, not missing.
func Tables(report *pipeline.Report) []Table {
	return []Table{
		classFrequencyTable(report),
		featureTestsTable(report),
		coefficientsTable(report),
		oddsRatiosTable(report),
		confusionTable(report),
		predictionsTable(report),
		trendsTable(report),
		summaryTable(report),
	}
}

// WriteReport writes every table as a CSV under the writer's base
// directory.
func WriteReport(w *CSVWriter, report *pipeline.Report) error {
	for _, table := range Tables(report) {
		if err := w.WriteTable(table.Name, table.Headers, table.Records); err != nil {
			return fmt.Errorf("export %s: %w", table.Name, err)
		}
	}
	return nil
}

func classFrequencyTable(report *pipeline.Report) Table {
	t := Table{Name: "class_frequency", Headers: []string{"hit_class", "count"}}
	for _, row := range report.ClassFrequency {
		t.Records = append(t.Records, []string{row.Class.String(), strconv.Itoa(row.Count)})
	}
	return t
}

// featureTestsTable lists the Welch results and, below them, the
// degenerate features: flagged, not silently omitted.
func featureTestsTable(report *pipeline.Report) Table {
	t := Table{
		Name: "feature_tests",
		Headers: []string{
			"feature", "mean_superhit", "mean_regular", "t_statistic", "df", "p_value", "significance",
		},
	}
	for _, res := range report.FeatureTests {
		significance := "Not Significant"
		if res.Significant {
			significance = "Significant"
		}
		t.Records = append(t.Records, []string{
			res.Feature,
			formatFloat(res.MeanSuperHit),
			formatFloat(res.MeanRegular),
			formatFloat(res.TStatistic),
			formatFloat(res.DF),
			formatFloat(res.PValue),
			significance,
		})
	}
	for _, deg := range report.DegenerateFeatures {
		t.Records = append(t.Records, []string{
			deg.Feature, "NA", "NA", "NA", "NA", "NA",
			fmt.Sprintf("Degenerate (%s: %s)", deg.Class, deg.Reason),
		})
	}
	return t
}

func coefficientsTable(report *pipeline.Report) Table {
	t := Table{
		Name:    "model_coefficients",
		Headers: []string{"term", "estimate", "std_error", "z_value", "p_value"},
	}
	for _, c := range report.Coefficients {
		t.Records = append(t.Records, []string{
			c.Term,
			formatFloat(c.Estimate),
			formatFloat(c.StdErr),
			formatFloat(c.Z),
			formatFloat(c.PValue),
		})
	}
	return t
}

func oddsRatiosTable(report *pipeline.Report) Table {
	t := Table{
		Name:    "odds_ratios",
		Headers: []string{"term", "odds_ratio", "conf_low", "conf_high"},
	}
	for _, r := range report.OddsRatios {
		t.Records = append(t.Records, []string{
			r.Term,
			formatFloat(r.Estimate),
			formatFloat(r.ConfLow),
			formatFloat(r.ConfHigh),
		})
	}
	return t
}

// confusionTable renders predicted classes as rows and actual classes
// as columns, both in canonical order.
func confusionTable(report *pipeline.Report) Table {
	classes := dataset.Classes()

	headers := []string{"predicted"}
	for _, actual := range classes {
		headers = append(headers, "actual "+actual.String())
	}

	t := Table{Name: "confusion_matrix", Headers: headers}
	if report.ClassifierErr != nil {
		return t
	}
	for _, predicted := range classes {
		record := []string{predicted.String()}
		for _, actual := range classes {
			record = append(record, strconv.Itoa(report.Confusion.Counts[predicted][actual]))
		}
		t.Records = append(t.Records, record)
	}
	return t
}

func predictionsTable(report *pipeline.Report) Table {
	t := Table{
		Name:    "predictions",
		Headers: []string{"record_id", "pred_prob", "pred_class", "actual_class"},
	}
	for _, p := range report.Predictions {
		t.Records = append(t.Records, []string{
			p.RecordID.String(),
			formatFloat(p.Prob),
			p.Class.String(),
			p.Actual.String(),
		})
	}
	return t
}

func trendsTable(report *pipeline.Report) Table {
	t := Table{
		Name:    "yearly_trends",
		Headers: []string{"year", "avg_danceability", "avg_energy", "avg_valence"},
	}
	for _, row := range report.Trends {
		t.Records = append(t.Records, []string{
			strconv.Itoa(row.Year),
			formatFloat(row.AvgDanceability),
			formatFloat(row.AvgEnergy),
			formatFloat(row.AvgValence),
		})
	}
	return t
}

// summaryTable carries the scalar results and each branch's outcome.
func summaryTable(report *pipeline.Report) Table {
	t := Table{Name: "summary", Headers: []string{"metric", "value"}}

	if report.ClassifierErr != nil {
		t.Records = append(t.Records,
			[]string{"accuracy", "NA"},
			[]string{"classifier_status", report.ClassifierErr.Error()},
		)
	} else {
		t.Records = append(t.Records,
			[]string{"accuracy", formatFloat(report.Accuracy)},
			[]string{"classifier_status", "ok"},
		)
	}
	t.Records = append(t.Records,
		[]string{"features_tested", strconv.Itoa(len(report.FeatureTests))},
		[]string{"degenerate_features", strconv.Itoa(len(report.DegenerateFeatures))},
		[]string{"years_covered", strconv.Itoa(len(report.Trends))},
	)
	return t
}
