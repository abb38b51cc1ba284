// Package trends aggregates per-year feature averages for
// longitudinal reporting.
package trends

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"hitpulse/internal/dataset"
)

// YearlyTrend is one year's feature averages. A feature with no
// observed values in a year is NaN, never zero.
type YearlyTrend struct {
	Year            int
	AvgDanceability float64
	AvgEnergy       float64
	AvgValence      float64
}

// Aggregate groups the table by year and averages danceability, energy
// and valence per group, ignoring missing values per feature
// independently. Rows are returned in ascending year order; every
// record contributes regardless of label or partition.
func Aggregate(songs []dataset.LabeledSong) []YearlyTrend {
	type accumulator struct {
		dance, energy, valence []float64
	}

	groups := map[int]*accumulator{}
	for _, s := range songs {
		acc := groups[s.Year]
		if acc == nil {
			acc = &accumulator{}
			groups[s.Year] = acc
		}
		if !math.IsNaN(s.Danceability) {
			acc.dance = append(acc.dance, s.Danceability)
		}
		if !math.IsNaN(s.Energy) {
			acc.energy = append(acc.energy, s.Energy)
		}
		if !math.IsNaN(s.Valence) {
			acc.valence = append(acc.valence, s.Valence)
		}
	}

	years := make([]int, 0, len(groups))
	for year := range groups {
		years = append(years, year)
	}
	sort.Ints(years)

	rows := make([]YearlyTrend, 0, len(years))
	for _, year := range years {
		acc := groups[year]
		rows = append(rows, YearlyTrend{
			Year:            year,
			AvgDanceability: meanOrNaN(acc.dance),
			AvgEnergy:       meanOrNaN(acc.energy),
			AvgValence:      meanOrNaN(acc.valence),
		})
	}
	return rows
}

func meanOrNaN(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}
