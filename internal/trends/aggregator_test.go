package trends

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitpulse/internal/dataset"
)

func song(year int, dance, energy, valence float64) dataset.LabeledSong {
	return dataset.LabeledSong{
		Song: dataset.Song{
			Year: year, Danceability: dance, Energy: energy, Valence: valence,
		},
	}
}

func TestAggregateSingleYear(t *testing.T) {
	songs := []dataset.LabeledSong{
		song(1999, 0.2, 0.4, 0.6),
		song(1999, 0.4, 0.6, 0.8),
		song(1999, 0.6, 0.8, 1.0),
	}

	rows := Aggregate(songs)
	require.Len(t, rows, 1)

	assert.Equal(t, 1999, rows[0].Year)
	assert.InDelta(t, 0.4, rows[0].AvgDanceability, 1e-12)
	assert.InDelta(t, 0.6, rows[0].AvgEnergy, 1e-12)
	assert.InDelta(t, 0.8, rows[0].AvgValence, 1e-12)
}

func TestAggregateOrdersYearsAscending(t *testing.T) {
	songs := []dataset.LabeledSong{
		song(2010, 0.5, 0.5, 0.5),
		song(1995, 0.5, 0.5, 0.5),
		song(2003, 0.5, 0.5, 0.5),
	}

	rows := Aggregate(songs)
	require.Len(t, rows, 3)
	assert.Equal(t, 1995, rows[0].Year)
	assert.Equal(t, 2003, rows[1].Year)
	assert.Equal(t, 2010, rows[2].Year)
}

func TestAggregateIgnoresMissingPerFeature(t *testing.T) {
	// A missing energy must not exclude the row from the danceability
	// mean.
	songs := []dataset.LabeledSong{
		song(2001, 0.2, math.NaN(), 0.3),
		song(2001, 0.4, 0.8, math.NaN()),
	}

	rows := Aggregate(songs)
	require.Len(t, rows, 1)

	assert.InDelta(t, 0.3, rows[0].AvgDanceability, 1e-12)
	assert.InDelta(t, 0.8, rows[0].AvgEnergy, 1e-12)
	assert.InDelta(t, 0.3, rows[0].AvgValence, 1e-12)
}

func TestAggregateAllMissingIsUndefined(t *testing.T) {
	songs := []dataset.LabeledSong{
		song(2001, math.NaN(), 0.8, 0.3),
		song(2001, math.NaN(), 0.6, 0.5),
	}

	rows := Aggregate(songs)
	require.Len(t, rows, 1)

	assert.True(t, math.IsNaN(rows[0].AvgDanceability), "undefined mean must stay NaN, not zero")
	assert.InDelta(t, 0.7, rows[0].AvgEnergy, 1e-12)
}
