package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Danceability,Energy,Loudness,Speechiness,Acousticness,Duration MS,Liveness,Valence,Tempo,Year
0.9,0.8,-5.2,0.05,0.12,210000,0.1,0.7,120.5,2001
0.2,,-- oops --,0.03,0.80,180000,0.3,0.4,90.0,1999
`

func TestLoadFrom(t *testing.T) {
	songs, err := LoadFrom(strings.NewReader(sampleCSV), "inline")
	require.NoError(t, err)
	require.Len(t, songs, 2)

	first := songs[0]
	assert.Equal(t, 0.9, first.Danceability)
	assert.Equal(t, -5.2, first.Loudness)
	assert.Equal(t, 210000.0, first.DurationMs)
	assert.Equal(t, 2001, first.Year)
	assert.NotEqual(t, songs[0].ID, songs[1].ID)

	// Empty and unparseable cells stay NaN, never zero.
	second := songs[1]
	assert.True(t, math.IsNaN(second.Energy))
	assert.True(t, math.IsNaN(second.Loudness))
	assert.Equal(t, 1999, second.Year)
}

func TestLoadFromMissingColumns(t *testing.T) {
	csv := "danceability,energy,year\n0.5,0.5,2000\n"

	_, err := LoadFrom(strings.NewReader(csv), "inline")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Missing, "loudness")
	assert.Contains(t, loadErr.Missing, "valence")
	assert.NotContains(t, loadErr.Missing, "year")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	songs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, songs, 2)
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Danceability", "danceability"},
		{"Duration MS", "duration_ms"},
		{" Duration - MS ", "duration_ms"},
		{"duration.ms", "duration_ms"},
		{"year", "year"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeColumn(tt.in), tt.in)
	}
}

func TestFeatureAccessor(t *testing.T) {
	s := Song{Tempo: 120.5, Loudness: -3.1}

	v, ok := s.Feature("tempo")
	require.True(t, ok)
	assert.Equal(t, 120.5, v)

	v, ok = s.Feature("loudness")
	require.True(t, ok)
	assert.Equal(t, -3.1, v)

	_, ok = s.Feature("no_such_feature")
	assert.False(t, ok)
}
