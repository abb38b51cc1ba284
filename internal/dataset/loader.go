package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
)

// requiredColumns are the columns the loader insists on, after name
// normalization. Extra columns are carried by gota and ignored here.
var requiredColumns = append(FeatureColumns(), "year")

// LoadError reports an unreadable or malformed source. It aborts the
// whole pipeline; nothing downstream runs without the table.
type LoadError struct {
	Source  string
	Missing []string
	Err     error
}

func (e *LoadError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("dataset: %s is missing columns %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("dataset: cannot load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the song table from a CSV file on disk.
func Load(path string) ([]Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	return LoadFrom(f, path)
}

// LoadFrom reads the song table from r. The source name is only used
// in error messages and logs.
func LoadFrom(r io.Reader, source string) ([]Song, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.Float),
		dataframe.NaNValues([]string{"", "NA", "NaN", "null"}),
	)
	if df.Err != nil {
		return nil, &LoadError{Source: source, Err: df.Err}
	}

	df = normalizeColumns(df)

	if missing := missingColumns(df); len(missing) > 0 {
		return nil, &LoadError{Source: source, Missing: missing}
	}

	songs := materialize(df)

	slog.Info("loaded song table",
		slog.String("source", source),
		slog.Int("rows", len(songs)),
		slog.Int("columns", len(df.Names())))

	return songs, nil
}

// normalizeColumns rewrites every header to the canonical
// lowercase-with-underscores form.
func normalizeColumns(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		if norm := NormalizeColumn(name); norm != name {
			df = df.Rename(norm, name)
		}
	}
	return df
}

// NormalizeColumn lowercases a header and collapses spaces, dashes and
// dots into single underscores.
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return '_'
		}
		return r
	}, name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return strings.Trim(name, "_")
}

func missingColumns(df dataframe.DataFrame) []string {
	have := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		have[name] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// materialize turns the dataframe into typed records. Unparseable or
// empty cells come back from gota as NaN and stay NaN; type coercion
// beyond that is the consumers' problem.
func materialize(df dataframe.DataFrame) []Song {
	cols := make(map[string][]float64, len(requiredColumns))
	for _, col := range requiredColumns {
		cols[col] = df.Col(col).Float()
	}

	songs := make([]Song, df.Nrow())
	for i := range songs {
		year := 0
		if y := cols["year"][i]; !math.IsNaN(y) {
			year = int(math.Round(y))
		}
		songs[i] = Song{
			ID:           uuid.New(),
			Danceability: cols["danceability"][i],
			Energy:       cols["energy"][i],
			Loudness:     cols["loudness"][i],
			Speechiness:  cols["speechiness"][i],
			Acousticness: cols["acousticness"][i],
			DurationMs:   cols["duration_ms"][i],
			Liveness:     cols["liveness"][i],
			Valence:      cols["valence"][i],
			Tempo:        cols["tempo"][i],
			Year:         year,
		}
	}
	return songs
}
