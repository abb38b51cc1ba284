package dataset

import (
	"math"

	"github.com/google/uuid"
)

// HitClass is the binary outcome label. The zero value is RegularHit;
// the declaration order is the canonical class order used for
// stratification, confusion matrices and positive-class selection.
type HitClass int

const (
	// RegularHit is the negative class.
	RegularHit HitClass = iota
	// SuperHit is the positive class.
	SuperHit
)

// Classes lists both classes in canonical order.
func Classes() [2]HitClass {
	return [2]HitClass{RegularHit, SuperHit}
}

// String returns the report label for the class.
func (c HitClass) String() string {
	switch c {
	case RegularHit:
		return "Regular Hit"
	case SuperHit:
		return "Super-Hit"
	default:
		return "unknown"
	}
}

// Song is a single row of the audio-feature table. Immutable once loaded.
type Song struct {
	ID           uuid.UUID
	Danceability float64
	Energy       float64
	Loudness     float64
	Speechiness  float64
	Acousticness float64
	DurationMs   float64
	Liveness     float64
	Valence      float64
	Tempo        float64
	Year         int
}

// FeatureColumns lists the numeric feature columns in table order.
func FeatureColumns() []string {
	return []string{
		"danceability", "energy", "loudness", "speechiness",
		"acousticness", "duration_ms", "liveness", "valence", "tempo",
	}
}

// Feature returns the named feature value. The second return is false
// for unknown feature names, not for NaN values.
func (s Song) Feature(name string) (float64, bool) {
	switch name {
	case "danceability":
		return s.Danceability, true
	case "energy":
		return s.Energy, true
	case "loudness":
		return s.Loudness, true
	case "speechiness":
		return s.Speechiness, true
	case "acousticness":
		return s.Acousticness, true
	case "duration_ms":
		return s.DurationMs, true
	case "liveness":
		return s.Liveness, true
	case "valence":
		return s.Valence, true
	case "tempo":
		return s.Tempo, true
	default:
		return math.NaN(), false
	}
}

// LabeledSong is a Song plus its derived hit class. Labeled is false
// when any of the three labeling inputs was missing.
type LabeledSong struct {
	Song
	Class   HitClass
	Labeled bool
}

// ClassCount is one row of the class frequency table.
type ClassCount struct {
	Class HitClass
	Count int
}
