package distribution

import (
	"math"

	"github.com/google/uuid"

	"hitpulse/internal/dataset"
)

// Observation is one (record, feature) pair of the long-form view.
type Observation struct {
	RecordID uuid.UUID
	Feature  string
	Value    float64
	Class    dataset.HitClass
}

// LongForm reshapes the labeled table to one row per record and
// feature, for per-class density diagnostics. Unlabeled records and
// missing values are left out; the input table is not touched.
func LongForm(songs []dataset.LabeledSong, features []string) []Observation {
	obs := make([]Observation, 0, len(songs)*len(features))
	for _, s := range songs {
		if !s.Labeled {
			continue
		}
		for _, feature := range features {
			v, ok := s.Feature(feature)
			if !ok || math.IsNaN(v) {
				continue
			}
			obs = append(obs, Observation{
				RecordID: s.ID,
				Feature:  feature,
				Value:    v,
				Class:    s.Class,
			})
		}
	}
	return obs
}
