package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"hitpulse/internal/dataset"
)

// Partition is a stratified train/test split of the labeled table.
// Train and test are disjoint and together contain every labeled
// record exactly once, in original table order.
type Partition struct {
	Train      []dataset.LabeledSong
	Test       []dataset.LabeledSong
	Proportion float64
	Seed       int64
}

// Split draws a stratified partition: within each class the row
// indices are shuffled by a rand.New(rand.NewSource(seed)) generator
// (classes visited in canonical order) and the first
// round(proportion*n) go to train. Same inputs, same partition.
// Unlabeled records are excluded; they cannot be stratified.
func Split(songs []dataset.LabeledSong, proportion float64, seed int64) (Partition, error) {
	if proportion <= 0 || proportion >= 1 {
		return Partition{}, fmt.Errorf("classifier: train proportion must be in (0,1), got %v", proportion)
	}

	byClass := map[dataset.HitClass][]int{}
	for i, s := range songs {
		if s.Labeled {
			byClass[s.Class] = append(byClass[s.Class], i)
		}
	}

	rng := rand.New(rand.NewSource(seed))

	inTrain := make(map[int]bool)
	for _, class := range dataset.Classes() {
		indices := append([]int(nil), byClass[class]...)
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nTrain := int(math.Round(proportion * float64(len(indices))))
		for _, idx := range indices[:nTrain] {
			inTrain[idx] = true
		}
	}

	p := Partition{Proportion: proportion, Seed: seed}
	labeled := make([]int, 0, len(songs))
	for _, indices := range byClass {
		labeled = append(labeled, indices...)
	}
	sort.Ints(labeled)

	for _, idx := range labeled {
		if inTrain[idx] {
			p.Train = append(p.Train, songs[idx])
		} else {
			p.Test = append(p.Test, songs[idx])
		}
	}
	return p, nil
}

// ClassRatio is the share of Super-Hit records in a partition slice.
func ClassRatio(songs []dataset.LabeledSong) float64 {
	if len(songs) == 0 {
		return 0
	}
	super := 0
	for _, s := range songs {
		if s.Class == dataset.SuperHit {
			super++
		}
	}
	return float64(super) / float64(len(songs))
}
