package dataset

import "math"

// DefaultSuperHitThreshold is the sum of danceability, energy and
// valence a song must strictly exceed to count as a Super-Hit.
const DefaultSuperHitThreshold = 2.0

// Label derives the hit class for every song. A record whose
// danceability, energy or valence is NaN comes back with Labeled set
// to false; sums exactly at the threshold are Regular Hits.
func Label(songs []Song, threshold float64) []LabeledSong {
	labeled := make([]LabeledSong, len(songs))
	for i, s := range songs {
		labeled[i] = LabeledSong{Song: s}

		sum := s.Danceability + s.Energy + s.Valence
		if math.IsNaN(sum) {
			continue
		}

		labeled[i].Labeled = true
		if sum > threshold {
			labeled[i].Class = SuperHit
		} else {
			labeled[i].Class = RegularHit
		}
	}
	return labeled
}

// ClassFrequency counts labeled records per class, in canonical class
// order. Unlabeled records are not counted.
func ClassFrequency(songs []LabeledSong) []ClassCount {
	counts := [2]int{}
	for _, s := range songs {
		if s.Labeled {
			counts[s.Class]++
		}
	}

	freq := make([]ClassCount, 0, len(Classes()))
	for _, class := range Classes() {
		freq = append(freq, ClassCount{Class: class, Count: counts[class]})
	}
	return freq
}
