// Package dataset loads the song audio-feature table and derives the
// hit classification label.
//
// The loader reads a comma-separated file with a header row into typed
// Song records. Column names are normalized to lowercase-with-underscores
// on load ("Duration MS" becomes "duration_ms"), and missing numeric
// cells are carried as NaN rather than zero so that downstream
// consumers can decide how to treat missingness.
//
// Labeling is a pure function of three features: a song is a Super-Hit
// when danceability + energy + valence exceeds the configured threshold
// (strictly), otherwise a Regular Hit. Records with a missing input
// stay unlabeled; the label is never silently defaulted.
//
// The two classes carry a fixed order, Regular Hit before Super-Hit.
// Super-Hit is the positive class for every downstream consumer.
package dataset
