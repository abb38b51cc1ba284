// Package classifier fits and evaluates a binary logistic regression
// of hit class on a fixed set of audio-feature predictors.
//
// The workflow mirrors an out-of-sample evaluation protocol:
//
//  1. Split the labeled table into stratified train/test partitions.
//     The split is a deterministic function of (table, proportion,
//     seed); the PRNG contract is Go's math/rand generator seeded
//     explicitly, so the same seed always reproduces the partition.
//  2. Fit the model on the train partition by iteratively reweighted
//     least squares. Super-Hit is the positive class.
//  3. Interpret the coefficients as odds ratios with Wald confidence
//     intervals.
//  4. Predict Super-Hit probabilities for the test partition and
//     threshold at 0.5.
//  5. Evaluate with a 2x2 confusion matrix (predicted rows, actual
//     columns, canonical class order) and accuracy.
//
// A Model moves through Unfit -> Fit -> Evaluated. Interpretation and
// prediction require a fitted model; fitting twice on the same inputs
// is idempotent because the optimizer is deterministic.
package classifier
