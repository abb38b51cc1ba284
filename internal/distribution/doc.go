// Package distribution characterizes how audio features differ between
// the two hit classes.
//
// For each requested feature it computes the per-class means and a
// Welch two-sample t-test (unequal variances) of Super-Hit against
// Regular Hit values, then flags significance at the configured level.
// Features whose comparison is degenerate — an empty class or a class
// with zero variance — are reported as errors rather than silently
// producing NaN, and never stop the remaining features.
//
// The package also offers a long-form reshape of the table (one row
// per record and feature) as a read-only diagnostic view for per-class
// density comparison. Nothing else consumes it.
package distribution
