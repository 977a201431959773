// Package drift compares repository snapshots between two verification
// runs and reports what changed: star and fork movement, archive flips,
// fetch status transitions, and repositories that appeared or disappeared
// from the corpus.
package drift
