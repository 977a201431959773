// Package database provides SQLite-based persistence for verification runs.
//
// Each verification run can be saved as a full JSON report plus one
// snapshot row per fetched repository. The snapshot rows are what the
// drift command diffs between runs: star and fork deltas, archive flips,
// and repositories that stopped resolving.
//
// The implementation uses modernc.org/sqlite, a pure-Go SQLite driver
// that requires no CGO, making cross-compilation straightforward.
package database
