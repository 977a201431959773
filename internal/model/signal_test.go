package model

import (
	"testing"
)

// TestSortSignals tests the snapshot ordering rules.
func TestSortSignals(t *testing.T) {
	t.Parallel()

	signals := []RepoSignal{
		{Repo: "b/small", Stars: 100, DaysSincePush: 2},
		{Repo: "a/stale", Stars: 5000, DaysSincePush: 30},
		{Repo: "c/fresh", Stars: 5000, DaysSincePush: 1},
		{Repo: "b/tied", Stars: 5000, DaysSincePush: 1},
	}

	SortSignals(signals)

	want := []string{"b/tied", "c/fresh", "a/stale", "b/small"}
	for i, repo := range want {
		if signals[i].Repo != repo {
			t.Errorf("signals[%d] = %s, want %s", i, signals[i].Repo, repo)
		}
	}
}

// TestNewSignalsSnapshot tests snapshot wrapping.
func TestNewSignalsSnapshot(t *testing.T) {
	t.Parallel()

	snap := NewSignalsSnapshot([]RepoSignal{
		{Repo: "a/one", Stars: 10},
		{Repo: "b/two", Stars: 20},
	})

	if snap.TrackedRepositoryCount != 2 {
		t.Errorf("TrackedRepositoryCount = %d, want 2", snap.TrackedRepositoryCount)
	}
	if snap.Signals[0].Repo != "b/two" {
		t.Errorf("Signals[0] = %s, want b/two (sorted by stars)", snap.Signals[0].Repo)
	}
	if snap.GeneratedOn == "" || snap.GeneratedAt.IsZero() {
		t.Error("generation metadata not populated")
	}
}
