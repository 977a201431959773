package model

import (
	"sort"
	"time"
)

// RepoSignal is one row of the market signals snapshot: live metadata for a
// tracked ecosystem repository joined with its tutorial coverage.
type RepoSignal struct {
	// Repo is the owner/name form of the tracked repository.
	Repo string `json:"repo"`

	// RepoURL is the browsable repository URL.
	RepoURL string `json:"repo_url"`

	// TutorialPath is the corpus-relative path of the covering tutorial.
	TutorialPath string `json:"tutorial_path"`

	// TutorialLabel is the display label of the covering tutorial.
	TutorialLabel string `json:"tutorial_label"`

	// Why is a one-line editorial note on why the repository is tracked.
	Why string `json:"why"`

	// Stars is the stargazer count.
	Stars int `json:"stars"`

	// Forks is the fork count.
	Forks int `json:"forks"`

	// OpenIssues is the open issue count.
	OpenIssues int `json:"open_issues"`

	// PushedAt is the most recent push timestamp.
	PushedAt time.Time `json:"pushed_at"`

	// PushedDate is PushedAt formatted as YYYY-MM-DD.
	PushedDate string `json:"pushed_date"`

	// DaysSincePush is the age of the last push in whole days.
	DaysSincePush int `json:"days_since_push"`
}

// SignalsSnapshot is the full market signals document.
type SignalsSnapshot struct {
	// GeneratedAt is the UTC generation timestamp.
	GeneratedAt time.Time `json:"generated_at_utc"`

	// GeneratedOn is the generation date as YYYY-MM-DD.
	GeneratedOn string `json:"generated_on"`

	// TrackedRepositoryCount is the number of signals in the snapshot.
	TrackedRepositoryCount int `json:"tracked_repository_count"`

	// Signals holds one row per tracked repository, sorted by SortSignals.
	Signals []RepoSignal `json:"signals"`
}

// NewSignalsSnapshot sorts the signals and wraps them with generation
// metadata.
func NewSignalsSnapshot(signals []RepoSignal) *SignalsSnapshot {
	SortSignals(signals)
	now := time.Now().UTC()
	return &SignalsSnapshot{
		GeneratedAt:            now,
		GeneratedOn:            now.Format("2006-01-02"),
		TrackedRepositoryCount: len(signals),
		Signals:                signals,
	}
}

// SortSignals orders signals by stars descending, then by recency of last
// push (fewer days first), then by repo name ascending as the final
// tie-break so the snapshot is reproducible.
func SortSignals(signals []RepoSignal) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Stars != signals[j].Stars {
			return signals[i].Stars > signals[j].Stars
		}
		if signals[i].DaysSincePush != signals[j].DaysSincePush {
			return signals[i].DaysSincePush < signals[j].DaysSincePush
		}
		return signals[i].Repo < signals[j].Repo
	})
}
