package drift

import (
	"sort"

	"github.com/johnxie/sourcedrift/internal/database"
	"github.com/johnxie/sourcedrift/internal/model"
)

// RepoDelta describes how one repository's metrics moved between two runs.
type RepoDelta struct {
	// RepoKey is the case-insensitive canonical repository key.
	RepoKey string `json:"repo_key"`

	// Repo is the owner/name form for display.
	Repo string `json:"repo"`

	// PrevStars and CurrStars are the stargazer counts in each run.
	PrevStars int `json:"prev_stars"`
	CurrStars int `json:"curr_stars"`

	// StarsDelta is CurrStars - PrevStars.
	StarsDelta int `json:"stars_delta"`

	// PrevForks and CurrForks are the fork counts in each run.
	PrevForks int `json:"prev_forks"`
	CurrForks int `json:"curr_forks"`

	// ForksDelta is CurrForks - PrevForks.
	ForksDelta int `json:"forks_delta"`
}

// StatusChange describes a repository whose fetch status changed between
// runs, e.g. ok -> not_found for a deleted repository.
type StatusChange struct {
	// RepoKey is the case-insensitive canonical repository key.
	RepoKey string `json:"repo_key"`

	// Repo is the owner/name form for display.
	Repo string `json:"repo"`

	// From is the status in the earlier run.
	From model.FetchStatus `json:"from"`

	// To is the status in the later run.
	To model.FetchStatus `json:"to"`
}

// Diff is the full comparison between two runs.
type Diff struct {
	// PrevRunID and CurrRunID identify the compared runs.
	PrevRunID int64 `json:"prev_run_id"`
	CurrRunID int64 `json:"curr_run_id"`

	// PrevDate and CurrDate are the report dates (YYYY-MM-DD) of each run.
	PrevDate string `json:"prev_date"`
	CurrDate string `json:"curr_date"`

	// Deltas holds one entry per repository present in both runs whose
	// stars or forks moved, ordered by absolute star movement descending
	// with repository key as the tie-break.
	Deltas []RepoDelta `json:"deltas"`

	// NewlyArchived lists repositories that flipped to archived between
	// the runs.
	NewlyArchived []string `json:"newly_archived,omitempty"`

	// StatusChanges lists repositories whose fetch status changed.
	StatusChanges []StatusChange `json:"status_changes,omitempty"`

	// Added lists repositories present only in the later run.
	Added []string `json:"added,omitempty"`

	// Removed lists repositories present only in the earlier run.
	Removed []string `json:"removed,omitempty"`
}

// HasChanges reports whether the diff contains any movement at all.
func (d *Diff) HasChanges() bool {
	return len(d.Deltas) > 0 ||
		len(d.NewlyArchived) > 0 ||
		len(d.StatusChanges) > 0 ||
		len(d.Added) > 0 ||
		len(d.Removed) > 0
}

// Compare diffs the snapshots of two runs. The prev snapshots must come
// from the earlier run and curr from the later one; Compare does not
// reorder them.
//
// Ordering is deterministic: deltas sort by absolute star movement
// descending then by repository key, and all name lists sort ascending.
func Compare(prevRun, currRun database.RunSummary, prev, curr map[string]database.RepoSnapshot) *Diff {
	diff := &Diff{
		PrevRunID: prevRun.ID,
		CurrRunID: currRun.ID,
		PrevDate:  prevRun.GeneratedOn,
		CurrDate:  currRun.GeneratedOn,
	}

	for key, currSnap := range curr {
		prevSnap, ok := prev[key]
		if !ok {
			diff.Added = append(diff.Added, currSnap.Repo)
			continue
		}

		if prevSnap.Status != currSnap.Status {
			diff.StatusChanges = append(diff.StatusChanges, StatusChange{
				RepoKey: key,
				Repo:    currSnap.Repo,
				From:    prevSnap.Status,
				To:      currSnap.Status,
			})
		}

		if !prevSnap.Archived && currSnap.Archived {
			diff.NewlyArchived = append(diff.NewlyArchived, currSnap.Repo)
		}

		// Metric deltas only make sense when both fetches succeeded;
		// a failed fetch reports zeros, not real counts.
		if !prevSnap.Status.OK() || !currSnap.Status.OK() {
			continue
		}

		if prevSnap.Stars == currSnap.Stars && prevSnap.Forks == currSnap.Forks {
			continue
		}

		diff.Deltas = append(diff.Deltas, RepoDelta{
			RepoKey:    key,
			Repo:       currSnap.Repo,
			PrevStars:  prevSnap.Stars,
			CurrStars:  currSnap.Stars,
			StarsDelta: currSnap.Stars - prevSnap.Stars,
			PrevForks:  prevSnap.Forks,
			CurrForks:  currSnap.Forks,
			ForksDelta: currSnap.Forks - prevSnap.Forks,
		})
	}

	for key, prevSnap := range prev {
		if _, ok := curr[key]; !ok {
			diff.Removed = append(diff.Removed, prevSnap.Repo)
		}
	}

	sort.Slice(diff.Deltas, func(i, j int) bool {
		a, b := abs(diff.Deltas[i].StarsDelta), abs(diff.Deltas[j].StarsDelta)
		if a != b {
			return a > b
		}
		return diff.Deltas[i].RepoKey < diff.Deltas[j].RepoKey
	})
	sort.Slice(diff.StatusChanges, func(i, j int) bool {
		return diff.StatusChanges[i].RepoKey < diff.StatusChanges[j].RepoKey
	})
	sort.Strings(diff.NewlyArchived)
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)

	return diff
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
