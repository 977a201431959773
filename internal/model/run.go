package model

import (
	"sort"
	"time"
)

// Run is the accumulated state of one verification run. Pipeline steps fill
// it in sequence: extraction populates Documents, resolution populates
// Resolutions and Ambiguous, fetching populates Metadata, verification
// populates Records, and summarization produces the final Report.
//
// Design decision: We use a single mutable state struct threaded through the
// pipeline rather than passing intermediate slices between functions. This
// keeps step signatures uniform, simplifies logging, and lets partial state
// survive a cancelled run for diagnostics.
type Run struct {
	// CorpusRoot is the scanned corpus directory.
	CorpusRoot string `json:"corpus_root"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Documents holds every scanned document, including those with zero
	// references.
	Documents []TutorialDocument `json:"documents"`

	// Resolutions maps each distinct raw reference string to its resolution.
	// Canonicalization is a pure function of the raw string, so one entry
	// serves every occurrence across documents.
	Resolutions map[string]Resolved `json:"resolutions"`

	// Ambiguous holds references excluded from the canonical set because
	// they matched conflicting alias entries.
	Ambiguous []AmbiguousReference `json:"ambiguous,omitempty"`

	// Metadata maps canonical repository keys to their fetched metadata.
	// Exactly one entry exists per unique canonical repository.
	Metadata map[string]*RepoMetadata `json:"metadata"`

	// Records holds one classified record per well-formed, unambiguous
	// SourceReference.
	Records []VerificationRecord `json:"records"`

	// Report is the final aggregated report, set by the summarize step.
	Report *Report `json:"report,omitempty"`

	// TimedOut is true when the run-level deadline expired before all
	// fetches completed.
	TimedOut bool `json:"timed_out,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`
}

// NewRun creates an empty Run for the given corpus root.
func NewRun(corpusRoot string) *Run {
	return &Run{
		CorpusRoot:  corpusRoot,
		StartedAt:   time.Now().UTC(),
		Resolutions: make(map[string]Resolved),
		Metadata:    make(map[string]*RepoMetadata),
	}
}

// UniqueCanonicalRepos returns the distinct canonical repositories across
// all resolutions, sorted by key for deterministic fetch scheduling.
func (r *Run) UniqueCanonicalRepos() []CanonicalRepo {
	seen := make(map[string]CanonicalRepo, len(r.Resolutions))
	for _, res := range r.Resolutions {
		seen[res.Canonical.Key()] = res.Canonical
	}

	repos := make([]CanonicalRepo, 0, len(seen))
	for _, repo := range seen {
		repos = append(repos, repo)
	}
	sort.Slice(repos, func(i, j int) bool {
		return repos[i].Key() < repos[j].Key()
	})
	return repos
}

// ReferenceCount returns the total number of extracted references,
// malformed ones included.
func (r *Run) ReferenceCount() int {
	total := 0
	for _, doc := range r.Documents {
		total += len(doc.References)
	}
	return total
}
