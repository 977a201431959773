package model

import (
	"fmt"
	"sort"
	"time"
)

// DefaultTopRepoLimit caps the "top repositories by stars" table.
// Matches the long-standing size of the published verification report.
const DefaultTopRepoLimit = 25

// Summary holds the corpus-wide counts reported in the header.
// All fields are always populated, even when zero, so an empty section is
// explicit rather than missing.
type Summary struct {
	// TutorialsScanned is the number of documents scanned.
	TutorialsScanned int `json:"tutorials_scanned"`

	// TutorialsWithSourceRepos is the number of documents with at least
	// one extracted reference.
	TutorialsWithSourceRepos int `json:"tutorials_with_source_repos"`

	// TutorialsWithoutSourceRepos is the number of documents with zero
	// extracted references.
	TutorialsWithoutSourceRepos int `json:"tutorials_without_source_repos"`

	// TutorialsWithUnverified is the number of documents holding at least
	// one unverified record.
	TutorialsWithUnverified int `json:"tutorials_with_unverified_source_repos"`

	// UniqueSourceRepos is the number of distinct canonical repositories
	// attempted this run.
	UniqueSourceRepos int `json:"unique_source_repos"`

	// UniqueVerifiedRepos is the number of attempted repositories whose
	// fetch succeeded.
	UniqueVerifiedRepos int `json:"unique_verified_repos"`

	// UniqueUnverifiedRepos is the number of attempted repositories whose
	// fetch terminally failed.
	UniqueUnverifiedRepos int `json:"unique_unverified_repos"`

	// MalformedReferences is the number of references that looked like
	// repository links but could not be parsed.
	MalformedReferences int `json:"malformed_references"`
}

// MissingDocument is a report row for a document with zero references.
type MissingDocument struct {
	// Slug identifies the tutorial.
	Slug string `json:"slug"`

	// Path is the document path relative to the corpus root.
	Path string `json:"path"`
}

// MalformedReference is a report row for a reference that could not be
// parsed into an owner/repo pair.
type MalformedReference struct {
	// Slug identifies the tutorial holding the reference.
	Slug string `json:"slug"`

	// Line is the 1-based line number of the reference.
	Line int `json:"line"`

	// Raw is the reference string as written in the document.
	Raw string `json:"raw"`
}

// UnverifiedDocument is a report row for a document with at least one
// unverified record.
type UnverifiedDocument struct {
	// Slug identifies the tutorial.
	Slug string `json:"slug"`

	// PrimaryRepo is the canonical form of the document's first reference,
	// or "n/a" when the first reference could not be resolved.
	PrimaryRepo string `json:"primary_repo"`

	// UnverifiedCount is the number of unverified records in the document.
	UnverifiedCount int `json:"unverified_count"`
}

// Report is the aggregated result of one verification run.
// Table ordering is deterministic: identical input metadata produces
// byte-identical rendered tables across runs.
type Report struct {
	// GeneratedAt is the UTC generation timestamp.
	GeneratedAt time.Time `json:"generated_at_utc"`

	// GeneratedOn is the generation date as YYYY-MM-DD.
	GeneratedOn string `json:"generated_on"`

	// CorpusRoot is the scanned corpus directory.
	CorpusRoot string `json:"corpus_root"`

	// Summary holds the corpus-wide header counts.
	Summary Summary `json:"summary"`

	// TopRepos lists verified repositories sorted by stars descending,
	// ties broken by canonical owner/name ascending.
	TopRepos []*RepoMetadata `json:"top_verified_repos_by_stars"`

	// Missing lists documents with zero references.
	Missing []MissingDocument `json:"tutorials_missing_source_repos"`

	// Unverified lists documents with at least one unverified record.
	Unverified []UnverifiedDocument `json:"tutorials_with_unverified_source_repos"`

	// Malformed lists references that could not be parsed, so broken links
	// in the corpus are fixable instead of invisible.
	Malformed []MalformedReference `json:"malformed_references,omitempty"`

	// Footnotes carries per-reference notes, currently only alias
	// ambiguities excluded from the canonical set.
	Footnotes []string `json:"footnotes,omitempty"`

	// Records is the full per-reference classification detail.
	Records []VerificationRecord `json:"records"`

	// TimedOut is true when the run deadline expired before all fetches
	// completed; affected repositories are counted as unverified.
	TimedOut bool `json:"timed_out,omitempty"`
}

// NewReport aggregates a completed run into a Report.
//
// It returns ErrReportInconsistency when the verified and unverified buckets
// do not partition the attempted canonical repository set. That indicates an
// internal bug, so the caller must treat it as fatal for the run.
func NewReport(run *Run, topLimit int) (*Report, error) {
	if topLimit <= 0 {
		topLimit = DefaultTopRepoLimit
	}

	now := time.Now().UTC()
	report := &Report{
		GeneratedAt: now,
		GeneratedOn: now.Format("2006-01-02"),
		CorpusRoot:  run.CorpusRoot,
		Records:     run.Records,
		TimedOut:    run.TimedOut,
	}

	report.Summary.TutorialsScanned = len(run.Documents)
	for _, doc := range run.Documents {
		if doc.HasReferences() {
			report.Summary.TutorialsWithSourceRepos++
		} else {
			report.Summary.TutorialsWithoutSourceRepos++
			report.Missing = append(report.Missing, MissingDocument{
				Slug: doc.Slug,
				Path: doc.Path,
			})
		}
	}
	sort.Slice(report.Missing, func(i, j int) bool {
		return report.Missing[i].Slug < report.Missing[j].Slug
	})

	verified, unverified := bucketRepos(run.Metadata)
	report.Summary.UniqueSourceRepos = len(run.Metadata)
	report.Summary.UniqueVerifiedRepos = len(verified)
	report.Summary.UniqueUnverifiedRepos = len(unverified)

	// Every attempted repository must land in exactly one bucket.
	if len(verified)+len(unverified) != len(run.Metadata) {
		return nil, fmt.Errorf("%w: %d verified + %d unverified != %d attempted",
			ErrReportInconsistency, len(verified), len(unverified), len(run.Metadata))
	}

	report.TopRepos = topReposByStars(verified, topLimit)
	report.Unverified = unverifiedDocuments(run)
	report.Summary.TutorialsWithUnverified = len(report.Unverified)

	report.Malformed = malformedReferences(run)
	report.Summary.MalformedReferences = len(report.Malformed)

	for _, amb := range run.Ambiguous {
		report.Footnotes = append(report.Footnotes,
			fmt.Sprintf("%s (%s): %s", amb.Raw, amb.Document, amb.Reason))
	}
	sort.Strings(report.Footnotes)

	return report, nil
}

// bucketRepos splits fetched metadata into the verified and unverified sets.
func bucketRepos(metadata map[string]*RepoMetadata) (verified, unverified []*RepoMetadata) {
	for _, meta := range metadata {
		if meta.Status.OK() {
			verified = append(verified, meta)
		} else {
			unverified = append(unverified, meta)
		}
	}
	return verified, unverified
}

// topReposByStars sorts verified repositories by stars descending, breaking
// ties by canonical key ascending so output is stable across runs.
func topReposByStars(verified []*RepoMetadata, limit int) []*RepoMetadata {
	sorted := make([]*RepoMetadata, len(verified))
	copy(sorted, verified)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Stars != sorted[j].Stars {
			return sorted[i].Stars > sorted[j].Stars
		}
		return sorted[i].Repo.Key() < sorted[j].Repo.Key()
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// unverifiedDocuments builds the per-document unverified table in slug order.
func unverifiedDocuments(run *Run) []UnverifiedDocument {
	counts := make(map[string]int)
	for _, rec := range run.Records {
		if rec.Outcome == OutcomeUnverified {
			counts[rec.Reference.Document]++
		}
	}

	out := make([]UnverifiedDocument, 0, len(counts))
	for _, doc := range run.Documents {
		count, ok := counts[doc.Slug]
		if !ok {
			continue
		}
		out = append(out, UnverifiedDocument{
			Slug:            doc.Slug,
			PrimaryRepo:     primaryRepo(run, &doc),
			UnverifiedCount: count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Slug < out[j].Slug
	})
	return out
}

// malformedReferences collects the references flagged during extraction,
// in slug then line order.
func malformedReferences(run *Run) []MalformedReference {
	var out []MalformedReference
	for _, doc := range run.Documents {
		for _, ref := range doc.References {
			if !ref.Malformed {
				continue
			}
			out = append(out, MalformedReference{
				Slug: doc.Slug,
				Line: ref.Line,
				Raw:  ref.Raw,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slug != out[j].Slug {
			return out[i].Slug < out[j].Slug
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// primaryRepo returns the canonical form of the document's first resolvable
// reference, or "n/a" when none resolves.
func primaryRepo(run *Run, doc *TutorialDocument) string {
	for _, ref := range doc.WellFormedReferences() {
		if res, ok := run.Resolutions[ref.Raw]; ok {
			return res.Canonical.String()
		}
	}
	return "n/a"
}
