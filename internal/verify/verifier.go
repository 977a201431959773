package verify

import (
	"github.com/johnxie/sourcedrift/internal/model"
)

// Classify produces the VerificationRecord for one reference given its
// resolution and the metadata fetched for its canonical repository.
//
// Rules:
//   - fetch OK and the named identity equals the canonical one: verified
//   - fetch OK but the named identity differs (alias case): redirected
//   - terminal fetch failure of any kind: unverified
func Classify(ref model.SourceReference, res model.Resolved, meta *model.RepoMetadata) model.VerificationRecord {
	record := model.VerificationRecord{
		Reference: ref,
		Named:     res.Named,
		Canonical: res.Canonical,
		Status:    meta.Status,
		Reason:    meta.Reason,
	}

	switch {
	case !meta.Status.OK():
		record.Outcome = model.OutcomeUnverified
	case res.Redirected():
		record.Outcome = model.OutcomeRedirected
	default:
		record.Outcome = model.OutcomeVerified
	}

	return record
}

// Run classifies every resolvable reference in the run and stores the
// records on it. References without a resolution (malformed or ambiguous)
// carry no record; they are reported through their own channels.
func Run(run *model.Run) {
	for _, doc := range run.Documents {
		for _, ref := range doc.References {
			if ref.Malformed {
				continue
			}
			res, ok := run.Resolutions[ref.Raw]
			if !ok {
				continue
			}
			meta, ok := run.Metadata[res.Canonical.Key()]
			if !ok {
				// The fetcher guarantees an entry per attempted key, so a
				// missing one means the reference never reached fetching.
				continue
			}
			run.Records = append(run.Records, Classify(ref, res, meta))
		}
	}
}
