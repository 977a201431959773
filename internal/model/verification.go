package model

// Resolved is the result of canonicalizing one raw reference.
// Named is the identity literally written in the document; Canonical is the
// identity after applying the alias table. The two differ only when the
// reference went through a rename or fork-of-record mapping.
type Resolved struct {
	// Named is the identity parsed directly from the raw reference.
	Named CanonicalRepo `json:"named"`

	// Canonical is the alias-resolved identity used for fetching.
	Canonical CanonicalRepo `json:"canonical"`
}

// Redirected reports whether the reference resolves to a different
// repository than the one it names.
func (r Resolved) Redirected() bool {
	return r.Named.Key() != r.Canonical.Key()
}

// Outcome classifies a single SourceReference against fetched metadata.
type Outcome string

// Verification outcomes.
const (
	// OutcomeVerified means the repository exists and the reference names
	// its canonical identity.
	OutcomeVerified Outcome = "verified"

	// OutcomeRedirected means the repository exists but the reference names
	// a pre-rename or mirror identity that resolves elsewhere.
	OutcomeRedirected Outcome = "redirected"

	// OutcomeUnverified means the fetch terminally failed: the repository
	// is missing, or retries were exhausted.
	OutcomeUnverified Outcome = "unverified"
)

// String returns the outcome as a plain string.
func (o Outcome) String() string {
	return string(o)
}

// VerificationRecord is the classified result for one SourceReference.
// It pairs the reference with both identities involved (the named one and
// the canonical one) so redirects stay explainable in reports.
type VerificationRecord struct {
	// Reference is the raw reference this record classifies.
	Reference SourceReference `json:"reference"`

	// Named is the repository identity written in the document.
	Named CanonicalRepo `json:"named"`

	// Canonical is the alias-resolved identity that was fetched.
	Canonical CanonicalRepo `json:"canonical"`

	// Outcome is the classification result.
	Outcome Outcome `json:"outcome"`

	// Status is the fetch status of the canonical repository.
	Status FetchStatus `json:"fetch_status"`

	// Reason carries the fetch failure description for unverified records.
	Reason string `json:"reason,omitempty"`
}

// AmbiguousReference is a raw reference that matched more than one alias
// table entry. It is excluded from the canonical set and surfaced as a
// report footnote rather than fetched.
type AmbiguousReference struct {
	// Raw is the ambiguous reference string.
	Raw string `json:"raw"`

	// Document is the slug of the document holding the reference.
	Document string `json:"document"`

	// Reason describes the conflicting alias entries.
	Reason string `json:"reason"`
}
