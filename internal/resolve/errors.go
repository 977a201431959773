package resolve

import "errors"

// Resolution errors.
var (
	// ErrMalformedReference is returned when a raw reference cannot be
	// parsed into a host/owner/name identity.
	ErrMalformedReference = errors.New("malformed repository reference")

	// ErrAmbiguousAlias is returned when a reference matches conflicting
	// alias table entries. The reference is excluded from the canonical
	// set; callers surface it as a report footnote instead of fetching.
	ErrAmbiguousAlias = errors.New("ambiguous alias: reference matches conflicting alias entries")

	// ErrAliasCycle is returned at construction when the alias table
	// contains a rename cycle, which would make canonicalization
	// ill-defined.
	ErrAliasCycle = errors.New("alias table contains a cycle")
)
