package model

// SourceReference is a raw repository reference exactly as it appears in a
// tutorial document. References are not deduplicated at this stage: the same
// repository mentioned in two documents produces two SourceReferences, which
// is what allows per-document reporting later.
type SourceReference struct {
	// Raw is the reference string as written in the document, either a full
	// URL or an owner/repo shorthand token.
	Raw string `json:"raw"`

	// Document is the slug of the owning tutorial document.
	Document string `json:"document"`

	// Line is the 1-based line number where the reference was found.
	// Used for report linking back into the corpus.
	Line int `json:"line"`

	// Malformed marks references that look like repository links but could
	// not be parsed into an owner/repo pair. They are recorded rather than
	// silently discarded so the report can surface them.
	Malformed bool `json:"malformed,omitempty"`
}

// TutorialDocument is a single scanned corpus document together with the
// references extracted from it, in document order.
//
// A document with zero references is still recorded: it feeds the
// "missing source repository links" report table.
type TutorialDocument struct {
	// Slug identifies the tutorial, typically the directory name
	// (e.g. "cline-tutorial").
	Slug string `json:"slug"`

	// Path is the document path relative to the corpus root.
	Path string `json:"path"`

	// References holds the extracted references in order of appearance.
	References []SourceReference `json:"references"`
}

// HasReferences reports whether any reference was extracted from the document.
func (d *TutorialDocument) HasReferences() bool {
	return len(d.References) > 0
}

// WellFormedReferences returns the references that parsed cleanly,
// preserving document order.
func (d *TutorialDocument) WellFormedReferences() []SourceReference {
	out := make([]SourceReference, 0, len(d.References))
	for _, ref := range d.References {
		if !ref.Malformed {
			out = append(out, ref)
		}
	}
	return out
}
