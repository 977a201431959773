package extract

import "errors"

// Extraction errors.
var (
	// ErrCorpusNotFound is returned when the corpus root does not exist
	// or is not a directory.
	ErrCorpusNotFound = errors.New("corpus root not found")

	// ErrNoDocuments is returned when the corpus contains no scannable
	// documents at all. An empty corpus almost always means a wrong path,
	// so we fail instead of emitting an empty report.
	ErrNoDocuments = errors.New("no documents found in corpus")
)
