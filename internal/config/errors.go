package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoCorpusRoot is returned when no corpus directory is specified.
	ErrNoCorpusRoot = errors.New("no corpus root specified: provide the documentation directory as an argument")

	// ErrInvalidBatchSize is returned when the fetch concurrency is not
	// positive. A batch size of zero would mean no fetching at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidFetchTimeout is returned when the per-request timeout is
	// not positive. A zero timeout would fail every request immediately.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidRunTimeout is returned when the run-level deadline is not
	// positive.
	ErrInvalidRunTimeout = errors.New("invalid run timeout: must be positive")

	// ErrInvalidRetryAttempts is returned when the retry count is negative.
	// Use 0 to disable retries entirely.
	ErrInvalidRetryAttempts = errors.New("invalid retry attempts: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
