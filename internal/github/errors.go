package github

import "errors"

// Typed fetch failures. The fetcher retries transient classes and treats
// the rest as terminal.
var (
	// ErrNotFound means the API reported the repository as missing.
	// Terminal: retrying cannot change the answer within a run.
	ErrNotFound = errors.New("repository not found")

	// ErrRateLimited means the API rejected the request due to rate
	// limiting. Transient: eligible for retry with backoff.
	ErrRateLimited = errors.New("rate limited by API")

	// ErrNetwork wraps transport-level failures (DNS, connect, timeout).
	// Transient: eligible for retry with backoff.
	ErrNetwork = errors.New("network error")

	// ErrUnexpectedStatus covers any other non-success HTTP status.
	// Treated as terminal: a 500 storm is possible but indistinguishable
	// from a schema change, and failing closed keeps the report honest.
	ErrUnexpectedStatus = errors.New("unexpected API response status")
)

// Transient reports whether the error belongs to a retryable failure class.
func Transient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNetwork)
}
