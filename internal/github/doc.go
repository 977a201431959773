// Package github provides a minimal client for the GitHub repository
// metadata API.
//
// The client fetches a single endpoint, GET /repos/{owner}/{repo}, and maps
// responses into model.RepoMetadata. Failures are typed so callers can
// distinguish terminal outcomes (repository missing) from transient ones
// (rate limiting, network errors) and retry accordingly. This is a
// collaborator boundary: schema or availability changes downstream must
// fail closed as typed errors, never crash the pipeline.
//
// Requests are paced by a client-side token bucket (golang.org/x/time/rate)
// so unauthenticated runs do not immediately trip the server-side limit.
package github
