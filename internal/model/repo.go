package model

import (
	"strings"
	"time"
)

// DefaultHost is the code-hosting service assumed when a reference carries
// no explicit host, which is the case for all owner/repo shorthand tokens.
const DefaultHost = "github.com"

// CanonicalRepo is the single, alias-resolved identity of a repository.
// Multiple SourceReferences may resolve to the same CanonicalRepo after
// collapsing renames and mirrors.
type CanonicalRepo struct {
	// Host is the code-hosting service, e.g. "github.com".
	Host string `json:"host"`

	// Owner is the repository owner or organization.
	Owner string `json:"owner"`

	// Name is the repository name.
	Name string `json:"name"`
}

// Key returns the case-insensitive comparison key for the repository.
// Two CanonicalRepos identify the same repository iff their keys are equal.
func (r CanonicalRepo) Key() string {
	return strings.ToLower(r.Host + "/" + r.Owner + "/" + r.Name)
}

// String returns the familiar owner/name form.
func (r CanonicalRepo) String() string {
	return r.Owner + "/" + r.Name
}

// URL returns the browsable repository URL.
func (r CanonicalRepo) URL() string {
	return "https://" + r.Host + "/" + r.Owner + "/" + r.Name
}

// IsZero reports whether the repository identity is empty.
func (r CanonicalRepo) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// FetchStatus describes the terminal state of a metadata fetch.
type FetchStatus string

// Fetch status values. Transient failures (rate limited, network errors)
// are retried by the fetcher; only the exhausted result is recorded here.
const (
	// FetchStatusOK means the repository exists and metadata was retrieved.
	FetchStatusOK FetchStatus = "ok"

	// FetchStatusNotFound means the hosting API reported the repository
	// as missing. This is terminal and never retried.
	FetchStatusNotFound FetchStatus = "not_found"

	// FetchStatusRateLimited means the last attempt was rejected by API
	// rate limiting and retries were exhausted.
	FetchStatusRateLimited FetchStatus = "rate_limited"

	// FetchStatusError covers exhausted network failures and run-timeout
	// cancellation. Repositories in this state are never silently dropped.
	FetchStatusError FetchStatus = "error"
)

// OK reports whether metadata was successfully retrieved.
func (s FetchStatus) OK() bool {
	return s == FetchStatusOK
}

// String returns the status as a plain string.
func (s FetchStatus) String() string {
	return string(s)
}

// RepoMetadata holds the live metadata fetched for one CanonicalRepo.
// Exactly one record exists per unique canonical repository per run,
// regardless of how many references map to it.
type RepoMetadata struct {
	// Repo is the canonical repository this metadata belongs to.
	Repo CanonicalRepo `json:"repo"`

	// Status is the terminal fetch outcome.
	Status FetchStatus `json:"fetch_status"`

	// Reason holds a human-readable failure description when Status is not OK.
	Reason string `json:"reason,omitempty"`

	// Stars is the stargazer count. Zero when the fetch failed.
	Stars int `json:"stars"`

	// Forks is the fork count. Zero when the fetch failed.
	Forks int `json:"forks"`

	// OpenIssues is the open issue count. Zero when the fetch failed.
	OpenIssues int `json:"open_issues"`

	// PushedAt is the timestamp of the most recent push to any branch.
	PushedAt time.Time `json:"pushed_at,omitzero"`

	// DefaultBranch is the repository's default branch name.
	DefaultBranch string `json:"default_branch,omitempty"`

	// Archived is true when the repository is archived upstream.
	Archived bool `json:"archived"`

	// HTMLURL is the browsable repository URL as reported by the API.
	HTMLURL string `json:"html_url"`
}

// LastPushDate returns the push date formatted as YYYY-MM-DD,
// or "n/a" when no push timestamp is known.
func (m *RepoMetadata) LastPushDate() string {
	if m.PushedAt.IsZero() {
		return "n/a"
	}
	return m.PushedAt.UTC().Format("2006-01-02")
}
