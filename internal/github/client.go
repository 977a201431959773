package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/johnxie/sourcedrift/internal/config"
	"github.com/johnxie/sourcedrift/internal/model"
)

// maxErrorBody bounds how much of an error response body is kept for the
// failure reason recorded in the report.
const maxErrorBody = 240

// Client fetches repository metadata from the GitHub REST API.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Used by tests to point the client
// at an httptest server, and usable for GitHub Enterprise endpoints.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithToken sets the bearer token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestsPerSecond sets the client-side rate limit.
// A non-positive value disables client-side pacing.
func WithRequestsPerSecond(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: config.DefaultFetchTimeout},
		baseURL:    config.DefaultAPIBaseURL,
		userAgent:  config.DefaultUserAgent,
		limiter:    rate.NewLimiter(rate.Limit(config.DefaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// repoPayload is the subset of the repos endpoint response we consume.
// Unknown fields are ignored, which keeps the client tolerant of additive
// schema changes downstream.
type repoPayload struct {
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	DefaultBranch   string `json:"default_branch"`
	Archived        bool   `json:"archived"`
	PushedAt        string `json:"pushed_at"`
	HTMLURL         string `json:"html_url"`
}

// FetchRepo retrieves live metadata for one repository.
//
// On success the returned metadata has FetchStatusOK. Failures are returned
// as typed errors (ErrNotFound, ErrRateLimited, ErrNetwork,
// ErrUnexpectedStatus); the caller decides how failures map into the
// per-repository record.
func (c *Client) FetchRepo(ctx context.Context, repo model.CanonicalRepo) (*model.RepoMetadata, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}

	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, repo.Owner, repo.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", repo, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decoding below.
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, repo)
	case rateLimited(resp):
		c.logger.Warn("rate limited",
			"repo", repo.String(),
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrRateLimited, resp.StatusCode, repo)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // Best effort diagnostics
		return nil, fmt.Errorf("%w: HTTP %d for %s: %s", ErrUnexpectedStatus, resp.StatusCode, repo, strings.TrimSpace(string(body)))
	}

	var payload repoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response for %s: %v", ErrUnexpectedStatus, repo, err)
	}

	meta := &model.RepoMetadata{
		Repo:          repo,
		Status:        model.FetchStatusOK,
		Stars:         payload.StargazersCount,
		Forks:         payload.ForksCount,
		OpenIssues:    payload.OpenIssuesCount,
		DefaultBranch: payload.DefaultBranch,
		Archived:      payload.Archived,
		HTMLURL:       payload.HTMLURL,
	}
	if meta.HTMLURL == "" {
		meta.HTMLURL = repo.URL()
	}
	if payload.PushedAt != "" {
		pushed, err := time.Parse(time.RFC3339, payload.PushedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pushed_at %q for %s", ErrUnexpectedStatus, payload.PushedAt, repo)
		}
		meta.PushedAt = pushed
	}

	return meta, nil
}

// rateLimited reports whether a response is a rate-limit rejection.
// GitHub signals primary limits with 403 plus an exhausted remaining-quota
// header, and secondary limits with 429 or Retry-After.
func rateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0" ||
		resp.Header.Get("Retry-After") != ""
}
