package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Concurrency and timeout defaults mirror the long-running verification job
// these were tuned on: a corpus of a few hundred documents referencing a few
// hundred unique repositories.
const (
	// DefaultBatchSize is the number of concurrent metadata fetches.
	// The GitHub API tolerates this comfortably with a token; unauthenticated
	// runs are protected by the client-side rate limiter instead.
	DefaultBatchSize = 16

	// DefaultFetchTimeout bounds a single metadata request, including
	// connection setup. The repos endpoint normally answers in well under a
	// second; 20 seconds covers slow cold paths without stalling the run.
	DefaultFetchTimeout = 20 * time.Second

	// DefaultRunTimeout bounds the whole run. Repositories still unfetched
	// when it expires are recorded as errors, never dropped, so report
	// totals stay internally consistent.
	DefaultRunTimeout = 10 * time.Minute

	// DefaultRetryAttempts is the number of retries for transient fetch
	// failures (rate limiting, network errors). Not-found responses are
	// terminal and never retried.
	DefaultRetryAttempts = 3

	// DefaultRetryBaseDelay is the initial backoff delay. It doubles after
	// each failed attempt.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultRequestsPerSecond is the client-side rate limit for the
	// hosting API. Conservative enough for unauthenticated use.
	DefaultRequestsPerSecond = 5

	// DefaultAPIBaseURL is the GitHub REST API endpoint.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultUserAgent identifies sourcedrift in API requests. GitHub
	// requires a User-Agent header and a descriptive one helps operators
	// identify the traffic.
	DefaultUserAgent = "sourcedrift/1.0 (+https://github.com/johnxie/sourcedrift)"

	// EnvGitHubToken is the environment variable consulted for an API token.
	EnvGitHubToken = "GITHUB_TOKEN" //nolint:gosec // Variable name, not a credential

	// AppName is the application name used for XDG directory paths.
	AppName = "sourcedrift"
)

// Config holds all configuration options for a sourcedrift run.
// This struct is populated from CLI flags and passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g. FetchConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// CorpusRoot is the documentation directory to scan.
	CorpusRoot string

	// ConfigFilePath is the path to the YAML configuration file.
	// If empty, the tool searches for .sourcedrift in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds the parsed configuration file contents (aliases, ignore
	// list, tracked repositories). Populated by LoadConfigFile.
	File *File

	// BatchSize is the number of concurrent metadata fetches.
	BatchSize int

	// FetchTimeout bounds each individual metadata request.
	FetchTimeout time.Duration

	// RunTimeout bounds the whole verification run.
	RunTimeout time.Duration

	// RetryAttempts is the retry budget for transient fetch failures.
	RetryAttempts int

	// Token is the hosting API token. Empty means unauthenticated requests,
	// which are subject to much tighter server-side rate limits.
	Token string

	// JSONReport enables JSON report output instead of human-readable text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable text. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string

	// SaveToDB indicates whether to persist the run to the history
	// database for later drift comparison.
	SaveToDB bool

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// TopRepoLimit caps the top-repositories table in the report.
	TopRepoLimit int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most corpora.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, batch size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BatchSize:     DefaultBatchSize,
		FetchTimeout:  DefaultFetchTimeout,
		RunTimeout:    DefaultRunTimeout,
		RetryAttempts: DefaultRetryAttempts,
		Token:         os.Getenv(EnvGitHubToken),
		TopRepoLimit:  0, // 0 means use the model default
	}
}

// Validate checks if the configuration is valid.
// It returns a specific sentinel error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
func (c *Config) Validate() error {
	if c.CorpusRoot == "" {
		return ErrNoCorpusRoot
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.RunTimeout <= 0 {
		return ErrInvalidRunTimeout
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidRetryAttempts
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// XDGDataDir returns the XDG data directory for sourcedrift.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sourcedrift
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sourcedrift.
// On Linux: ~/.config/sourcedrift
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sourcedrift.
// On Linux: ~/.cache/sourcedrift
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}
