package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/johnxie/sourcedrift/internal/model"
)

// dbFileName is the SQLite database file name inside the data directory.
const dbFileName = "sourcedrift.db"

// HistoryDB provides SQLite-based storage for verification run history.
// It manages connection pooling and provides methods for saving runs and
// querying snapshots for drift comparison.
//
// Design decision: We store the full report as a JSON blob alongside
// normalized per-repository snapshot rows. The blob preserves everything
// for later inspection; the snapshot rows are what drift queries actually
// touch, so they get real columns and indexes.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path to the underlying database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per verification run with the full report as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		corpus_root TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		generated_on TEXT NOT NULL,
		timed_out INTEGER DEFAULT 0,
		tutorials_scanned INTEGER DEFAULT 0,
		unique_source_repos INTEGER DEFAULT 0,
		unique_verified_repos INTEGER DEFAULT 0,
		unique_unverified_repos INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_corpus ON runs(corpus_root);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Repo snapshots store one row per fetched canonical repository per run
	CREATE TABLE IF NOT EXISTS repo_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		repo_key TEXT NOT NULL,
		repo TEXT NOT NULL,
		status TEXT NOT NULL,
		stars INTEGER DEFAULT 0,
		forks INTEGER DEFAULT 0,
		open_issues INTEGER DEFAULT 0,
		archived INTEGER DEFAULT 0,
		pushed_at TEXT,
		UNIQUE(run_id, repo_key)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_run ON repo_snapshots(run_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_repo ON repo_snapshots(repo_key);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists a completed verification run and its repository
// snapshots. The run must carry a non-nil Report.
// Returns the database ID of the saved run.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	if run.Report == nil {
		return 0, errors.New("run has no report to save")
	}

	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO runs (corpus_root, generated_on, timed_out, tutorials_scanned,
		unique_source_repos, unique_verified_repos, unique_unverified_repos, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		run.CorpusRoot,
		run.Report.GeneratedOn,
		boolToInt(run.TimedOut),
		run.Report.Summary.TutorialsScanned,
		run.Report.Summary.UniqueSourceRepos,
		run.Report.Summary.UniqueVerifiedRepos,
		run.Report.Summary.UniqueUnverifiedRepos,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	snapQuery := `
	INSERT INTO repo_snapshots (run_id, repo_key, repo, status, stars, forks, open_issues, archived, pushed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, key := range sortedMetadataKeys(run.Metadata) {
		meta := run.Metadata[key]
		var pushedAt string
		if !meta.PushedAt.IsZero() {
			pushedAt = meta.PushedAt.UTC().Format(time.RFC3339)
		}

		if _, err := tx.ExecContext(ctx, snapQuery,
			runID,
			key,
			meta.Repo.String(),
			meta.Status.String(),
			meta.Stars,
			meta.Forks,
			meta.OpenIssues,
			boolToInt(meta.Archived),
			pushedAt,
		); err != nil {
			return 0, fmt.Errorf("failed to insert snapshot for %s: %w", meta.Repo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// RunSummary contains summary information about a stored run.
// This is used for displaying run history without loading the full report.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// CorpusRoot is the corpus directory that was verified.
	CorpusRoot string

	// Timestamp is when the run was saved.
	Timestamp time.Time

	// GeneratedOn is the report date (YYYY-MM-DD).
	GeneratedOn string

	// TimedOut is true when the run hit its deadline before all fetches
	// completed.
	TimedOut bool

	// TutorialsScanned is the number of documents in the corpus.
	TutorialsScanned int

	// UniqueSourceRepos is the number of distinct canonical repositories.
	UniqueSourceRepos int

	// UniqueVerifiedRepos is the number of repositories verified live.
	UniqueVerifiedRepos int

	// UniqueUnverifiedRepos is the number of repositories that could not be
	// verified.
	UniqueUnverifiedRepos int
}

// ListRuns returns stored runs, newest first. When corpusRoot is non-empty
// only runs for that corpus are returned. A limit of zero means no limit.
func (hdb *HistoryDB) ListRuns(ctx context.Context, corpusRoot string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, corpus_root, timestamp, generated_on, timed_out,
		tutorials_scanned, unique_source_repos, unique_verified_repos, unique_unverified_repos
	FROM runs
	`
	args := make([]any, 0, 2)

	if corpusRoot != "" {
		query += " WHERE corpus_root = ?"
		args = append(args, corpusRoot)
	}

	query += " ORDER BY id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var summary RunSummary
		var timestamp string
		var timedOut int

		if err := rows.Scan(
			&summary.ID,
			&summary.CorpusRoot,
			&timestamp,
			&summary.GeneratedOn,
			&timedOut,
			&summary.TutorialsScanned,
			&summary.UniqueSourceRepos,
			&summary.UniqueVerifiedRepos,
			&summary.UniqueUnverifiedRepos,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}

		summary.Timestamp = parseTimestamp(timestamp)
		summary.TimedOut = timedOut != 0
		results = append(results, summary)
	}

	return results, rows.Err()
}

// GetRunReport retrieves the full report for a run by its database ID.
// Returns nil without error when the run does not exist.
func (hdb *HistoryDB) GetRunReport(ctx context.Context, id int64) (*model.Report, error) {
	query := `
	SELECT report_json FROM runs
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// RepoSnapshot represents one repository's state at the time of a run.
type RepoSnapshot struct {
	// RunID is the run this snapshot belongs to.
	RunID int64

	// RepoKey is the case-insensitive canonical repository key.
	RepoKey string

	// Repo is the owner/name form for display.
	Repo string

	// Status is the terminal fetch outcome of that run.
	Status model.FetchStatus

	// Stars is the stargazer count at snapshot time.
	Stars int

	// Forks is the fork count at snapshot time.
	Forks int

	// OpenIssues is the open issue count at snapshot time.
	OpenIssues int

	// Archived is whether the repository was archived at snapshot time.
	Archived bool

	// PushedAt is the last push timestamp at snapshot time.
	PushedAt time.Time
}

// GetSnapshots retrieves all repository snapshots for a run, keyed by
// canonical repository key.
func (hdb *HistoryDB) GetSnapshots(ctx context.Context, runID int64) (map[string]RepoSnapshot, error) {
	query := `
	SELECT run_id, repo_key, repo, status, stars, forks, open_issues, archived, pushed_at
	FROM repo_snapshots
	WHERE run_id = ?
	ORDER BY repo_key
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}
	defer rows.Close()

	results := make(map[string]RepoSnapshot)
	for rows.Next() {
		var snap RepoSnapshot
		var status string
		var archived int
		var pushedAt sql.NullString

		if err := rows.Scan(
			&snap.RunID,
			&snap.RepoKey,
			&snap.Repo,
			&status,
			&snap.Stars,
			&snap.Forks,
			&snap.OpenIssues,
			&archived,
			&pushedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snap.Status = model.FetchStatus(status)
		snap.Archived = archived != 0
		if pushedAt.Valid && pushedAt.String != "" {
			snap.PushedAt = parseTimestamp(pushedAt.String)
		}

		results[snap.RepoKey] = snap
	}

	return results, rows.Err()
}

// sortedMetadataKeys returns the metadata map keys in ascending order so
// snapshot insertion order is deterministic.
func sortedMetadataKeys(metadata map[string]*model.RepoMetadata) []string {
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// boolToInt converts a bool to the 0/1 convention SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
