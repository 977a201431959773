package database

import (
	"context"
	"testing"
	"time"

	"github.com/johnxie/sourcedrift/internal/model"
)

// openTestDB creates a HistoryDB in a temp directory and closes it with the
// test.
func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := hdb.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return hdb
}

// testRun builds a completed run with a report and two snapshots.
func testRun(t *testing.T, corpusRoot string, stars int) *model.Run {
	t.Helper()

	dify := model.CanonicalRepo{Host: "github.com", Owner: "langgenius", Name: "dify"}
	gone := model.CanonicalRepo{Host: "github.com", Owner: "gone", Name: "repo"}

	run := model.NewRun(corpusRoot)
	run.Metadata = map[string]*model.RepoMetadata{
		dify.Key(): {
			Repo: dify, Status: model.FetchStatusOK,
			Stars: stars, Forks: 18000, OpenIssues: 400,
			PushedAt: time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC),
		},
		gone.Key(): {
			Repo: gone, Status: model.FetchStatusNotFound,
			Reason: "repository not found",
		},
	}
	run.Report = &model.Report{
		GeneratedAt: time.Now().UTC(),
		GeneratedOn: "2026-08-25",
		CorpusRoot:  corpusRoot,
		Summary: model.Summary{
			TutorialsScanned:      2,
			UniqueSourceRepos:     2,
			UniqueVerifiedRepos:   1,
			UniqueUnverifiedRepos: 1,
		},
	}
	return run
}

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database when allowed", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		if hdb.Path() == "" {
			t.Error("Path() returned empty path")
		}
	})

	t.Run("refuses to create when not allowed", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Error("Open() error = nil for missing database without create option")
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		first, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := first.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		second, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		if err := second.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

// TestSaveRun tests run persistence and retrieval.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a run", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		ctx := context.Background()

		id, err := hdb.SaveRun(ctx, testRun(t, "tutorials", 120000))
		if err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		if id == 0 {
			t.Error("SaveRun() returned zero id")
		}

		runs, err := hdb.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("len(runs) = %d, want 1", len(runs))
		}
		got := runs[0]
		if got.ID != id {
			t.Errorf("ID = %d, want %d", got.ID, id)
		}
		if got.CorpusRoot != "tutorials" {
			t.Errorf("CorpusRoot = %q", got.CorpusRoot)
		}
		if got.UniqueVerifiedRepos != 1 || got.UniqueUnverifiedRepos != 1 {
			t.Errorf("summary counts = %d/%d, want 1/1",
				got.UniqueVerifiedRepos, got.UniqueUnverifiedRepos)
		}

		report, err := hdb.GetRunReport(ctx, id)
		if err != nil {
			t.Fatalf("GetRunReport() error = %v", err)
		}
		if report == nil {
			t.Fatal("GetRunReport() returned nil for existing run")
		}
		if report.Summary.UniqueSourceRepos != 2 {
			t.Errorf("UniqueSourceRepos = %d, want 2", report.Summary.UniqueSourceRepos)
		}
	})

	t.Run("stores one snapshot per repository", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		ctx := context.Background()

		id, err := hdb.SaveRun(ctx, testRun(t, "tutorials", 120000))
		if err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}

		snaps, err := hdb.GetSnapshots(ctx, id)
		if err != nil {
			t.Fatalf("GetSnapshots() error = %v", err)
		}
		if len(snaps) != 2 {
			t.Fatalf("len(snaps) = %d, want 2", len(snaps))
		}

		dify, ok := snaps["github.com/langgenius/dify"]
		if !ok {
			t.Fatal("dify snapshot missing")
		}
		if dify.Stars != 120000 || dify.Forks != 18000 {
			t.Errorf("counts = %d/%d, want 120000/18000", dify.Stars, dify.Forks)
		}
		if !dify.Status.OK() {
			t.Errorf("Status = %s, want ok", dify.Status)
		}
		if dify.PushedAt.IsZero() {
			t.Error("PushedAt not round-tripped")
		}

		gone, ok := snaps["github.com/gone/repo"]
		if !ok {
			t.Fatal("gone snapshot missing")
		}
		if gone.Status != model.FetchStatusNotFound {
			t.Errorf("Status = %s, want not_found", gone.Status)
		}
		if !gone.PushedAt.IsZero() {
			t.Errorf("PushedAt = %v, want zero for failed fetch", gone.PushedAt)
		}
	})

	t.Run("rejects a run without a report", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)

		if _, err := hdb.SaveRun(context.Background(), model.NewRun("tutorials")); err == nil {
			t.Error("SaveRun() error = nil for run without report")
		}
	})
}

// TestListRuns tests ordering and filtering of the run history.
func TestListRuns(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	first, err := hdb.SaveRun(ctx, testRun(t, "tutorials", 100))
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	second, err := hdb.SaveRun(ctx, testRun(t, "tutorials", 200))
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if _, err := hdb.SaveRun(ctx, testRun(t, "other-corpus", 300)); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("len(runs) = %d, want 3", len(runs))
		}
		if runs[0].ID < runs[1].ID || runs[1].ID < runs[2].ID {
			t.Errorf("runs not newest first: %d, %d, %d", runs[0].ID, runs[1].ID, runs[2].ID)
		}
	})

	t.Run("corpus filter", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, "tutorials", 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("len(runs) = %d, want 2", len(runs))
		}
		if runs[0].ID != second || runs[1].ID != first {
			t.Errorf("runs = %d, %d, want %d, %d", runs[0].ID, runs[1].ID, second, first)
		}
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, "", 1)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("len(runs) = %d, want 1", len(runs))
		}
	})
}

// TestGetRunReportMissing tests the nil-without-error contract for unknown
// run IDs.
func TestGetRunReportMissing(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)

	report, err := hdb.GetRunReport(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetRunReport() error = %v", err)
	}
	if report != nil {
		t.Errorf("GetRunReport() = %+v, want nil", report)
	}
}

// TestParseTimestamp tests the multi-format timestamp parser.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		valid bool
	}{
		{"2026-08-25 06:00:00", true},
		{"2026-08-25T06:00:00Z", true},
		{"2026-08-25T06:00:00+02:00", true},
		{"not a timestamp", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() == tt.valid {
				t.Errorf("parseTimestamp(%q) = %v, valid = %v", tt.input, got, tt.valid)
			}
		})
	}
}
