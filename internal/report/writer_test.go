package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/johnxie/sourcedrift/internal/model"
)

// sampleReport builds a small fixed report for writer tests.
func sampleReport(t *testing.T) *model.Report {
	t.Helper()

	dify := model.CanonicalRepo{Host: "github.com", Owner: "langgenius", Name: "dify"}
	comfy := model.CanonicalRepo{Host: "github.com", Owner: "Comfy-Org", Name: "ComfyUI"}
	gone := model.CanonicalRepo{Host: "github.com", Owner: "gone", Name: "repo"}

	return &model.Report{
		GeneratedAt: time.Date(2026, 8, 25, 6, 0, 0, 0, time.UTC),
		GeneratedOn: "2026-08-25",
		CorpusRoot:  "tutorials",
		Summary: model.Summary{
			TutorialsScanned:            3,
			TutorialsWithSourceRepos:    2,
			TutorialsWithoutSourceRepos: 1,
			TutorialsWithUnverified:     1,
			UniqueSourceRepos:           3,
			UniqueVerifiedRepos:         2,
			UniqueUnverifiedRepos:       1,
			MalformedReferences:         1,
		},
		TopRepos: []*model.RepoMetadata{
			{Repo: dify, Status: model.FetchStatusOK, Stars: 120000, HTMLURL: dify.URL(),
				PushedAt: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)},
			{Repo: comfy, Status: model.FetchStatusOK, Stars: 90000, HTMLURL: comfy.URL(), Archived: true},
		},
		Missing: []model.MissingDocument{
			{Slug: "empty-tutorial", Path: "tutorials/empty-tutorial/index.md"},
		},
		Unverified: []model.UnverifiedDocument{
			{Slug: "dify-tutorial", PrimaryRepo: "langgenius/dify", UnverifiedCount: 1},
		},
		Malformed: []model.MalformedReference{
			{Slug: "dify-tutorial", Line: 14, Raw: "https://github.com/owner-only"},
		},
		Footnotes: []string{"x/conflict (doc): maps to both a/x and b/y"},
		Records: []model.VerificationRecord{
			{
				Reference: model.SourceReference{Raw: gone.URL(), Document: "dify-tutorial", Line: 9},
				Named:     gone, Canonical: gone,
				Outcome: model.OutcomeUnverified,
				Status:  model.FetchStatusNotFound,
				Reason:  "repository not found",
			},
		},
	}
}

// TestMarkdownWriter tests the Markdown report layout.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewMarkdownWriter(&buf).Write(sampleReport(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n == 0 {
		t.Error("Write() reported zero bytes")
	}

	out := buf.String()
	for _, want := range []string{
		"# Tutorial Source Verification Report",
		"## Top Verified Repositories by Stars",
		"## Tutorials Missing Source Repository Links",
		"## Tutorials with Unverified Source Repositories",
		"## Malformed Repository References",
		"## Footnotes",
		"`https://github.com/owner-only`",
		"120,000", // thousands separator
		"[`langgenius/dify`](https://github.com/langgenius/dify)",
		"`empty-tutorial`",
		"2026-08-25",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

// TestMarkdownWriterDeterministic tests byte-identical output for repeated
// writes of the same report.
func TestMarkdownWriterDeterministic(t *testing.T) {
	t.Parallel()

	report := sampleReport(t)

	var first bytes.Buffer
	if _, err := NewMarkdownWriter(&first).Write(report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		var next bytes.Buffer
		if _, err := NewMarkdownWriter(&next).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !bytes.Equal(first.Bytes(), next.Bytes()) {
			t.Fatal("markdown output differs between identical writes")
		}
	}
}

// TestMarkdownWriterAlerts tests the status alert selection.
func TestMarkdownWriterAlerts(t *testing.T) {
	t.Parallel()

	t.Run("clean run renders a tip", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		report.Summary.UniqueUnverifiedRepos = 0
		report.TimedOut = false

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "All referenced repositories verified.") {
			t.Error("clean run alert missing")
		}
	})

	t.Run("timed-out run renders a warning", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		report.TimedOut = true

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "deadline expired") {
			t.Error("timeout alert missing")
		}
	})
}

// TestSimpleWriter tests the human-readable format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("default output lists the summary sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(sampleReport(t)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"SOURCE VERIFICATION REPORT",
			"Tutorials Scanned:",
			"TOP VERIFIED REPOSITORIES BY STARS",
			"MALFORMED REPOSITORY REFERENCES",
			"dify-tutorial:14  https://github.com/owner-only",
			"langgenius/dify",
			"empty-tutorial",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("simple output missing %q", want)
			}
		}
		if strings.Contains(out, "PER-REFERENCE RECORDS") {
			t.Error("records section present without verbose")
		}
	})

	t.Run("verbose output includes per-reference records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(sampleReport(t)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "PER-REFERENCE RECORDS") {
			t.Error("records section missing with verbose")
		}
		if !strings.Contains(out, "repository not found") {
			t.Error("failure reason missing from records")
		}
	})
}

// TestJSONWriter tests the machine-readable format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleReport(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded model.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Summary != sampleReport(t).Summary {
		t.Errorf("Summary round-trip mismatch: %+v", decoded.Summary)
	}
	if len(decoded.TopRepos) != 2 {
		t.Errorf("len(TopRepos) = %d, want 2", len(decoded.TopRepos))
	}
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var md, js bytes.Buffer
	multi := NewMultiWriter(
		NewMarkdownWriter(&md),
		NewJSONWriter(&js),
	)

	if _, err := multi.Write(sampleReport(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if md.Len() == 0 || js.Len() == 0 {
		t.Error("one of the writers received no output")
	}
}

// TestSignalsWriter tests the market signals snapshot rendering.
func TestSignalsWriter(t *testing.T) {
	t.Parallel()

	snap := model.NewSignalsSnapshot([]model.RepoSignal{
		{
			Repo: "langgenius/dify", RepoURL: "https://github.com/langgenius/dify",
			TutorialLabel: "Dify Deep Dive", TutorialPath: "tutorials/dify/index.md",
			Why: "Largest open-source LLM app platform", Stars: 120000, Forks: 18000,
			PushedDate: "2026-08-14", DaysSincePush: 11,
		},
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSignalsWriter(&buf).WriteMarkdown(snap); err != nil {
			t.Fatalf("WriteMarkdown() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"# Market Signals Snapshot",
			"120,000",
			"2026-08-14 (11d ago)",
			"[Dify Deep Dive](tutorials/dify/index.md)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("signals output missing %q", want)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSignalsWriter(&buf).WriteJSON(snap); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
		var decoded model.SignalsSnapshot
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.TrackedRepositoryCount != 1 {
			t.Errorf("TrackedRepositoryCount = %d, want 1", decoded.TrackedRepositoryCount)
		}
	})
}
