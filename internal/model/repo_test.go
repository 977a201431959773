package model

import (
	"testing"
	"time"
)

// TestCanonicalRepoKey tests the case-insensitive comparison key.
func TestCanonicalRepoKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    CanonicalRepo
		b    CanonicalRepo
		same bool
	}{
		{
			name: "identical repos share a key",
			a:    CanonicalRepo{Host: "github.com", Owner: "langgenius", Name: "dify"},
			b:    CanonicalRepo{Host: "github.com", Owner: "langgenius", Name: "dify"},
			same: true,
		},
		{
			name: "case differences collapse to one key",
			a:    CanonicalRepo{Host: "github.com", Owner: "LangGenius", Name: "Dify"},
			b:    CanonicalRepo{Host: "github.com", Owner: "langgenius", Name: "dify"},
			same: true,
		},
		{
			name: "different owners produce different keys",
			a:    CanonicalRepo{Host: "github.com", Owner: "langgenius", Name: "dify"},
			b:    CanonicalRepo{Host: "github.com", Owner: "other", Name: "dify"},
			same: false,
		},
		{
			name: "different hosts produce different keys",
			a:    CanonicalRepo{Host: "github.com", Owner: "owner", Name: "repo"},
			b:    CanonicalRepo{Host: "gitlab.com", Owner: "owner", Name: "repo"},
			same: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.a.Key() == tt.b.Key(); got != tt.same {
				t.Errorf("Key() equality = %v, want %v (%q vs %q)", got, tt.same, tt.a.Key(), tt.b.Key())
			}
		})
	}
}

// TestCanonicalRepoString tests display and URL formatting.
func TestCanonicalRepoString(t *testing.T) {
	t.Parallel()

	repo := CanonicalRepo{Host: "github.com", Owner: "firecrawl", Name: "firecrawl"}

	if got, want := repo.String(), "firecrawl/firecrawl"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := repo.URL(), "https://github.com/firecrawl/firecrawl"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
	if repo.IsZero() {
		t.Error("IsZero() = true for a populated repo")
	}
	if !(CanonicalRepo{}).IsZero() {
		t.Error("IsZero() = false for the zero value")
	}
}

// TestFetchStatusOK tests the success predicate.
func TestFetchStatusOK(t *testing.T) {
	t.Parallel()

	if !FetchStatusOK.OK() {
		t.Error("FetchStatusOK.OK() = false")
	}
	for _, status := range []FetchStatus{FetchStatusNotFound, FetchStatusRateLimited, FetchStatusError} {
		if status.OK() {
			t.Errorf("%s.OK() = true, want false", status)
		}
	}
}

// TestRepoMetadataLastPushDate tests push date formatting.
func TestRepoMetadataLastPushDate(t *testing.T) {
	t.Parallel()

	t.Run("formats known timestamps as a date", func(t *testing.T) {
		t.Parallel()

		meta := &RepoMetadata{
			PushedAt: time.Date(2026, 8, 14, 22, 5, 0, 0, time.UTC),
		}
		if got, want := meta.LastPushDate(), "2026-08-14"; got != want {
			t.Errorf("LastPushDate() = %q, want %q", got, want)
		}
	})

	t.Run("reports n/a for unknown timestamps", func(t *testing.T) {
		t.Parallel()

		meta := &RepoMetadata{}
		if got, want := meta.LastPushDate(), "n/a"; got != want {
			t.Errorf("LastPushDate() = %q, want %q", got, want)
		}
	})
}
