package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/johnxie/sourcedrift/internal/model"
)

// writeTutorial creates tutorials/<slug>/index.md under root.
func writeTutorial(t *testing.T, root, slug, content string) {
	t.Helper()

	dir := filepath.Join(root, "tutorials", slug)
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("failed to create tutorial dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write tutorial: %v", err)
	}
}

// rawRefs flattens extracted references into their raw strings.
func rawRefs(doc model.TutorialDocument) []string {
	out := make([]string, 0, len(doc.References))
	for _, ref := range doc.References {
		out = append(out, ref.Raw)
	}
	return out
}

// TestExtractTutorialLayout tests the tutorials/<name>/index.md layout.
func TestExtractTutorialLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTutorial(t, root, "dify-tutorial", `# Dify

The source lives at [Dify](https://github.com/langgenius/dify).
`)
	writeTutorial(t, root, "aider-tutorial", `# Aider

No repository links here at all.
`)

	docs, err := New().Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	// Documents come back in slug order
	if docs[0].Slug != "aider-tutorial" || docs[1].Slug != "dify-tutorial" {
		t.Errorf("slugs = [%s, %s], want [aider-tutorial, dify-tutorial]", docs[0].Slug, docs[1].Slug)
	}
	if docs[0].HasReferences() {
		t.Errorf("aider-tutorial references = %v, want none", rawRefs(docs[0]))
	}
	if got := rawRefs(docs[1]); len(got) != 1 || got[0] != "https://github.com/langgenius/dify" {
		t.Errorf("dify-tutorial references = %v", got)
	}
}

// TestExtractFlatLayout tests the fallback walk over *.md files.
func TestExtractFlatLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "guides"), 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files := map[string]string{
		"README.md":          "See https://github.com/firecrawl/firecrawl for details.\n",
		"guides/setup.md":    "Install from https://github.com/langgenius/dify first.\n",
		"guides/notes.txt":   "https://github.com/ignored/because-not-markdown\n",
		".git/HEAD.md":       "https://github.com/ignored/because-dot-dir\n",
	}
	for path, content := range files {
		if err := os.WriteFile(filepath.Join(root, path), []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	docs, err := New().Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2 (got %+v)", len(docs), docs)
	}
	if docs[0].Slug != "README" || docs[1].Slug != "guides/setup" {
		t.Errorf("slugs = [%s, %s]", docs[0].Slug, docs[1].Slug)
	}
}

// TestExtractReferences tests reference extraction rules inside a document.
func TestExtractReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		content       string
		wantRaw       []string
		wantMalformed []bool
	}{
		{
			name:    "deep link captured as written",
			content: "See https://github.com/langgenius/dify/tree/main/docs for docs.\n",
			wantRaw: []string{"https://github.com/langgenius/dify/tree/main/docs"},
		},
		{
			name: "fenced code blocks are skipped",
			content: "```bash\ngit clone https://github.com/langgenius/dify\n```\n" +
				"https://github.com/firecrawl/firecrawl\n",
			wantRaw: []string{"https://github.com/firecrawl/firecrawl"},
		},
		{
			name:          "truncated link recorded as malformed",
			content:       "Broken: https://github.com/owner-only\n",
			wantRaw:       []string{"https://github.com/owner-only"},
			wantMalformed: []bool{true},
		},
		{
			name: "duplicates are kept",
			content: "https://github.com/langgenius/dify\n" +
				"https://github.com/langgenius/dify\n",
			wantRaw: []string{
				"https://github.com/langgenius/dify",
				"https://github.com/langgenius/dify",
			},
		},
		{
			name: "shorthand trusted only in source sections",
			content: "langgenius/dify\n" +
				"## Source References\n" +
				"- `firecrawl/firecrawl`\n" +
				"## Other Section\n" +
				"owner/after-section\n",
			wantRaw: []string{"firecrawl/firecrawl"},
		},
		{
			name:    "shorthand in prose is not extracted",
			content: "## Source References\nThe firecrawl/firecrawl repo is great.\n",
			wantRaw: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			writeTutorial(t, root, "doc", tt.content)

			docs, err := New().Extract(context.Background(), root)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if len(docs) != 1 {
				t.Fatalf("len(docs) = %d, want 1", len(docs))
			}

			got := rawRefs(docs[0])
			if len(got) != len(tt.wantRaw) {
				t.Fatalf("references = %v, want %v", got, tt.wantRaw)
			}
			for i := range got {
				if got[i] != tt.wantRaw[i] {
					t.Errorf("references[%d] = %q, want %q", i, got[i], tt.wantRaw[i])
				}
			}
			if tt.wantMalformed != nil {
				for i, want := range tt.wantMalformed {
					if docs[0].References[i].Malformed != want {
						t.Errorf("references[%d].Malformed = %v, want %v", i, docs[0].References[i].Malformed, want)
					}
				}
			}
		})
	}
}

// TestExtractLineNumbers tests that references carry their source line.
func TestExtractLineNumbers(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTutorial(t, root, "doc", "# Title\n\nhttps://github.com/langgenius/dify\n")

	docs, err := New().Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := docs[0].References[0].Line; got != 3 {
		t.Errorf("Line = %d, want 3", got)
	}
}

// TestExtractSelfAndIgnore tests the self-repo and ignore-list filters.
func TestExtractSelfAndIgnore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTutorial(t, root, "doc", `Back to [the index](https://github.com/johnxie/awesome-tutorials).
Template: https://github.com/badges/shields
Real: https://github.com/langgenius/dify
`)

	extractor := New(
		WithSelfRepo("JohnXie/Awesome-Tutorials"),
		WithIgnoreList([]string{"Badges/Shields"}),
	)
	docs, err := extractor.Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	got := rawRefs(docs[0])
	if len(got) != 1 || got[0] != "https://github.com/langgenius/dify" {
		t.Errorf("references = %v, want only the dify link", got)
	}
}

// TestExtractErrors tests corpus-level failure modes.
func TestExtractErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing corpus directory", func(t *testing.T) {
		t.Parallel()

		_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrCorpusNotFound) {
			t.Errorf("Extract() error = %v, want ErrCorpusNotFound", err)
		}
	})

	t.Run("corpus without documents", func(t *testing.T) {
		t.Parallel()

		_, err := New().Extract(context.Background(), t.TempDir())
		if !errors.Is(err, ErrNoDocuments) {
			t.Errorf("Extract() error = %v, want ErrNoDocuments", err)
		}
	})

	t.Run("cancelled context aborts the scan", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTutorial(t, root, "doc", "https://github.com/langgenius/dify\n")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := New().Extract(ctx, root); !errors.Is(err, context.Canceled) {
			t.Errorf("Extract() error = %v, want context.Canceled", err)
		}
	})
}
