package extract

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/johnxie/sourcedrift/internal/model"
)

// repoLinkRE matches well-formed GitHub repository URLs. Trailing path,
// query, and fragment segments are consumed so the raw reference captures
// the link as written.
var repoLinkRE = regexp.MustCompile(
	`https://github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)(?:[/?#][^)\s"'>]*)?`)

// partialLinkRE matches anything that starts like a GitHub URL, including
// truncated links such as "https://github.com/owner". Candidates matched
// here but not by repoLinkRE are recorded as malformed references.
var partialLinkRE = regexp.MustCompile(`https://github\.com/[^)\s"'>]*`)

// shorthandRE matches a bare owner/repo token standing alone on a line,
// optionally as a list item and optionally backticked. The narrow shape is
// deliberate: shorthand is only trusted inside a Source References section,
// and even there a token embedded in prose is too ambiguous to extract.
var shorthandRE = regexp.MustCompile(
	"^\\s*(?:[-*]\\s+)?`?([A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+)`?\\s*$")

// sectionHeadingRE matches any markdown heading, used to detect section
// boundaries.
var sectionHeadingRE = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)

// Extractor scans corpus documents for source repository references.
// The zero value is not usable; create instances with New.
type Extractor struct {
	logger *slog.Logger

	// self is the lowercased owner/name of the documentation repository
	// itself. Links back to it are navigation, not source references.
	self string

	// ignore holds lowercased owner/name identities excluded from
	// extraction.
	ignore map[string]bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithSelfRepo sets the owner/name of the documentation repository itself,
// whose links are skipped during extraction.
func WithSelfRepo(ownerName string) Option {
	return func(e *Extractor) {
		e.self = strings.ToLower(ownerName)
	}
}

// WithIgnoreList sets owner/name identities to exclude from extraction.
func WithIgnoreList(repos []string) Option {
	return func(e *Extractor) {
		for _, repo := range repos {
			e.ignore[strings.ToLower(repo)] = true
		}
	}
}

// New creates an Extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		ignore: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract scans the corpus rooted at root and returns one TutorialDocument
// per scanned document, in slug order. Documents without references are
// included.
//
// Corpus layout: when root contains a tutorials/ directory, each
// tutorials/<name>/index.md is scanned as one document. Otherwise every
// *.md file under root is scanned, with its relative path as the slug.
func (e *Extractor) Extract(ctx context.Context, root string) ([]model.TutorialDocument, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, root)
	}

	paths, err := e.documentPaths(root)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, root)
	}

	docs := make([]model.TutorialDocument, 0, len(paths))
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := os.ReadFile(filepath.Join(root, p.path)) //nolint:gosec // Paths come from the corpus walk
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", p.path, err)
		}

		refs := e.extractReferences(p.slug, string(data))
		docs = append(docs, model.TutorialDocument{
			Slug:       p.slug,
			Path:       p.path,
			References: refs,
		})

		e.logger.Debug("scanned document",
			"slug", p.slug,
			"references", len(refs),
		)
	}

	return docs, nil
}

// documentRef pairs a document slug with its corpus-relative path.
type documentRef struct {
	slug string
	path string
}

// documentPaths lists the documents to scan, sorted by slug for
// deterministic run order.
func (e *Extractor) documentPaths(root string) ([]documentRef, error) {
	tutorialsDir := filepath.Join(root, "tutorials")
	if info, err := os.Stat(tutorialsDir); err == nil && info.IsDir() {
		return tutorialIndexes(tutorialsDir)
	}
	return markdownFiles(root)
}

// tutorialIndexes lists tutorials/<name>/index.md documents.
func tutorialIndexes(tutorialsDir string) ([]documentRef, error) {
	entries, err := os.ReadDir(tutorialsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tutorials directory: %w", err)
	}

	var docs []documentRef
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		indexPath := filepath.Join("tutorials", entry.Name(), "index.md")
		if _, err := os.Stat(filepath.Join(tutorialsDir, entry.Name(), "index.md")); err != nil {
			continue
		}
		docs = append(docs, documentRef{slug: entry.Name(), path: indexPath})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].slug < docs[j].slug })
	return docs, nil
}

// markdownFiles lists every *.md file under root, skipping dot directories.
func markdownFiles(root string) ([]documentRef, error) {
	var docs []documentRef
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		docs = append(docs, documentRef{
			slug: strings.TrimSuffix(filepath.ToSlash(rel), ".md"),
			path: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].slug < docs[j].slug })
	return docs, nil
}

// extractReferences scans one document's text for references.
// References are returned in order of appearance and are not deduplicated;
// collapsing duplicates is the resolver's and fetcher's concern.
func (e *Extractor) extractReferences(slug, text string) []model.SourceReference {
	var refs []model.SourceReference

	inFence := false
	inSourceSection := false

	for lineNo, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := sectionHeadingRE.FindStringSubmatch(line); m != nil {
			inSourceSection = isSourceSectionHeading(m[1])
		}

		refs = append(refs, e.lineReferences(slug, lineNo+1, line, inSourceSection)...)
	}

	return refs
}

// lineReferences extracts references from one line of text.
func (e *Extractor) lineReferences(slug string, lineNo int, line string, inSourceSection bool) []model.SourceReference {
	var refs []model.SourceReference

	wellFormed := make(map[string]bool)
	for _, m := range repoLinkRE.FindAllStringSubmatch(line, -1) {
		raw, owner, name := m[0], m[1], strings.TrimSuffix(m[2], ".git")
		wellFormed[raw] = true
		if e.skip(owner, name) {
			continue
		}
		refs = append(refs, model.SourceReference{
			Raw:      raw,
			Document: slug,
			Line:     lineNo,
		})
	}

	// Anything URL-shaped that the strict pattern did not accept is a
	// malformed reference: recorded, flagged, surfaced in the report.
	for _, raw := range partialLinkRE.FindAllString(line, -1) {
		if wellFormed[raw] {
			continue
		}
		refs = append(refs, model.SourceReference{
			Raw:       raw,
			Document:  slug,
			Line:      lineNo,
			Malformed: true,
		})
		e.logger.Warn("malformed repository reference",
			"document", slug,
			"line", lineNo,
			"raw", raw,
		)
	}

	if inSourceSection && len(refs) == 0 {
		if m := shorthandRE.FindStringSubmatch(line); m != nil {
			token := m[1]
			owner, name, _ := strings.Cut(token, "/")
			if !e.skip(owner, strings.TrimSuffix(name, ".git")) {
				refs = append(refs, model.SourceReference{
					Raw:      token,
					Document: slug,
					Line:     lineNo,
				})
			}
		}
	}

	return refs
}

// skip reports whether the owner/name identity is the corpus repository
// itself or on the ignore list.
func (e *Extractor) skip(owner, name string) bool {
	full := strings.ToLower(owner + "/" + name)
	return full == e.self || e.ignore[full]
}

// isSourceSectionHeading reports whether a heading opens a section whose
// bare owner/repo tokens should be trusted as references.
func isSourceSectionHeading(heading string) bool {
	h := strings.ToLower(heading)
	return strings.Contains(h, "source reference") ||
		strings.Contains(h, "source repositor")
}
