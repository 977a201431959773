package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/johnxie/sourcedrift/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
//  1. It works in all terminals without compatibility issues
//  2. It's easier to pipe to files or other tools
//  3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-reference record listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-reference detail.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeTopRepos(&sb, report)
	w.writeMissing(&sb, report)
	w.writeUnverified(&sb, report)
	w.writeMalformed(&sb, report)
	w.writeFootnotes(&sb, report)
	if w.verbose {
		w.writeRecords(&sb, report)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the banner and summary counts.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                 SOURCE VERIFICATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Corpus:                          %s\n", report.CorpusRoot)
	fmt.Fprintf(sb, "Generated On:                    %s\n", report.GeneratedOn)
	if report.TimedOut {
		sb.WriteString("Status:                          TIMED OUT (partial fetches)\n")
	} else {
		sb.WriteString("Status:                          Complete\n")
	}
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Tutorials Scanned:               %d\n", report.Summary.TutorialsScanned)
	fmt.Fprintf(sb, "Tutorials With Source Repos:     %d\n", report.Summary.TutorialsWithSourceRepos)
	fmt.Fprintf(sb, "Tutorials Without Source Repos:  %d\n", report.Summary.TutorialsWithoutSourceRepos)
	fmt.Fprintf(sb, "Tutorials With Unverified Repos: %d\n", report.Summary.TutorialsWithUnverified)
	fmt.Fprintf(sb, "Unique Source Repos:             %d\n", report.Summary.UniqueSourceRepos)
	fmt.Fprintf(sb, "Unique Verified Repos:           %d\n", report.Summary.UniqueVerifiedRepos)
	fmt.Fprintf(sb, "Unique Unverified Repos:         %d\n", report.Summary.UniqueUnverifiedRepos)
	fmt.Fprintf(sb, "Malformed References:            %d\n", report.Summary.MalformedReferences)
	sb.WriteString("\n")
}

// writeTopRepos writes the ranked verified repositories section.
func (w *SimpleWriter) writeTopRepos(sb *strings.Builder, report *model.Report) {
	w.sectionHeader(sb, "TOP VERIFIED REPOSITORIES BY STARS")

	if len(report.TopRepos) == 0 {
		sb.WriteString("  (none verified this run)\n\n")
		return
	}

	fmt.Fprintf(sb, "  %-42s %9s  %-10s  %s\n", "Repository", "Stars", "Last Push", "Archived")
	sb.WriteString("  " + strings.Repeat("-", 68) + "\n")
	for _, meta := range report.TopRepos {
		fmt.Fprintf(sb, "  %-42s %9d  %-10s  %s\n",
			meta.Repo.String(),
			meta.Stars,
			meta.LastPushDate(),
			yesNo(meta.Archived),
		)
	}
	sb.WriteString("\n")
}

// writeMissing writes documents with zero references.
func (w *SimpleWriter) writeMissing(sb *strings.Builder, report *model.Report) {
	w.sectionHeader(sb, "TUTORIALS MISSING SOURCE REPOSITORY LINKS")

	if len(report.Missing) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}

	for _, doc := range report.Missing {
		fmt.Fprintf(sb, "  %s (%s)\n", doc.Slug, doc.Path)
	}
	sb.WriteString("\n")
}

// writeUnverified writes documents with unverified references.
func (w *SimpleWriter) writeUnverified(sb *strings.Builder, report *model.Report) {
	w.sectionHeader(sb, "TUTORIALS WITH UNVERIFIED SOURCE REPOSITORIES")

	if len(report.Unverified) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}

	for _, doc := range report.Unverified {
		fmt.Fprintf(sb, "  %s  primary=%s  unverified=%d\n",
			doc.Slug, doc.PrimaryRepo, doc.UnverifiedCount)
	}
	sb.WriteString("\n")
}

// writeMalformed writes references that could not be parsed. Skipped
// entirely when the corpus has none.
func (w *SimpleWriter) writeMalformed(sb *strings.Builder, report *model.Report) {
	if len(report.Malformed) == 0 {
		return
	}

	w.sectionHeader(sb, "MALFORMED REPOSITORY REFERENCES")
	for _, ref := range report.Malformed {
		fmt.Fprintf(sb, "  %s:%d  %s\n", ref.Slug, ref.Line, ref.Raw)
	}
	sb.WriteString("\n")
}

// writeFootnotes writes excluded ambiguous references.
func (w *SimpleWriter) writeFootnotes(sb *strings.Builder, report *model.Report) {
	if len(report.Footnotes) == 0 {
		return
	}

	w.sectionHeader(sb, "FOOTNOTES")
	for _, note := range report.Footnotes {
		fmt.Fprintf(sb, "  - %s\n", note)
	}
	sb.WriteString("\n")
}

// writeRecords writes the full per-reference classification detail.
func (w *SimpleWriter) writeRecords(sb *strings.Builder, report *model.Report) {
	w.sectionHeader(sb, "PER-REFERENCE RECORDS")

	for _, rec := range report.Records {
		fmt.Fprintf(sb, "  [%-10s] %s: %s", rec.Outcome, rec.Reference.Document, rec.Named.String())
		if rec.Outcome == model.OutcomeRedirected {
			fmt.Fprintf(sb, " -> %s", rec.Canonical.String())
		}
		if rec.Reason != "" {
			fmt.Fprintf(sb, " (%s)", rec.Reason)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// sectionHeader writes a section title with an underline.
func (w *SimpleWriter) sectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
}
