package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/johnxie/sourcedrift/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for publishing back into the documentation
// corpus, matching the layout of the long-standing published report.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// printer formats counts with locale-aware thousands separators, so
	// star counts render as 12,345 rather than 12345.
	printer *message.Printer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeTopRepos(md, report)
	w.writeMissing(md, report)
	w.writeUnverified(md, report)
	w.writeMalformed(md, report)
	w.writeFootnotes(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title, the summary table, and a status alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Tutorial Source Verification Report")
	md.PlainText("")
	md.PlainText("Automated verification of source repositories referenced by the tutorial corpus.")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"generated_on", report.GeneratedOn},
			{"tutorials scanned", strconv.Itoa(report.Summary.TutorialsScanned)},
			{"tutorials with source repos", strconv.Itoa(report.Summary.TutorialsWithSourceRepos)},
			{"tutorials without source repos", strconv.Itoa(report.Summary.TutorialsWithoutSourceRepos)},
			{"tutorials with unverified repos", strconv.Itoa(report.Summary.TutorialsWithUnverified)},
			{"unique source repos", strconv.Itoa(report.Summary.UniqueSourceRepos)},
			{"unique verified repos", strconv.Itoa(report.Summary.UniqueVerifiedRepos)},
			{"unique unverified repos", strconv.Itoa(report.Summary.UniqueUnverifiedRepos)},
			{"malformed references", strconv.Itoa(report.Summary.MalformedReferences)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch {
	case report.TimedOut:
		md.Warningf(
			"The run deadline expired before all fetches completed; %d repositories are counted as unverified.",
			report.Summary.UniqueUnverifiedRepos,
		)
	case report.Summary.UniqueUnverifiedRepos > 0:
		md.Importantf(
			"%d referenced repositories could not be verified and may have been renamed, archived, or removed.",
			report.Summary.UniqueUnverifiedRepos,
		)
	default:
		md.Tip("All referenced repositories verified.")
	}
	md.PlainText("")
}

// writeTopRepos writes the ranked verified repositories table.
func (w *MarkdownWriter) writeTopRepos(md *markdown.Markdown, report *model.Report) {
	md.H2("Top Verified Repositories by Stars")
	md.PlainText("")

	if len(report.TopRepos) == 0 {
		md.Note("No repositories were verified this run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.TopRepos))
	for _, meta := range report.TopRepos {
		rows = append(rows, []string{
			fmt.Sprintf("[`%s`](%s)", meta.Repo.String(), meta.HTMLURL),
			w.printer.Sprintf("%d", meta.Stars),
			meta.LastPushDate(),
			yesNo(meta.Archived),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Repository", "Stars", "Last Push", "Archived"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMissing writes the documents with zero references.
func (w *MarkdownWriter) writeMissing(md *markdown.Markdown, report *model.Report) {
	md.H2("Tutorials Missing Source Repository Links")
	md.PlainText("")

	if len(report.Missing) == 0 {
		md.Note("Every tutorial references at least one source repository.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Missing))
	for _, doc := range report.Missing {
		rows = append(rows, []string{
			"`" + doc.Slug + "`",
			"`" + doc.Path + "`",
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Tutorial", "Index Path"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeUnverified writes the documents holding unverified references.
func (w *MarkdownWriter) writeUnverified(md *markdown.Markdown, report *model.Report) {
	md.H2("Tutorials with Unverified Source Repositories")
	md.PlainText("")

	if len(report.Unverified) == 0 {
		md.Note("No tutorials hold unverified source repositories.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Unverified))
	for _, doc := range report.Unverified {
		rows = append(rows, []string{
			"`" + doc.Slug + "`",
			"`" + doc.PrimaryRepo + "`",
			strconv.Itoa(doc.UnverifiedCount),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Tutorial", "Primary Repo", "Unverified Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMalformed writes the references that could not be parsed. The section
// only appears when the corpus actually contains broken links.
func (w *MarkdownWriter) writeMalformed(md *markdown.Markdown, report *model.Report) {
	if len(report.Malformed) == 0 {
		return
	}

	md.H2("Malformed Repository References")
	md.PlainText("")
	md.PlainText("References that look like repository links but could not be parsed:")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Malformed))
	for _, ref := range report.Malformed {
		rows = append(rows, []string{
			"`" + ref.Slug + "`",
			strconv.Itoa(ref.Line),
			"`" + ref.Raw + "`",
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Tutorial", "Line", "Reference"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFootnotes writes ambiguity footnotes when any reference was excluded
// from the canonical set.
func (w *MarkdownWriter) writeFootnotes(md *markdown.Markdown, report *model.Report) {
	if len(report.Footnotes) == 0 {
		return
	}

	md.H2("Footnotes")
	md.PlainText("")
	md.PlainText("References excluded from verification due to conflicting alias entries:")
	md.PlainText("")
	md.BulletList(report.Footnotes...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sourcedrift](https://github.com/johnxie/sourcedrift)*")
}

// yesNo renders a boolean the way the published report always has.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
