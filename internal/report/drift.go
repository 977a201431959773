package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/johnxie/sourcedrift/internal/drift"
)

// DriftWriter renders a drift comparison between two stored runs.
type DriftWriter struct {
	baseWriter

	printer *message.Printer
}

// NewDriftWriter creates a DriftWriter that outputs to the given writer.
func NewDriftWriter(output io.Writer) *DriftWriter {
	return &DriftWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
}

// WriteMarkdown renders the diff as a Markdown document.
func (w *DriftWriter) WriteMarkdown(diff *drift.Diff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Source Drift Report")
	md.PlainText("")
	md.PlainTextf("Comparing run %d (%s) against run %d (%s).",
		diff.PrevRunID, diff.PrevDate, diff.CurrRunID, diff.CurrDate)
	md.PlainText("")

	if !diff.HasChanges() {
		md.Note("No drift detected between the two runs.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	if len(diff.Deltas) > 0 {
		md.H2("Star And Fork Movement")
		md.PlainText("")

		rows := make([][]string, 0, len(diff.Deltas))
		for _, delta := range diff.Deltas {
			rows = append(rows, []string{
				fmt.Sprintf("`%s`", delta.Repo),
				w.printer.Sprintf("%d", delta.PrevStars),
				w.printer.Sprintf("%d", delta.CurrStars),
				signed(w.printer, delta.StarsDelta),
				signed(w.printer, delta.ForksDelta),
			})
		}

		md.Table(markdown.TableSet{
			Header: []string{"Repo", "Stars Before", "Stars After", "Star Delta", "Fork Delta"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(diff.StatusChanges) > 0 {
		md.H2("Status Transitions")
		md.PlainText("")

		rows := make([][]string, 0, len(diff.StatusChanges))
		for _, change := range diff.StatusChanges {
			rows = append(rows, []string{
				fmt.Sprintf("`%s`", change.Repo),
				change.From.String(),
				change.To.String(),
			})
		}

		md.Table(markdown.TableSet{
			Header: []string{"Repo", "Previous Status", "Current Status"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(diff.NewlyArchived) > 0 {
		md.H2("Newly Archived")
		md.PlainText("")
		md.BulletList(diff.NewlyArchived...)
		md.PlainText("")
	}

	if len(diff.Added) > 0 {
		md.H2("Added Repositories")
		md.PlainText("")
		md.BulletList(diff.Added...)
		md.PlainText("")
	}

	if len(diff.Removed) > 0 {
		md.H2("Removed Repositories")
		md.PlainText("")
		md.BulletList(diff.Removed...)
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// WriteJSON renders the diff as pretty-printed JSON.
func (w *DriftWriter) WriteJSON(diff *drift.Diff) (int, error) {
	data, err := json.MarshalIndent(diff, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// signed formats a delta with an explicit sign so gains and losses read
// unambiguously in the table.
func signed(printer *message.Printer, n int) string {
	if n > 0 {
		return "+" + printer.Sprintf("%d", n)
	}
	return printer.Sprintf("%d", n)
}
