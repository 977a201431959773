package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/johnxie/sourcedrift/internal/model"
)

// SignalsWriter renders a market signals snapshot.
// The snapshot is a separate document from the verification report, so it
// carries its own writer instead of overloading the Writer interface.
type SignalsWriter struct {
	baseWriter

	printer *message.Printer
}

// NewSignalsWriter creates a SignalsWriter that outputs to the given
// writer.
func NewSignalsWriter(output io.Writer) *SignalsWriter {
	return &SignalsWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
}

// WriteMarkdown renders the snapshot as a Markdown document.
func (w *SignalsWriter) WriteMarkdown(snap *model.SignalsSnapshot) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Market Signals Snapshot")
	md.PlainText("")
	md.PlainText("Auto-generated competitive snapshot for tracked coding-agent ecosystems.")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"generated_on", snap.GeneratedOn},
			{"tracked_repositories", strconv.Itoa(snap.TrackedRepositoryCount)},
		},
	})
	md.PlainText("")

	rows := make([][]string, 0, len(snap.Signals))
	for _, sig := range snap.Signals {
		rows = append(rows, []string{
			fmt.Sprintf("[`%s`](%s)", sig.Repo, sig.RepoURL),
			w.printer.Sprintf("%d", sig.Stars),
			w.printer.Sprintf("%d", sig.Forks),
			fmt.Sprintf("%s (%dd ago)", sig.PushedDate, sig.DaysSincePush),
			fmt.Sprintf("[%s](%s)", sig.TutorialLabel, sig.TutorialPath),
			sig.Why,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Repo", "Stars", "Forks", "Last Push", "Tutorial", "Why It Matters"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteJSON renders the snapshot as pretty-printed JSON.
func (w *SignalsWriter) WriteJSON(snap *model.SignalsSnapshot) (int, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
