package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnxie/sourcedrift/internal/config"
	"github.com/johnxie/sourcedrift/internal/database"
	"github.com/johnxie/sourcedrift/internal/drift"
	"github.com/johnxie/sourcedrift/internal/report"
)

// NewDriftCmd creates the drift command.
func NewDriftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Compare the two most recent saved runs",
		Long: `Drift compares repository snapshots between two saved verification runs
and reports what moved: star and fork deltas, repositories that flipped to
archived, fetch status transitions (e.g. a repository that stopped
resolving), and repositories added to or removed from the corpus.

By default the two most recent runs are compared. Use --prev and --curr to
compare specific runs; run IDs are printed by verify --save.

Examples:
  # Compare the two most recent runs
  sourcedrift drift

  # Compare two specific runs
  sourcedrift drift --prev 3 --curr 7

  # Restrict to runs of one corpus
  sourcedrift drift --corpus ./tutorials

  # JSON output for tooling
  sourcedrift drift --json`,
		Args: cobra.NoArgs,
		RunE: runDriftCmd,
	}

	cmd.Flags().Int64("prev", 0, "Run ID of the earlier run (default: second most recent)")
	cmd.Flags().Int64("curr", 0, "Run ID of the later run (default: most recent)")
	cmd.Flags().String("corpus", "", "Only consider runs for this corpus root")
	cmd.Flags().BoolP("json", "j", false, "Output JSON instead of Markdown")
	cmd.Flags().StringP("output", "o", "", "Write comparison to specified file path")

	return cmd
}

// runDriftCmd executes the drift command.
func runDriftCmd(cmd *cobra.Command, _ []string) error {
	prevID, err := cmd.Flags().GetInt64("prev")
	if err != nil {
		return err
	}
	currID, err := cmd.Flags().GetInt64("curr")
	if err != nil {
		return err
	}
	corpus, err := cmd.Flags().GetString("corpus")
	if err != nil {
		return err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	ctx := context.Background()

	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no run history available: %w", err)
	}
	defer db.Close()

	prevRun, currRun, err := selectRuns(ctx, db, corpus, prevID, currID)
	if err != nil {
		return err
	}

	prevSnaps, err := db.GetSnapshots(ctx, prevRun.ID)
	if err != nil {
		return err
	}
	currSnaps, err := db.GetSnapshots(ctx, currRun.ID)
	if err != nil {
		return err
	}

	diff := drift.Compare(prevRun, currRun, prevSnaps, currSnaps)

	output, closeFn, err := openReportOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	writer := report.NewDriftWriter(output)
	if jsonOut {
		_, err = writer.WriteJSON(diff)
	} else {
		_, err = writer.WriteMarkdown(diff)
	}
	if err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}
	return nil
}

// selectRuns picks the two runs to compare. Explicit IDs win; otherwise the
// two most recent runs (optionally filtered by corpus) are used.
func selectRuns(ctx context.Context, db *database.HistoryDB, corpus string, prevID, currID int64) (prev, curr database.RunSummary, err error) {
	if (prevID == 0) != (currID == 0) {
		return prev, curr, fmt.Errorf("--prev and --curr must be given together")
	}

	if prevID != 0 {
		if prevID == currID {
			return prev, curr, fmt.Errorf("--prev and --curr must differ")
		}
		runs, err := db.ListRuns(ctx, corpus, 0)
		if err != nil {
			return prev, curr, err
		}
		var foundPrev, foundCurr bool
		for _, run := range runs {
			switch run.ID {
			case prevID:
				prev, foundPrev = run, true
			case currID:
				curr, foundCurr = run, true
			}
		}
		if !foundPrev {
			return prev, curr, fmt.Errorf("run %d not found", prevID)
		}
		if !foundCurr {
			return prev, curr, fmt.Errorf("run %d not found", currID)
		}
		return prev, curr, nil
	}

	runs, err := db.ListRuns(ctx, corpus, 2)
	if err != nil {
		return prev, curr, err
	}
	if len(runs) < 2 {
		return prev, curr, fmt.Errorf("need at least two saved runs to compare, have %d (run verify --save)", len(runs))
	}

	// ListRuns returns newest first
	return runs[1], runs[0], nil
}
