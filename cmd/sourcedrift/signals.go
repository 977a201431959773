package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnxie/sourcedrift/internal/config"
	"github.com/johnxie/sourcedrift/internal/fetch"
	"github.com/johnxie/sourcedrift/internal/model"
	"github.com/johnxie/sourcedrift/internal/report"
)

// NewSignalsCmd creates the signals command.
func NewSignalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Generate a market signals snapshot for tracked repositories",
		Long: `Signals fetches live metadata for the repositories listed in the tracked
section of the configuration file and renders a ranked snapshot: stars,
forks, and last-push recency joined with the tutorial that covers each
repository.

The snapshot is intended to be regenerated on a schedule and committed, so
its ordering is deterministic: stars descending, then push recency, then
repository name.

Examples:
  # Print the snapshot as Markdown
  sourcedrift signals

  # Write the snapshot to the committed status page
  sourcedrift signals -o MARKET_SIGNALS.md

  # JSON output for tooling
  sourcedrift signals --json`,
		Args: cobra.NoArgs,
		RunE: runSignalsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sourcedrift in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON instead of Markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write snapshot to specified file path (creates directories if needed)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent metadata fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each metadata request")

	return cmd
}

// runSignalsCmd executes the signals command.
func runSignalsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}
	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
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

	cfg.File, err = loadConfigFileFor(cfg.ConfigFilePath)
	if err != nil {
		return err
	}
	if len(cfg.File.Tracked) == 0 {
		return errors.New("no tracked repositories configured (add a tracked section to .sourcedrift)")
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	snap, err := buildSnapshot(ctx, cfg, logger)
	if err != nil {
		return err
	}

	output, closeFn, err := openReportOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	writer := report.NewSignalsWriter(output)
	if jsonOut {
		_, err = writer.WriteJSON(snap)
	} else {
		_, err = writer.WriteMarkdown(snap)
	}
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// buildSnapshot fetches metadata for every tracked repository and joins it
// with the tracking entries.
func buildSnapshot(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.SignalsSnapshot, error) {
	tracked := make(map[string]config.TrackedRepo, len(cfg.File.Tracked))
	repos := make([]model.CanonicalRepo, 0, len(cfg.File.Tracked))

	for _, entry := range cfg.File.Tracked {
		repo, err := parseTrackedRepo(entry.Repo)
		if err != nil {
			return nil, err
		}
		if _, dup := tracked[repo.Key()]; dup {
			return nil, fmt.Errorf("duplicate tracked repository: %s", entry.Repo)
		}
		tracked[repo.Key()] = entry
		repos = append(repos, repo)
	}

	client := newGitHubClient(cfg, logger)
	fetcher := fetch.New(client,
		fetch.WithConcurrency(cfg.BatchSize),
		fetch.WithRetry(cfg.RetryAttempts, config.DefaultRetryBaseDelay),
		fetch.WithLogger(logger),
	)

	metadata, err := fetcher.FetchAll(ctx, repos)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	signals, failed := buildSignals(tracked, metadata, time.Now().UTC(), logger)

	if len(signals) == 0 {
		return nil, fmt.Errorf("no tracked repository could be fetched (%d failures)", len(failed))
	}
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d tracked repositories could not be fetched: %s\n",
			len(failed), strings.Join(failed, ", "))
	}

	return model.NewSignalsSnapshot(signals), nil
}

// buildSignals joins fetched metadata with the tracking entries. Entries
// whose fetch failed, or that came back without a push timestamp, land in
// the failed list (sorted, so the warning is stable across runs) instead of
// the snapshot. The snapshot ranks by push recency, so a repository without
// a pushed_at has no honest place in it.
func buildSignals(tracked map[string]config.TrackedRepo, metadata map[string]*model.RepoMetadata, now time.Time, logger *slog.Logger) ([]model.RepoSignal, []string) {
	signals := make([]model.RepoSignal, 0, len(metadata))
	var failed []string

	for key, meta := range metadata {
		entry := tracked[key]
		if !meta.Status.OK() {
			failed = append(failed, entry.Repo)
			logger.Warn("tracked repository fetch failed",
				"repo", entry.Repo,
				"status", meta.Status,
				"reason", meta.Reason,
			)
			continue
		}
		if meta.PushedAt.IsZero() {
			failed = append(failed, entry.Repo)
			logger.Warn("tracked repository metadata missing pushed_at",
				"repo", entry.Repo,
			)
			continue
		}

		days := int(now.Sub(meta.PushedAt).Hours() / 24)
		if days < 0 {
			days = 0
		}

		signals = append(signals, model.RepoSignal{
			Repo:          meta.Repo.String(),
			RepoURL:       meta.Repo.URL(),
			TutorialPath:  entry.TutorialPath,
			TutorialLabel: entry.TutorialLabel,
			Why:           entry.Why,
			Stars:         meta.Stars,
			Forks:         meta.Forks,
			OpenIssues:    meta.OpenIssues,
			PushedAt:      meta.PushedAt,
			PushedDate:    meta.LastPushDate(),
			DaysSincePush: days,
		})
	}

	sort.Strings(failed)
	return signals, failed
}

// parseTrackedRepo parses an owner/name tracking entry.
func parseTrackedRepo(raw string) (model.CanonicalRepo, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return model.CanonicalRepo{}, fmt.Errorf("invalid tracked repository %q (expected owner/name)", raw)
	}
	return model.CanonicalRepo{
		Host:  model.DefaultHost,
		Owner: parts[0],
		Name:  parts[1],
	}, nil
}
