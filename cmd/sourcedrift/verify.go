package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnxie/sourcedrift/internal/config"
	"github.com/johnxie/sourcedrift/internal/database"
	"github.com/johnxie/sourcedrift/internal/extract"
	"github.com/johnxie/sourcedrift/internal/fetch"
	"github.com/johnxie/sourcedrift/internal/github"
	"github.com/johnxie/sourcedrift/internal/log"
	"github.com/johnxie/sourcedrift/internal/model"
	"github.com/johnxie/sourcedrift/internal/pipeline"
	"github.com/johnxie/sourcedrift/internal/report"
	"github.com/johnxie/sourcedrift/internal/resolve"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <corpus-dir>",
		Short: "Verify source repository references in a tutorial corpus",
		Long: `Verify scans a Markdown tutorial corpus for GitHub repository references
and checks each one against the live GitHub API.

For every referenced repository it reports one of:
- verified:   the reference resolves to a live repository under its own name
- redirected: the reference is a known rename; the canonical repository is live
- unverified: the repository could not be confirmed (missing, rate limited,
  or unreachable)

Documents with no repository references at all are listed separately so
missing attribution is visible, not silently ignored.

Examples:
  # Verify a corpus and print a human-readable report
  sourcedrift verify ./tutorials

  # Write a Markdown report, the format used for committed status pages
  sourcedrift verify --markdown -o SOURCES.md ./tutorials

  # JSON output for tooling
  sourcedrift verify --json ./tutorials

  # Save the run for later drift comparison
  sourcedrift verify --save ./tutorials

Configuration file (.sourcedrift) example:
  self: johnxie/awesome-tutorials
  ignore:
    - badges/shields
  aliases:
    old-owner/old-name: new-owner/new-name
  tracked:
    - repo: langgenius/dify
      tutorial_path: tutorials/dify/index.md
      tutorial_label: Dify Deep Dive
      why: Largest open-source LLM app platform`,
		Args: cobra.ExactArgs(1),
		RunE: runVerifyCmd,
	}

	// Fetch behavior flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent metadata fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each metadata request")
	cmd.Flags().DurationP("run-timeout", "T", config.DefaultRunTimeout,
		"Deadline for the whole run; unfetched repositories are reported as errors")
	cmd.Flags().IntP("retries", "r", config.DefaultRetryAttempts,
		"Retry budget for transient fetch failures")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sourcedrift in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Int("top", 0,
		"Number of verified repositories in the top-by-stars table (0 = default)")

	// History flags
	cmd.Flags().BoolP("save", "s", false,
		"Save the run to the history database for drift comparison")

	return cmd
}

// runVerifyCmd executes the verify command.
func runVerifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runVerify(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RunTimeout, err = cmd.Flags().GetDuration("run-timeout")
	if err != nil {
		return nil, err
	}

	cfg.RetryAttempts, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load aliases, ignore list, and tracked repos from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	cfg.File, err = loadConfigFileFor(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.TopRepoLimit, err = cmd.Flags().GetInt("top")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional argument: the corpus directory
	cfg.CorpusRoot = filepath.Clean(args[0])

	return cfg, nil
}

// loadConfigFileFor resolves and loads the YAML configuration file.
// An explicitly specified path that does not exist is an error; an absent
// default file yields an empty configuration.
func loadConfigFileFor(explicitPath string) (*config.File, error) {
	configPath := config.FindConfigFile(explicitPath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		return file, nil
	}

	if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	return &config.File{Aliases: make(map[string]string)}, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// All log output passes through the redacting handler so API tokens never
// reach the terminal or CI logs.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewRedactHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// newGitHubClient builds the API client shared by verify and signals.
func newGitHubClient(cfg *config.Config, logger *slog.Logger) *github.Client {
	opts := []github.ClientOption{
		github.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
		github.WithLogger(logger),
	}
	if cfg.Token != "" {
		opts = append(opts, github.WithToken(cfg.Token))
	}
	return github.NewClient(opts...)
}

// runVerify executes the verification run.
func runVerify(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting verification",
		"corpus", cfg.CorpusRoot,
		"batchSize", cfg.BatchSize,
		"runTimeout", cfg.RunTimeout,
		"authenticated", cfg.Token != "",
	)

	resolver, err := resolve.New(cfg.File.Aliases, resolve.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build resolver: %w", err)
	}

	extractor := extract.New(
		extract.WithLogger(logger),
		extract.WithSelfRepo(cfg.File.Self),
		extract.WithIgnoreList(cfg.File.Ignore),
	)

	client := newGitHubClient(cfg, logger)
	fetcher := fetch.New(client,
		fetch.WithConcurrency(cfg.BatchSize),
		fetch.WithRetry(cfg.RetryAttempts, config.DefaultRetryBaseDelay),
		fetch.WithLogger(logger),
	)

	p := pipeline.DefaultPipeline(
		extractor,
		resolver,
		fetcher,
		cfg.RunTimeout,
		cfg.TopRepoLimit,
		pipeline.WithLogger(logger),
	)

	run := model.NewRun(cfg.CorpusRoot)

	startTime := time.Now()
	if err := p.Execute(ctx, run); err != nil {
		return err
	}
	elapsed := time.Since(startTime)

	logger.Info("verification completed",
		"elapsed", elapsed.Round(time.Millisecond),
		"documents", len(run.Documents),
		"uniqueRepos", run.Report.Summary.UniqueSourceRepos,
		"unverified", run.Report.Summary.UniqueUnverifiedRepos,
	)

	if err := outputReport(cfg, run.Report); err != nil {
		return err
	}

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg, run, logger); err != nil {
			return err
		}
	}

	if run.Report.Summary.UniqueUnverifiedRepos > 0 {
		return fmt.Errorf("%w: %d of %d unique repositories",
			errUnverifiedRepos,
			run.Report.Summary.UniqueUnverifiedRepos,
			run.Report.Summary.UniqueSourceRepos,
		)
	}

	return nil
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, rep *model.Report) error {
	output, closeFn, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeFn()

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// openReportOutput returns the report destination and a close function.
// An empty path means stdout, which must not be closed.
func openReportOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// saveRun persists the run to the history database.
func saveRun(ctx context.Context, cfg *config.Config, run *model.Run, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to history database",
		"runID", runID,
		"db", db.Path(),
	)
	fmt.Fprintf(os.Stderr, "Run saved to history database (id=%d)\n", runID)
	return nil
}
