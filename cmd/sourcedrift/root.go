// Package main provides the entry point for the sourcedrift CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errUnverifiedRepos signals that the run completed but some referenced
// repositories could not be verified. It maps to exit code 2 so CI can
// distinguish "corpus has broken links" from "the tool itself failed".
var errUnverifiedRepos = errors.New("unverified source repositories found")

// NewRootCmd creates the root command for sourcedrift.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sourcedrift",
		Short: "Verify the source repositories referenced by a tutorial corpus",
		Long: `sourcedrift verifies the GitHub repositories referenced by a Markdown
tutorial corpus. It extracts repository links, resolves known renames to
canonical identities, fetches live metadata concurrently, and reports which
references are verified, redirected, or broken.

Runs can be saved to a local history database, and the drift command diffs
two saved runs to surface star movement, archive flips, and repositories
that stopped resolving.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewSignalsCmd())
	cmd.AddCommand(NewDriftCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
// Exit codes: 0 on success, 2 when the corpus parsed cleanly but contains
// unverified repositories, 1 for all other failures.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, errUnverifiedRepos) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
