package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "retree",
		Short: "Virtual tree reconciliation engine",
		Long: `Retree diffs immutable description trees against a live node tree
and streams minimal patch lists to a render target.

  • Keyed child reconciliation with minimal move sequences
  • Component memoization and lifecycle hooks
  • Command dispatch with reentrancy protection
  • Remote render targets over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		benchCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("retree %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
