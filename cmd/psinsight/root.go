// Package main provides the entry point for the psinsight CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for psinsight.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "psinsight",
		Short: "Website performance reports from PageSpeed Insights",
		Long: `psinsight fetches website performance data from the Google PageSpeed
Insights API and renders human-readable reports.

Each URL is analyzed under both the desktop and mobile strategies. Reports
show the overall performance score, the core timing metrics, and the
improvement opportunities the API suggests.

An API key is read from the --api-key flag, the configuration file, or the
PAGESPEED_API_KEY environment variable, in that order.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
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
