package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webperf-tools/psinsight/internal/config"
	"github.com/webperf-tools/psinsight/internal/database"
	"github.com/webperf-tools/psinsight/internal/model"
)

// NewHistoryCmd creates the history command.
// This command lists stored analysis results from the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List stored analysis history",
		Long: `History lists analysis results stored in the local database.

Every successful 'psinsight analyze' run is saved (unless --no-save was
given), one row per URL and strategy.

Examples:
  # List analysis history for a page
  psinsight history https://example.com

  # List all analyzed URLs in the database
  psinsight history --list-urls`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-urls", "l", false,
		"List all analyzed URLs in the database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listURLs, err := cmd.Flags().GetBool("list-urls")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	if !listURLs && len(args) == 0 {
		return errors.New("url is required (use --list-urls to see analyzed URLs)")
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listURLs {
		return listAnalyzedURLs(ctx, db)
	}

	return listAnalysisHistory(ctx, db, args[0])
}

// listAnalyzedURLs lists all URLs that have analysis records in the database.
func listAnalyzedURLs(ctx context.Context, db *database.HistoryDB) error {
	urls, err := db.ListURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list urls: %w", err)
	}

	if len(urls) == 0 {
		fmt.Println("No analyzed URLs found in the database.")
		fmt.Println("\nUse 'psinsight analyze <url>' to analyze a page.")
		return nil
	}

	fmt.Printf("Analyzed URLs (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Printf("  • %s\n", u)
	}
	fmt.Println("\nUse 'psinsight history <url>' to see the analysis history for a page.")

	return nil
}

// listAnalysisHistory lists all stored analyses for a specific URL.
func listAnalysisHistory(ctx context.Context, db *database.HistoryDB, pageURL string) error {
	metas, err := db.HistoryWithMetadata(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if len(metas) == 0 {
		fmt.Printf("No analysis history found for %s\n", pageURL)
		fmt.Println("\nUse 'psinsight analyze' to analyze this page.")
		return nil
	}

	fmt.Printf("Analysis history for %s (%d analyses):\n\n", pageURL, len(metas))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Strategy", "Score")
	fmt.Println("  " + strings.Repeat("-", 50))

	for _, meta := range metas {
		fmt.Printf("  %-6d  %-20s  %-8s  %d (%s)\n",
			meta.ID,
			meta.AnalyzedAt.Format("2006-01-02 15:04:05"),
			meta.Strategy,
			meta.Score,
			model.TierForScore(meta.Score),
		)
	}

	fmt.Println("\nUse 'psinsight compare <url>' to compare the latest two analyses.")

	return nil
}
