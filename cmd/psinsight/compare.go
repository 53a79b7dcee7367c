package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/webperf-tools/psinsight/internal/config"
	"github.com/webperf-tools/psinsight/internal/database"
	"github.com/webperf-tools/psinsight/internal/model"
)

// Constants for score direction labels.
const (
	scoreDirectionImproved  = "improved"
	scoreDirectionWorsened  = "worsened"
	scoreDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares analysis results with historical data stored in the
// database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare analysis results with historical data",
		Long: `Compare displays differences between the latest and previous stored
analyses of a page.

For each strategy the comparison shows the performance score change and the
per-metric timing changes. It requires at least two stored analyses per
strategy. Use 'psinsight analyze' to analyze pages and save results.

Examples:
  # Compare the latest two analyses per strategy
  psinsight compare https://example.com

  # Compare the latest analysis with a specific stored one by ID
  psinsight compare --with-run-id 5 https://example.com

  # Output the comparison in JSON format
  psinsight compare --json https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific analysis by ID (use 'psinsight history' to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	withID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	comparison, err := buildComparison(ctx, db, pageURL, withID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing stored analyses for a URL.
type ComparisonResult struct {
	// URL is the compared page URL.
	URL string `json:"url"`

	// Strategies holds one comparison per strategy with enough history.
	Strategies []StrategyComparison `json:"strategies"`
}

// StrategyComparison compares two analyses of the same strategy.
type StrategyComparison struct {
	// Strategy is the device context of the compared analyses.
	Strategy model.Strategy `json:"strategy"`

	// PreviousAnalyzedAt is when the older analysis was performed.
	PreviousAnalyzedAt time.Time `json:"previous_analyzed_at"`

	// CurrentAnalyzedAt is when the newer analysis was performed.
	CurrentAnalyzedAt time.Time `json:"current_analyzed_at"`

	// PreviousScore is the older overall score.
	PreviousScore int `json:"previous_score"`

	// CurrentScore is the newer overall score.
	CurrentScore int `json:"current_score"`

	// ScoreDelta is current minus previous.
	ScoreDelta int `json:"score_delta"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// Metrics holds per-metric timing changes in display order.
	Metrics []MetricDelta `json:"metrics"`
}

// MetricDelta describes the change in one timing metric.
type MetricDelta struct {
	// ID is the metric identifier.
	ID model.MetricID `json:"id"`

	// Previous is the older metric value in seconds.
	Previous float64 `json:"previous"`

	// Current is the newer metric value in seconds.
	Current float64 `json:"current"`

	// Delta is current minus previous, in seconds. Negative is faster.
	Delta float64 `json:"delta"`
}

// buildComparison loads the analyses to compare and computes the result.
// When withID is zero, the latest two analyses per strategy are compared.
// When withID is set, the analysis with that ID is compared against the
// latest analysis of the same strategy.
func buildComparison(ctx context.Context, db *database.HistoryDB, pageURL string, withID int64) (*ComparisonResult, error) {
	result := &ComparisonResult{URL: pageURL}

	if withID > 0 {
		stored, err := db.ResultByID(ctx, withID)
		if err != nil {
			return nil, fmt.Errorf("failed to get analysis with ID %d: %w", withID, err)
		}
		if stored == nil {
			return nil, fmt.Errorf("analysis with ID %d not found", withID)
		}
		if stored.Result.URL != pageURL {
			return nil, fmt.Errorf("analysis ID %d belongs to %s, not %s", withID, stored.Result.URL, pageURL)
		}

		latest, err := db.History(ctx, pageURL, stored.Result.Strategy, 1)
		if err != nil {
			return nil, err
		}
		if len(latest) == 0 {
			return nil, fmt.Errorf("no analysis history found for %s", pageURL)
		}
		if latest[0].ID == stored.ID {
			return nil, fmt.Errorf("analysis ID %d is already the latest; nothing to compare against", withID)
		}

		result.Strategies = append(result.Strategies,
			compareAnalyses(stored.Result, latest[0].Result))
		return result, nil
	}

	for _, strategy := range model.Strategies() {
		stored, err := db.History(ctx, pageURL, strategy, 2)
		if err != nil {
			return nil, err
		}
		if len(stored) < 2 {
			continue
		}
		result.Strategies = append(result.Strategies,
			compareAnalyses(stored[1].Result, stored[0].Result))
	}

	if len(result.Strategies) == 0 {
		return nil, fmt.Errorf("at least 2 stored analyses per strategy are required for %s (use 'psinsight analyze' first)", pageURL)
	}

	return result, nil
}

// compareAnalyses computes the comparison between two analyses of one strategy.
func compareAnalyses(previous, current *model.AnalysisResult) StrategyComparison {
	sc := StrategyComparison{
		Strategy:           current.Strategy,
		PreviousAnalyzedAt: previous.AnalyzedAt,
		CurrentAnalyzedAt:  current.AnalyzedAt,
		PreviousScore:      previous.Score,
		CurrentScore:       current.Score,
		ScoreDelta:         current.Score - previous.Score,
	}

	switch {
	case sc.ScoreDelta > 0:
		sc.Direction = scoreDirectionImproved
	case sc.ScoreDelta < 0:
		sc.Direction = scoreDirectionWorsened
	default:
		sc.Direction = scoreDirectionUnchanged
	}

	for _, id := range model.MetricIDs() {
		prev := previous.Metrics[id]
		curr := current.Metrics[id]
		sc.Metrics = append(sc.Metrics, MetricDelta{
			ID:       id,
			Previous: prev.Value,
			Current:  curr.Value,
			Delta:    curr.Value - prev.Value,
		})
	}

	return sc
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Analysis Comparison: %s\n", result.URL)

	for _, sc := range result.Strategies {
		fmt.Printf("\n## %s\n\n", sc.Strategy.Title())
		fmt.Printf("**Score:** %d → %d (%s, %s)\n\n",
			sc.PreviousScore, sc.CurrentScore, formatDelta(sc.ScoreDelta), sc.Direction)

		fmt.Println("| Metric | Previous | Current | Change |")
		fmt.Println("|--------|----------|---------|--------|")
		fmt.Printf("| Date | %s | %s | - |\n",
			sc.PreviousAnalyzedAt.Format("2006-01-02 15:04"),
			sc.CurrentAnalyzedAt.Format("2006-01-02 15:04"))
		for _, md := range sc.Metrics {
			fmt.Printf("| %s | %.2fs | %.2fs | %s |\n",
				md.ID.DisplayName(), md.Previous, md.Current, formatSecondsDelta(md.Delta))
		}
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text
// format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Analysis Comparison: %s\n", result.URL)
	fmt.Println(strings.Repeat("=", 60))

	for _, sc := range result.Strategies {
		fmt.Printf("\n%s\n", strings.ToUpper(sc.Strategy.Title()))
		fmt.Println(strings.Repeat("-", 60))

		fmt.Printf("\nPrevious analysis: %s\n", sc.PreviousAnalyzedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Current analysis:  %s\n", sc.CurrentAnalyzedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("\nScore: %d -> %d (%s, %s)\n",
			sc.PreviousScore, sc.CurrentScore, formatDelta(sc.ScoreDelta), sc.Direction)

		fmt.Println("\nMetric Changes:")
		fmt.Printf("  %-28s  %-10s  %-10s  %s\n", "Metric", "Previous", "Current", "Change")
		fmt.Println("  " + strings.Repeat("-", 58))
		for _, md := range sc.Metrics {
			fmt.Printf("  %-28s  %-10s  %-10s  %s\n",
				md.ID.DisplayName(),
				fmt.Sprintf("%.2fs", md.Previous),
				fmt.Sprintf("%.2fs", md.Current),
				formatSecondsDelta(md.Delta))
		}
	}

	return nil
}

// formatDelta formats an integer delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// formatSecondsDelta formats a seconds delta with sign for display.
func formatSecondsDelta(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.2fs", delta)
	}
	return fmt.Sprintf("%.2fs", delta)
}
