package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/webperf-tools/psinsight/internal/model"
)

// tierColors maps each score tier to its terminal color. Good scores are
// green, needs-improvement yellow, poor red.
var tierColors = map[model.Tier]*color.Color{
	model.TierGood:             color.New(color.FgGreen, color.Bold),
	model.TierNeedsImprovement: color.New(color.FgYellow, color.Bold),
	model.TierPoor:             color.New(color.FgRed, color.Bold),
}

// TerminalWriter outputs human-readable text reports.
// This format is designed for terminal display with color-coded scores
// and clear section formatting.
type TerminalWriter struct {
	baseWriter

	// noColor disables ANSI color sequences. Output is then plain text
	// suitable for piping to files or other tools.
	noColor bool
}

// TerminalWriterOption configures a TerminalWriter.
type TerminalWriterOption func(*TerminalWriter)

// WithNoColor disables colored output.
func WithNoColor(noColor bool) TerminalWriterOption {
	return func(w *TerminalWriter) {
		w.noColor = noColor
	}
}

// NewTerminalWriter creates a TerminalWriter that outputs to the given writer.
func NewTerminalWriter(output io.Writer, opts ...TerminalWriterOption) *TerminalWriter {
	w := &TerminalWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full URL report in human-readable format.
// Strategies are printed in desktop-then-mobile order; a strategy with no
// result is skipped.
func (w *TerminalWriter) Write(report *model.URLReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	for _, result := range report.Results() {
		w.writeResult(&sb, result)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header naming the analyzed page.
func (w *TerminalWriter) writeHeader(sb *strings.Builder, report *model.URLReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("PAGESPEED REPORT: %s\n", report.URL))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// writeResult writes the section for one strategy.
func (w *TerminalWriter) writeResult(sb *strings.Builder, result *model.AnalysisResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(result.Strategy.Title()))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	scoreLine := fmt.Sprintf("%d (%s)", result.Score, result.Tier())
	sb.WriteString(fmt.Sprintf("Performance Score: %s\n", w.colorize(result.Tier(), scoreLine)))
	sb.WriteString(fmt.Sprintf("Analyzed At:       %s\n", result.AnalyzedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n")

	w.writeMetrics(sb, result)
	w.writeOpportunities(sb, result)
}

// writeMetrics writes the six timing metrics in their fixed order.
// Each row carries the metric's own score rescaled to 0-100 and colored by
// its tier, next to the display value.
func (w *TerminalWriter) writeMetrics(sb *strings.Builder, result *model.AnalysisResult) {
	sb.WriteString("Metrics:\n")
	for _, id := range model.MetricIDs() {
		mv := result.Metrics[id]
		pct := model.PercentScore(mv.Score)
		score := w.colorize(model.TierForScore(pct), strconv.Itoa(pct))
		sb.WriteString(fmt.Sprintf("  %-28s %-12s %s\n", id.DisplayName()+":", mv.DisplayValue, score))
	}
	sb.WriteString("\n")
}

// writeOpportunities writes the actionable opportunities, or a short note
// when there are none.
func (w *TerminalWriter) writeOpportunities(sb *strings.Builder, result *model.AnalysisResult) {
	sb.WriteString("Opportunities:\n")

	actionable := result.ActionableOpportunities()
	if len(actionable) == 0 {
		sb.WriteString("  No improvement opportunities detected\n")
		return
	}

	for _, opp := range actionable {
		tier := model.TierForScore(model.PercentScore(opp.Score))
		sb.WriteString(fmt.Sprintf("  %s\n", w.colorize(tier, "* "+opp.Title)))
		if opp.DisplayValue != "" {
			sb.WriteString(fmt.Sprintf("    Potential savings: %s\n", opp.DisplayValue))
		}
		if opp.Description != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", opp.Description))
		}
	}
}

// colorize wraps s in the tier's ANSI color unless color is disabled.
func (w *TerminalWriter) colorize(tier model.Tier, s string) string {
	if w.noColor {
		return s
	}
	c, ok := tierColors[tier]
	if !ok {
		return s
	}
	return c.Sprint(s)
}
