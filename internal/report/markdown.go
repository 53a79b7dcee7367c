package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/webperf-tools/psinsight/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full URL report in Markdown format.
func (w *MarkdownWriter) Write(report *model.URLReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	for _, result := range report.Results() {
		w.writeResult(md, result)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with page information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.URLReport) {
	md.H1("PageSpeed Report")
	md.PlainText("")
	md.PlainText("Page: `" + report.URL + "`")
	md.PlainText("")
}

// writeResult writes one strategy section with score, metrics, and
// opportunities.
func (w *MarkdownWriter) writeResult(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2(result.Strategy.Title())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Performance Score", strconv.Itoa(result.Score)},
			{"Tier", w.tierBadge(result.Tier())},
			{"Analyzed At", result.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	w.writeAlert(md, result)
	w.writeMetricsTable(md, result)
	w.writeOpportunities(md, result)
}

// tierBadge returns a colored-circle badge for the tier.
func (w *MarkdownWriter) tierBadge(tier model.Tier) string {
	switch tier {
	case model.TierGood:
		return "🟢 Good"
	case model.TierNeedsImprovement:
		return "🟡 Needs Improvement"
	case model.TierPoor:
		return "🔴 Poor"
	default:
		return tier.String()
	}
}

// writeAlert writes an appropriate alert based on the score tier.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.AnalysisResult) {
	switch result.Tier() {
	case model.TierPoor:
		md.Cautionf(
			"Poor performance score (%d). This page needs significant optimization.",
			result.Score,
		)
	case model.TierNeedsImprovement:
		md.Warningf(
			"Performance score %d leaves room for improvement.",
			result.Score,
		)
	default:
		md.Tip(fmt.Sprintf("Good performance score (%d).", result.Score))
	}
	md.PlainText("")
}

// writeMetricsTable writes the six timing metrics in their fixed order.
func (w *MarkdownWriter) writeMetricsTable(md *markdown.Markdown, result *model.AnalysisResult) {
	md.PlainText("### Metrics")
	md.PlainText("")

	rows := make([][]string, 0, len(model.MetricIDs()))
	for _, id := range model.MetricIDs() {
		mv := result.Metrics[id]
		rows = append(rows, []string{
			id.DisplayName(),
			fmt.Sprintf("%.2f", mv.Score),
			mv.DisplayValue,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Score", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeOpportunities writes the actionable opportunities table.
func (w *MarkdownWriter) writeOpportunities(md *markdown.Markdown, result *model.AnalysisResult) {
	md.PlainText("### Opportunities")
	md.PlainText("")

	actionable := result.ActionableOpportunities()
	if len(actionable) == 0 {
		md.PlainText("No improvement opportunities detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(actionable))
	for _, opp := range actionable {
		savings := opp.DisplayValue
		if savings == "" {
			savings = "-"
		}
		rows = append(rows, []string{opp.Title, savings})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Opportunity", "Potential Savings"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [psinsight](https://github.com/webperf-tools/psinsight)*")
}
