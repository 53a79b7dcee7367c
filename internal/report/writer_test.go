package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/webperf-tools/psinsight/internal/model"
)

// createTestReport creates a URL report with sample data for testing.
func createTestReport() *model.URLReport {
	analyzedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	metrics := map[model.MetricID]model.MetricValue{
		model.MetricFirstContentfulPaint:   {Score: 0.9, Value: 1.2, DisplayValue: "1.2 s"},
		model.MetricSpeedIndex:             {Score: 0.85, Value: 2.3, DisplayValue: "2.3 s"},
		model.MetricLargestContentfulPaint: {Score: 0.8, Value: 2.5, DisplayValue: "2.5 s"},
		model.MetricTimeToInteractive:      {Score: 0.95, Value: 3.1, DisplayValue: "3.1 s"},
		model.MetricTotalBlockingTime:      {Score: 0.99, Value: 0.15, DisplayValue: "150 ms"},
		model.MetricCumulativeLayoutShift:  {Score: 1, Value: 0, DisplayValue: "0.01"},
	}

	opportunities := []model.Opportunity{
		{
			ID:           "unused-css-rules",
			Title:        "Reduce unused CSS",
			Description:  "Remove dead rules.",
			Score:        0.4,
			NumericValue: 450,
			DisplayValue: "Save 150 KB",
		},
		{
			ID:    "modern-image-formats",
			Title: "Serve images in next-gen formats",
			Score: 1,
		},
	}

	return &model.URLReport{
		URL: "https://example.com",
		Desktop: &model.AnalysisResult{
			URL:           "https://example.com",
			Strategy:      model.StrategyDesktop,
			Score:         95,
			AnalyzedAt:    analyzedAt,
			Metrics:       metrics,
			Opportunities: opportunities,
		},
		Mobile: &model.AnalysisResult{
			URL:           "https://example.com",
			Strategy:      model.StrategyMobile,
			Score:         48,
			AnalyzedAt:    analyzedAt,
			Metrics:       metrics,
			Opportunities: opportunities,
		},
	}
}

// TestTerminalWriter tests the human-readable report writer.
func TestTerminalWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header and both strategies", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PAGESPEED REPORT: https://example.com") {
			t.Error("expected output to contain report header")
		}

		desktopIdx := strings.Index(output, "DESKTOP")
		mobileIdx := strings.Index(output, "MOBILE")
		if desktopIdx < 0 || mobileIdx < 0 {
			t.Fatal("expected both strategy sections")
		}
		if desktopIdx > mobileIdx {
			t.Error("expected desktop section before mobile section")
		}
	})

	t.Run("writes tiered scores", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "95 (good)") {
			t.Error("expected desktop score with good tier")
		}
		if !strings.Contains(output, "48 (poor)") {
			t.Error("expected mobile score with poor tier")
		}
	})

	t.Run("writes metrics in fixed order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		lastIdx := -1
		for _, id := range model.MetricIDs() {
			idx := strings.Index(output, id.DisplayName()+":")
			if idx < 0 {
				t.Fatalf("expected metric %q in output", id.DisplayName())
			}
			if idx < lastIdx {
				t.Errorf("metric %q out of order", id.DisplayName())
			}
			lastIdx = idx
		}
	})

	t.Run("writes rescaled metric scores", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		metricLine := func(name string) string {
			t.Helper()
			for _, line := range strings.Split(buf.String(), "\n") {
				if strings.Contains(line, name+":") {
					return line
				}
			}
			t.Fatalf("expected a metric line for %q", name)
			return ""
		}

		fcp := metricLine("First Contentful Paint")
		if !strings.Contains(fcp, "1.2 s") || !strings.HasSuffix(fcp, " 90") {
			t.Errorf("expected value and rescaled score 90, got %q", fcp)
		}
		cls := metricLine("Cumulative Layout Shift")
		if !strings.HasSuffix(cls, " 100") {
			t.Errorf("expected rescaled score 100, got %q", cls)
		}
	})

	t.Run("writes opportunity descriptions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Remove dead rules.") {
			t.Error("expected opportunity description in output")
		}
	})

	t.Run("writes only actionable opportunities", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Reduce unused CSS") {
			t.Error("expected actionable opportunity in output")
		}
		if !strings.Contains(output, "Potential savings: Save 150 KB") {
			t.Error("expected potential savings line")
		}
		if strings.Contains(output, "Serve images in next-gen formats") {
			t.Error("expected perfect-score opportunity to be omitted")
		}
	})

	t.Run("notes when nothing is actionable", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Desktop.Opportunities = nil
		report.Mobile.Opportunities = nil

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No improvement opportunities detected") {
			t.Error("expected empty-opportunities note")
		}
	})

	t.Run("no color output contains no escape sequences", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTerminalWriter(&buf, WithNoColor(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "\x1b[") {
			t.Error("expected no ANSI escape sequences with color disabled")
		}
	})
}

// TestMarkdownWriter tests the markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes headings and score table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# PageSpeed Report",
			"## Desktop",
			"## Mobile",
			"Performance Score",
			"🟢 Good",
			"🔴 Poor",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("writes metrics and opportunities tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "First Contentful Paint") {
			t.Error("expected metrics table row")
		}
		if !strings.Contains(output, "Reduce unused CSS") {
			t.Error("expected opportunity table row")
		}
		if !strings.Contains(output, "Save 150 KB") {
			t.Error("expected potential savings cell")
		}
		if strings.Contains(output, "Serve images in next-gen formats") {
			t.Error("expected perfect-score opportunity to be omitted")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("output round-trips into a URL report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.URLReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("unexpected unmarshal error: %v", err)
		}
		if decoded.URL != "https://example.com" {
			t.Errorf("expected url https://example.com, got %q", decoded.URL)
		}
		if decoded.Desktop == nil || decoded.Desktop.Score != 95 {
			t.Error("expected desktop score 95")
		}
		if decoded.Mobile == nil || decoded.Mobile.Strategy != model.StrategyMobile {
			t.Error("expected mobile strategy")
		}
	})

	t.Run("full writer wraps the report with a version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("unexpected unmarshal error: %v", err)
		}
		if decoded.Version != "1.2.3" {
			t.Errorf("expected version 1.2.3, got %q", decoded.Version)
		}
		if decoded.Report == nil || decoded.Report.URL != "https://example.com" {
			t.Error("expected wrapped report")
		}
	})
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var terminal, md bytes.Buffer
	w := NewMultiWriter(
		NewTerminalWriter(&terminal, WithNoColor(true)),
		NewMarkdownWriter(&md),
	)

	if _, err := w.Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(terminal.String(), "PAGESPEED REPORT") {
		t.Error("expected terminal output")
	}
	if !strings.Contains(md.String(), "# PageSpeed Report") {
		t.Error("expected markdown output")
	}
}
