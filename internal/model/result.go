package model

import (
	"math"
	"time"
)

// MetricID identifies a Lighthouse audit used as a lab-data timing metric.
type MetricID string

// The six timing metrics extracted from every analysis, in the order they
// are rendered. The IDs match the audit keys in the PageSpeed Insights
// response.
const (
	MetricFirstContentfulPaint   MetricID = "first-contentful-paint"
	MetricSpeedIndex             MetricID = "speed-index"
	MetricLargestContentfulPaint MetricID = "largest-contentful-paint"
	MetricTimeToInteractive      MetricID = "interactive"
	MetricTotalBlockingTime      MetricID = "total-blocking-time"
	MetricCumulativeLayoutShift  MetricID = "cumulative-layout-shift"
)

// MetricIDs returns the metric identifiers in their fixed display order.
// The rendered metric table always contains exactly these rows in this
// order, regardless of the key order in the API response.
func MetricIDs() []MetricID {
	return []MetricID{
		MetricFirstContentfulPaint,
		MetricSpeedIndex,
		MetricLargestContentfulPaint,
		MetricTimeToInteractive,
		MetricTotalBlockingTime,
		MetricCumulativeLayoutShift,
	}
}

// metricDisplayNames maps metric identifiers to their display names.
var metricDisplayNames = map[MetricID]string{
	MetricFirstContentfulPaint:   "First Contentful Paint",
	MetricSpeedIndex:             "Speed Index",
	MetricLargestContentfulPaint: "Largest Contentful Paint",
	MetricTimeToInteractive:      "Time to Interactive",
	MetricTotalBlockingTime:      "Total Blocking Time",
	MetricCumulativeLayoutShift:  "Cumulative Layout Shift",
}

// DisplayName returns the human-readable name for the metric,
// e.g. "First Contentful Paint" for first-contentful-paint.
func (id MetricID) DisplayName() string {
	if name, ok := metricDisplayNames[id]; ok {
		return name
	}
	return string(id)
}

// OpportunityIDs returns the fixed allow-list of opportunity audit
// identifiers, in the order they are rendered. Identifiers outside this
// list are ignored even when present in the API response.
func OpportunityIDs() []string {
	return []string{
		"render-blocking-resources",
		"unused-css-rules",
		"unused-javascript",
		"modern-image-formats",
		"offscreen-images",
	}
}

// MetricValue is a single lab-data timing metric extracted from an audit.
type MetricValue struct {
	// Score is the audit's 0-1 score.
	Score float64 `json:"score"`

	// Value is the metric value in seconds, derived from the audit's
	// millisecond numericValue. Zero when the audit carries no numericValue.
	Value float64 `json:"value"`

	// DisplayValue is the API's pre-formatted value string, e.g. "1.2 s".
	DisplayValue string `json:"display_value"`
}

// Opportunity is an API-reported suggestion for improving page performance.
type Opportunity struct {
	// ID is the audit identifier, e.g. "unused-css-rules".
	ID string `json:"id"`

	// Title is the audit's short title.
	Title string `json:"title"`

	// Description explains the suggestion.
	Description string `json:"description"`

	// Score is the audit's 0-1 actionability score.
	// A score of 1.0 means nothing to do; such opportunities are not rendered.
	Score float64 `json:"score"`

	// NumericValue is the estimated savings in milliseconds. Zero when absent.
	NumericValue float64 `json:"numeric_value"`

	// DisplayValue is the estimated savings string, e.g. "Save 150 KB".
	// Empty when the API provides none.
	DisplayValue string `json:"display_value,omitempty"`
}

// Actionable reports whether the opportunity should appear in reports.
// A perfect score means there is nothing to improve.
func (o Opportunity) Actionable() bool {
	return o.Score < 1.0
}

// AnalysisResult is the normalized result of one (url, strategy) analysis.
// It is immutable once constructed and discarded after rendering unless
// saved to the history database.
type AnalysisResult struct {
	// URL is the analyzed page URL.
	URL string `json:"url"`

	// Strategy is the device context of the analysis.
	Strategy Strategy `json:"strategy"`

	// Score is the overall performance score scaled to 0-100 and rounded
	// to the nearest integer. All other score fields stay 0-1 floats.
	Score int `json:"score"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Metrics maps metric identifiers to their extracted values.
	// Exactly the six identifiers from MetricIDs are present.
	Metrics map[MetricID]MetricValue `json:"metrics"`

	// Opportunities holds allow-listed opportunities in allow-list order.
	// Identifiers absent from the response are skipped.
	Opportunities []Opportunity `json:"opportunities"`
}

// Tier returns the display tier for the overall score.
func (r *AnalysisResult) Tier() Tier {
	return TierForScore(r.Score)
}

// ActionableOpportunities returns the opportunities with score below 1.0,
// preserving allow-list order.
func (r *AnalysisResult) ActionableOpportunities() []Opportunity {
	var out []Opportunity
	for _, o := range r.Opportunities {
		if o.Actionable() {
			out = append(out, o)
		}
	}
	return out
}

// URLReport pairs the desktop and mobile results for one URL.
// Both results are always present; the caller never builds a URLReport
// from a partially failed analysis.
type URLReport struct {
	// URL is the analyzed page URL.
	URL string `json:"url"`

	// Desktop is the desktop-strategy result.
	Desktop *AnalysisResult `json:"desktop"`

	// Mobile is the mobile-strategy result.
	Mobile *AnalysisResult `json:"mobile"`
}

// Results returns the two results in display order: desktop, then mobile.
func (r *URLReport) Results() []*AnalysisResult {
	return []*AnalysisResult{r.Desktop, r.Mobile}
}

// PercentScore scales a 0-1 source score to 0-100 and rounds to the
// nearest integer, half away from zero. The spec requires agreement with
// other implementations only to the nearest visible integer.
func PercentScore(score float64) int {
	return int(math.Round(score * 100))
}
