package pagespeed

// Wire types for the PageSpeed Insights v5 response.
// Only the fields psinsight reads are declared; the API returns far more.
//
// Design decision: Optional fields are pointers so that "key absent" and
// "key present with zero value" stay distinguishable. A missing expected
// field is an analysis failure, so the extraction code must be able to tell
// the difference.

// apiResponse is the top-level runPagespeed response document.
type apiResponse struct {
	LighthouseResult *lighthouseResult `json:"lighthouseResult"`
}

// lighthouseResult holds the Lighthouse audit data for one run.
type lighthouseResult struct {
	Categories *categories      `json:"categories"`
	Audits     map[string]audit `json:"audits"`
}

// categories holds the category scores. Only performance is read.
type categories struct {
	Performance *category `json:"performance"`
}

// category is a single Lighthouse category.
type category struct {
	// Score is the 0-1 category score. Nil when Lighthouse could not score
	// the category.
	Score *float64 `json:"score"`
}

// audit is a single Lighthouse audit entry.
type audit struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// Score is the audit's 0-1 score. Nil for informational audits.
	Score *float64 `json:"score"`

	// NumericValue is the audit's numeric result in milliseconds.
	// Nil when the audit has no numeric representation.
	NumericValue *float64 `json:"numericValue"`

	// DisplayValue is the audit's pre-formatted value string.
	DisplayValue *string `json:"displayValue"`
}
