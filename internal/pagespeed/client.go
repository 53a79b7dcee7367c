package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/webperf-tools/psinsight/internal/config"
	"github.com/webperf-tools/psinsight/internal/model"
)

// maxErrorBodySize limits how much of an error response body is read when
// building a status-failure message. API error documents are small; this
// just guards against pathological responses.
const maxErrorBodySize = 4 * 1024

// Client calls the PageSpeed Insights API and maps responses into
// normalized analysis results.
//
// The API credential is resolved exactly once, at construction time, with
// an explicit value taking precedence over the PAGESPEED_API_KEY environment
// variable. The client is read-only after construction and safe to reuse
// across calls.
type Client struct {
	// httpClient performs the requests. Replaceable for testing.
	httpClient *http.Client

	// endpoint is the runPagespeed API URL.
	endpoint string

	// apiKey is the resolved API credential. May be empty; a request made
	// without a valid key fails through the normal status-failure path.
	apiKey string

	// logger receives debug-level request logging.
	logger *slog.Logger

	// now supplies timestamps for results. Replaceable for testing.
	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets an explicit API key, overriding the environment variable.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithEndpoint overrides the API endpoint. Used by tests to point the
// client at a local server.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a PageSpeed Insights client.
//
// Design decision: The credential is captured here rather than read from the
// environment at request time. This keeps the client free of ambient state
// and makes the precedence rule (explicit over environment) explicit and
// testable.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: config.DefaultTimeout},
		endpoint:   config.DefaultEndpoint,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = config.ResolveAPIKey("")
	}

	return c
}

// Analyze performs one analysis of pageURL under the given strategy.
//
// It issues a single synchronous GET with url, key, and strategy query
// parameters. There are no retries and no rate limiting. On any failure it
// returns a *Error classifying the cause; the result is nil exactly when
// the error is non-nil.
func (c *Client) Analyze(ctx context.Context, pageURL string, strategy model.Strategy) (*model.AnalysisResult, error) {
	reqURL := c.requestURL(pageURL, strategy)

	c.logger.Debug("analysis request",
		"url", pageURL,
		"strategy", strategy.String(),
		"request", reqURL,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: pageURL, Strategy: strategy, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: pageURL, Strategy: strategy, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded chunk so the message carries the API's own error text.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize)) //nolint:errcheck // Best effort detail
		return nil, &Error{
			Kind:     KindStatus,
			URL:      pageURL,
			Strategy: strategy,
			Err:      fmt.Errorf("unexpected status %s: %s", resp.Status, string(body)),
		}
	}

	var doc apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &Error{Kind: KindResponse, URL: pageURL, Strategy: strategy, Err: err}
	}

	result, err := c.extract(pageURL, strategy, &doc)
	if err != nil {
		return nil, &Error{Kind: KindResponse, URL: pageURL, Strategy: strategy, Err: err}
	}

	return result, nil
}

// requestURL builds the runPagespeed request URL with query parameters.
func (c *Client) requestURL(pageURL string, strategy model.Strategy) string {
	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("key", c.apiKey)
	params.Set("strategy", strategy.String())
	return c.endpoint + "?" + params.Encode()
}

// extract maps a decoded response into a normalized AnalysisResult.
// Any missing expected field is an error; the caller wraps it as KindResponse.
func (c *Client) extract(pageURL string, strategy model.Strategy, doc *apiResponse) (*model.AnalysisResult, error) {
	if doc.LighthouseResult == nil {
		return nil, fmt.Errorf("response missing lighthouseResult")
	}

	lhr := doc.LighthouseResult
	if lhr.Categories == nil || lhr.Categories.Performance == nil || lhr.Categories.Performance.Score == nil {
		return nil, fmt.Errorf("response missing performance category score")
	}
	if lhr.Audits == nil {
		return nil, fmt.Errorf("response missing audits")
	}

	metrics := make(map[model.MetricID]model.MetricValue, len(model.MetricIDs()))
	for _, id := range model.MetricIDs() {
		mv, err := extractMetric(lhr.Audits, id)
		if err != nil {
			return nil, err
		}
		metrics[id] = mv
	}

	opportunities, err := extractOpportunities(lhr.Audits)
	if err != nil {
		return nil, err
	}

	return &model.AnalysisResult{
		URL:           pageURL,
		Strategy:      strategy,
		Score:         model.PercentScore(*lhr.Categories.Performance.Score),
		AnalyzedAt:    c.now(),
		Metrics:       metrics,
		Opportunities: opportunities,
	}, nil
}

// extractMetric maps one required audit into a MetricValue.
// The audit itself, its score, and its displayValue are required;
// numericValue defaults to 0 when absent. The millisecond numericValue is
// converted to seconds.
func extractMetric(audits map[string]audit, id model.MetricID) (model.MetricValue, error) {
	a, ok := audits[string(id)]
	if !ok {
		return model.MetricValue{}, fmt.Errorf("response missing audit %q", id)
	}
	if a.Score == nil {
		return model.MetricValue{}, fmt.Errorf("audit %q missing score", id)
	}
	if a.DisplayValue == nil {
		return model.MetricValue{}, fmt.Errorf("audit %q missing displayValue", id)
	}

	var seconds float64
	if a.NumericValue != nil {
		seconds = *a.NumericValue / 1000
	}

	return model.MetricValue{
		Score:        *a.Score,
		Value:        seconds,
		DisplayValue: *a.DisplayValue,
	}, nil
}

// extractOpportunities collects allow-listed opportunity audits in the
// allow-list's fixed order, skipping identifiers absent from the response.
// A present opportunity must carry a score; numericValue and displayValue
// default to 0 and "".
func extractOpportunities(audits map[string]audit) ([]model.Opportunity, error) {
	var out []model.Opportunity
	for _, id := range model.OpportunityIDs() {
		a, ok := audits[id]
		if !ok {
			continue
		}
		if a.Score == nil {
			return nil, fmt.Errorf("opportunity %q missing score", id)
		}

		opp := model.Opportunity{
			ID:          id,
			Title:       a.Title,
			Description: a.Description,
			Score:       *a.Score,
		}
		if a.NumericValue != nil {
			opp.NumericValue = *a.NumericValue
		}
		if a.DisplayValue != nil {
			opp.DisplayValue = *a.DisplayValue
		}
		out = append(out, opp)
	}
	return out, nil
}
