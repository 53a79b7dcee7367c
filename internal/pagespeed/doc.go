// Package pagespeed provides the client for the Google PageSpeed Insights
// v5 API and the normalization of its responses into model.AnalysisResult.
//
// The client issues one synchronous GET per (url, strategy) pair with no
// retries and no rate limiting. Every failure mode (transport error,
// non-2xx status, missing expected response field) is reported as a typed
// *Error whose Kind distinguishes the cause for tests, while callers that
// only care about success collapse all kinds into one "analysis failed"
// outcome.
package pagespeed
