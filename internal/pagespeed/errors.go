package pagespeed

import (
	"fmt"

	"github.com/webperf-tools/psinsight/internal/model"
)

// Kind classifies an analysis failure.
//
// Design decision: Every failure is treated identically at the user-facing
// level, but a tagged kind lets tests assert on the underlying cause without
// changing what the user sees.
type Kind int

const (
	// KindTransport indicates a network or connection-level failure,
	// including timeouts.
	KindTransport Kind = iota

	// KindStatus indicates the API responded with a non-2xx HTTP status.
	KindStatus

	// KindResponse indicates the response body could not be decoded or a
	// required field was missing.
	KindResponse
)

// String returns a human-readable representation of the failure kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Error is an analysis failure for one (url, strategy) pair.
// It wraps the underlying cause so errors.Is/As keep working.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// URL is the page URL that was being analyzed.
	URL string

	// Strategy is the device context of the failed analysis.
	Strategy model.Strategy

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("analyzing %s (%s): %v", e.URL, e.Strategy, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
