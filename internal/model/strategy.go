package model

import "fmt"

// Strategy is the device context for an analysis.
type Strategy string

const (
	// StrategyDesktop analyzes the page as a desktop browser.
	StrategyDesktop Strategy = "desktop"

	// StrategyMobile analyzes the page as a mobile browser.
	StrategyMobile Strategy = "mobile"
)

// Strategies returns the strategies in analysis order: desktop, then mobile.
// Every URL is analyzed under both, in this order.
func Strategies() []Strategy {
	return []Strategy{StrategyDesktop, StrategyMobile}
}

// ParseStrategy converts a string into a Strategy.
// Only the exact values "desktop" and "mobile" are accepted.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyDesktop:
		return StrategyDesktop, nil
	case StrategyMobile:
		return StrategyMobile, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want desktop or mobile)", s)
	}
}

// String returns the strategy as used in API query parameters.
func (s Strategy) String() string {
	return string(s)
}

// Title returns the capitalized display name, e.g. "Desktop".
func (s Strategy) Title() string {
	switch s {
	case StrategyDesktop:
		return "Desktop"
	case StrategyMobile:
		return "Mobile"
	default:
		return string(s)
	}
}

// Valid reports whether the strategy is one of the known values.
func (s Strategy) Valid() bool {
	return s == StrategyDesktop || s == StrategyMobile
}
