package model

// Tier is the qualitative bucket a 0-100 score falls into.
// It is used purely for display coloring; no logic branches on it beyond
// presentation.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output when needed.
type Tier int

const (
	// TierPoor indicates a score below 50.
	TierPoor Tier = iota

	// TierNeedsImprovement indicates a score from 50 to 89.
	TierNeedsImprovement

	// TierGood indicates a score of 90 or above.
	TierGood
)

// Tier score thresholds. Both bounds are inclusive at the lower end of each
// tier, matching the scale Lighthouse itself uses.
const (
	goodThreshold             = 90
	needsImprovementThreshold = 50
)

// TierForScore buckets a 0-100 score into its display tier.
func TierForScore(score int) Tier {
	switch {
	case score >= goodThreshold:
		return TierGood
	case score >= needsImprovementThreshold:
		return TierNeedsImprovement
	default:
		return TierPoor
	}
}

// String returns a human-readable representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierGood:
		return "good"
	case TierNeedsImprovement:
		return "needs improvement"
	case TierPoor:
		return "poor"
	default:
		return "unknown"
	}
}
