package model

import "testing"

// TestTierForScore verifies the three-tier bucketing thresholds.
// Both thresholds are inclusive at the lower bound of their tier.
func TestTierForScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score int
		want  Tier
	}{
		{"100 is good", 100, TierGood},
		{"95 is good", 95, TierGood},
		{"90 is good (inclusive lower bound)", 90, TierGood},
		{"89 needs improvement", 89, TierNeedsImprovement},
		{"50 needs improvement (inclusive lower bound)", 50, TierNeedsImprovement},
		{"49 is poor", 49, TierPoor},
		{"0 is poor", 0, TierPoor},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TierForScore(tt.score); got != tt.want {
				t.Errorf("TierForScore(%d) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

// TestTierString verifies the human-readable tier names.
func TestTierString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tier Tier
		want string
	}{
		{TierGood, "good"},
		{TierNeedsImprovement, "needs improvement"},
		{TierPoor, "poor"},
		{Tier(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", int(tt.tier), got, tt.want)
		}
	}
}
