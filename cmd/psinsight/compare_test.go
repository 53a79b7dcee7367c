package main

import (
	"context"
	"testing"
	"time"

	"github.com/webperf-tools/psinsight/internal/database"
	"github.com/webperf-tools/psinsight/internal/model"
)

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare [url]" {
			t.Errorf("expected use 'compare [url]', got %q", cmd.Use)
		}
	})

	t.Run("has with-run-id flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("with-run-id")
		if flag == nil {
			t.Fatal("expected with-run-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("json") == nil {
			t.Fatal("expected json flag")
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("markdown") == nil {
			t.Fatal("expected markdown flag")
		}
	})
}

// newCompareResult builds an analysis result for comparison tests.
func newCompareResult(strategy model.Strategy, score int, fcpSeconds float64, analyzedAt time.Time) *model.AnalysisResult {
	metrics := map[model.MetricID]model.MetricValue{}
	for _, id := range model.MetricIDs() {
		metrics[id] = model.MetricValue{Score: 0.9, Value: fcpSeconds, DisplayValue: "n/a"}
	}
	return &model.AnalysisResult{
		URL:        "https://example.com",
		Strategy:   strategy,
		Score:      score,
		AnalyzedAt: analyzedAt,
		Metrics:    metrics,
	}
}

// TestCompareAnalyses tests the per-strategy comparison computation.
func TestCompareAnalyses(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("higher score is improved", func(t *testing.T) {
		t.Parallel()

		sc := compareAnalyses(
			newCompareResult(model.StrategyDesktop, 80, 2.0, base),
			newCompareResult(model.StrategyDesktop, 92, 1.5, base.Add(time.Hour)),
		)

		if sc.ScoreDelta != 12 {
			t.Errorf("expected delta 12, got %d", sc.ScoreDelta)
		}
		if sc.Direction != scoreDirectionImproved {
			t.Errorf("expected improved, got %q", sc.Direction)
		}
	})

	t.Run("lower score is worsened", func(t *testing.T) {
		t.Parallel()

		sc := compareAnalyses(
			newCompareResult(model.StrategyMobile, 80, 2.0, base),
			newCompareResult(model.StrategyMobile, 60, 3.0, base.Add(time.Hour)),
		)

		if sc.Direction != scoreDirectionWorsened {
			t.Errorf("expected worsened, got %q", sc.Direction)
		}
	})

	t.Run("equal score is unchanged", func(t *testing.T) {
		t.Parallel()

		sc := compareAnalyses(
			newCompareResult(model.StrategyDesktop, 80, 2.0, base),
			newCompareResult(model.StrategyDesktop, 80, 2.0, base.Add(time.Hour)),
		)

		if sc.Direction != scoreDirectionUnchanged {
			t.Errorf("expected unchanged, got %q", sc.Direction)
		}
	})

	t.Run("computes metric deltas in display order", func(t *testing.T) {
		t.Parallel()

		sc := compareAnalyses(
			newCompareResult(model.StrategyDesktop, 80, 2.0, base),
			newCompareResult(model.StrategyDesktop, 92, 1.5, base.Add(time.Hour)),
		)

		if len(sc.Metrics) != len(model.MetricIDs()) {
			t.Fatalf("expected %d metric deltas, got %d", len(model.MetricIDs()), len(sc.Metrics))
		}
		for i, id := range model.MetricIDs() {
			if sc.Metrics[i].ID != id {
				t.Errorf("expected metric %q at position %d, got %q", id, i, sc.Metrics[i].ID)
			}
		}
		if sc.Metrics[0].Delta != -0.5 {
			t.Errorf("expected delta -0.5, got %v", sc.Metrics[0].Delta)
		}
	})
}

// TestBuildComparison tests comparison loading from the database.
func TestBuildComparison(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newDB := func(t *testing.T) *database.HistoryDB {
		t.Helper()
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() }) //nolint:errcheck // test cleanup
		return db
	}

	t.Run("compares latest two analyses per strategy", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		for i, score := range []int{70, 85} {
			at := base.Add(time.Duration(i) * time.Hour)
			if _, err := db.Save(ctx, newCompareResult(model.StrategyDesktop, score, 2.0, at)); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
		}

		result, err := buildComparison(ctx, db, "https://example.com", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Strategies) != 1 {
			t.Fatalf("expected 1 strategy comparison, got %d", len(result.Strategies))
		}
		sc := result.Strategies[0]
		if sc.PreviousScore != 70 || sc.CurrentScore != 85 {
			t.Errorf("expected 70 -> 85, got %d -> %d", sc.PreviousScore, sc.CurrentScore)
		}
	})

	t.Run("fails without enough history", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		if _, err := db.Save(ctx, newCompareResult(model.StrategyDesktop, 70, 2.0, base)); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		if _, err := buildComparison(ctx, db, "https://example.com", 0); err == nil {
			t.Error("expected error with a single stored analysis")
		}
	})

	t.Run("compares against a specific id", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		oldID, err := db.Save(ctx, newCompareResult(model.StrategyMobile, 50, 3.0, base))
		if err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if _, err := db.Save(ctx, newCompareResult(model.StrategyMobile, 65, 2.5, base.Add(2*time.Hour))); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		result, err := buildComparison(ctx, db, "https://example.com", oldID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Strategies) != 1 {
			t.Fatalf("expected 1 strategy comparison, got %d", len(result.Strategies))
		}
		sc := result.Strategies[0]
		if sc.PreviousScore != 50 || sc.CurrentScore != 65 {
			t.Errorf("expected 50 -> 65, got %d -> %d", sc.PreviousScore, sc.CurrentScore)
		}
	})

	t.Run("rejects id from a different url", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		other := newCompareResult(model.StrategyDesktop, 70, 2.0, base)
		other.URL = "https://other.example.com"
		id, err := db.Save(ctx, other)
		if err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		if _, err := buildComparison(ctx, db, "https://example.com", id); err == nil {
			t.Error("expected error for mismatched url")
		}
	})
}

// TestFormatDelta tests delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	if got := formatDelta(5); got != "+5" {
		t.Errorf("expected +5, got %q", got)
	}
	if got := formatDelta(-3); got != "-3" {
		t.Errorf("expected -3, got %q", got)
	}
	if got := formatDelta(0); got != "0" {
		t.Errorf("expected 0, got %q", got)
	}
	if got := formatSecondsDelta(0.5); got != "+0.50s" {
		t.Errorf("expected +0.50s, got %q", got)
	}
	if got := formatSecondsDelta(-0.5); got != "-0.50s" {
		t.Errorf("expected -0.50s, got %q", got)
	}
}
