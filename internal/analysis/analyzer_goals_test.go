package analysis

import (
	"testing"

	"github.com/oddsdesk/matchcontext/internal/collector"
)

func TestGoalsAnalyzer_H2HGoals(t *testing.T) {
	t.Parallel()

	bundle := collector.RawBundle{
		H2HHistory: []any{
			map[string]any{"goals": map[string]any{"home": float64(2), "away": float64(1)}},
			map[string]any{"goals": map[string]any{"home": float64(0), "away": float64(0)}},
			map[string]any{"goals": map[string]any{"home": float64(3), "away": float64(2)}},
		},
	}

	a := NewGoalsAnalyzer()
	indicators := a.ComputeIndicators(bundle)

	h2hGoals := indicators["h2h_goals"].(map[string]any)
	if h2hGoals["total_matches"] != 3 {
		t.Fatalf("expected 3 matches, got %v", h2hGoals["total_matches"])
	}
	if h2hGoals["total_goals"] != float64(8) {
		t.Fatalf("expected total_goals=8, got %v", h2hGoals["total_goals"])
	}
	if h2hGoals["over_2_5_count"] != 2 {
		t.Fatalf("expected 2 matches over 2.5 goals, got %v", h2hGoals["over_2_5_count"])
	}
	if h2hGoals["avg_goals_per_match"] != round(8.0/3.0, 2) {
		t.Fatalf("expected avg_goals_per_match=%v, got %v", round(8.0/3.0, 2), h2hGoals["avg_goals_per_match"])
	}
}

func TestGoalsAnalyzer_H2HGoals_Empty(t *testing.T) {
	t.Parallel()

	a := NewGoalsAnalyzer()
	indicators := a.ComputeIndicators(collector.RawBundle{})

	h2hGoals := indicators["h2h_goals"].(map[string]any)
	if h2hGoals["total_matches"] != 0 {
		t.Fatalf("expected total_matches=0 for empty history, got %v", h2hGoals["total_matches"])
	}
	if len(h2hGoals) != 1 {
		t.Fatalf("expected only total_matches in empty result, got %v", h2hGoals)
	}
}

func TestGoalsAnalyzer_AvgGoalsFallsBackToTeamStats(t *testing.T) {
	t.Parallel()

	bundle := collector.RawBundle{
		Predictions: map[string]any{"teams": map[string]any{}},
		Team1Stats: map[string]any{
			"goals": map[string]any{"for": map[string]any{"average": map[string]any{"total": "1.80"}}},
		},
		Team2Stats: map[string]any{
			"goals": map[string]any{"for": map[string]any{"average": map[string]any{"total": "1.20"}}},
		},
	}

	a := NewGoalsAnalyzer()
	indicators := a.ComputeIndicators(bundle)
	avg := indicators["average_goals"].(map[string]any)

	if avg["home_avg_scored"] != "1.80" {
		t.Fatalf("expected fallback to team1 stats, got %v", avg["home_avg_scored"])
	}
	if avg["combined_avg"] != nil {
		t.Fatalf("expected nil combined_avg for non-numeric string inputs, got %v", avg["combined_avg"])
	}
}
