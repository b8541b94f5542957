package analysis

import (
	"testing"

	"github.com/oddsdesk/matchcontext/internal/collector"
)

func TestAssisterAnalyzer_FieldPrecedence(t *testing.T) {
	t.Parallel()

	// goals.assists present: takes precedence over passes.assists/passes.total.
	stats1 := map[string]any{
		"goals":  map[string]any{"assists": float64(4)},
		"passes": map[string]any{"assists": float64(9), "total": float64(500)},
	}
	if got := assistsFor(stats1); got != 4 {
		t.Fatalf("expected goals.assists to win, got %d", got)
	}

	// goals.assists absent/zero: falls back to passes.assists.
	stats2 := map[string]any{
		"goals":  map[string]any{"assists": float64(0)},
		"passes": map[string]any{"assists": float64(6), "total": float64(500)},
	}
	if got := assistsFor(stats2); got != 6 {
		t.Fatalf("expected passes.assists fallback, got %d", got)
	}

	// neither goals.assists nor passes.assists present: falls back to passes.total.
	stats3 := map[string]any{
		"passes": map[string]any{"total": float64(500)},
	}
	if got := assistsFor(stats3); got != 500 {
		t.Fatalf("expected passes.total fallback, got %d", got)
	}
}

func TestAssisterAnalyzer_H2HAssisters_SkipsNoneAssist(t *testing.T) {
	t.Parallel()

	bundle := collector.RawBundle{
		Fixture: map[string]any{},
		H2HDetails: []collector.H2HDetail{
			{
				Events: []any{
					map[string]any{"type": "Goal", "assist": map[string]any{"name": "Playmaker"}},
					map[string]any{"type": "Goal", "assist": map[string]any{"name": "None"}},
				},
			},
		},
	}

	a := NewAssisterAnalyzer()
	indicators := a.ComputeIndicators(bundle)
	h2h := indicators["h2h_assisters"].(map[string]any)
	assisters := h2h["assisters"].([]map[string]any)

	if len(assisters) != 1 {
		t.Fatalf("expected only the real assister name to be counted, got %v", assisters)
	}
	if assisters[0]["name"] != "Playmaker" {
		t.Fatalf("expected Playmaker, got %v", assisters[0]["name"])
	}
}
