package analysis

import (
	"testing"

	"github.com/oddsdesk/matchcontext/internal/collector"
)

func TestCardPlayerAnalyzer_RiskTiering(t *testing.T) {
	t.Parallel()

	bundle := collector.RawBundle{
		TopYellow: []any{
			map[string]any{
				"player": map[string]any{"name": "A Player"},
				"statistics": []any{
					map[string]any{
						"team":  map[string]any{"name": "FC One"},
						"cards": map[string]any{"yellow": float64(9)},
					},
				},
			},
			map[string]any{
				"player": map[string]any{"name": "B Player"},
				"statistics": []any{
					map[string]any{
						"team":  map[string]any{"name": "FC Two"},
						"cards": map[string]any{"yellow": float64(6)},
					},
				},
			},
			map[string]any{
				"player": map[string]any{"name": "C Player"},
				"statistics": []any{
					map[string]any{
						"team":  map[string]any{"name": "FC Three"},
						"cards": map[string]any{"yellow": float64(3)},
					},
				},
			},
		},
	}

	a := NewCardPlayerAnalyzer()
	indicators := a.ComputeIndicators(bundle)

	risk := indicators["risk_players"].([]map[string]any)
	if len(risk) != 2 {
		t.Fatalf("expected 2 risk players (>=5 yellow), got %d", len(risk))
	}
	if risk[0]["risk_level"] != "high" {
		t.Fatalf("expected first risk player (9 yellow) to be high risk, got %v", risk[0]["risk_level"])
	}
	if risk[1]["risk_level"] != "medium" {
		t.Fatalf("expected second risk player (6 yellow) to be medium risk, got %v", risk[1]["risk_level"])
	}
}
