package analysis

import (
	"testing"

	"github.com/oddsdesk/matchcontext/internal/collector"
)

func TestCardsTeamAnalyzer_Averages(t *testing.T) {
	t.Parallel()

	bundle := collector.RawBundle{
		H2HDetails: []collector.H2HDetail{
			{
				FixtureID: 1,
				Statistics: []any{
					map[string]any{"statistics": []any{
						map[string]any{"type": "Yellow Cards", "value": float64(3)},
						map[string]any{"type": "Red Cards", "value": float64(0)},
					}},
					map[string]any{"statistics": []any{
						map[string]any{"type": "Yellow Cards", "value": float64(2)},
						map[string]any{"type": "Red Cards", "value": float64(1)},
					}},
				},
			},
		},
	}

	a := NewCardsTeamAnalyzer()
	indicators := a.ComputeIndicators(bundle)

	if indicators["avg_yellow_cards"] != round(5.0, 1) {
		t.Fatalf("expected avg_yellow_cards=5, got %v", indicators["avg_yellow_cards"])
	}
	if indicators["avg_red_cards"] != round(1.0, 2) {
		t.Fatalf("expected avg_red_cards=1, got %v", indicators["avg_red_cards"])
	}
	if indicators["coverage_note"] == "" || indicators["coverage_note"] == nil {
		t.Fatalf("expected a non-empty coverage_note")
	}

	stats := indicators["h2h_stats"].([]map[string]any)
	if len(stats) != 1 {
		t.Fatalf("expected one h2h_stats entry, got %d", len(stats))
	}
	if stats[0]["total_cards"] != 6 {
		t.Fatalf("expected total_cards=6, got %v", stats[0]["total_cards"])
	}
}

func TestCardsTeamAnalyzer_RequiredSourcesNarrow(t *testing.T) {
	t.Parallel()

	a := NewCardsTeamAnalyzer()
	got := a.RequiredSources()
	if len(got) != 1 || got[0] != "h2h_details" {
		t.Fatalf("expected required_sources to stay narrow to h2h_details, got %v", got)
	}
}
