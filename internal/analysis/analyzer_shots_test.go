package analysis

import (
	"testing"

	"github.com/oddsdesk/matchcontext/internal/collector"
)

func detailWithShots(fixtureID int, teamID string, totalShots, shotsOnGoal int) collector.H2HDetail {
	return collector.H2HDetail{
		FixtureID: fixtureID,
		Statistics: []any{
			map[string]any{
				"team": map[string]any{"id": parseFixtureTeamID(teamID)},
				"statistics": []any{
					map[string]any{"type": "Total Shots", "value": float64(totalShots)},
					map[string]any{"type": "Shots on Goal", "value": float64(shotsOnGoal)},
				},
			},
		},
	}
}

func parseFixtureTeamID(id string) float64 {
	switch id {
	case "home":
		return 100
	case "away":
		return 200
	}
	return 0
}

func TestShotsAnalyzer_AverageAndAccuracy(t *testing.T) {
	t.Parallel()

	bundle := collector.RawBundle{
		Fixture: map[string]any{
			"teams": map[string]any{
				"home": map[string]any{"id": float64(100)},
				"away": map[string]any{"id": float64(200)},
			},
		},
		H2HDetails: []collector.H2HDetail{
			detailWithShots(1, "home", 14, 6),
			detailWithShots(2, "home", 10, 3),
		},
	}

	a := NewShotsAnalyzer()
	indicators := a.ComputeIndicators(bundle)

	if indicators["avg_shots"] != round(24.0/2.0, 1) {
		t.Fatalf("expected avg_shots=12, got %v", indicators["avg_shots"])
	}
	if indicators["accuracy_rate"] != round(9.0/24.0*100, 1) {
		t.Fatalf("expected accuracy_rate, got %v", indicators["accuracy_rate"])
	}
}

func TestShotsAnalyzer_NoDetails(t *testing.T) {
	t.Parallel()

	a := NewShotsAnalyzer()
	indicators := a.ComputeIndicators(collector.RawBundle{})

	if indicators["avg_shots"] != nil {
		t.Fatalf("expected nil avg_shots with no h2h details, got %v", indicators["avg_shots"])
	}
	if indicators["shots_series"].(map[string]any) == nil {
		t.Fatalf("expected shots_series to still be a map")
	}
}
