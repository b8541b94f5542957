package analysis

import (
	"sort"
	"strings"

	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/providerdata"
)

type scorerAnalyzer struct{}

func NewScorerAnalyzer() Analyzer { return scorerAnalyzer{} }

func (scorerAnalyzer) BetType() matchcontext.BetType { return matchcontext.BetTypeScorer }

func (scorerAnalyzer) RequiredSources() []string {
	return []string{"top_scorers", "h2h_details"}
}

func (a scorerAnalyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	topScorers := bundle.TopScorers
	h2hDetails := bundle.H2HDetails
	fixture := bundle.Fixture

	homeTeam := providerdata.String(fixture, "teams", "home", "name")
	awayTeam := providerdata.String(fixture, "teams", "away", "name")

	return map[string]any{
		"top_scorers_league": formatTopScorers(topScorers),
		"home_team_scorers":  filterScorersByTeam(topScorers, homeTeam),
		"away_team_scorers":  filterScorersByTeam(topScorers, awayTeam),
		"h2h_scorers":        extractH2HGoalEvents(h2hDetails, "player"),
	}
}

func formatTopScorers(topScorers []any) []map[string]any {
	limit := 10
	if len(topScorers) < limit {
		limit = len(topScorers)
	}

	result := make([]map[string]any, 0, limit)
	for _, playerData := range topScorers[:limit] {
		player := providerdata.Map(playerData, "player")
		stats := firstStatistic(playerData)
		goalsTotal, _ := providerdata.Int(stats, "goals", "total")
		appearances, _ := providerdata.Int(stats, "games", "appearences")
		minutes, _ := providerdata.Int(stats, "games", "minutes")

		result = append(result, map[string]any{
			"name":         providerdata.Get(player, "name"),
			"team":         providerdata.Get(stats, "team", "name"),
			"goals":        goalsTotal,
			"appearances":  appearances,
			"goals_per_90": calculatePer90(goalsTotal, minutes),
		})
	}

	return result
}

func filterScorersByTeam(topScorers []any, teamName string) []map[string]any {
	if teamName == "" {
		return []map[string]any{}
	}

	var teamScorers []map[string]any
	for _, playerData := range topScorers {
		stats := firstStatistic(playerData)
		playerTeam := providerdata.String(stats, "team", "name")
		if playerTeam == "" || !containsFold(playerTeam, teamName) {
			continue
		}

		player := providerdata.Map(playerData, "player")
		goalsTotal, _ := providerdata.Int(stats, "goals", "total")
		minutes, _ := providerdata.Int(stats, "games", "minutes")

		teamScorers = append(teamScorers, map[string]any{
			"name":         providerdata.Get(player, "name"),
			"goals":        goalsTotal,
			"goals_per_90": calculatePer90(goalsTotal, minutes),
		})

		if len(teamScorers) == 5 {
			break
		}
	}

	if teamScorers == nil {
		teamScorers = []map[string]any{}
	}
	return teamScorers
}

// extractH2HGoalEvents tallies how often each name appears as the named
// sub-field ("player" or "assist") of a Goal event across the h2h_details
// window, sorted by count descending.
func extractH2HGoalEvents(h2hDetails []collector.H2HDetail, nameField string) map[string]any {
	counts := map[string]int{}
	var order []string

	for _, detail := range h2hDetails {
		for _, event := range detail.Events {
			if providerdata.String(event, "type") != "Goal" {
				continue
			}
			name := providerdata.String(event, nameField, "name")
			if name == "" || name == "None" {
				continue
			}
			if _, seen := counts[name]; !seen {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	limit := 10
	if len(order) < limit {
		limit = len(order)
	}

	entries := make([]map[string]any, 0, limit)
	countField := "goals"
	if nameField == "assist" {
		countField = "assists"
	}
	for _, name := range order[:limit] {
		entries = append(entries, map[string]any{
			"name":    name,
			countField: counts[name],
		})
	}

	key := "scorers"
	if nameField == "assist" {
		key = "assisters"
	}
	return map[string]any{key: entries}
}

func calculatePer90(total, minutes int) any {
	if minutes == 0 {
		return nil
	}
	return round(float64(total)/float64(minutes)*90, 2)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
