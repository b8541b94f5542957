package analysis

import (
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/providerdata"
)

type assisterAnalyzer struct{}

func NewAssisterAnalyzer() Analyzer { return assisterAnalyzer{} }

func (assisterAnalyzer) BetType() matchcontext.BetType { return matchcontext.BetTypeAssister }

func (assisterAnalyzer) RequiredSources() []string {
	return []string{"top_assists", "h2h_details"}
}

func (a assisterAnalyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	topAssists := bundle.TopAssists
	h2hDetails := bundle.H2HDetails
	fixture := bundle.Fixture

	homeTeam := providerdata.String(fixture, "teams", "home", "name")
	awayTeam := providerdata.String(fixture, "teams", "away", "name")

	return map[string]any{
		"top_assisters_league": formatTopAssisters(topAssists),
		"home_team_assisters":  filterAssistersByTeam(topAssists, homeTeam),
		"away_team_assisters":  filterAssistersByTeam(topAssists, awayTeam),
		"h2h_assisters":        extractH2HGoalEvents(h2hDetails, "assist"),
	}
}

// assistsFor implements the disjunctive field-probe precedence the original
// analyzer uses: goals.assists, falling back to passes.assists, falling
// back to passes.total, in that exact order.
func assistsFor(stats any) int {
	if v, ok := providerdata.Int(stats, "goals", "assists"); ok && v != 0 {
		return v
	}
	if v, ok := providerdata.Int(stats, "passes", "assists"); ok && v != 0 {
		return v
	}
	if v, ok := providerdata.Int(stats, "passes", "total"); ok {
		return v
	}
	return 0
}

func formatTopAssisters(topAssists []any) []map[string]any {
	limit := 10
	if len(topAssists) < limit {
		limit = len(topAssists)
	}

	result := make([]map[string]any, 0, limit)
	for _, playerData := range topAssists[:limit] {
		player := providerdata.Map(playerData, "player")
		stats := firstStatistic(playerData)
		assists := assistsFor(stats)
		appearances, _ := providerdata.Int(stats, "games", "appearences")
		minutes, _ := providerdata.Int(stats, "games", "minutes")

		result = append(result, map[string]any{
			"name":           providerdata.Get(player, "name"),
			"team":           providerdata.Get(stats, "team", "name"),
			"assists":        assists,
			"appearances":    appearances,
			"assists_per_90": calculatePer90(assists, minutes),
		})
	}

	return result
}

func filterAssistersByTeam(topAssists []any, teamName string) []map[string]any {
	if teamName == "" {
		return []map[string]any{}
	}

	var teamAssisters []map[string]any
	for _, playerData := range topAssists {
		stats := firstStatistic(playerData)
		playerTeam := providerdata.String(stats, "team", "name")
		if playerTeam == "" || !containsFold(playerTeam, teamName) {
			continue
		}

		player := providerdata.Map(playerData, "player")
		assists := assistsFor(stats)
		minutes, _ := providerdata.Int(stats, "games", "minutes")

		teamAssisters = append(teamAssisters, map[string]any{
			"name":           providerdata.Get(player, "name"),
			"assists":        assists,
			"assists_per_90": calculatePer90(assists, minutes),
		})

		if len(teamAssisters) == 5 {
			break
		}
	}

	if teamAssisters == nil {
		teamAssisters = []map[string]any{}
	}
	return teamAssisters
}
