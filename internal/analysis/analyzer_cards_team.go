package analysis

import (
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
)

// cardsTeamCoverageNote documents why required_sources stays narrow: team
// cards are derived entirely from the h2h_details statistics window, so
// widening required_sources to predictions/standings would mark coverage
// incomplete for a fixture that actually has everything this analyzer uses.
const cardsTeamCoverageNote = "derived solely from h2h_details match statistics; predictions and standings are not consulted"

type cardsTeamAnalyzer struct{}

func NewCardsTeamAnalyzer() Analyzer { return cardsTeamAnalyzer{} }

func (cardsTeamAnalyzer) BetType() matchcontext.BetType { return matchcontext.BetTypeCardsTeam }

func (cardsTeamAnalyzer) RequiredSources() []string {
	return []string{"h2h_details"}
}

func (a cardsTeamAnalyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	cardsData := extractCardsFromH2H(bundle.H2HDetails)

	return map[string]any{
		"avg_yellow_cards": cardsData["avg_yellow"],
		"avg_red_cards":    cardsData["avg_red"],
		"avg_total_cards":  cardsData["avg_total"],
		"h2h_stats":        cardsData["h2h_stats"],
		"coverage_note":    cardsTeamCoverageNote,
	}
}

func extractCardsFromH2H(h2hDetails []collector.H2HDetail) map[string]any {
	if len(h2hDetails) == 0 {
		return map[string]any{}
	}

	totalYellow := 0
	totalRed := 0
	matchCount := 0
	var h2hStats []map[string]any

	for _, detail := range h2hDetails {
		matchYellow := 0
		matchRed := 0

		for _, teamStatsAny := range detail.Statistics {
			statsMap := teamStatisticTypeMap(teamStatsAny)
			if yellow, ok := parseStatInt(statsMap["Yellow Cards"]); ok {
				matchYellow += yellow
				totalYellow += yellow
			}
			if red, ok := parseStatInt(statsMap["Red Cards"]); ok {
				matchRed += red
				totalRed += red
			}
		}

		matchCount++
		h2hStats = append(h2hStats, map[string]any{
			"fixture_id":   detail.FixtureID,
			"yellow_cards": matchYellow,
			"red_cards":    matchRed,
			"total_cards":  matchYellow + matchRed,
		})
	}

	result := map[string]any{"h2h_stats": h2hStats}

	if matchCount > 0 {
		result["avg_yellow"] = round(float64(totalYellow)/float64(matchCount), 1)
		result["avg_red"] = round(float64(totalRed)/float64(matchCount), 2)
		result["avg_total"] = round(float64(totalYellow+totalRed)/float64(matchCount), 1)
	}

	return result
}
