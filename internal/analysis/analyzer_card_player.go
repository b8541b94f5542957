package analysis

import (
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/providerdata"
)

type cardPlayerAnalyzer struct{}

func NewCardPlayerAnalyzer() Analyzer { return cardPlayerAnalyzer{} }

func (cardPlayerAnalyzer) BetType() matchcontext.BetType { return matchcontext.BetTypeCardPlayer }

func (cardPlayerAnalyzer) RequiredSources() []string {
	return []string{"top_cards", "h2h_details"}
}

func (a cardPlayerAnalyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	topYellow := bundle.TopYellow
	topRed := bundle.TopRed

	return map[string]any{
		"top_yellow_card_players": formatTopCardPlayers(topYellow, "yellow"),
		"top_red_card_players":    formatTopCardPlayers(topRed, "red"),
		"risk_players":            identifyRiskPlayers(topYellow),
	}
}

func formatTopCardPlayers(topPlayers []any, cardType string) []map[string]any {
	limit := 10
	if len(topPlayers) < limit {
		limit = len(topPlayers)
	}

	result := make([]map[string]any, 0, limit)
	for _, playerData := range topPlayers[:limit] {
		player := providerdata.Map(playerData, "player")
		stats := firstStatistic(playerData)
		cards := providerdata.Map(stats, "cards")

		cardCount := providerdata.GetDefault(cards, 0, cardType)
		if cardCount == nil || cardCount == 0 {
			cardCount = providerdata.GetDefault(cards, 0, cardType+"cards")
		}

		position := providerdata.Get(player, "position")
		if position == nil {
			position = providerdata.Get(stats, "games", "position")
		}

		result = append(result, map[string]any{
			"name":     providerdata.Get(player, "name"),
			"team":     providerdata.Get(stats, "team", "name"),
			"cards":    cardCount,
			"position": position,
		})
	}

	return result
}

func identifyRiskPlayers(topYellow []any) []map[string]any {
	limit := 5
	if len(topYellow) < limit {
		limit = len(topYellow)
	}

	var riskPlayers []map[string]any
	for _, playerData := range topYellow[:limit] {
		player := providerdata.Map(playerData, "player")
		stats := firstStatistic(playerData)
		cards := providerdata.Map(stats, "cards")

		yellowCount, ok := providerdata.Int(cards, "yellow")
		if !ok || yellowCount == 0 {
			yellowCount, ok = providerdata.Int(cards, "yellowcards")
		}
		if !ok || yellowCount < 5 {
			continue
		}

		riskLevel := "medium"
		if yellowCount >= 8 {
			riskLevel = "high"
		}

		riskPlayers = append(riskPlayers, map[string]any{
			"name":         providerdata.Get(player, "name"),
			"team":         providerdata.Get(stats, "team", "name"),
			"yellow_cards": yellowCount,
			"risk_level":   riskLevel,
		})
	}

	return riskPlayers
}

// firstStatistic returns the first element of a player entry's
// "statistics" array, or an empty map if absent.
func firstStatistic(playerData any) map[string]any {
	stats := providerdata.Slice(playerData, "statistics")
	if len(stats) == 0 {
		return map[string]any{}
	}
	m, _ := stats[0].(map[string]any)
	return m
}
