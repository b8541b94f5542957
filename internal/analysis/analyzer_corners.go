package analysis

import (
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
)

type cornersAnalyzer struct{}

func NewCornersAnalyzer() Analyzer { return cornersAnalyzer{} }

func (cornersAnalyzer) BetType() matchcontext.BetType { return matchcontext.BetTypeCorners }

func (cornersAnalyzer) RequiredSources() []string {
	return []string{"h2h_details"}
}

func (a cornersAnalyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	cornersData := extractCornersFromH2H(bundle.H2HDetails)

	return map[string]any{
		"avg_corners":   cornersData["avg_corners"],
		"over_9_5_pct":  cornersData["over_9_5_pct"],
		"over_10_5_pct": cornersData["over_10_5_pct"],
		"h2h_stats":     cornersData["h2h_stats"],
	}
}

func extractCornersFromH2H(h2hDetails []collector.H2HDetail) map[string]any {
	if len(h2hDetails) == 0 {
		return map[string]any{}
	}

	totalCorners := 0
	matchCount := 0
	over95 := 0
	over105 := 0
	var h2hStats []map[string]any

	for _, detail := range h2hDetails {
		matchCorners := 0

		for _, teamStatsAny := range detail.Statistics {
			statsMap := teamStatisticTypeMap(teamStatsAny)
			if corners, ok := parseStatInt(statsMap["Corner Kicks"]); ok {
				matchCorners += corners
			}
		}

		if matchCorners > 0 {
			totalCorners += matchCorners
			matchCount++

			if matchCorners > 9 {
				over95++
			}
			if matchCorners > 10 {
				over105++
			}

			h2hStats = append(h2hStats, map[string]any{
				"fixture_id":    detail.FixtureID,
				"total_corners": matchCorners,
			})
		}
	}

	result := map[string]any{"h2h_stats": h2hStats}

	if matchCount > 0 {
		result["avg_corners"] = round(float64(totalCorners)/float64(matchCount), 1)
		result["over_9_5_pct"] = round(float64(over95)/float64(matchCount)*100, 1)
		result["over_10_5_pct"] = round(float64(over105)/float64(matchCount)*100, 1)
	}

	return result
}
