package analysis

import (
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/providerdata"
)

const (
	defaultShotsThreshold         = 10
	defaultShotsOnTargetThreshold = 4
)

type shotsAnalyzer struct{}

func NewShotsAnalyzer() Analyzer { return shotsAnalyzer{} }

func (shotsAnalyzer) BetType() matchcontext.BetType { return matchcontext.BetTypeShots }

func (shotsAnalyzer) RequiredSources() []string {
	return []string{"h2h_details"}
}

func (a shotsAnalyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	h2hDetails := bundle.H2HDetails
	fixture := bundle.Fixture

	shotsData := extractShotsFromH2H(h2hDetails)

	homeID, _ := providerdata.Int(fixture, "teams", "home", "id")
	awayID, _ := providerdata.Int(fixture, "teams", "away", "id")

	return map[string]any{
		"avg_shots":           shotsData["avg_shots"],
		"avg_shots_on_target": shotsData["avg_shots_on_target"],
		"accuracy_rate":       shotsData["accuracy_rate"],
		"h2h_stats":           shotsData["h2h_stats"],
		"shots_series":        analyzeShotsSeries(h2hDetails, homeID, awayID),
	}
}

func extractShotsFromH2H(h2hDetails []collector.H2HDetail) map[string]any {
	if len(h2hDetails) == 0 {
		return map[string]any{}
	}

	totalShots := 0
	totalShotsOnTarget := 0
	matchCount := 0
	var h2hStats []map[string]any

	for _, detail := range h2hDetails {
		matchShots, matchShotsOnTarget := 0, 0

		for _, teamStatsAny := range detail.Statistics {
			statsMap := teamStatisticTypeMap(teamStatsAny)
			shots, shotsOK := parseStatInt(statsMap["Total Shots"])
			onTarget, onTargetOK := parseStatInt(statsMap["Shots on Goal"])

			if shotsOK {
				matchShots += shots
				totalShots += shots
			}
			if onTargetOK {
				matchShotsOnTarget += onTarget
				totalShotsOnTarget += onTarget
			}
		}

		if matchShots > 0 {
			matchCount++
			h2hStats = append(h2hStats, map[string]any{
				"fixture_id":      detail.FixtureID,
				"total_shots":     matchShots,
				"shots_on_target": matchShotsOnTarget,
			})
		}
	}

	result := map[string]any{"h2h_stats": h2hStats}

	if matchCount > 0 {
		avgShots := float64(totalShots) / float64(matchCount)
		avgOnTarget := float64(totalShotsOnTarget) / float64(matchCount)
		result["avg_shots"] = round(avgShots, 1)
		result["avg_shots_on_target"] = round(avgOnTarget, 1)
	}
	if totalShots > 0 {
		result["accuracy_rate"] = round(float64(totalShotsOnTarget)/float64(totalShots)*100, 1)
	}

	return result
}

// teamStatisticTypeMap flattens one team's "statistics": [{type, value}, ...]
// block from an h2h detail entry into a type -> value lookup.
func teamStatisticTypeMap(teamStatsAny any) map[string]any {
	out := map[string]any{}
	for _, s := range providerdata.Slice(teamStatsAny, "statistics") {
		statType := providerdata.String(s, "type")
		if statType == "" {
			continue
		}
		out[statType] = providerdata.Get(s, "value")
	}
	return out
}

func parseStatInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		return 0, false
	}
	return 0, false
}

// analyzeShotsSeries derives a bounded recent-form shots streak per side
// from the same h2h_details window used for the headline shots indicators,
// rather than a separately collected per-team recent-fixtures history.
func analyzeShotsSeries(h2hDetails []collector.H2HDetail, homeID, awayID int) map[string]any {
	if homeID == 0 || awayID == 0 {
		return map[string]any{}
	}

	return map[string]any{
		"home": summarizeTeamShotsSeries(h2hDetails, homeID),
		"away": summarizeTeamShotsSeries(h2hDetails, awayID),
	}
}

func summarizeTeamShotsSeries(h2hDetails []collector.H2HDetail, teamID int) map[string]any {
	var shotsValues, onTargetValues []int

	for _, detail := range h2hDetails {
		for _, teamStatsAny := range detail.Statistics {
			entryTeamID, _ := providerdata.Int(teamStatsAny, "team", "id")
			if entryTeamID != teamID {
				continue
			}
			statsMap := teamStatisticTypeMap(teamStatsAny)
			if shots, ok := parseStatInt(statsMap["Total Shots"]); ok {
				shotsValues = append(shotsValues, shots)
			}
			onTargetRaw := statsMap["Shots on Goal"]
			if onTargetRaw == nil {
				onTargetRaw = statsMap["Shots on Target"]
			}
			if onTarget, ok := parseStatInt(onTargetRaw); ok {
				onTargetValues = append(onTargetValues, onTarget)
			}
			break
		}
	}

	if len(shotsValues) == 0 && len(onTargetValues) == 0 {
		return map[string]any{}
	}

	return map[string]any{
		"shots":           summarizeThresholdSeries(shotsValues, defaultShotsThreshold),
		"shots_on_target": summarizeThresholdSeries(onTargetValues, defaultShotsOnTargetThreshold),
	}
}

func summarizeThresholdSeries(values []int, threshold int) map[string]any {
	if len(values) == 0 {
		return map[string]any{}
	}

	overCount, underCount := 0, 0
	for _, v := range values {
		if v >= threshold {
			overCount++
		} else {
			underCount++
		}
	}

	currentOver := 0
	for _, v := range values {
		if v >= threshold {
			currentOver++
		} else {
			break
		}
	}
	currentUnder := 0
	for _, v := range values {
		if v < threshold {
			currentUnder++
		} else {
			break
		}
	}

	sum, min, max := 0, values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	avg := float64(sum) / float64(len(values))

	return map[string]any{
		"matches":               len(values),
		"threshold":             threshold,
		"over":                  overCount,
		"under":                 underCount,
		"current_over_streak":  currentOver,
		"current_under_streak": currentUnder,
		"average":               round(avg, 1),
		"min":                   min,
		"max":                   max,
	}
}
