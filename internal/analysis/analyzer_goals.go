package analysis

import (
	"math"

	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/providerdata"
)

type goalsAnalyzer struct{}

func NewGoalsAnalyzer() Analyzer { return goalsAnalyzer{} }

func (goalsAnalyzer) BetType() matchcontext.BetType { return matchcontext.BetTypeGoals }

func (goalsAnalyzer) RequiredSources() []string {
	return []string{"predictions", "h2h_history"}
}

func (a goalsAnalyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	pred := bundle.Predictions
	h2h := bundle.H2HHistory
	team1Stats := bundle.Team1Stats
	team2Stats := bundle.Team2Stats

	return map[string]any{
		"average_goals": analyzeAvgGoals(pred, team1Stats, team2Stats),
		"over_under":    analyzeOverUnder(pred),
		"btts":          analyzeBTTS(pred),
		"clean_sheets":  analyzeCleanSheets(team1Stats, team2Stats),
		"h2h_goals":     analyzeH2HGoals(h2h),
	}
}

func analyzeAvgGoals(pred, team1Stats, team2Stats any) map[string]any {
	homeGoals := providerdata.Get(pred, "teams", "home", "league", "goals", "for", "average", "total")
	awayGoals := providerdata.Get(pred, "teams", "away", "league", "goals", "for", "average", "total")

	team1AvgFor := providerdata.Get(team1Stats, "goals", "for", "average", "total")
	team2AvgFor := providerdata.Get(team2Stats, "goals", "for", "average", "total")

	homeAvg := orElse(homeGoals, team1AvgFor)
	awayAvg := orElse(awayGoals, team2AvgFor)

	return map[string]any{
		"home_avg_scored": homeAvg,
		"away_avg_scored": awayAvg,
		"combined_avg":    safeAdd(homeAvg, awayAvg),
	}
}

func analyzeOverUnder(pred any) map[string]any {
	goals := providerdata.Map(pred, "goals")

	return map[string]any{
		"over_0_5":  providerdata.Get(goals, "over_0_5"),
		"over_1_5":  providerdata.Get(goals, "over_1_5"),
		"over_2_5":  providerdata.Get(goals, "over_2_5"),
		"over_3_5":  providerdata.Get(goals, "over_3_5"),
		"under_0_5": providerdata.Get(goals, "under_0_5"),
		"under_1_5": providerdata.Get(goals, "under_1_5"),
		"under_2_5": providerdata.Get(goals, "under_2_5"),
		"under_3_5": providerdata.Get(goals, "under_3_5"),
	}
}

func analyzeBTTS(pred any) map[string]any {
	homeFor := providerdata.Get(pred, "teams", "home", "league", "goals", "for", "total", "total")
	homeAgainst := providerdata.Get(pred, "teams", "home", "league", "goals", "against", "total", "total")
	awayFor := providerdata.Get(pred, "teams", "away", "league", "goals", "for", "total", "total")
	awayAgainst := providerdata.Get(pred, "teams", "away", "league", "goals", "against", "total", "total")

	return map[string]any{
		"home_scoring_frequency":   homeFor,
		"home_conceding_frequency": homeAgainst,
		"away_scoring_frequency":   awayFor,
		"away_conceding_frequency": awayAgainst,
		"btts_percentage":          providerdata.Get(pred, "goals", "btts"),
	}
}

func analyzeCleanSheets(team1Stats, team2Stats any) map[string]any {
	return map[string]any{
		"home_clean_sheets": providerdata.Get(team1Stats, "clean_sheet", "total"),
		"away_clean_sheets": providerdata.Get(team2Stats, "clean_sheet", "total"),
	}
}

func analyzeH2HGoals(h2h []any) map[string]any {
	if len(h2h) == 0 {
		return map[string]any{"total_matches": 0}
	}

	var totalGoals float64
	over25Count := 0
	var goalsPerMatch []float64

	for _, match := range h2h {
		homeGoals, homeOK := providerdata.Float64(match, "goals", "home")
		awayGoals, awayOK := providerdata.Float64(match, "goals", "away")
		if !homeOK || !awayOK {
			continue
		}

		matchTotal := homeGoals + awayGoals
		totalGoals += matchTotal
		goalsPerMatch = append(goalsPerMatch, matchTotal)

		if matchTotal > 2.5 {
			over25Count++
		}
	}

	n := len(h2h)
	avgGoals := totalGoals / float64(n)
	over25Pct := float64(over25Count) / float64(n) * 100

	if len(goalsPerMatch) > 5 {
		goalsPerMatch = goalsPerMatch[:5]
	}

	return map[string]any{
		"total_matches":       n,
		"total_goals":         totalGoals,
		"avg_goals_per_match": round(avgGoals, 2),
		"over_2_5_count":      over25Count,
		"over_2_5_percentage": round(over25Pct, 1),
		"goals_distribution":  goalsPerMatch,
	}
}

// orElse returns a if it is present (non-nil), else b.
func orElse(a, b any) any {
	if a != nil {
		return a
	}
	return b
}

// safeAdd adds two numeric values, returning nil if either is absent or
// not numeric.
func safeAdd(a, b any) any {
	af, aOK := asFloat(a)
	bf, bOK := asFloat(b)
	if !aOK || !bOK {
		return nil
	}
	return af + bf
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// round rounds v to the given number of decimal places, with halves going
// away from zero (math.Round), matching the rounding behavior the indicator
// values are specified with.
func round(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}
