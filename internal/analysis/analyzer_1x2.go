package analysis

import (
	"fmt"
	"strings"

	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/providerdata"
)

type oneX2Analyzer struct{}

func New1X2Analyzer() Analyzer { return oneX2Analyzer{} }

func (oneX2Analyzer) BetType() matchcontext.BetType { return matchcontext.BetType1X2 }

func (oneX2Analyzer) RequiredSources() []string {
	return []string{"predictions", "h2h_history", "standings"}
}

func (a oneX2Analyzer) ComputeIndicators(bundle collector.RawBundle) map[string]any {
	pred := bundle.Predictions
	h2h := bundle.H2HHistory
	standings := bundle.Standings
	fixture := bundle.Fixture

	homeID, _ := providerdata.Int(fixture, "teams", "home", "id")
	awayID, _ := providerdata.Int(fixture, "teams", "away", "id")

	return map[string]any{
		"recent_form":    analyzeForm(pred),
		"h2h_stats":      analyzeH2HResult(h2h, homeID, awayID),
		"standings_gap":  analyzeStandingsGap(standings, homeID, awayID),
		"home_advantage": analyzeHomeAdvantage(pred),
		"prediction_api": extractPredictionAPI(pred),
	}
}

func analyzeForm(pred any) map[string]any {
	homeForm := providerdata.String(pred, "teams", "home", "league", "form")
	awayForm := providerdata.String(pred, "teams", "away", "league", "form")

	return map[string]any{
		"home": map[string]any{
			"form":        nilIfEmpty(homeForm),
			"last_5_wins": countWinsInForm(homeForm),
			"fixtures":    providerdata.Map(pred, "teams", "home", "league", "fixtures"),
		},
		"away": map[string]any{
			"form":        nilIfEmpty(awayForm),
			"last_5_wins": countWinsInForm(awayForm),
			"fixtures":    providerdata.Map(pred, "teams", "away", "league", "fixtures"),
		},
	}
}

func countWinsInForm(form string) int {
	return strings.Count(form, "W")
}

func analyzeH2HResult(h2h []any, homeID, awayID int) map[string]any {
	if len(h2h) == 0 || homeID == 0 || awayID == 0 {
		return map[string]any{"total": 0}
	}

	homeWins, draws, awayWins := 0, 0, 0
	type lastResult struct {
		Date   string `json:"date"`
		Result string `json:"result"`
		Score  string `json:"score"`
	}
	var lastResults []lastResult

	for _, match := range h2h {
		homeGoals, homeOK := providerdata.Float64(match, "goals", "home")
		awayGoals, awayOK := providerdata.Float64(match, "goals", "away")
		if !homeOK || !awayOK {
			continue
		}
		matchHomeID, _ := providerdata.Int(match, "teams", "home", "id")

		var result string
		sideHomeWon := homeGoals > awayGoals
		sideDraw := homeGoals == awayGoals
		if matchHomeID == homeID {
			switch {
			case sideHomeWon:
				homeWins++
				result = "W"
			case sideDraw:
				draws++
				result = "D"
			default:
				awayWins++
				result = "L"
			}
		} else {
			switch {
			case !sideHomeWon && !sideDraw:
				homeWins++
				result = "W"
			case sideDraw:
				draws++
				result = "D"
			default:
				awayWins++
				result = "L"
			}
		}

		lastResults = append(lastResults, lastResult{
			Date:   providerdata.String(match, "fixture", "date"),
			Result: result,
			Score:  fmt.Sprintf("%g-%g", homeGoals, awayGoals),
		})
	}

	if len(lastResults) > 5 {
		lastResults = lastResults[:5]
	}

	return map[string]any{
		"total":     len(h2h),
		"home_wins": homeWins,
		"draws":     draws,
		"away_wins": awayWins,
		"last_5":    lastResults,
	}
}

func analyzeStandingsGap(standings []any, homeID, awayID int) map[string]any {
	if len(standings) == 0 || homeID == 0 || awayID == 0 {
		return map[string]any{}
	}

	var homePos, awayPos int
	var homePoints, awayPoints int
	var homeFound, awayFound bool

	for _, block := range standings {
		tables := providerdata.Slice(block, "league", "standings")
		if len(tables) == 0 {
			continue
		}
		table, _ := tables[0].([]any)
		for _, rowAny := range table {
			teamID, _ := providerdata.Int(rowAny, "team", "id")
			rank, _ := providerdata.Int(rowAny, "rank")
			points, _ := providerdata.Int(rowAny, "points")
			switch teamID {
			case homeID:
				homePos, homePoints, homeFound = rank, points, true
			case awayID:
				awayPos, awayPoints, awayFound = rank, points, true
			}
		}
	}

	if !homeFound || !awayFound || homePos == 0 || awayPos == 0 {
		return map[string]any{}
	}

	gap := homePos - awayPos
	if gap < 0 {
		gap = -gap
	}

	var pointsGap any
	if homePoints != 0 && awayPoints != 0 {
		pointsGap = homePoints - awayPoints
	}

	return map[string]any{
		"home_position": homePos,
		"away_position": awayPos,
		"position_gap":  gap,
		"home_points":   homePoints,
		"away_points":   awayPoints,
		"points_gap":    pointsGap,
	}
}

func analyzeHomeAdvantage(pred any) map[string]any {
	homeWins := providerdata.Map(pred, "teams", "home", "league", "fixtures", "wins")
	awayWins := providerdata.Map(pred, "teams", "away", "league", "fixtures", "wins")

	return map[string]any{
		"home_wins_at_home": providerdata.Get(homeWins, "home"),
		"home_total_wins":   providerdata.Get(homeWins, "total"),
		"away_wins_away":    providerdata.Get(awayWins, "away"),
		"away_total_wins":   providerdata.Get(awayWins, "total"),
	}
}

func extractPredictionAPI(pred any) map[string]any {
	predictions := providerdata.Map(pred, "predictions")
	winner := providerdata.Map(predictions, "winner")
	percent := providerdata.Map(predictions, "percent")

	return map[string]any{
		"winner":         providerdata.Get(winner, "name"),
		"winner_comment": providerdata.Get(winner, "comment"),
		"win_percent":    providerdata.Get(percent, "home"),
		"draw_percent":   providerdata.Get(percent, "draw"),
		"lose_percent":   providerdata.Get(percent, "away"),
		"advice":         providerdata.Get(predictions, "advice"),
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
