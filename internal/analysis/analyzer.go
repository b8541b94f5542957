// Package analysis implements the eight bet-type analyzers (C5): pure
// functions from a raw bundle to a BetAnalysisData, sharing one contract
// and one coverage-computing wrapper.
package analysis

import (
	"fmt"

	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
)

// Analyzer is the contract every bet-type analyzer implements: a static
// identity (BetType, RequiredSources) plus the pure indicator computation.
// Implementations must not mutate the bundle and must not perform I/O.
type Analyzer interface {
	BetType() matchcontext.BetType
	RequiredSources() []string
	ComputeIndicators(bundle collector.RawBundle) map[string]any
}

// All returns the eight required analyzers in the fixed bet-type order.
func All() []Analyzer {
	return []Analyzer{
		New1X2Analyzer(),
		NewGoalsAnalyzer(),
		NewShotsAnalyzer(),
		NewCornersAnalyzer(),
		NewCardsTeamAnalyzer(),
		NewCardPlayerAnalyzer(),
		NewScorerAnalyzer(),
		NewAssisterAnalyzer(),
	}
}

// Analyze runs one analyzer against a bundle, filling in DataSources and
// CoverageComplete around the analyzer's own ComputeIndicators. A panic or
// unexpected failure inside ComputeIndicators is recovered here and turned
// into an empty, coverage_complete=false result rather than propagating
// and aborting the whole request.
func Analyze(a Analyzer, bundle collector.RawBundle, logger *logging.Logger) (result matchcontext.BetAnalysisData) {
	if logger == nil {
		logger = logging.Default()
	}

	dataSources := availableSources(bundle)
	required := a.RequiredSources()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("analyzer panicked",
				"bet_type", string(a.BetType()),
				"panic", fmt.Sprintf("%v", rec),
			)
			result = matchcontext.BetAnalysisData{
				Indicators:       map[string]any{},
				DataSources:      dataSources,
				CoverageComplete: false,
			}
		}
	}()

	indicators := a.ComputeIndicators(bundle)
	if indicators == nil {
		indicators = map[string]any{}
	}

	return matchcontext.BetAnalysisData{
		Indicators:       indicators,
		DataSources:      dataSources,
		CoverageComplete: coverageComplete(required, dataSources),
	}
}

func coverageComplete(required, available []string) bool {
	have := make(map[string]bool, len(available))
	for _, s := range available {
		have[s] = true
	}
	for _, r := range required {
		if !have[r] {
			return false
		}
	}
	return true
}

// availableSources identifies which raw-bundle sections actually carry
// data, independent of which analyzer is asking.
func availableSources(bundle collector.RawBundle) []string {
	var sources []string

	if bundle.Predictions != nil {
		sources = append(sources, "predictions")
	}
	if len(bundle.H2HHistory) > 0 {
		sources = append(sources, "h2h_history")
	}
	if len(bundle.H2HDetails) > 0 {
		sources = append(sources, "h2h_details")
	}
	if len(bundle.Standings) > 0 {
		sources = append(sources, "standings")
	}
	if bundle.Team1Stats != nil || bundle.Team2Stats != nil {
		sources = append(sources, "team_statistics")
	}
	if len(bundle.Injuries) > 0 {
		sources = append(sources, "injuries")
	}
	if len(bundle.TopScorers) > 0 {
		sources = append(sources, "top_scorers")
	}
	if len(bundle.TopAssists) > 0 {
		sources = append(sources, "top_assists")
	}
	if len(bundle.TopYellow) > 0 || len(bundle.TopRed) > 0 {
		sources = append(sources, "top_cards")
	}

	return sources
}
