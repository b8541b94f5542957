package collector_test

import (
	"context"
	"testing"
	"time"

	"github.com/oddsdesk/matchcontext/external/footballdatatest"
	"github.com/oddsdesk/matchcontext/internal/collector"
)

func fixtureResponse(home, away, league, season int, status string) any {
	return map[string]any{
		"fixture": map[string]any{
			"status": map[string]any{"short": status},
			"date":   "2026-07-30T15:00:00+00:00",
			"venue":  map[string]any{"name": "Anfield"},
		},
		"teams": map[string]any{
			"home": map[string]any{"id": float64(home), "name": "Home FC"},
			"away": map[string]any{"id": float64(away), "name": "Away FC"},
		},
		"league": map[string]any{"id": float64(league), "name": "Premier League", "season": float64(season)},
	}
}

func scriptStandardFixture(stub *footballdatatest.Stub, fixtureID, home, away, league, season int) {
	stub.SetResponse(footballdatatest.KeyFixture(fixtureID), fixtureResponse(home, away, league, season, "NS"))
	stub.SetResponse(footballdatatest.KeyLeague("standings", league, season), []any{"standing-row"})
	stub.SetResponse(footballdatatest.KeyLeague("top_scorers", league, season), []any{"scorer-row"})
	stub.SetResponse(footballdatatest.KeyLeague("top_assists", league, season), []any{"assist-row"})
	stub.SetResponse(footballdatatest.KeyLeague("top_yellow", league, season), []any{"yellow-row"})
	stub.SetResponse(footballdatatest.KeyLeague("top_red", league, season), []any{"red-row"})
}

func TestCollector_Collect_BuildsBundleFromFixture(t *testing.T) {
	stub := footballdatatest.New()
	scriptStandardFixture(stub, 100, 1, 2, 39, 2026)

	c := collector.New(stub, nil, collector.Config{})
	bundle, err := c.Collect(context.Background(), 100)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if bundle.Fixture == nil {
		t.Fatal("expected fixture section to be populated")
	}
	if len(bundle.Standings) != 1 {
		t.Fatalf("expected 1 standings row, got %d", len(bundle.Standings))
	}
	if bundle.APICallsCount == 0 {
		t.Fatal("expected api_calls_count to be tracked")
	}
}

func TestCollector_Collect_MissingFixtureFails(t *testing.T) {
	stub := footballdatatest.New()

	c := collector.New(stub, nil, collector.Config{})
	_, err := c.Collect(context.Background(), 404)
	if err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestCollector_Collect_ReusesLeagueEntityCacheAcrossFixtures(t *testing.T) {
	stub := footballdatatest.New()
	scriptStandardFixture(stub, 100, 1, 2, 39, 2026)
	scriptStandardFixture(stub, 101, 3, 4, 39, 2026)

	c := collector.New(stub, nil, collector.Config{})

	if _, err := c.Collect(context.Background(), 100); err != nil {
		t.Fatalf("collect first fixture: %v", err)
	}
	callsAfterFirst := stub.Calls()

	if _, err := c.Collect(context.Background(), 101); err != nil {
		t.Fatalf("collect second fixture: %v", err)
	}
	callsAfterSecond := stub.Calls()

	standingsCalls := countCalls(stub.CallLog(), "standings:39:2026")
	if standingsCalls != 1 {
		t.Fatalf("expected standings to be fetched once across both fixtures (shared league+season), got %d", standingsCalls)
	}

	// A second, independently-scripted fixture still exercises per-fixture
	// calls (fixture lookup, h2h, team stats) while the league-wide
	// leaderboard calls are served from cache — so total calls grows by
	// less than a full repeat of the first collection.
	if callsAfterSecond-callsAfterFirst >= callsAfterFirst {
		t.Fatalf("expected second collection to reuse cached league entities, calls grew from %d to %d", callsAfterFirst, callsAfterSecond)
	}
}

func countCalls(log []string, key string) int {
	n := 0
	for _, k := range log {
		if k == key {
			n++
		}
	}
	return n
}

func TestCollector_Collect_RespectsCollectionTimeout(t *testing.T) {
	stub := footballdatatest.New()
	stub.SetResponse(footballdatatest.KeyFixture(200), fixtureResponse(1, 2, 39, 2026, "NS"))

	c := collector.New(stub, nil, collector.Config{CollectionTimeout: time.Nanosecond})
	_, err := c.Collect(context.Background(), 200)
	if err == nil {
		t.Fatal("expected timeout error with a near-zero collection budget")
	}
}
