package collector

import "time"

// RawBundle is the transient, structured bag of upstream responses
// assembled for one fixture (C4's output, C5's input). It is never
// persisted: once the analyzer set has run, it is discarded.
type RawBundle struct {
	Fixture     any `json:"fixture"`
	Predictions any `json:"predictions"`
	H2HHistory  []any `json:"h2h_history"`
	H2HDetails  []H2HDetail `json:"h2h_details"`

	Standings   []any `json:"standings"`
	Team1Stats  any   `json:"team1_stats"`
	Team2Stats  any   `json:"team2_stats"`
	Injuries    []any `json:"injuries"`
	Sidelined   []any `json:"sidelined"`
	TopScorers  []any `json:"top_scorers"`
	TopAssists  []any `json:"top_assists"`
	TopYellow   []any `json:"top_yellow"`
	TopRed      []any `json:"top_red"`

	APICallsCount int       `json:"api_calls_count"`
	CollectedAt   time.Time `json:"collected_at"`
}

// H2HDetail holds the four per-match sub-sections fetched for one of the
// most recent head-to-head fixtures.
type H2HDetail struct {
	FixtureID  int `json:"fixture_id"`
	Statistics []any `json:"statistics"`
	Players    []any `json:"players"`
	Events     []any `json:"events"`
	Lineups    []any `json:"lineups"`
}

// FixtureIdentity is the subset of the fixture section the collector needs
// to drive subsequent calls.
type FixtureIdentity struct {
	HomeTeamID int
	AwayTeamID int
	HomeName   string
	AwayName   string
	LeagueID   int
	LeagueName string
	Season     int
	Status     string
	DateISO    string
	Venue      string
}
