package footballdata

import "context"

// Provider is the upstream football data surface the collector depends on.
// Client implements it against the real HTTP API; footballdatatest provides
// a scripted stand-in for tests.
type Provider interface {
	GetFixture(ctx context.Context, fixtureID int) (any, error)
	GetPredictions(ctx context.Context, fixtureID int) (any, error)
	GetHeadToHead(ctx context.Context, teamA, teamB, last int, statusFilter string) ([]any, error)
	GetFixtureStatistics(ctx context.Context, fixtureID int) ([]any, error)
	GetFixturePlayers(ctx context.Context, fixtureID int) ([]any, error)
	GetFixtureEvents(ctx context.Context, fixtureID int) ([]any, error)
	GetFixtureLineups(ctx context.Context, fixtureID int) ([]any, error)
	GetStandings(ctx context.Context, season, leagueID int) ([]any, error)
	GetTeamStatistics(ctx context.Context, teamID, season, leagueID int) (any, error)
	GetInjuries(ctx context.Context, teamID, leagueID, season int) ([]any, error)
	GetSidelined(ctx context.Context, teamID int) ([]any, error)
	GetTopScorers(ctx context.Context, leagueID, season int) ([]any, error)
	GetTopAssists(ctx context.Context, leagueID, season int) ([]any, error)
	GetTopYellowCards(ctx context.Context, leagueID, season int) ([]any, error)
	GetTopRedCards(ctx context.Context, leagueID, season int) ([]any, error)
}

var _ Provider = (*Client)(nil)
