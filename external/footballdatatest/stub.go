// Package footballdatatest provides a scripted, in-memory football data
// provider for tests that need to exercise the collector and context agent
// without a live upstream, including a call counter for verifying
// api_calls_count bookkeeping.
package footballdatatest

import (
	"context"
	"sync"
	"sync/atomic"
)

// Stub is a footballdata.Provider implementation driven entirely by
// pre-loaded responses and errors keyed by a caller-chosen string.
type Stub struct {
	mu        sync.Mutex
	responses map[string]any
	errs      map[string]error
	calls     atomic.Int64
	callLog   []string
}

func New() *Stub {
	return &Stub{
		responses: make(map[string]any),
		errs:      make(map[string]error),
	}
}

// SetResponse registers the value returned for a given call key.
func (s *Stub) SetResponse(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = value
}

// SetError registers an error returned for a given call key.
func (s *Stub) SetError(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[key] = err
}

// Calls reports how many provider methods were invoked in total.
func (s *Stub) Calls() int64 {
	return s.calls.Load()
}

// CallLog returns the ordered list of call keys seen, for tests that assert
// on concurrency fan-out shape rather than just a count.
func (s *Stub) CallLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.callLog))
	copy(out, s.callLog)
	return out
}

func (s *Stub) record(key string) (any, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.callLog = append(s.callLog, key)
	err := s.errs[key]
	val := s.responses[key]
	s.mu.Unlock()
	return val, err
}

func (s *Stub) GetFixture(_ context.Context, fixtureID int) (any, error) {
	return s.record(keyFixture(fixtureID))
}

func (s *Stub) GetPredictions(_ context.Context, fixtureID int) (any, error) {
	return s.record(keyPredictions(fixtureID))
}

func (s *Stub) GetHeadToHead(_ context.Context, teamA, teamB, last int, statusFilter string) ([]any, error) {
	v, err := s.record(keyH2H(teamA, teamB))
	return asSlice(v), err
}

func (s *Stub) GetFixtureStatistics(_ context.Context, fixtureID int) ([]any, error) {
	v, err := s.record(keyDetail("statistics", fixtureID))
	return asSlice(v), err
}

func (s *Stub) GetFixturePlayers(_ context.Context, fixtureID int) ([]any, error) {
	v, err := s.record(keyDetail("players", fixtureID))
	return asSlice(v), err
}

func (s *Stub) GetFixtureEvents(_ context.Context, fixtureID int) ([]any, error) {
	v, err := s.record(keyDetail("events", fixtureID))
	return asSlice(v), err
}

func (s *Stub) GetFixtureLineups(_ context.Context, fixtureID int) ([]any, error) {
	v, err := s.record(keyDetail("lineups", fixtureID))
	return asSlice(v), err
}

func (s *Stub) GetStandings(_ context.Context, season, leagueID int) ([]any, error) {
	v, err := s.record(keyLeague("standings", leagueID, season))
	return asSlice(v), err
}

func (s *Stub) GetTeamStatistics(_ context.Context, teamID, season, leagueID int) (any, error) {
	return s.record(keyTeam("team_stats", teamID, season, leagueID))
}

func (s *Stub) GetInjuries(_ context.Context, teamID, leagueID, season int) ([]any, error) {
	v, err := s.record(keyTeam("injuries", teamID, season, leagueID))
	return asSlice(v), err
}

func (s *Stub) GetSidelined(_ context.Context, teamID int) ([]any, error) {
	v, err := s.record(keySidelined(teamID))
	return asSlice(v), err
}

func (s *Stub) GetTopScorers(_ context.Context, leagueID, season int) ([]any, error) {
	v, err := s.record(keyLeague("top_scorers", leagueID, season))
	return asSlice(v), err
}

func (s *Stub) GetTopAssists(_ context.Context, leagueID, season int) ([]any, error) {
	v, err := s.record(keyLeague("top_assists", leagueID, season))
	return asSlice(v), err
}

func (s *Stub) GetTopYellowCards(_ context.Context, leagueID, season int) ([]any, error) {
	v, err := s.record(keyLeague("top_yellow", leagueID, season))
	return asSlice(v), err
}

func (s *Stub) GetTopRedCards(_ context.Context, leagueID, season int) ([]any, error) {
	v, err := s.record(keyLeague("top_red", leagueID, season))
	return asSlice(v), err
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
