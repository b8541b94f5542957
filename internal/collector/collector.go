// Package collector implements the Data Collector (C4): it turns a
// fixture_id into a RawBundle with bounded parallelism, per-call failure
// isolation, and counted cost.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/oddsdesk/matchcontext/external/footballdata"
	"github.com/oddsdesk/matchcontext/internal/platform/cache"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
	"github.com/oddsdesk/matchcontext/internal/providerdata"
)

const (
	// DefaultMaxConcurrency is the collector's upstream fan-out cap,
	// matching the default configured in the core.
	DefaultMaxConcurrency = 5
	// DefaultCollectionTimeout is the whole-collection wall-clock budget.
	DefaultCollectionTimeout = 180 * time.Second
	// defaultPreCallDelay is the small per-call delay inserted for
	// upstream rate-limit hygiene.
	defaultPreCallDelay = 80 * time.Millisecond
	// maxH2HDetailMatches caps how many of the most recent H2H fixtures
	// get their four detail sub-sections fetched.
	maxH2HDetailMatches = 3
	// leagueEntityCacheTTL bounds how long standings and leaderboard
	// lookups are memoized per (league, season) — these are shared by
	// every fixture in that league/season, so a fresh collection for a
	// different fixture in the same league reuses the last fetch.
	leagueEntityCacheTTL = 24 * time.Hour
)

// Config tunes the Collector's concurrency, timeout, and call hygiene.
type Config struct {
	MaxConcurrency    int
	CollectionTimeout time.Duration
	PreCallDelay      time.Duration
}

func normalizeConfig(cfg Config) Config {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.CollectionTimeout <= 0 {
		cfg.CollectionTimeout = DefaultCollectionTimeout
	}
	if cfg.PreCallDelay < 0 {
		cfg.PreCallDelay = defaultPreCallDelay
	}
	return cfg
}

// Collector assembles a RawBundle for one fixture_id.
type Collector struct {
	provider    footballdata.Provider
	logger      *logging.Logger
	cfg         Config
	entityCache *cache.Store
}

func New(provider footballdata.Provider, logger *logging.Logger, cfg Config) *Collector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Collector{
		provider:    provider,
		logger:      logger,
		cfg:         normalizeConfig(cfg),
		entityCache: cache.NewStore(leagueEntityCacheTTL),
	}
}

// cachedLeagueSlice memoizes a []any-returning league/season lookup behind
// the collector's entity cache, deduplicating concurrent loads for the
// same key via the cache's single-flight.
func (c *Collector) cachedLeagueSlice(ctx context.Context, section string, leagueID, season int, load func() ([]any, error)) ([]any, error) {
	key := fmt.Sprintf("%s:%d:%d", section, leagueID, season)
	value, err := c.entityCache.GetOrLoad(ctx, key, func(context.Context) (any, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}
	slice, _ := value.([]any)
	return slice, nil
}

// Collect runs the full collection algorithm for fixtureID. Ordering is a
// contract: the fixture lookup always happens first and, if it fails or
// comes back empty, the whole collection fails with ErrFixtureNotFound (a
// lookup rejected by the open circuit breaker, or cut short by cancellation,
// fails with that error instead); every section after that degrades
// independently.
func (c *Collector) Collect(ctx context.Context, fixtureID int) (RawBundle, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CollectionTimeout)
	defer cancel()

	pool, err := ants.NewPool(c.cfg.MaxConcurrency)
	if err != nil {
		return RawBundle{}, fmt.Errorf("create collector worker pool: %w", err)
	}
	defer pool.Release()

	run := &collectorRun{
		c:    c,
		ctx:  ctx,
		pool: pool,
	}

	fixture, err := run.safeCall(ctx, "fixture", c.provider.GetFixture, fixtureID)
	if err != nil {
		if errors.Is(err, footballdata.ErrCircuitOpen) || ctx.Err() != nil {
			return RawBundle{}, fmt.Errorf("collect bundle for fixture %d: %w", fixtureID, err)
		}
		return RawBundle{}, fmt.Errorf("%w: fixture %d: %v", ErrFixtureNotFound, fixtureID, err)
	}
	if fixture == nil {
		return RawBundle{}, fmt.Errorf("%w: fixture %d", ErrFixtureNotFound, fixtureID)
	}

	identity := ExtractIdentity(fixture)

	bundle := RawBundle{Fixture: fixture}

	// Step 3: predictions + h2h_history, concurrently, waited on before
	// the rest proceeds since h2h_details depends on h2h_history.
	var predictions any
	var h2hHistory []any
	var wg3 sync.WaitGroup
	wg3.Add(2)
	run.submit(&wg3, func() {
		predictions, _ = run.safeCallVal(ctx, "predictions", func() (any, error) {
			return c.provider.GetPredictions(ctx, fixtureID)
		})
	})
	run.submit(&wg3, func() {
		h2hHistory, _ = run.safeCallSlice(ctx, "h2h_history", func() ([]any, error) {
			return c.provider.GetHeadToHead(ctx, identity.HomeTeamID, identity.AwayTeamID, 5, "FT")
		})
	})
	wg3.Wait()
	bundle.Predictions = predictions
	bundle.H2HHistory = h2hHistory

	recentH2HIDs := recentFixtureIDs(h2hHistory, maxH2HDetailMatches)

	// Steps 4 and 5 are launched together, not sequentially.
	var wg45 sync.WaitGroup

	h2hDetails := make([]H2HDetail, len(recentH2HIDs))
	for i, h2hFixtureID := range recentH2HIDs {
		i, h2hFixtureID := i, h2hFixtureID
		wg45.Add(4)
		run.submit(&wg45, func() {
			stats, _ := run.safeCallSlice(ctx, "h2h_stats", func() ([]any, error) {
				return c.provider.GetFixtureStatistics(ctx, h2hFixtureID)
			})
			h2hDetails[i].FixtureID = h2hFixtureID
			h2hDetails[i].Statistics = stats
		})
		run.submit(&wg45, func() {
			players, _ := run.safeCallSlice(ctx, "h2h_players", func() ([]any, error) {
				return c.provider.GetFixturePlayers(ctx, h2hFixtureID)
			})
			h2hDetails[i].Players = players
		})
		run.submit(&wg45, func() {
			events, _ := run.safeCallSlice(ctx, "h2h_events", func() ([]any, error) {
				return c.provider.GetFixtureEvents(ctx, h2hFixtureID)
			})
			h2hDetails[i].Events = events
		})
		run.submit(&wg45, func() {
			lineups, _ := run.safeCallSlice(ctx, "h2h_lineups", func() ([]any, error) {
				return c.provider.GetFixtureLineups(ctx, h2hFixtureID)
			})
			h2hDetails[i].Lineups = lineups
		})
	}

	var standings []any
	var team1Stats, team2Stats any
	var injuriesT1, injuriesT2 []any
	var sidelinedT1, sidelinedT2 []any
	var topScorers, topAssists, topYellow, topRed []any

	wg45.Add(11)
	run.submit(&wg45, func() {
		standings, _ = run.safeCallSlice(ctx, "standings", func() ([]any, error) {
			return c.cachedLeagueSlice(ctx, "standings", identity.LeagueID, identity.Season, func() ([]any, error) {
				return c.provider.GetStandings(ctx, identity.Season, identity.LeagueID)
			})
		})
	})
	run.submit(&wg45, func() {
		team1Stats, _ = run.safeCallVal(ctx, "team1_stats", func() (any, error) {
			return c.provider.GetTeamStatistics(ctx, identity.HomeTeamID, identity.Season, identity.LeagueID)
		})
	})
	run.submit(&wg45, func() {
		team2Stats, _ = run.safeCallVal(ctx, "team2_stats", func() (any, error) {
			return c.provider.GetTeamStatistics(ctx, identity.AwayTeamID, identity.Season, identity.LeagueID)
		})
	})
	run.submit(&wg45, func() {
		injuriesT1, _ = run.safeCallSlice(ctx, "injuries_t1", func() ([]any, error) {
			return c.provider.GetInjuries(ctx, identity.HomeTeamID, identity.LeagueID, identity.Season)
		})
	})
	run.submit(&wg45, func() {
		injuriesT2, _ = run.safeCallSlice(ctx, "injuries_t2", func() ([]any, error) {
			return c.provider.GetInjuries(ctx, identity.AwayTeamID, identity.LeagueID, identity.Season)
		})
	})
	run.submit(&wg45, func() {
		sidelinedT1, _ = run.safeCallSlice(ctx, "sidelined_t1", func() ([]any, error) {
			return c.provider.GetSidelined(ctx, identity.HomeTeamID)
		})
	})
	run.submit(&wg45, func() {
		sidelinedT2, _ = run.safeCallSlice(ctx, "sidelined_t2", func() ([]any, error) {
			return c.provider.GetSidelined(ctx, identity.AwayTeamID)
		})
	})
	run.submit(&wg45, func() {
		topScorers, _ = run.safeCallSlice(ctx, "top_scorers", func() ([]any, error) {
			return c.cachedLeagueSlice(ctx, "top_scorers", identity.LeagueID, identity.Season, func() ([]any, error) {
				return c.provider.GetTopScorers(ctx, identity.LeagueID, identity.Season)
			})
		})
	})
	run.submit(&wg45, func() {
		topAssists, _ = run.safeCallSlice(ctx, "top_assists", func() ([]any, error) {
			return c.cachedLeagueSlice(ctx, "top_assists", identity.LeagueID, identity.Season, func() ([]any, error) {
				return c.provider.GetTopAssists(ctx, identity.LeagueID, identity.Season)
			})
		})
	})
	run.submit(&wg45, func() {
		topYellow, _ = run.safeCallSlice(ctx, "top_yellow", func() ([]any, error) {
			return c.cachedLeagueSlice(ctx, "top_yellow", identity.LeagueID, identity.Season, func() ([]any, error) {
				return c.provider.GetTopYellowCards(ctx, identity.LeagueID, identity.Season)
			})
		})
	})
	run.submit(&wg45, func() {
		topRed, _ = run.safeCallSlice(ctx, "top_red", func() ([]any, error) {
			return c.cachedLeagueSlice(ctx, "top_red", identity.LeagueID, identity.Season, func() ([]any, error) {
				return c.provider.GetTopRedCards(ctx, identity.LeagueID, identity.Season)
			})
		})
	})

	wg45.Wait()

	if ctx.Err() != nil {
		return RawBundle{}, fmt.Errorf("%w: fixture %d", ErrTimeout, fixtureID)
	}

	bundle.H2HDetails = h2hDetails
	bundle.Standings = standings
	bundle.Team1Stats = team1Stats
	bundle.Team2Stats = team2Stats
	bundle.Injuries = append(append([]any{}, injuriesT1...), injuriesT2...)
	bundle.Sidelined = append(append([]any{}, sidelinedT1...), sidelinedT2...)
	bundle.TopScorers = topScorers
	bundle.TopAssists = topAssists
	bundle.TopYellow = topYellow
	bundle.TopRed = topRed
	bundle.APICallsCount = int(run.calls.Load())
	bundle.CollectedAt = time.Now().UTC()

	return bundle, nil
}

// collectorRun carries the per-call counter and worker pool for a single
// Collect invocation.
type collectorRun struct {
	c     *Collector
	ctx   context.Context
	pool  *ants.Pool
	calls atomic.Int64
}

func (r *collectorRun) submit(wg *sync.WaitGroup, fn func()) {
	if err := r.pool.Submit(func() {
		defer wg.Done()
		fn()
	}); err != nil {
		r.c.logger.ErrorContext(r.ctx, "collector worker submit failed", "error", err)
		wg.Done()
	}
}

// safeCall wraps a single-fixture getter used only for step 1: on any
// error or cancellation it is propagated (the fixture lookup is the only
// call allowed to abort the whole collection).
func (r *collectorRun) safeCall(ctx context.Context, name string, fn func(context.Context, int) (any, error), fixtureID int) (any, error) {
	r.delay(ctx)
	r.calls.Add(1)
	result, err := fn(ctx, fixtureID)
	if err != nil {
		r.c.logger.WarnContext(ctx, "upstream call failed", "call", name, "error", err)
		return nil, err
	}
	return result, nil
}

// safeCallVal wraps a non-mandatory call returning a single value: any
// error is absorbed into a nil section, never propagated.
func (r *collectorRun) safeCallVal(ctx context.Context, name string, fn func() (any, error)) (any, error) {
	r.delay(ctx)
	r.calls.Add(1)
	result, err := fn()
	if err != nil {
		r.c.logger.WarnContext(ctx, "upstream call failed", "call", name, "error", err)
		return nil, nil
	}
	return result, nil
}

// safeCallSlice is safeCallVal specialized for list-shaped sections.
func (r *collectorRun) safeCallSlice(ctx context.Context, name string, fn func() ([]any, error)) ([]any, error) {
	r.delay(ctx)
	r.calls.Add(1)
	result, err := fn()
	if err != nil {
		r.c.logger.WarnContext(ctx, "upstream call failed", "call", name, "error", err)
		return nil, nil
	}
	return result, nil
}

func (r *collectorRun) delay(ctx context.Context) {
	if r.c.cfg.PreCallDelay <= 0 {
		return
	}
	timer := time.NewTimer(r.c.cfg.PreCallDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// ExtractIdentity pulls the fields other packages (notably contextagent,
// when building the persisted MatchContext) need out of a raw fixture
// section, without depending on the rest of RawBundle.
func ExtractIdentity(fixture any) FixtureIdentity {
	return FixtureIdentity{
		HomeTeamID: firstInt(providerdata.Int(fixture, "teams", "home", "id")),
		AwayTeamID: firstInt(providerdata.Int(fixture, "teams", "away", "id")),
		HomeName:   providerdata.String(fixture, "teams", "home", "name"),
		AwayName:   providerdata.String(fixture, "teams", "away", "name"),
		LeagueID:   firstInt(providerdata.Int(fixture, "league", "id")),
		LeagueName: providerdata.String(fixture, "league", "name"),
		Season:     firstInt(providerdata.Int(fixture, "league", "season")),
		Status:     providerdata.String(fixture, "fixture", "status", "short"),
		DateISO:    providerdata.String(fixture, "fixture", "date"),
		Venue:      providerdata.String(fixture, "fixture", "venue", "name"),
	}
}

func firstInt(v int, ok bool) int {
	if !ok {
		return 0
	}
	return v
}

func recentFixtureIDs(h2hHistory []any, limit int) []int {
	var ids []int
	for _, item := range h2hHistory {
		if len(ids) >= limit {
			break
		}
		id, ok := providerdata.Int(item, "fixture", "id")
		if !ok || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
