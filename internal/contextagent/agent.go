// Package contextagent implements the Context Agent (C7): the orchestrator
// that turns a fixture_id into a persisted MatchContext, cache-first and
// lock-serialized per fixture, wired the way the teacher wires usecases in
// internal/app/app.go.
package contextagent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oddsdesk/matchcontext/internal/analysis"
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/platform/lock"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
	"github.com/oddsdesk/matchcontext/internal/store"
)

// lockTTL is the per-fixture lock's TTL. It is shorter than
// collector.DefaultCollectionTimeout (180s), and GetMatchContext does not
// extend the lock while collecting, so a collection that runs past 30s can
// outlive its lock. The lock's retry loop, not its TTL, bounds a waiting
// caller.
const lockTTL = 30 * time.Second

const lockRetryTimes = 3

// Result is the outcome of GetMatchContext: the context itself, whether it
// came from the store or a fresh collection, and how many upstream calls
// the fresh collection spent (always 0 for a cache hit).
type Result struct {
	Context  *matchcontext.MatchContext
	Source   string // "cache" or "fresh"
	APICalls int
}

// BetAnalysisView is the per-bet read returned by GetBetAnalysis.
type BetAnalysisView struct {
	Indicators       map[string]any `json:"indicators"`
	DataSources      []string       `json:"data_sources"`
	CoverageComplete bool           `json:"coverage_complete"`
	MissingSources   []string       `json:"missing_sources"`
}

// Agent orchestrates the Context Store, the per-fixture lock, the Data
// Collector, and the eight analyzers into the one public operation the rest
// of the system depends on.
type Agent struct {
	store           store.Store
	locks           lock.Manager
	collector       *collector.Collector
	analyzers       []analysis.Analyzer
	logger          *logging.Logger
	refreshNSOnRead bool
}

// Options carries the parts of GetMatchContext's behavior config.Config
// controls, separately from the agent's constructor-injected dependencies.
type Options struct {
	// RefreshNSOnRead mirrors MATCH_STATUS_CHECK_FOR_NS (spec.md §6): a
	// cached context whose status is still "NS" is treated as a cache miss
	// on a plain get, so a kickoff-time status flip is picked up without
	// waiting for the cached row to expire.
	RefreshNSOnRead bool
}

func New(s store.Store, locks lock.Manager, c *collector.Collector, analyzers []analysis.Analyzer, logger *logging.Logger, opts Options) *Agent {
	if analyzers == nil {
		analyzers = analysis.All()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Agent{
		store:           s,
		locks:           locks,
		collector:       c,
		analyzers:       analyzers,
		logger:          logger,
		refreshNSOnRead: opts.RefreshNSOnRead,
	}
}

// GetMatchContext implements spec.md §4.7's four-step algorithm: cache
// check, lock acquire, double-checked re-read, collect-analyze-save.
func (a *Agent) GetMatchContext(ctx context.Context, fixtureID int, forceRefresh bool) (Result, error) {
	if !forceRefresh {
		if hit, ok, err := a.cacheHit(ctx, fixtureID); err != nil {
			return Result{}, err
		} else if ok {
			return hit, nil
		}
	}

	resource := fmt.Sprintf("fixture:%d", fixtureID)
	handle, err := a.locks.Acquire(ctx, resource, lock.Config{TTL: lockTTL, RetryTimes: lockRetryTimes})
	if err != nil {
		if errors.Is(err, lock.ErrUnavailable) {
			return Result{}, fmt.Errorf("%w: fixture %d", ErrBusy, fixtureID)
		}
		return Result{}, fmt.Errorf("acquire lock for fixture %d: %w", fixtureID, err)
	}
	defer func() {
		if releaseErr := a.locks.Release(context.WithoutCancel(ctx), handle); releaseErr != nil {
			a.logger.WarnContext(ctx, "release fixture lock failed", "fixture_id", fixtureID, "error", releaseErr)
		}
	}()

	// Step 3: double-checked re-read. If another worker wrote while we
	// waited for the lock, and the caller did not ask to force a
	// refresh, take the cache-hit path instead of re-collecting.
	if !forceRefresh {
		if hit, ok, err := a.cacheHit(ctx, fixtureID); err != nil {
			return Result{}, err
		} else if ok {
			return hit, nil
		}
	}

	return a.collectAndSave(ctx, fixtureID)
}

func (a *Agent) cacheHit(ctx context.Context, fixtureID int) (Result, bool, error) {
	has, err := a.store.Has(ctx, fixtureID)
	if err != nil {
		return Result{}, false, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if !has {
		return Result{}, false, nil
	}

	mc, err := a.store.Get(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, false, nil
		}
		return Result{}, false, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if a.refreshNSOnRead && mc.Status == "NS" {
		return Result{}, false, nil
	}

	return Result{Context: mc, Source: "cache", APICalls: 0}, true, nil
}

func (a *Agent) collectAndSave(ctx context.Context, fixtureID int) (Result, error) {
	bundle, err := a.collector.Collect(ctx, fixtureID)
	if err != nil {
		switch {
		case errors.Is(err, collector.ErrFixtureNotFound):
			return Result{}, fmt.Errorf("%w: fixture %d", ErrFixtureNotFound, fixtureID)
		case errors.Is(err, collector.ErrTimeout):
			return Result{}, fmt.Errorf("%w: fixture %d", ErrCollectionTimeout, fixtureID)
		default:
			return Result{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	mc := a.buildContext(fixtureID, bundle)

	if err := a.store.Save(ctx, mc); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	return Result{Context: mc, Source: "fresh", APICalls: bundle.APICallsCount}, nil
}

func (a *Agent) buildContext(fixtureID int, bundle collector.RawBundle) *matchcontext.MatchContext {
	identity := collector.ExtractIdentity(bundle.Fixture)

	analyses := make(map[matchcontext.BetType]matchcontext.BetAnalysisData, len(a.analyzers))
	for _, analyzer := range a.analyzers {
		analyses[analyzer.BetType()] = analysis.Analyze(analyzer, bundle, a.logger)
	}

	matchDate, _ := time.Parse(time.RFC3339, identity.DateISO)

	return &matchcontext.MatchContext{
		FixtureID: fixtureID,
		HomeTeam:  identity.HomeName,
		AwayTeam:  identity.AwayName,
		League:    identity.LeagueName,
		Season:    identity.Season,
		Date:      matchDate,
		Status:    identity.Status,
		Analyses:  analyses,
		Metadata: matchcontext.Metadata{
			Version:          matchcontext.CurrentVersion,
			ContextCreatedAt: bundle.CollectedAt,
			AccessCount:      0,
			APICallsCount:    bundle.APICallsCount,
		},
	}
}

// GetBetAnalysis returns the stored analysis for one bet type, or nil if
// the context or that bet type's analysis is absent.
func (a *Agent) GetBetAnalysis(ctx context.Context, fixtureID int, betType matchcontext.BetType) (*BetAnalysisView, error) {
	has, err := a.store.Has(ctx, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if !has {
		return nil, nil
	}

	mc, err := a.store.Get(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	data, ok := mc.Analyses[betType]
	if !ok {
		return nil, nil
	}

	required := requiredSourcesFor(a.analyzers, betType)

	return &BetAnalysisView{
		Indicators:       data.Indicators,
		DataSources:      data.DataSources,
		CoverageComplete: data.CoverageComplete,
		MissingSources:   matchcontext.MissingSources(required, data.DataSources),
	}, nil
}

func requiredSourcesFor(analyzers []analysis.Analyzer, betType matchcontext.BetType) []string {
	for _, a := range analyzers {
		if a.BetType() == betType {
			return a.RequiredSources()
		}
	}
	return nil
}
