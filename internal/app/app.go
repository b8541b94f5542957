package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"

	"github.com/oddsdesk/matchcontext/external/footballdata"
	"github.com/oddsdesk/matchcontext/internal/analysis"
	"github.com/oddsdesk/matchcontext/internal/collector"
	"github.com/oddsdesk/matchcontext/internal/config"
	"github.com/oddsdesk/matchcontext/internal/contextagent"
	"github.com/oddsdesk/matchcontext/internal/interfaces/httpapi"
	"github.com/oddsdesk/matchcontext/internal/platform/lock"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
	"github.com/oddsdesk/matchcontext/internal/platform/resilience"
	"github.com/oddsdesk/matchcontext/internal/store"
	"github.com/oddsdesk/matchcontext/internal/store/filestore"
	"github.com/oddsdesk/matchcontext/internal/store/pgstore"
)

// NewHTTPHandler wires the Context Agent and its dependencies the way the
// teacher's NewHTTPHandler wires usecases: typed client/repo construction
// from cfg, one constructor-injected agent, then the router. The returned
// close func releases whatever backing connections were opened (Postgres,
// Redis), in the reverse of the order they were acquired.
func NewHTTPHandler(cfg config.Config, logger *logging.Logger) (http.Handler, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var closers []func() error

	provider := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:    cfg.FootballAPIBaseURL,
		APIKey:     cfg.FootballAPIKey,
		Host:       cfg.FootballAPIHost,
		Timeout:    cfg.FootballAPITimeout,
		MaxRetries: cfg.FootballAPIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballAPICircuitEnabled,
			FailureThreshold: cfg.FootballAPICircuitFailureCount,
			OpenTimeout:      cfg.FootballAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballAPICircuitHalfOpenMaxReq,
		},
	})

	locks, lockCloser, err := newLockManager(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if lockCloser != nil {
		closers = append(closers, lockCloser)
	}

	matchStore, storeCloser, err := newMatchStore(cfg, logger)
	if err != nil {
		runClosers(closers)
		return nil, nil, err
	}
	if storeCloser != nil {
		closers = append(closers, storeCloser)
	}

	col := collector.New(provider, logger, collector.Config{
		MaxConcurrency:    cfg.MaxParallelToolCalls,
		CollectionTimeout: cfg.CollectionTimeout,
		PreCallDelay:      cfg.CollectorPreCallDelay,
	})

	agent := contextagent.New(matchStore, locks, col, analysis.All(), logger, contextagent.Options{
		RefreshNSOnRead: cfg.MatchStatusCheckForNS,
	})

	handler := httpapi.NewHandler(agent, logger)
	router := httpapi.NewRouter(handler, logger)

	return router, func() error { return runClosers(closers) }, nil
}

func newLockManager(cfg config.Config, logger *logging.Logger) (lock.Manager, func() error, error) {
	if !cfg.EnableRedisCache {
		return lock.NewInMemoryManager(), nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	return lock.NewRedisManager(client, logger), client.Close, nil
}

func newMatchStore(cfg config.Config, logger *logging.Logger) (store.Store, func() error, error) {
	if !cfg.UseDBMatchStore {
		s, err := filestore.New(cfg.FileStoreDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open file match store: %w", err)
		}
		return s, nil, nil
	}

	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pgstore.New(db), db.Close, nil
}

func runClosers(closers []func() error) error {
	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
