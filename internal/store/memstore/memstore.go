// Package memstore is an in-memory store.Store implementation used by tests
// and by callers that do not need durability across process restarts.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/store"
)

// Store is a goroutine-safe, in-memory store.Store.
type Store struct {
	mu   sync.RWMutex
	data map[int]*matchcontext.MatchContext
	now  func() time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		data: make(map[int]*matchcontext.MatchContext),
		now:  time.Now,
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Has(_ context.Context, fixtureID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[fixtureID]
	return ok, nil
}

func (s *Store) Get(_ context.Context, fixtureID int) (*matchcontext.MatchContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.data[fixtureID]
	if !ok {
		return nil, store.ErrNotFound
	}

	now := s.now()
	mc.Metadata.LastAccessed = &now
	mc.Metadata.AccessCount++

	clone := *mc
	return &clone, nil
}

func (s *Store) Save(_ context.Context, mc *matchcontext.MatchContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *mc
	s.data[mc.FixtureID] = &clone
	return nil
}

func (s *Store) Delete(_ context.Context, fixtureID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[fixtureID]; !ok {
		return false, nil
	}
	delete(s.data, fixtureID)
	return true, nil
}

func (s *Store) ListAll(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) ListByStatus(_ context.Context, status string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int
	for id, mc := range s.data {
		if mc.Status == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) Summarize(_ context.Context) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]store.Summary, 0, len(s.data))
	for _, mc := range s.data {
		summaries = append(summaries, store.Summary{
			FixtureID:   mc.FixtureID,
			HomeTeam:    mc.HomeTeam,
			AwayTeam:    mc.AwayTeam,
			League:      mc.League,
			Date:        mc.Date,
			Status:      mc.Status,
			AccessCount: mc.Metadata.AccessCount,
			CreatedAt:   mc.Metadata.ContextCreatedAt,
		})
	}
	return summaries, nil
}

func (s *Store) CleanupOlderThan(_ context.Context, age time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-age)
	deleted := 0
	for id, mc := range s.data {
		if mc.Metadata.ContextCreatedAt.Before(cutoff) {
			delete(s.data, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) UpdateCausalCache(_ context.Context, fixtureID int, metrics map[string]any, findings []map[string]any, confidence, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.data[fixtureID]
	if !ok {
		return store.ErrNotFound
	}

	mc.CausalMetrics = metrics
	mc.CausalFindings = findings
	mc.CausalConfidence = &confidence
	mc.CausalVersion = &version
	return nil
}
