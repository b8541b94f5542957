// Package filestore is a JSON-file-per-fixture store.Store backend: each
// context lives at <dir>/match_<fixture_id>.json, written through a
// temp-file-plus-rename so a crash mid-write never leaves a truncated file.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
	"github.com/oddsdesk/matchcontext/internal/store"
)

// Store persists match contexts as one JSON file per fixture under Dir.
type Store struct {
	dir    string
	logger *logging.Logger
	mu     sync.Mutex
}

// New creates the storage directory (if missing) and returns a Store
// rooted at it.
func New(dir string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create match context directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

var _ store.Store = (*Store)(nil)

func (s *Store) path(fixtureID int) string {
	return filepath.Join(s.dir, fmt.Sprintf("match_%d.json", fixtureID))
}

func (s *Store) Has(_ context.Context, fixtureID int) (bool, error) {
	_, err := os.Stat(s.path(fixtureID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat match context file: %w", err)
}

func (s *Store) Get(_ context.Context, fixtureID int) (*matchcontext.MatchContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, err := s.read(fixtureID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	mc.Metadata.LastAccessed = &now
	mc.Metadata.AccessCount++

	if err := s.write(mc); err != nil {
		return nil, fmt.Errorf("persist access metadata for fixture %d: %w", fixtureID, err)
	}

	s.logger.Info("match context loaded",
		"fixture_id", fixtureID,
		"access_count", mc.Metadata.AccessCount,
	)

	return mc, nil
}

func (s *Store) read(fixtureID int) (*matchcontext.MatchContext, error) {
	raw, err := os.ReadFile(s.path(fixtureID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read match context file: %w", err)
	}

	var mc matchcontext.MatchContext
	if err := sonic.Unmarshal(raw, &mc); err != nil {
		return nil, fmt.Errorf("decode match context file: %w", err)
	}
	return &mc, nil
}

func (s *Store) Save(_ context.Context, mc *matchcontext.MatchContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(mc); err != nil {
		return err
	}

	s.logger.Info("match context saved",
		"fixture_id", mc.FixtureID,
		"home_team", mc.HomeTeam,
		"away_team", mc.AwayTeam,
	)
	return nil
}

// write serializes mc to its target path via a temp file in the same
// directory followed by an atomic rename, so readers never observe a
// partially-written file.
func (s *Store) write(mc *matchcontext.MatchContext) error {
	data, err := sonic.ConfigDefault.MarshalIndent(mc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode match context: %w", err)
	}

	target := s.path(mc.FixtureID)
	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".match_%d-*.tmp", mc.FixtureID))
	if err != nil {
		return fmt.Errorf("create temp match context file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp match context file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp match context file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename match context file into place: %w", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, fixtureID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(fixtureID))
	if err == nil {
		s.logger.Info("match context deleted", "fixture_id", fixtureID)
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("delete match context file: %w", err)
}

func (s *Store) ListAll(_ context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read match context directory: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		id, ok := fixtureIDFromFilename(entry.Name())
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func fixtureIDFromFilename(name string) (int, bool) {
	if !strings.HasPrefix(name, "match_") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	trimmed := strings.TrimSuffix(strings.TrimPrefix(name, "match_"), ".json")
	id, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Store) ListByStatus(ctx context.Context, status string) ([]int, error) {
	ids, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []int
	for _, id := range ids {
		mc, err := s.read(id)
		if err != nil {
			continue
		}
		if mc.Status == status {
			matching = append(matching, id)
		}
	}
	return matching, nil
}

func (s *Store) Summarize(ctx context.Context) ([]store.Summary, error) {
	ids, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]store.Summary, 0, len(ids))
	for _, id := range ids {
		mc, err := s.read(id)
		if err != nil {
			s.logger.Warn("skipping unreadable match context in summary", "fixture_id", id, "error", err)
			continue
		}
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

func (s *Store) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	ids, err := s.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-age)
	deleted := 0
	for _, id := range ids {
		mc, err := s.read(id)
		if err != nil {
			continue
		}
		if mc.Metadata.ContextCreatedAt.Before(cutoff) {
			if ok, err := s.Delete(ctx, id); err == nil && ok {
				deleted++
			}
		}
	}

	s.logger.Info("match context cleanup complete", "deleted", deleted, "age", age)
	return deleted, nil
}

func (s *Store) UpdateCausalCache(ctx context.Context, fixtureID int, metrics map[string]any, findings []map[string]any, confidence, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, err := s.read(fixtureID)
	if err != nil {
		return err
	}

	mc.CausalMetrics = metrics
	mc.CausalFindings = findings
	mc.CausalConfidence = &confidence
	mc.CausalVersion = &version

	return s.write(mc)
}
