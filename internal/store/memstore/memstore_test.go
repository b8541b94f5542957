package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/store"
)

func TestStore_SaveAndGet_BumpsAccessMetadata(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	mc := &matchcontext.MatchContext{
		FixtureID: 42,
		HomeTeam:  "Home FC",
		AwayTeam:  "Away FC",
		Metadata:  matchcontext.Metadata{Version: matchcontext.CurrentVersion},
	}

	if err := s.Save(ctx, mc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Metadata.AccessCount != 1 {
		t.Fatalf("expected access_count=1 after first Get, got %d", got.Metadata.AccessCount)
	}
	if got.Metadata.LastAccessed == nil {
		t.Fatalf("expected last_accessed to be set")
	}

	got2, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get (second): %v", err)
	}
	if got2.Metadata.AccessCount != 2 {
		t.Fatalf("expected access_count=2 after second Get, got %d", got2.Metadata.AccessCount)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.Get(context.Background(), 999)
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_CleanupOlderThan(t *testing.T) {
	t.Parallel()

	s := New()
	fixedNow := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixedNow }

	old := &matchcontext.MatchContext{
		FixtureID: 1,
		Metadata:  matchcontext.Metadata{ContextCreatedAt: fixedNow.Add(-40 * 24 * time.Hour)},
	}
	fresh := &matchcontext.MatchContext{
		FixtureID: 2,
		Metadata:  matchcontext.Metadata{ContextCreatedAt: fixedNow.Add(-1 * time.Hour)},
	}

	ctx := context.Background()
	_ = s.Save(ctx, old)
	_ = s.Save(ctx, fresh)

	deleted, err := s.CleanupOlderThan(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted context, got %d", deleted)
	}

	if has, _ := s.Has(ctx, 1); has {
		t.Fatalf("expected old context to be removed")
	}
	if has, _ := s.Has(ctx, 2); !has {
		t.Fatalf("expected fresh context to remain")
	}
}

func TestStore_UpdateCausalCache(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	_ = s.Save(ctx, &matchcontext.MatchContext{FixtureID: 7})

	err := s.UpdateCausalCache(ctx, 7, map[string]any{"lift": 1.2}, nil, "medium", "1.0")
	if err != nil {
		t.Fatalf("UpdateCausalCache: %v", err)
	}

	got, _ := s.Get(ctx, 7)
	if got.CausalConfidence == nil || *got.CausalConfidence != "medium" {
		t.Fatalf("expected causal_confidence=medium, got %v", got.CausalConfidence)
	}
}
