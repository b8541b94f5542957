package filestore

import (
	"context"
	"testing"

	"github.com/oddsdesk/matchcontext/internal/matchcontext"
	"github.com/oddsdesk/matchcontext/internal/store"
)

func TestStore_SaveGetDelete(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	mc := &matchcontext.MatchContext{
		FixtureID: 10,
		HomeTeam:  "Home FC",
		AwayTeam:  "Away FC",
		Status:    "NS",
		Metadata:  matchcontext.Metadata{Version: matchcontext.CurrentVersion},
	}

	if err := s.Save(ctx, mc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	has, err := s.Has(ctx, 10)
	if err != nil || !has {
		t.Fatalf("expected Has=true, err=%v", err)
	}

	got, err := s.Get(ctx, 10)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HomeTeam != "Home FC" {
		t.Fatalf("expected home team to round-trip, got %q", got.HomeTeam)
	}
	if got.Metadata.AccessCount != 1 {
		t.Fatalf("expected access_count=1, got %d", got.Metadata.AccessCount)
	}

	// Re-reading confirms the bumped access_count was actually persisted.
	got2, err := s.Get(ctx, 10)
	if err != nil {
		t.Fatalf("Get (second): %v", err)
	}
	if got2.Metadata.AccessCount != 2 {
		t.Fatalf("expected access_count=2 after second read, got %d", got2.Metadata.AccessCount)
	}

	deleted, err := s.Delete(ctx, 10)
	if err != nil || !deleted {
		t.Fatalf("expected Delete=true, err=%v", err)
	}

	if _, err := s.Get(ctx, 10); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_ListAll_And_Summarize(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	for _, id := range []int{3, 1, 2} {
		_ = s.Save(ctx, &matchcontext.MatchContext{FixtureID: id, Status: "NS"})
	}

	ids, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []int{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i, w := range want {
		if ids[i] != w {
			t.Fatalf("ids[%d] = %d, want %d (ListAll must be sorted)", i, ids[i], w)
		}
	}

	summaries, err := s.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
}

func TestStore_Has_NotFound(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	has, err := s.Has(context.Background(), 404)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if has {
		t.Fatalf("expected Has=false for unknown fixture")
	}
}
