package lock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oddsdesk/matchcontext/internal/platform/lock"
)

func TestInMemoryManager_AcquireReleaseRoundTrip(t *testing.T) {
	m := lock.NewInMemoryManager()
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	locked, err := m.IsLocked(ctx, "fixture:100")
	if err != nil || !locked {
		t.Fatalf("expected resource locked, got locked=%v err=%v", locked, err)
	}

	if err := m.Release(ctx, handle); err != nil {
		t.Fatalf("release: %v", err)
	}

	locked, err = m.IsLocked(ctx, "fixture:100")
	if err != nil || locked {
		t.Fatalf("expected resource unlocked after release, got locked=%v err=%v", locked, err)
	}
}

func TestInMemoryManager_SecondAcquireUnavailableUntilReleased(t *testing.T) {
	m := lock.NewInMemoryManager()
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1})
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	_, err = m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 2, RetryDelay: time.Millisecond})
	if !errors.Is(err, lock.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable while held, got %v", err)
	}

	if err := m.Release(ctx, handle); err != nil {
		t.Fatalf("release: %v", err)
	}

	if _, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1}); err != nil {
		t.Fatalf("expected reacquire to succeed after release, got %v", err)
	}
}

func TestInMemoryManager_ReleaseIsFenced(t *testing.T) {
	m := lock.NewInMemoryManager()
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	stolen := handle
	stolen.Token = "not-the-real-token"
	if err := m.Release(ctx, stolen); err != nil {
		t.Fatalf("release with wrong token should be a no-op, not an error: %v", err)
	}

	locked, err := m.IsLocked(ctx, "fixture:100")
	if err != nil || !locked {
		t.Fatalf("lock should still be held after a fenced release attempt, got locked=%v err=%v", locked, err)
	}
}

func TestInMemoryManager_ReleaseIsIdempotent(t *testing.T) {
	m := lock.NewInMemoryManager()
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := m.Release(ctx, handle); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := m.Release(ctx, handle); err != nil {
		t.Fatalf("second release should also be a no-op, got: %v", err)
	}
}

func TestInMemoryManager_ExtendFailsAfterLostOwnership(t *testing.T) {
	m := lock.NewInMemoryManager()
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if _, err := m.ForceRelease(ctx, "fixture:100"); err != nil {
		t.Fatalf("force release: %v", err)
	}

	_, extended, err := m.Extend(ctx, handle, time.Minute)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if extended {
		t.Fatal("expected extend to report false after force-release dropped ownership")
	}
}

func TestInMemoryManager_ForceReleaseBypassesFencing(t *testing.T) {
	m := lock.NewInMemoryManager()
	ctx := context.Background()

	if _, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1}); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	existed, err := m.ForceRelease(ctx, "fixture:100")
	if err != nil {
		t.Fatalf("force release: %v", err)
	}
	if !existed {
		t.Fatal("expected force release to report the lock existed")
	}

	locked, err := m.IsLocked(ctx, "fixture:100")
	if err != nil || locked {
		t.Fatalf("expected unlocked after force release, got locked=%v err=%v", locked, err)
	}
}

func TestInMemoryManager_AcquireCanceledByContext(t *testing.T) {
	m := lock.NewInMemoryManager()
	ctx := context.Background()

	if _, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1}); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Acquire(cancelCtx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 5, RetryDelay: time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
