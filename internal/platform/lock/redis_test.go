package lock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/oddsdesk/matchcontext/internal/platform/lock"
	"github.com/oddsdesk/matchcontext/internal/platform/logging"
)

func newTestRedisManager(t *testing.T) *lock.RedisManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.NewRedisManager(client, logging.NewNop())
}

func TestRedisManager_AcquireReleaseRoundTrip(t *testing.T) {
	m := newTestRedisManager(t)
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	locked, err := m.IsLocked(ctx, "fixture:100")
	if err != nil || !locked {
		t.Fatalf("expected locked, got locked=%v err=%v", locked, err)
	}

	if err := m.Release(ctx, handle); err != nil {
		t.Fatalf("release: %v", err)
	}

	locked, err = m.IsLocked(ctx, "fixture:100")
	if err != nil || locked {
		t.Fatalf("expected unlocked after release, got locked=%v err=%v", locked, err)
	}
}

func TestRedisManager_SecondAcquireUnavailableUntilReleased(t *testing.T) {
	m := newTestRedisManager(t)
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

func TestRedisManager_ReleaseIsFenced(t *testing.T) {
	m := newTestRedisManager(t)
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: time.Minute, RetryTimes: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	stolen := handle
	stolen.Token = "not-the-real-token"
	if err := m.Release(ctx, stolen); err != nil {
		t.Fatalf("release with wrong token should not error: %v", err)
	}

	locked, err := m.IsLocked(ctx, "fixture:100")
	if err != nil || !locked {
		t.Fatalf("lock should still be held after a fenced release attempt, got locked=%v err=%v", locked, err)
	}
}

func TestRedisManager_ExtendFailsAfterForceRelease(t *testing.T) {
	m := newTestRedisManager(t)
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

func TestRedisManager_ExtendExtendsOwnedLock(t *testing.T) {
	m := newTestRedisManager(t)
	ctx := context.Background()

	handle, err := m.Acquire(ctx, "fixture:100", lock.Config{TTL: 5 * time.Second, RetryTimes: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	_, extended, err := m.Extend(ctx, handle, time.Minute)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if !extended {
		t.Fatal("expected extend to succeed for the owning handle")
	}

	locked, err := m.IsLocked(ctx, "fixture:100")
	if err != nil || !locked {
		t.Fatalf("expected still locked after extend, got locked=%v err=%v", locked, err)
	}
}

func TestRedisManager_ForceReleaseBypassesFencing(t *testing.T) {
	m := newTestRedisManager(t)
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
}
