// Package lock implements per-resource distributed mutual exclusion (C3):
// TTL-bounded acquire with fixed-delay retry, fencing-token release, and
// extend, backed by Redis in production and an in-memory manager for tests
// and single-process deployments.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by Acquire when a resource is held by another
// owner after every retry has been exhausted.
var ErrUnavailable = errors.New("lock unavailable")

// Config controls retry and TTL behavior for Acquire. Callers may override
// per-call via AcquireOption.
type Config struct {
	TTL        time.Duration
	RetryTimes int
	RetryDelay time.Duration
}

// DefaultConfig mirrors the original collector's lock defaults: 10s TTL,
// 3 attempts, 200ms between attempts. The context agent overrides TTL to
// 30s.
func DefaultConfig() Config {
	return Config{
		TTL:        10 * time.Second,
		RetryTimes: 3,
		RetryDelay: 200 * time.Millisecond,
	}
}

func normalize(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.RetryTimes <= 0 {
		cfg.RetryTimes = defaults.RetryTimes
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	return cfg
}

// Handle is an owned lock: the resource name and the fencing token used to
// prove ownership on release/extend. The zero Handle owns nothing.
type Handle struct {
	Resource string
	Token    string
	ttl      time.Duration
}

func (h Handle) owned() bool {
	return h.Token != ""
}

// Manager is the distributed lock manager contract the context agent
// depends on. Manager implementations must make Release and Extend safe to
// call on a Handle that has already expired or been force-released.
type Manager interface {
	// Acquire blocks (subject to ctx) attempting to take the named
	// resource's lock, making up to cfg.RetryTimes attempts with
	// cfg.RetryDelay between them. Returns ErrUnavailable if every attempt
	// is rejected.
	Acquire(ctx context.Context, resource string, cfg Config) (Handle, error)
	// Release drops the lock only if handle still owns it. Safe to call
	// from any termination path, including on an already-expired handle.
	Release(ctx context.Context, handle Handle) error
	// Extend adds additionalTTL to the lock's expiry, only if handle
	// still owns it. Returns the updated handle and false (no error) if
	// ownership was lost.
	Extend(ctx context.Context, handle Handle, additionalTTL time.Duration) (Handle, bool, error)
	// IsLocked reports whether resource currently has an owner.
	IsLocked(ctx context.Context, resource string) (bool, error)
	// ForceRelease drops a resource's lock unconditionally. Admin-only;
	// bypasses fencing.
	ForceRelease(ctx context.Context, resource string) (bool, error)
}
