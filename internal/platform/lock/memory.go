package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryManager implements Manager for single-process deployments and
// tests, using the same fencing-token semantics as RedisManager.
type InMemoryManager struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *InMemoryManager) Acquire(ctx context.Context, resource string, cfg Config) (Handle, error) {
	cfg = normalize(cfg)
	token := uuid.NewString()

	for attempt := 0; attempt < cfg.RetryTimes; attempt++ {
		if m.tryAcquire(resource, token, cfg.TTL) {
			return Handle{Resource: resource, Token: token, ttl: cfg.TTL}, nil
		}

		if attempt < cfg.RetryTimes-1 {
			timer := time.NewTimer(cfg.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Handle{}, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return Handle{}, fmt.Errorf("%w: resource %q", ErrUnavailable, resource)
}

func (m *InMemoryManager) tryAcquire(resource, token string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if existing, ok := m.entries[resource]; ok && existing.expiresAt.After(now) {
		return false
	}

	m.entries[resource] = memoryEntry{token: token, expiresAt: now.Add(ttl)}
	return true
}

func (m *InMemoryManager) Release(_ context.Context, handle Handle) error {
	if !handle.owned() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.entries[handle.Resource]; ok && existing.token == handle.Token {
		delete(m.entries, handle.Resource)
	}
	return nil
}

func (m *InMemoryManager) Extend(_ context.Context, handle Handle, additionalTTL time.Duration) (Handle, bool, error) {
	if !handle.owned() {
		return handle, false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[handle.Resource]
	if !ok || existing.token != handle.Token {
		return handle, false, nil
	}

	handle.ttl += additionalTTL
	existing.expiresAt = existing.expiresAt.Add(additionalTTL)
	m.entries[handle.Resource] = existing
	return handle, true, nil
}

func (m *InMemoryManager) IsLocked(_ context.Context, resource string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[resource]
	if !ok {
		return false, nil
	}
	return existing.expiresAt.After(m.now()), nil
}

func (m *InMemoryManager) ForceRelease(_ context.Context, resource string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[resource]
	delete(m.entries, resource)
	return ok, nil
}

var _ Manager = (*RedisManager)(nil)
var _ Manager = (*InMemoryManager)(nil)
