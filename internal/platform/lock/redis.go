package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oddsdesk/matchcontext/internal/platform/logging"
)

const keyPrefix = "lock:"

// releaseScript deletes the key only if its value still matches our
// fencing token, so a lock we no longer own is never clobbered.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// extendScript bumps the key's expiry only if our fencing token still
// matches, preventing us from renewing a lock another owner has taken.
var extendScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("expire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// RedisManager implements Manager against a Redis keyspace using
// SET NX EX for acquisition and Lua scripts for fenced release/extend.
type RedisManager struct {
	client *redis.Client
	logger *logging.Logger
}

func NewRedisManager(client *redis.Client, logger *logging.Logger) *RedisManager {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisManager{client: client, logger: logger}
}

func (m *RedisManager) Acquire(ctx context.Context, resource string, cfg Config) (Handle, error) {
	cfg = normalize(cfg)
	key := keyPrefix + resource
	token := uuid.NewString()

	for attempt := 0; attempt < cfg.RetryTimes; attempt++ {
		ok, err := m.client.SetNX(ctx, key, token, cfg.TTL).Result()
		if err != nil {
			m.logger.ErrorContext(ctx, "lock acquire redis error", "resource", resource, "error", err)
		} else if ok {
			m.logger.DebugContext(ctx, "lock acquired", "resource", resource, "ttl", cfg.TTL)
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

	m.logger.WarnContext(ctx, "lock unavailable after retries", "resource", resource, "retries", cfg.RetryTimes)
	return Handle{}, fmt.Errorf("%w: resource %q", ErrUnavailable, resource)
}

func (m *RedisManager) Release(ctx context.Context, handle Handle) error {
	if !handle.owned() {
		return nil
	}
	key := keyPrefix + handle.Resource
	result, err := releaseScript.Run(ctx, m.client, []string{key}, handle.Token).Int()
	if err != nil {
		m.logger.ErrorContext(ctx, "lock release redis error", "resource", handle.Resource, "error", err)
		return nil
	}
	if result != 1 {
		m.logger.WarnContext(ctx, "lock already expired or taken by another owner", "resource", handle.Resource)
	}
	return nil
}

func (m *RedisManager) Extend(ctx context.Context, handle Handle, additionalTTL time.Duration) (Handle, bool, error) {
	if !handle.owned() {
		return handle, false, nil
	}
	key := keyPrefix + handle.Resource
	newTTL := handle.ttl + additionalTTL
	newTTLSeconds := int((newTTL + time.Second - 1) / time.Second)
	result, err := extendScript.Run(ctx, m.client, []string{key}, handle.Token, newTTLSeconds).Int()
	if err != nil {
		m.logger.ErrorContext(ctx, "lock extend redis error", "resource", handle.Resource, "error", err)
		return handle, false, nil
	}
	if result != 1 {
		return handle, false, nil
	}
	handle.ttl = newTTL
	return handle, true, nil
}

func (m *RedisManager) IsLocked(ctx context.Context, resource string) (bool, error) {
	count, err := m.client.Exists(ctx, keyPrefix+resource).Result()
	if err != nil {
		return false, fmt.Errorf("check lock existence: %w", err)
	}
	return count == 1, nil
}

func (m *RedisManager) ForceRelease(ctx context.Context, resource string) (bool, error) {
	deleted, err := m.client.Del(ctx, keyPrefix+resource).Result()
	if err != nil {
		return false, fmt.Errorf("force release lock: %w", err)
	}
	if deleted > 0 {
		m.logger.WarnContext(ctx, "lock force-released", "resource", resource)
	}
	return deleted == 1, nil
}
