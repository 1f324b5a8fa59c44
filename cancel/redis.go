package cancel

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	leasePrefix     = "hsk:cancel:lease:"
	cancelledPrefix = "hsk:cancel:signal:"
	// cancelledTTL bounds how long a cancellation signal is retained,
	// counted from the RequestCancel call and independent of the lease's
	// own TTL, so a late-arriving IsCancelled check from a slow adapter
	// still observes it after the lease key has expired.
	cancelledTTL = 10 * time.Minute
)

// RedisRegistry is a Registry backed by Redis, mirroring
// registry/service.go's rdb *redis.Client field and its use of key
// expiration (there via Expire on an existing key; here via Set with a
// TTL, since leases are created rather than merely extended).
type RedisRegistry struct {
	rdb *redis.Client
}

// NewRedisRegistry builds a RedisRegistry over an existing client.
func NewRedisRegistry(rdb *redis.Client) (*RedisRegistry, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisRegistry{rdb: rdb}, nil
}

// Lease implements Registry.
func (r *RedisRegistry) Lease(ctx context.Context, key string, ttl time.Duration) error {
	cancelled, err := r.rdb.Exists(ctx, cancelledPrefix+key).Result()
	if err != nil {
		return NewBackendFailure(key, err)
	}
	if cancelled > 0 {
		return NewAlreadyCancelled(key)
	}
	if err := r.rdb.Set(ctx, leasePrefix+key, "1", ttl).Err(); err != nil {
		return NewBackendFailure(key, err)
	}
	return nil
}

// RequestCancel implements Registry.
func (r *RedisRegistry) RequestCancel(ctx context.Context, key string) error {
	if err := r.rdb.Set(ctx, cancelledPrefix+key, "1", cancelledTTL).Err(); err != nil {
		return NewBackendFailure(key, err)
	}
	return nil
}

// IsCancelled implements Registry.
func (r *RedisRegistry) IsCancelled(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, cancelledPrefix+key).Result()
	if err != nil {
		return false, NewBackendFailure(key, err)
	}
	return n > 0, nil
}

// Release implements Registry.
func (r *RedisRegistry) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, leasePrefix+key, cancelledPrefix+key).Err(); err != nil {
		return NewBackendFailure(key, err)
	}
	return nil
}
