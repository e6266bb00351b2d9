package auth

import (
	"context"
	"fmt"
	"time"
)

// Revoker records logged-out tokens until they would have expired anyway
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// KeyValueStore is the subset of the Redis client the revocation list uses
type KeyValueStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

const revokedKeyPrefix = "revoked:"

// RedisRevoker keeps one expiring key per revoked jti
type RedisRevoker struct {
	store KeyValueStore
	now   func() time.Time
}

func NewRedisRevoker(store KeyValueStore) *RedisRevoker {
	return &RedisRevoker{store: store, now: time.Now}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := r.store.Set(ctx, revokedKeyPrefix+jti, 1, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	ok, err := r.store.Exists(ctx, revokedKeyPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return ok, nil
}

// NopRevoker is used when no Redis is configured: tokens stay valid until
// they expire.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (NopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }
