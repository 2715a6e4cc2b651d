// Package ratelimit throttles vote submissions per identity (fixed-window
// Redis limiter plus a noop mode).
package ratelimit

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/letsettle/letsettle/internal/domain"
)

var ErrRateLimitExceeded = fmt.Errorf("vote rate limit exceeded")

// RedisRateLimiter caps ballots per (debate, identity) in fixed windows.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Check(ctx context.Context, b domain.Ballot) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		// Misconfigured limiter degrades to permissive.
		return nil
	}

	key := r.buildKey(b)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: increment key: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("ratelimit: set expiry: %w", err)
		}
	}

	if int(count) > r.limit {
		return ErrRateLimitExceeded
	}

	return nil
}

func (r *RedisRateLimiter) buildKey(b domain.Ballot) string {
	// SHA-1 keeps raw IPs and fingerprints out of Redis keys.
	base := fmt.Sprintf("%s|%s|%s", b.DebateID, b.Identity.IP, b.Identity.FingerprintID)
	hash := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(hash[:]))
}

var _ domain.RateLimiter = (*RedisRateLimiter)(nil)
