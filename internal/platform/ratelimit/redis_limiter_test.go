package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsettle/letsettle/internal/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return mr, client
}

func testBallot(debate, ip, fingerprint string) domain.Ballot {
	return domain.Ballot{
		DebateID: domain.DebateID(debate),
		OptionID: "option-1",
		Identity: domain.Identity{IP: ip, FingerprintID: fingerprint},
	}
}

func TestRedisRateLimiter_AllowsUpToLimit(t *testing.T) {
	_, client := setupRedis(t)
	limiter := NewRedisRateLimiter(client, 3, time.Minute, "test")
	ctx := context.Background()

	ballot := testBallot("debate-1", "10.0.0.1", "fp-1")
	for i := 0; i < 3; i++ {
		assert.NoError(t, limiter.Check(ctx, ballot))
	}

	err := limiter.Check(ctx, ballot)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
}

func TestRedisRateLimiter_WindowExpires(t *testing.T) {
	mr, client := setupRedis(t)
	limiter := NewRedisRateLimiter(client, 1, time.Minute, "test")
	ctx := context.Background()

	ballot := testBallot("debate-1", "10.0.0.1", "fp-1")
	require.NoError(t, limiter.Check(ctx, ballot))
	assert.ErrorIs(t, limiter.Check(ctx, ballot), ErrRateLimitExceeded)

	mr.FastForward(2 * time.Minute)

	assert.NoError(t, limiter.Check(ctx, ballot), "a fresh window starts after expiry")
}

func TestRedisRateLimiter_SeparateIdentities(t *testing.T) {
	_, client := setupRedis(t)
	limiter := NewRedisRateLimiter(client, 1, time.Minute, "test")
	ctx := context.Background()

	require.NoError(t, limiter.Check(ctx, testBallot("debate-1", "10.0.0.1", "fp-1")))

	// Different identity, different debate: independent windows.
	assert.NoError(t, limiter.Check(ctx, testBallot("debate-1", "10.0.0.2", "fp-2")))
	assert.NoError(t, limiter.Check(ctx, testBallot("debate-2", "10.0.0.1", "fp-1")))
}

func TestRedisRateLimiter_MisconfiguredIsPermissive(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()
	ballot := testBallot("debate-1", "10.0.0.1", "fp-1")

	assert.NoError(t, NewRedisRateLimiter(client, 0, time.Minute, "test").Check(ctx, ballot))
	assert.NoError(t, NewRedisRateLimiter(client, 5, 0, "test").Check(ctx, ballot))
	assert.NoError(t, NewRedisRateLimiter(nil, 5, time.Minute, "test").Check(ctx, ballot))
}

func TestNoop_AlwaysAllows(t *testing.T) {
	limiter := NewNoop()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		assert.NoError(t, limiter.Check(ctx, testBallot("debate-1", "10.0.0.1", "fp-1")))
	}
}
