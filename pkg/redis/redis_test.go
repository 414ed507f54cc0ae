package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/mag7-collector/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: false}}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)

	limiter := NewRateLimiter(client, "test")
	cfg := PerInterval("polygon:aggs", 500*time.Millisecond)

	// Redis가 꺼져 있으면 모든 요청 허용
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), cfg))
}

func TestRateLimiter_Key(t *testing.T) {
	limiter := NewRateLimiter(&Client{}, "mag7")
	assert.Equal(t, "mag7:ratelimit:polygon:details", limiter.Key(PerInterval("polygon:details", time.Second)))
}

func TestPerInterval(t *testing.T) {
	cfg := PerInterval("k", 2*time.Second)
	assert.Equal(t, 1, cfg.Limit)
	assert.Equal(t, 2*time.Second, cfg.Window)
}

func TestRateLimiter_Integration(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	cfg := &config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	}}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		cfg.Redis.Port = port
	}

	ctx := context.Background()
	client, err := New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	limiter := NewRateLimiter(client, "test-"+time.Now().Format("150405.000"))
	rl := RateLimitConfig{Key: "burst", Limit: 2, Window: time.Second}

	allowed, remaining, err := limiter.Allow(ctx, rl)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, _, err = limiter.Allow(ctx, rl)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow(ctx, rl)
	require.NoError(t, err)
	assert.False(t, allowed)

	waitCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	start := time.Now()
	require.NoError(t, limiter.Wait(waitCtx, rl))
	assert.Greater(t, time.Since(start), 100*time.Millisecond)

	_ = client.Redis().Del(ctx, limiter.Key(rl)).Err()
}
