package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/mag7-collector/pkg/config"
	"github.com/wonny/mag7-collector/pkg/redis"
)

// Pacer blocks before a provider request.
// Wait returns ctx.Err() when the context ends first.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Pacing modes
const (
	ModeFixed  = "fixed"
	ModeBucket = "bucket"
	ModeRedis  = "redis"
)

// Set holds one pacer per endpoint family
type Set struct {
	Aggregate Pacer
	Details   Pacer
}

// NewSet builds the pacers selected by cfg.Pacing.Mode.
// rdb is only consulted for the redis mode.
func NewSet(cfg *config.Config, rdb *redis.Client) (Set, error) {
	aggDelay := cfg.Pacing.AggregateDelay
	detDelay := cfg.Pacing.DetailsDelay

	switch cfg.Pacing.Mode {
	case ModeFixed, "":
		return Set{Aggregate: NewFixed(aggDelay), Details: NewFixed(detDelay)}, nil
	case ModeBucket:
		return Set{Aggregate: NewBucket(aggDelay), Details: NewBucket(detDelay)}, nil
	case ModeRedis:
		if rdb == nil || !rdb.Enabled() {
			return Set{}, fmt.Errorf("redis pacing requires an enabled redis client")
		}
		limiter := redis.NewRateLimiter(rdb, "mag7")
		return Set{
			Aggregate: NewShared(limiter, redis.PerInterval("polygon:aggs", aggDelay)),
			Details:   NewShared(limiter, redis.PerInterval("polygon:details", detDelay)),
		}, nil
	default:
		return Set{}, fmt.Errorf("unknown pacing mode: %s", cfg.Pacing.Mode)
	}
}

// NopSet returns pacers that never wait
func NopSet() Set {
	return Set{Aggregate: Nop{}, Details: Nop{}}
}

// Fixed sleeps a constant delay before every request
type Fixed struct {
	delay time.Duration
}

// NewFixed creates a fixed-delay pacer
func NewFixed(delay time.Duration) *Fixed {
	return &Fixed{delay: delay}
}

// Delay returns the configured delay
func (f *Fixed) Delay() time.Duration {
	return f.delay
}

// Wait sleeps for the delay or until ctx is done
func (f *Fixed) Wait(ctx context.Context) error {
	if f.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Bucket spaces requests with a token bucket of burst 1.
// Unlike Fixed the first request passes immediately.
type Bucket struct {
	limiter *rate.Limiter
}

// NewBucket allows one request per interval
func NewBucket(interval time.Duration) *Bucket {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Bucket{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until a token is available
func (b *Bucket) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// Shared paces through a Redis sliding window so several collector
// instances stay under one provider quota
type Shared struct {
	limiter *redis.RateLimiter
	cfg     redis.RateLimitConfig
}

// NewShared creates a Redis backed pacer
func NewShared(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Shared {
	return &Shared{limiter: limiter, cfg: cfg}
}

// Wait blocks until the shared window admits a request
func (s *Shared) Wait(ctx context.Context) error {
	if s.cfg.Window <= 0 {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx, s.cfg)
}

// Nop never waits
type Nop struct{}

// Wait returns immediately unless ctx is already done
func (Nop) Wait(ctx context.Context) error {
	return ctx.Err()
}
