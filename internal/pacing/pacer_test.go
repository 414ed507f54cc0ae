package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/mag7-collector/pkg/config"
	"github.com/wonny/mag7-collector/pkg/redis"
)

func TestFixed_Waits(t *testing.T) {
	p := NewFixed(30 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, p.Delay())
}

func TestFixed_ZeroDelay(t *testing.T) {
	p := NewFixed(0)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestFixed_Cancelled(t *testing.T) {
	p := NewFixed(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBucket_SpacesRequests(t *testing.T) {
	p := NewBucket(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, p.Wait(ctx)) // burst token
	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.Wait(ctx))

	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestBucket_Unlimited(t *testing.T) {
	p := NewBucket(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Nop{}.Wait(ctx), context.Canceled)
}

func TestNewSet(t *testing.T) {
	cfg := &config.Config{Pacing: config.PacingConfig{
		AggregateDelay: 500 * time.Millisecond,
		DetailsDelay:   time.Second,
	}}

	tests := []struct {
		mode    string
		wantErr bool
		check   func(t *testing.T, s Set)
	}{
		{ModeFixed, false, func(t *testing.T, s Set) {
			require.IsType(t, &Fixed{}, s.Aggregate)
			assert.Equal(t, 500*time.Millisecond, s.Aggregate.(*Fixed).Delay())
			assert.Equal(t, time.Second, s.Details.(*Fixed).Delay())
		}},
		{"", false, func(t *testing.T, s Set) {
			assert.IsType(t, &Fixed{}, s.Details)
		}},
		{ModeBucket, false, func(t *testing.T, s Set) {
			assert.IsType(t, &Bucket{}, s.Aggregate)
			assert.IsType(t, &Bucket{}, s.Details)
		}},
		{ModeRedis, true, nil},
		{"turbo", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			c := *cfg
			c.Pacing.Mode = tt.mode

			rdb, err := redis.New(context.Background(), &c)
			require.NoError(t, err)

			set, err := NewSet(&c, rdb)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, set)
		})
	}
}

func TestNopSet(t *testing.T) {
	s := NopSet()
	assert.NoError(t, s.Aggregate.Wait(context.Background()))
	assert.NoError(t, s.Details.Wait(context.Background()))
}
