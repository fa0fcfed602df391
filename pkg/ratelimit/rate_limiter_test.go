package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketLimiter(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewWindowLimiter(2, time.Minute)
	l.now = func() time.Time { return clock }

	t.Run("Should allow a burst up to the limit", func(t *testing.T) {
		ok, _ := l.Allow(ctx, "1.2.3.4")
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "1.2.3.4")
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "1.2.3.4")
		assert.False(t, ok)
	})

	t.Run("Should track keys independently", func(t *testing.T) {
		ok, _ := l.Allow(ctx, "5.6.7.8")
		assert.True(t, ok)
	})

	t.Run("Should refill over time", func(t *testing.T) {
		clock = clock.Add(30 * time.Second)
		ok, _ := l.Allow(ctx, "1.2.3.4")
		assert.True(t, ok)
		ok, _ = l.Allow(ctx, "1.2.3.4")
		assert.False(t, ok)
	})

	t.Run("Should forget a key on reset", func(t *testing.T) {
		assert.NoError(t, l.Reset(ctx, "1.2.3.4"))
		ok, _ := l.Allow(ctx, "1.2.3.4")
		assert.True(t, ok)
	})

	t.Run("Should sweep idle buckets", func(t *testing.T) {
		clock = clock.Add(2 * time.Hour)
		l.sweep()
		l.mu.Lock()
		defer l.mu.Unlock()
		assert.Empty(t, l.buckets)
	})
}
