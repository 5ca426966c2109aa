package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[string, int](2, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "bitcoin", 1)

	v, ok := c.Get(ctx, "bitcoin")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)

	_, ok = c.Get(ctx, "bitcoin")
	assert.False(t, ok, "entry expires at ttl")

	v, ok = c.GetStale(ctx, "bitcoin")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewCache[string, int](0, 0)
	c.now = func() time.Time { return now }

	c.Set(ctx, "eth", 7)
	now = now.Add(24 * 365 * time.Hour)

	v, ok := c.Get(ctx, "eth")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestCache_Batch(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[string, int](4, time.Minute)
	c.now = func() time.Time { return now }

	c.SetBatch(ctx, map[string]int{"bitcoin": 1, "ethereum": 2})
	now = now.Add(30 * time.Second)
	c.Set(ctx, "solana", 3)
	now = now.Add(45 * time.Second)

	assert.Equal(t, map[string]int{"solana": 3}, c.GetBatch(ctx, []string{"bitcoin", "ethereum", "solana", "doge"}))
	assert.Equal(t,
		map[string]int{"bitcoin": 1, "ethereum": 2, "solana": 3},
		c.GetBatchStale(ctx, []string{"bitcoin", "ethereum", "solana", "doge"}),
	)
	assert.Equal(t, 3, c.Len())
}
