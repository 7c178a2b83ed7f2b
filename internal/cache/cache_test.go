package cache

import (
	"context"
	"runtime"
	"testing"
	"time"

	"visualverse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	c, err := New(&config.CacheConfig{Provider: "memory", DefaultTTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCacheRoundtrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set(ctx, "k", payload{Name: "ada", Count: 3}, time.Minute))

	var got payload
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "ada", Count: 3}, got)

	var missing payload
	hit, err = c.Get(ctx, "absent", &missing)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got string
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var got string
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheCloseStopsCleanup(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		c, err := New(&config.CacheConfig{Provider: "memory", DefaultTTL: time.Minute}, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, c.Close())
	}

	// Let the stopped cleanup goroutines wind down
	time.Sleep(50 * time.Millisecond)
	after := runtime.NumGoroutine()
	assert.Less(t, after-before, 10, "closed caches must not leave cleanup goroutines behind")
}
