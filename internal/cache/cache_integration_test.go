//go:build integration
// +build integration

package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTags(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb, err := Dial(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedis(rdb)
	require.NoError(t, c.Invalidate(ctx))

	_, gen, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, gen, []string{"go", "web"}))
	tags, _, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"go", "web"}, tags)

	ttl, err := rdb.TTL(ctx, TagsKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl.Seconds(), 0.0)

	require.NoError(t, c.Invalidate(ctx))
	_, _, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("set after invalidate is dropped", func(t *testing.T) {
		_, gen, _, err := c.Get(ctx)
		require.NoError(t, err)

		require.NoError(t, c.Invalidate(ctx))
		require.NoError(t, c.Set(ctx, gen, []string{"stale"}))

		_, _, ok, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
