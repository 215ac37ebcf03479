package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopNeverHits(t *testing.T) {
	ctx := context.Background()

	var c Tags = Nop{}
	require.NoError(t, c.Set(ctx, 0, []string{"go"}))

	tags, _, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, tags)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := &Memory{}

	_, gen, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, gen, []string{"go"}))
	tags, _, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"go"}, tags)

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
