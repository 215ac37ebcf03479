package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/realworld/internal/model"
)

func TestIssueParse(t *testing.T) {
	c, err := NewCodec("secret", time.Hour)
	require.NoError(t, err)

	id := model.NewID()
	tok, err := c.Issue(id)
	require.NoError(t, err)
	assert.True(t, c.WellFormed(tok))

	got, err := c.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseRejects(t *testing.T) {
	c, err := NewCodec("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewCodec("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue(model.NewID())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := c.Parse(foreign)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := c.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		issued := time.Now().Add(-2 * time.Hour)
		past, err := NewCodec("secret", time.Hour, WithClock(func() time.Time { return issued }))
		require.NoError(t, err)

		tok, err := past.Issue(model.NewID())
		require.NoError(t, err)

		_, err = c.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestWellFormed(t *testing.T) {
	c, err := NewCodec("secret", 0)
	require.NoError(t, err)

	tok, err := c.Issue(model.NewID())
	require.NoError(t, err)

	assert.True(t, c.WellFormed(tok))
	assert.False(t, c.WellFormed(tok+"x"))
	assert.False(t, c.WellFormed(""))
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("", time.Hour)
	assert.Error(t, err)
}
