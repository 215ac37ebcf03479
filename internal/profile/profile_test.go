package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/store/storetest"
)

func TestFollowLifecycle(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewSQLite(t)
	clock := storetest.NewClock()
	svc := NewService(s)

	alice := storetest.User(t, s, clock, "alice")
	bob := storetest.User(t, s, clock, "bob")

	p, err := svc.Get(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.False(t, p.Following)

	p, err = svc.Follow(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.True(t, p.Following)
	assert.Equal(t, "alice", p.Username)

	_, err = svc.Follow(ctx, "alice", bob.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	stored, err := s.UserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, stored.Follows, "a second follow stores nothing")

	p, err = svc.Get(ctx, "alice", "")
	require.NoError(t, err)
	assert.False(t, p.Following, "anonymous viewers follow nobody")

	p, err = svc.Unfollow(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.False(t, p.Following)

	p, err = svc.Unfollow(ctx, "alice", bob.ID)
	require.NoError(t, err, "unfollow is not guarded")
	assert.False(t, p.Following)
}

func TestFollowSelf(t *testing.T) {
	s := storetest.NewSQLite(t)
	alice := storetest.User(t, s, storetest.NewClock(), "alice")

	_, err := NewService(s).Follow(context.Background(), "alice", alice.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUnknownProfile(t *testing.T) {
	svc := NewService(storetest.NewSQLite(t))

	_, err := svc.Get(context.Background(), "ghost", "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Follow(context.Background(), "ghost", "someone")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
