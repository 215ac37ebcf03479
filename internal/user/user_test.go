package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store/storetest"
	"github.com/SergeyParamoshkin/realworld/internal/token"
	"github.com/SergeyParamoshkin/realworld/internal/userpayload"
)

type fixture struct {
	svc   *Service
	codec *token.Codec
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	codec, err := token.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)

	s := storetest.NewSQLite(t)

	return fixture{svc: NewService(s, codec, storetest.NewClock().Now), codec: codec}
}

func (f fixture) register(t *testing.T, name string) *userpayload.UserPayload {
	t.Helper()

	u, err := f.svc.Register(context.Background(), &userpayload.RegisterRequest{
		Username: name,
		Email:    name + "@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)

	return u
}

func detailOf(t *testing.T, err error) []string {
	t.Helper()

	var e *apperr.Error
	require.ErrorAs(t, err, &e)

	return e.Detail
}

func strptr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	f := newFixture(t)

	u := f.register(t, "alice")
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.Equal(t, model.DefaultImage, u.Image)
	assert.Empty(t, u.Bio)

	id, err := f.codec.Parse(u.Token)
	require.NoError(t, err)
	assert.Len(t, id, model.IDLength)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), &userpayload.RegisterRequest{Email: "not-an-email"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, []string{"username is required", "email is malformed", "password is required"}, detailOf(t, err))

	_, err = f.svc.Register(context.Background(), &userpayload.RegisterRequest{Username: "a", Password: "p"})
	assert.Equal(t, []string{"email is required"}, detailOf(t, err))
}

func TestRegisterDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	_, err := f.svc.Register(ctx, &userpayload.RegisterRequest{Username: "alice", Email: "other@x.com", Password: "p"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, []string{"username already registered"}, detailOf(t, err))

	_, err = f.svc.Register(ctx, &userpayload.RegisterRequest{Username: "other", Email: "alice@x.com", Password: "p"})
	assert.Equal(t, []string{"email already registered"}, detailOf(t, err))

	_, err = f.svc.Register(ctx, &userpayload.RegisterRequest{Username: "Alice", Email: "Alice@x.com", Password: "p"})
	assert.NoError(t, err, "uniqueness is case sensitive")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	u, err := f.svc.Login(ctx, &userpayload.LoginRequest{Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.Token)

	_, err = f.svc.Login(ctx, &userpayload.LoginRequest{Email: "bob@x.com", Password: "pw123"})
	assert.Equal(t, []string{"email not registered"}, detailOf(t, err))

	_, err = f.svc.Login(ctx, &userpayload.LoginRequest{Email: "alice@x.com", Password: "wrong"})
	assert.Equal(t, []string{"password incorrect"}, detailOf(t, err))

	_, err = f.svc.Login(ctx, &userpayload.LoginRequest{})
	assert.Equal(t, []string{"email is required", "password is required"}, detailOf(t, err))
}

func TestCurrentEchoesToken(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	id, err := f.codec.Parse(u.Token)
	require.NoError(t, err)

	got, err := f.svc.Current(context.Background(), id, u.Token)
	require.NoError(t, err)
	assert.Equal(t, u.Token, got.Token)

	_, err = f.svc.Current(context.Background(), model.NewID(), u.Token)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	id, err := f.codec.Parse(alice.Token)
	require.NoError(t, err)

	t.Run("applies changes and issues a token", func(t *testing.T) {
		got, err := f.svc.Update(ctx, id, &userpayload.UpdateRequest{Bio: strptr("gopher")})
		require.NoError(t, err)
		assert.Equal(t, "gopher", got.Bio)
		assert.NotEmpty(t, got.Token)
	})

	t.Run("no-op fields leave nothing to update", func(t *testing.T) {
		_, err := f.svc.Update(ctx, id, &userpayload.UpdateRequest{
			Username: strptr("alice"),
			Bio:      strptr("gopher"),
			Password: strptr("pw123"),
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, []string{"nothing to update"}, detailOf(t, err))
	})

	t.Run("taken by another user", func(t *testing.T) {
		_, err := f.svc.Update(ctx, id, &userpayload.UpdateRequest{Username: strptr("bob"), Email: strptr("bob@x.com")})
		assert.Equal(t, []string{"email already taken", "username already taken"}, detailOf(t, err))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := f.svc.Update(ctx, id, &userpayload.UpdateRequest{Email: strptr("nope"), Image: strptr("nope")})
		assert.Equal(t, []string{"email is malformed", "image must be a valid URL"}, detailOf(t, err))
	})

	t.Run("password change", func(t *testing.T) {
		_, err := f.svc.Update(ctx, id, &userpayload.UpdateRequest{Password: strptr("new-pw")})
		require.NoError(t, err)

		_, err = f.svc.Login(ctx, &userpayload.LoginRequest{Email: "alice@x.com", Password: "new-pw"})
		assert.NoError(t, err)
	})
}
