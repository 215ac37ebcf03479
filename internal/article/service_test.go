package article

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/articlerequest"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store/sqlstore"
	"github.com/SergeyParamoshkin/realworld/internal/store/storetest"
)

type spyTags struct {
	invalidations int
}

func (s *spyTags) Get(context.Context) ([]string, int64, bool, error) { return nil, 0, false, nil }
func (s *spyTags) Set(context.Context, int64, []string) error         { return nil }
func (s *spyTags) Invalidate(context.Context) error {
	s.invalidations++

	return nil
}

type fixture struct {
	store *sqlstore.Store
	clock *storetest.Clock
	tags  *spyTags
	svc   *Service
	alice *model.User
	bob   *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := storetest.NewSQLite(t)
	clock := storetest.NewClock()
	tags := &spyTags{}

	return &fixture{
		store: s,
		clock: clock,
		tags:  tags,
		svc:   NewService(s, tags, clock.Now),
		alice: storetest.User(t, s, clock, "alice"),
		bob:   storetest.User(t, s, clock, "bob"),
	}
}

func strptr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.Create(ctx, f.alice.ID, &articlerequest.ArticleRequest{
		Title: "Hello World", Description: "d", Body: "b",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello-World", got.Slug)
	assert.False(t, got.Favorited)
	assert.Zero(t, got.FavoritesCount)
	assert.Equal(t, []string{}, got.TagList)
	assert.Equal(t, "alice", got.Author.Username)
	assert.Equal(t, 1, f.tags.invalidations)

	_, err = f.svc.Create(ctx, f.bob.ID, &articlerequest.ArticleRequest{
		Title: "Hello World", Description: "d", Body: "b",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.Create(ctx, f.bob.ID, &articlerequest.ArticleRequest{Title: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	storetest.Article(t, f.store, f.clock, f.alice, "one", "x")
	storetest.Article(t, f.store, f.clock, f.bob, "two", "y")
	storetest.Article(t, f.store, f.clock, f.alice, "three", "x", "y")
	storetest.Article(t, f.store, f.clock, f.bob, "four", "x")

	page := articlerequest.Page{Offset: 0, Limit: 2}

	list, err := f.svc.List(ctx, articlerequest.ListQuery{Tag: "x", Page: page}, "")
	require.NoError(t, err)
	require.Len(t, list.Articles, 2)
	assert.EqualValues(t, 3, list.ArticlesCount)
	for _, a := range list.Articles {
		assert.Contains(t, a.TagList, "x")
	}
	assert.Equal(t, "four", list.Articles[0].Slug)
	assert.True(t, !list.Articles[0].CreatedAt.Before(list.Articles[1].CreatedAt))

	list, err = f.svc.List(ctx, articlerequest.ListQuery{Author: "alice", Page: articlerequest.Page{Limit: 10}}, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.ArticlesCount)

	list, err = f.svc.List(ctx, articlerequest.ListQuery{Author: "ghost", Page: articlerequest.Page{Limit: 10}}, "")
	require.NoError(t, err)
	assert.Empty(t, list.Articles)
	assert.Zero(t, list.ArticlesCount)

	_, err = f.svc.Favorite(ctx, "two", f.alice.ID)
	require.NoError(t, err)
	list, err = f.svc.List(ctx, articlerequest.ListQuery{Favorited: "alice", Page: articlerequest.Page{Limit: 10}}, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, list.Articles, 1)
	assert.True(t, list.Articles[0].Favorited)
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := articlerequest.Page{Limit: 10}

	storetest.Article(t, f.store, f.clock, f.alice, "one")

	list, err := f.svc.Feed(ctx, page, f.bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, list.Articles)
	assert.Empty(t, list.Articles)
	assert.Zero(t, list.ArticlesCount)

	_, err = f.store.AddFollower(ctx, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	list, err = f.svc.Feed(ctx, page, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, list.Articles, 1)
	assert.True(t, list.Articles[0].Author.Following)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := storetest.Article(t, f.store, f.clock, f.alice, "Hello World", "go", "web")
	storetest.Article(t, f.store, f.clock, f.alice, "Taken")

	t.Run("only the author", func(t *testing.T) {
		_, err := f.svc.Update(ctx, a, f.bob.ID, &articlerequest.UpdateRequest{Body: strptr("new")})
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("unchanged", func(t *testing.T) {
		tags := []string{"web", "go"}
		_, err := f.svc.Update(ctx, a, f.alice.ID, &articlerequest.UpdateRequest{
			Title:   strptr("Hello World"),
			TagList: &tags,
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("title taken", func(t *testing.T) {
		_, err := f.svc.Update(ctx, a, f.alice.ID, &articlerequest.UpdateRequest{Title: strptr("Taken")})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("retitle moves the slug", func(t *testing.T) {
		got, err := f.svc.Update(ctx, a, f.alice.ID, &articlerequest.UpdateRequest{Title: strptr("Hello  Again World")})
		require.NoError(t, err)
		assert.Equal(t, "Hello-Again-World", got.Slug)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt))

		_, err = f.svc.Load(ctx, "Hello-World")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := storetest.Article(t, f.store, f.clock, f.alice, "Hello World")

	_, err := f.svc.Delete(ctx, a, f.bob.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	got, err := f.svc.Delete(ctx, a, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello-World", got.Slug)
	assert.Equal(t, 1, f.tags.invalidations)

	_, err = f.svc.Load(ctx, "Hello-World")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestFavoriteRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	storetest.Article(t, f.store, f.clock, f.alice, "Hello World")

	got, err := f.svc.Favorite(ctx, "Hello-World", f.bob.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorited)
	assert.Equal(t, 1, got.FavoritesCount)

	got, err = f.svc.Favorite(ctx, "Hello-World", f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FavoritesCount, "favorites is a set")

	got, err = f.svc.Unfavorite(ctx, "Hello-World", f.bob.ID)
	require.NoError(t, err)
	assert.False(t, got.Favorited)
	assert.Zero(t, got.FavoritesCount)

	_, err = f.svc.Favorite(ctx, "missing", f.bob.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSameTags(t *testing.T) {
	assert.True(t, sameTags([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, sameTags([]string{"a"}, []string{"a", "b"}))
	assert.False(t, sameTags([]string{"a", "a"}, []string{"a", "b"}))
}
