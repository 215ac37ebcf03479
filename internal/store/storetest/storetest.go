// Package storetest provides throwaway stores and fixtures for tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store/sqlstore"
)

// NewSQLite opens a private in-memory SQLite store closed with the test.
func NewSQLite(t testing.TB) *sqlstore.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", model.NewID())
	s, err := sqlstore.Open(dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// Clock hands out strictly increasing instants, one second apart.
type Clock struct {
	mu   sync.Mutex
	next time.Time
}

func NewClock() *Clock {
	return &Clock{next: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.next
	c.next = c.next.Add(time.Second)

	return t
}

// UserStore is the slice of store.Users the fixtures need.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
}

type ArticleStore interface {
	CreateArticle(ctx context.Context, a *model.Article) error
}

// User stores a user named name with a placeholder password hash.
func User(t testing.TB, s UserStore, clock *Clock, name string) *model.User {
	t.Helper()

	now := clock.Now()
	u := &model.User{
		ID:           model.NewID(),
		Username:     name,
		Email:        name + "@x.com",
		PasswordHash: "hash",
		Image:        model.DefaultImage,
		Follows:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))

	return u
}

// Article stores an article titled title by author.
func Article(t testing.TB, s ArticleStore, clock *Clock, author *model.User, title string, tags ...string) *model.Article {
	t.Helper()

	now := clock.Now()
	if tags == nil {
		tags = []string{}
	}
	a := &model.Article{
		ID:          model.NewID(),
		Slug:        model.Slugify(title),
		Title:       title,
		Description: "about " + title,
		Body:        "body of " + title,
		AuthorID:    author.ID,
		TagList:     tags,
		Favorites:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.CreateArticle(context.Background(), a))

	return a
}
