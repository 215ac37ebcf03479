package article

import (
	"context"
	"errors"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

// Store is what the articles service needs from persistence: articles plus
// the user lookups behind the author, favorited and feed filters.
type Store interface {
	store.Articles
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	FollowedBy(ctx context.Context, followerID string) ([]string, error)
}

var errArticleNotFound = apperr.NotFound("article does not exist")

func dbGetArticleBySlug(ctx context.Context, s Store, slug string) (*model.Article, error) {
	a, err := s.ArticleBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errArticleNotFound
	}

	return a, err
}

// dbUserID resolves a username filter. ok is false when nobody has it.
func dbUserID(ctx context.Context, s Store, username string) (id string, ok bool, err error) {
	u, err := s.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return u.ID, true, nil
}

func notFoundAs(err error, as error) error {
	if errors.Is(err, store.ErrNotFound) {
		return as
	}

	return err
}
