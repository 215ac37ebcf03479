// Package store declares the persistence contract the services run against.
// Backends live in the sqlstore and mongostore subpackages.
package store

import (
	"context"
	"errors"

	"github.com/SergeyParamoshkin/realworld/internal/model"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrConflict reports a write rejected by a unique index.
	ErrConflict = errors.New("store: conflict")
)

type Users interface {
	// CreateUser and UpdateUser return ErrConflict when the username or
	// email already belongs to another user.
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	// UsernameTaken and EmailTaken ignore the user with exceptID.
	UsernameTaken(ctx context.Context, username, exceptID string) (bool, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	UpdateUser(ctx context.Context, id string, ch model.UserChanges) (*model.User, error)
	// AddFollower and RemoveFollower mutate the follows set of userID with
	// set semantics and return the updated user.
	AddFollower(ctx context.Context, userID, followerID string) (*model.User, error)
	RemoveFollower(ctx context.Context, userID, followerID string) (*model.User, error)
	// FollowedBy returns the ids of the users whose follows set holds followerID.
	FollowedBy(ctx context.Context, followerID string) ([]string, error)
}

type Articles interface {
	CreateArticle(ctx context.Context, a *model.Article) error
	ArticleBySlug(ctx context.Context, slug string) (*model.Article, error)
	// TitleTaken reports whether another article, not the one at exceptSlug,
	// already has title or slug.
	TitleTaken(ctx context.Context, title, slug, exceptSlug string) (bool, error)
	UpdateArticle(ctx context.Context, slug string, ch model.ArticleChanges) (*model.Article, error)
	// DeleteArticle removes the article with its comments and returns it as it was.
	DeleteArticle(ctx context.Context, slug string) (*model.Article, error)
	// ListArticles returns one page, newest first, and the total matching count.
	ListArticles(ctx context.Context, f model.ArticleFilter) ([]*model.Article, int64, error)
	AddFavorite(ctx context.Context, slug, userID string) (*model.Article, error)
	RemoveFavorite(ctx context.Context, slug, userID string) (*model.Article, error)
	// TagLists returns the tag list of every article, oldest article first.
	TagLists(ctx context.Context) ([][]string, error)
}

type Comments interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	CommentByID(ctx context.Context, id string) (*model.Comment, error)
	// CommentsByArticle returns the comments of an article, newest first.
	CommentsByArticle(ctx context.Context, articleID string) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type Store interface {
	Users
	Articles
	Comments
	Close() error
}
