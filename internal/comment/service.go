// Package comment serves the comments of an article.
package comment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/projection"
	"github.com/SergeyParamoshkin/realworld/internal/store"
	"github.com/SergeyParamoshkin/realworld/internal/validate"
)

// Store is the slice of persistence comments need.
type Store interface {
	store.Comments
	ArticleBySlug(ctx context.Context, slug string) (*model.Article, error)
}

var (
	errArticleNotFound = apperr.NotFound("article does not exist")
	errCommentNotFound = apperr.NotFound("comment does not exist")
)

// Deleted is the data of a successful delete.
var Deleted = []string{"comment deleted"}

// Request is the body of a create. Bind trims the body.
type Request struct {
	Body string `json:"body" validate:"required"`
}

func (c *Request) Bind(r *http.Request) error {
	validate.TrimAll(&c.Body)

	return nil
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(s Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{store: s, now: now}
}

func (s *Service) article(ctx context.Context, slug string) (*model.Article, error) {
	a, err := s.store.ArticleBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errArticleNotFound
	}

	return a, err
}

// List returns the comments on the article at slug, newest first.
func (s *Service) List(ctx context.Context, slug, viewerID string) ([]projection.Comment, error) {
	a, err := s.article(ctx, slug)
	if err != nil {
		return nil, err
	}

	cs, err := s.store.CommentsByArticle(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return projection.ProjectComments(cs, viewerID), nil
}

func (s *Service) Create(ctx context.Context, slug, viewerID string, req *Request) (projection.Comment, error) {
	if detail := validate.Struct(req, validate.Messages{"body.required": "body is required"}); detail != nil {
		return projection.Comment{}, apperr.Validation("comment failed", detail...)
	}

	a, err := s.article(ctx, slug)
	if err != nil {
		return projection.Comment{}, err
	}

	now := s.now().UTC()
	c := &model.Comment{
		ID:        model.NewID(),
		Body:      req.Body,
		ArticleID: a.ID,
		AuthorID:  viewerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return projection.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	created, err := s.store.CommentByID(ctx, c.ID)
	if err != nil {
		return projection.Comment{}, fmt.Errorf("reload comment: %w", err)
	}

	return projection.ProjectComment(created, viewerID), nil
}

// Delete removes comment id from the article at slug. Only its author may
// delete a comment.
func (s *Service) Delete(ctx context.Context, slug, id, viewerID string) error {
	a, err := s.article(ctx, slug)
	if err != nil {
		return err
	}

	c, err := s.store.CommentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return errCommentNotFound
	}
	if err != nil {
		return err
	}
	if c.ArticleID != a.ID {
		return errCommentNotFound
	}
	if c.AuthorID != viewerID {
		return apperr.Forbidden("only the author can delete this comment")
	}

	if err := s.store.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errCommentNotFound
		}

		return fmt.Errorf("delete comment: %w", err)
	}

	return nil
}
