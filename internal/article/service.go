// Package article serves article listing, the feed, article writes and
// favorites.
package article

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/articlerequest"
	"github.com/SergeyParamoshkin/realworld/internal/articleresponse"
	"github.com/SergeyParamoshkin/realworld/internal/cache"
	"github.com/SergeyParamoshkin/realworld/internal/logging"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/projection"
	"github.com/SergeyParamoshkin/realworld/internal/validate"
)

var createMessages = validate.Messages{
	"title.required":       "title is required",
	"description.required": "description is required",
	"body.required":        "body is required",
}

type Service struct {
	store Store
	tags  cache.Tags
	now   func() time.Time
}

func NewService(s Store, tags cache.Tags, now func() time.Time) *Service {
	if tags == nil {
		tags = cache.Nop{}
	}
	if now == nil {
		now = time.Now
	}

	return &Service{store: s, tags: tags, now: now}
}

// Load fetches the article at slug.
func (s *Service) Load(ctx context.Context, slug string) (*model.Article, error) {
	return dbGetArticleBySlug(ctx, s.store, slug)
}

// List pages through the articles matching q. Filters naming an unknown
// user match nothing.
func (s *Service) List(ctx context.Context, q articlerequest.ListQuery, viewerID string) (*articleresponse.ArticleListResponse, error) {
	f := model.ArticleFilter{Tag: q.Tag, Offset: q.Offset, Limit: q.Limit}

	if q.Author != "" {
		id, ok, err := dbUserID(ctx, s.store, q.Author)
		if err != nil {
			return nil, err
		}
		if !ok {
			return articleresponse.Empty(), nil
		}
		f.AuthorIDs = []string{id}
	}

	if q.Favorited != "" {
		id, ok, err := dbUserID(ctx, s.store, q.Favorited)
		if err != nil {
			return nil, err
		}
		if !ok {
			return articleresponse.Empty(), nil
		}
		f.FavoritedBy = id
	}

	return s.list(ctx, f, viewerID)
}

// Feed pages through the articles of the authors viewerID follows.
func (s *Service) Feed(ctx context.Context, page articlerequest.Page, viewerID string) (*articleresponse.ArticleListResponse, error) {
	authors, err := s.store.FollowedBy(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(authors) == 0 {
		return articleresponse.Empty(), nil
	}

	return s.list(ctx, model.ArticleFilter{AuthorIDs: authors, Offset: page.Offset, Limit: page.Limit}, viewerID)
}

func (s *Service) list(ctx context.Context, f model.ArticleFilter, viewerID string) (*articleresponse.ArticleListResponse, error) {
	list, total, err := s.store.ListArticles(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return articleresponse.NewArticleListResponse(list, total, viewerID), nil
}

func (s *Service) Create(ctx context.Context, viewerID string, req *articlerequest.ArticleRequest) (projection.Article, error) {
	if detail := validate.Struct(req, createMessages); detail != nil {
		return projection.Article{}, apperr.Validation("invalid parameters", detail...)
	}

	slug := model.Slugify(req.Title)
	taken, err := s.store.TitleTaken(ctx, req.Title, slug, "")
	if err != nil {
		return projection.Article{}, err
	}
	if taken {
		return projection.Article{}, apperr.Conflict("create failed", "title already exists")
	}

	now := s.now().UTC()
	tags := req.TagList
	if tags == nil {
		tags = []string{}
	}
	a := &model.Article{
		ID:          model.NewID(),
		Slug:        slug,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		AuthorID:    viewerID,
		TagList:     tags,
		Favorites:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateArticle(ctx, a); err != nil {
		return projection.Article{}, fmt.Errorf("create article: %w", err)
	}
	s.invalidateTags(ctx)

	created, err := s.Load(ctx, slug)
	if err != nil {
		return projection.Article{}, err
	}

	return projection.ProjectArticle(created, viewerID), nil
}

// Update applies the fields of req that differ from a. Only the author may
// update an article.
func (s *Service) Update(ctx context.Context, a *model.Article, viewerID string, req *articlerequest.UpdateRequest) (projection.Article, error) {
	if a.AuthorID != viewerID {
		return projection.Article{}, apperr.Forbidden("only the author can update this article")
	}

	if req.Title != nil {
		taken, err := s.store.TitleTaken(ctx, *req.Title, model.Slugify(*req.Title), a.Slug)
		if err != nil {
			return projection.Article{}, err
		}
		if taken {
			return projection.Article{}, apperr.Conflict("update failed", "title already exists")
		}
	}

	ch := model.ArticleChanges{
		Title:       changed(req.Title, a.Title),
		Description: changed(req.Description, a.Description),
		Body:        changed(req.Body, a.Body),
	}
	if req.TagList != nil && !sameTags(*req.TagList, a.TagList) {
		ch.TagList = req.TagList
	}
	if ch.Empty() {
		return projection.Article{}, apperr.Validation("update failed", "article unchanged")
	}
	if ch.Title != nil {
		if slug := model.Slugify(*ch.Title); slug != a.Slug {
			ch.Slug = &slug
		}
	}
	ch.UpdatedAt = s.now().UTC()

	updated, err := s.store.UpdateArticle(ctx, a.Slug, ch)
	if err != nil {
		return projection.Article{}, notFoundAs(err, errArticleNotFound)
	}
	s.invalidateTags(ctx)

	return projection.ProjectArticle(updated, viewerID), nil
}

// Delete removes a with its comments and returns it as it was. Only the
// author may delete an article.
func (s *Service) Delete(ctx context.Context, a *model.Article, viewerID string) (projection.Article, error) {
	if a.AuthorID != viewerID {
		return projection.Article{}, apperr.Forbidden("only the author can delete this article")
	}

	deleted, err := s.store.DeleteArticle(ctx, a.Slug)
	if err != nil {
		return projection.Article{}, notFoundAs(err, errArticleNotFound)
	}
	s.invalidateTags(ctx)

	return projection.ProjectArticle(deleted, viewerID), nil
}

func (s *Service) Favorite(ctx context.Context, slug, viewerID string) (projection.Article, error) {
	a, err := s.store.AddFavorite(ctx, slug, viewerID)
	if err != nil {
		return projection.Article{}, notFoundAs(err, errArticleNotFound)
	}

	return projection.ProjectArticle(a, viewerID), nil
}

func (s *Service) Unfavorite(ctx context.Context, slug, viewerID string) (projection.Article, error) {
	a, err := s.store.RemoveFavorite(ctx, slug, viewerID)
	if err != nil {
		return projection.Article{}, notFoundAs(err, errArticleNotFound)
	}

	return projection.ProjectArticle(a, viewerID), nil
}

func (s *Service) invalidateTags(ctx context.Context) {
	if err := s.tags.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warnw("tag cache invalidation failed", "error", err)
	}
}

func changed(v *string, current string) *string {
	if v == nil || *v == current {
		return nil
	}

	return v
}

// sameTags compares tag lists ignoring order.
func sameTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)

	return slices.Equal(x, y)
}
