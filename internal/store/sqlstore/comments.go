package sqlstore

import (
	"context"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	row := commentRow{
		ID:        c.ID,
		Body:      c.Body,
		ArticleID: c.ArticleID,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) CommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var row commentRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}

	list, err := s.hydrateComments(ctx, []commentRow{row})
	if err != nil {
		return nil, err
	}

	return list[0], nil
}

func (s *Store) CommentsByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	var rows []commentRow
	err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return s.hydrateComments(ctx, rows)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&commentRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *Store) hydrateComments(ctx context.Context, rows []commentRow) ([]*model.Comment, error) {
	authorIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		authorIDs = append(authorIDs, r.AuthorID)
	}

	authors, err := s.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, &model.Comment{
			ID:        r.ID,
			Body:      r.Body,
			ArticleID: r.ArticleID,
			AuthorID:  r.AuthorID,
			Author:    authors[r.AuthorID],
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}

	return out, nil
}
