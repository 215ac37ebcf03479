package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

func (s *Store) CreateArticle(ctx context.Context, a *model.Article) error {
	row := articleRow{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Description: a.Description,
		Body:        a.Body,
		AuthorID:    a.AuthorID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		return replaceTags(tx, a.ID, a.TagList)
	})
}

func replaceTags(tx *gorm.DB, articleID string, tags []string) error {
	if err := tx.Where("article_id = ?", articleID).Delete(&articleTagRow{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}

	rows := make([]articleTagRow, 0, len(tags))
	for i, t := range tags {
		rows = append(rows, articleTagRow{ArticleID: articleID, Position: i, Tag: t})
	}

	return tx.Create(&rows).Error
}

func (s *Store) ArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var row articleRow
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		return nil, notFound(err)
	}

	list, err := s.hydrate(ctx, []articleRow{row})
	if err != nil {
		return nil, err
	}

	return list[0], nil
}

func (s *Store) TitleTaken(ctx context.Context, title, slug, exceptSlug string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&articleRow{}).
		Where("title = ? OR slug = ?", title, slug).
		Where("slug <> ?", exceptSlug).
		Count(&n).Error

	return n > 0, err
}

func (s *Store) UpdateArticle(ctx context.Context, slug string, ch model.ArticleChanges) (*model.Article, error) {
	values := map[string]interface{}{}
	if ch.Title != nil {
		values["title"] = *ch.Title
	}
	if ch.Slug != nil {
		values["slug"] = *ch.Slug
	}
	if ch.Description != nil {
		values["description"] = *ch.Description
	}
	if ch.Body != nil {
		values["body"] = *ch.Body
	}
	if !ch.UpdatedAt.IsZero() {
		values["updated_at"] = ch.UpdatedAt
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row articleRow
		if err := tx.Where("slug = ?", slug).First(&row).Error; err != nil {
			return notFound(err)
		}

		if len(values) > 0 {
			if err := tx.Model(&articleRow{}).Where("id = ?", row.ID).Updates(values).Error; err != nil {
				return err
			}
		}

		if ch.TagList != nil {
			return replaceTags(tx, row.ID, *ch.TagList)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if ch.Slug != nil {
		slug = *ch.Slug
	}

	return s.ArticleBySlug(ctx, slug)
}

func (s *Store) DeleteArticle(ctx context.Context, slug string) (*model.Article, error) {
	a, err := s.ArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&commentRow{}, &favoriteRow{}, &articleTagRow{}} {
			if err := tx.Where("article_id = ?", a.ID).Delete(m).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", a.ID).Delete(&articleRow{}).Error
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Store) ListArticles(ctx context.Context, f model.ArticleFilter) ([]*model.Article, int64, error) {
	db := s.db.WithContext(ctx)

	filter := func(q *gorm.DB) *gorm.DB {
		if f.Tag != "" {
			q = q.Where("id IN (?)", db.Model(&articleTagRow{}).Select("article_id").Where("tag = ?", f.Tag))
		}
		if f.AuthorIDs != nil {
			q = q.Where("author_id IN ?", f.AuthorIDs)
		}
		if f.FavoritedBy != "" {
			q = q.Where("id IN (?)", db.Model(&favoriteRow{}).Select("article_id").Where("user_id = ?", f.FavoritedBy))
		}

		return q
	}

	var total int64
	if err := db.Model(&articleRow{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []articleRow
	err := db.Model(&articleRow{}).Scopes(filter).
		Order("created_at DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	list, err := s.hydrate(ctx, rows)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (s *Store) AddFavorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	a, err := s.ArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	row := favoriteRow{ArticleID: a.ID, UserID: userID, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}

	return s.ArticleBySlug(ctx, slug)
}

func (s *Store) RemoveFavorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	a, err := s.ArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Where("article_id = ? AND user_id = ?", a.ID, userID).
		Delete(&favoriteRow{}).Error
	if err != nil {
		return nil, err
	}

	return s.ArticleBySlug(ctx, slug)
}

func (s *Store) TagLists(ctx context.Context) ([][]string, error) {
	var rows []articleTagRow
	err := s.db.WithContext(ctx).
		Table("article_tags").
		Select("article_tags.article_id, article_tags.position, article_tags.tag").
		Joins("JOIN articles ON articles.id = article_tags.article_id").
		Order("articles.created_at ASC, article_tags.article_id, article_tags.position ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var (
		out  [][]string
		last string
	)
	for _, r := range rows {
		if len(out) == 0 || r.ArticleID != last {
			out = append(out, nil)
			last = r.ArticleID
		}
		out[len(out)-1] = append(out[len(out)-1], r.Tag)
	}

	return out, nil
}

// hydrate turns article rows into models with tags, favorites and authors.
func (s *Store) hydrate(ctx context.Context, rows []articleRow) ([]*model.Article, error) {
	out := make([]*model.Article, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(rows))
	authorIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	db := s.db.WithContext(ctx)

	var tagRows []articleTagRow
	if err := db.Where("article_id IN ?", ids).Order("position").Find(&tagRows).Error; err != nil {
		return nil, err
	}
	tags := make(map[string][]string, len(rows))
	for _, t := range tagRows {
		tags[t.ArticleID] = append(tags[t.ArticleID], t.Tag)
	}

	var favRows []favoriteRow
	if err := db.Where("article_id IN ?", ids).Order("created_at").Find(&favRows).Error; err != nil {
		return nil, err
	}
	favorites := make(map[string][]string, len(rows))
	for _, f := range favRows {
		favorites[f.ArticleID] = append(favorites[f.ArticleID], f.UserID)
	}

	authors, err := s.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		a := &model.Article{
			ID:          r.ID,
			Slug:        r.Slug,
			Title:       r.Title,
			Description: r.Description,
			Body:        r.Body,
			AuthorID:    r.AuthorID,
			Author:      authors[r.AuthorID],
			TagList:     tags[r.ID],
			Favorites:   favorites[r.ID],
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		}
		if a.TagList == nil {
			a.TagList = []string{}
		}
		if a.Favorites == nil {
			a.Favorites = []string{}
		}
		out = append(out, a)
	}

	return out, nil
}

var _ store.Articles = (*Store)(nil)
