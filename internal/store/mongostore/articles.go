package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

func (s *Store) CreateArticle(ctx context.Context, a *model.Article) error {
	doc := articleDoc{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Description: a.Description,
		Body:        a.Body,
		AuthorID:    a.AuthorID,
		TagList:     nonNil(a.TagList),
		Favorites:   nonNil(a.Favorites),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	_, err := s.articles.InsertOne(ctx, doc)

	return err
}

func (s *Store) ArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var doc articleDoc
	if err := s.articles.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}

	list, err := s.hydrate(ctx, []articleDoc{doc})
	if err != nil {
		return nil, err
	}

	return list[0], nil
}

func (s *Store) TitleTaken(ctx context.Context, title, slug, exceptSlug string) (bool, error) {
	n, err := s.articles.CountDocuments(ctx, bson.M{
		"$or":  bson.A{bson.M{"title": title}, bson.M{"slug": slug}},
		"slug": bson.M{"$ne": exceptSlug},
	})

	return n > 0, err
}

func (s *Store) UpdateArticle(ctx context.Context, slug string, ch model.ArticleChanges) (*model.Article, error) {
	set := bson.M{}
	if ch.Title != nil {
		set["title"] = *ch.Title
	}
	if ch.Slug != nil {
		set["slug"] = *ch.Slug
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.Body != nil {
		set["body"] = *ch.Body
	}
	if ch.TagList != nil {
		set["tagList"] = nonNil(*ch.TagList)
	}
	if !ch.UpdatedAt.IsZero() {
		set["updatedAt"] = ch.UpdatedAt
	}
	if len(set) == 0 {
		return s.ArticleBySlug(ctx, slug)
	}

	return s.modifyArticle(ctx, slug, bson.M{"$set": set})
}

func (s *Store) DeleteArticle(ctx context.Context, slug string) (*model.Article, error) {
	a, err := s.ArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if _, err := s.comments.DeleteMany(ctx, bson.M{"articleId": a.ID}); err != nil {
		return nil, err
	}
	res, err := s.articles.DeleteOne(ctx, bson.M{"_id": a.ID})
	if err != nil {
		return nil, err
	}
	if res.DeletedCount == 0 {
		return nil, store.ErrNotFound
	}

	return a, nil
}

func (s *Store) ListArticles(ctx context.Context, f model.ArticleFilter) ([]*model.Article, int64, error) {
	filter := bson.M{}
	if f.Tag != "" {
		filter["tagList"] = f.Tag
	}
	if f.AuthorIDs != nil {
		filter["authorId"] = bson.M{"$in": f.AuthorIDs}
	}
	if f.FavoritedBy != "" {
		filter["favorites"] = f.FavoritedBy
	}

	total, err := s.articles.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := s.articles.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	var docs []articleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	list, err := s.hydrate(ctx, docs)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (s *Store) AddFavorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	return s.modifyArticle(ctx, slug, bson.M{"$addToSet": bson.M{"favorites": userID}})
}

func (s *Store) RemoveFavorite(ctx context.Context, slug, userID string) (*model.Article, error) {
	return s.modifyArticle(ctx, slug, bson.M{"$pull": bson.M{"favorites": userID}})
}

func (s *Store) modifyArticle(ctx context.Context, slug string, update bson.M) (*model.Article, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc articleDoc
	if err := s.articles.FindOneAndUpdate(ctx, bson.M{"slug": slug}, update, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}

	list, err := s.hydrate(ctx, []articleDoc{doc})
	if err != nil {
		return nil, err
	}

	return list[0], nil
}

func (s *Store) TagLists(ctx context.Context) ([][]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"tagList": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cur, err := s.articles.Find(ctx, bson.M{"tagList.0": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		TagList []string `bson:"tagList"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.TagList)
	}

	return out, nil
}

func (s *Store) hydrate(ctx context.Context, docs []articleDoc) ([]*model.Article, error) {
	out := make([]*model.Article, 0, len(docs))
	if len(docs) == 0 {
		return out, nil
	}

	authorIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		authorIDs = append(authorIDs, d.AuthorID)
	}

	authors, err := s.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, d := range docs {
		out = append(out, &model.Article{
			ID:          d.ID,
			Slug:        d.Slug,
			Title:       d.Title,
			Description: d.Description,
			Body:        d.Body,
			AuthorID:    d.AuthorID,
			Author:      authors[d.AuthorID],
			TagList:     nonNil(d.TagList),
			Favorites:   nonNil(d.Favorites),
			CreatedAt:   d.CreatedAt.UTC(),
			UpdatedAt:   d.UpdatedAt.UTC(),
		})
	}

	return out, nil
}

var _ store.Articles = (*Store)(nil)
