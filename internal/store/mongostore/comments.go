package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	_, err := s.comments.InsertOne(ctx, commentDoc{
		ID:        c.ID,
		Body:      c.Body,
		ArticleID: c.ArticleID,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})

	return err
}

func (s *Store) CommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var doc commentDoc
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}

	list, err := s.hydrateComments(ctx, []commentDoc{doc})
	if err != nil {
		return nil, err
	}

	return list[0], nil
}

func (s *Store) CommentsByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := s.comments.Find(ctx, bson.M{"articleId": articleID}, opts)
	if err != nil {
		return nil, err
	}

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	return s.hydrateComments(ctx, docs)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *Store) hydrateComments(ctx context.Context, docs []commentDoc) ([]*model.Comment, error) {
	out := make([]*model.Comment, 0, len(docs))
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
		out = append(out, &model.Comment{
			ID:        d.ID,
			Body:      d.Body,
			ArticleID: d.ArticleID,
			AuthorID:  d.AuthorID,
			Author:    authors[d.AuthorID],
			CreatedAt: d.CreatedAt.UTC(),
			UpdatedAt: d.UpdatedAt.UTC(),
		})
	}

	return out, nil
}

var _ store.Comments = (*Store)(nil)
