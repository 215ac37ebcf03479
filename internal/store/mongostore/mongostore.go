// Package mongostore implements store.Store on MongoDB. Relationship sets
// are embedded string arrays maintained with $addToSet and $pull.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

const (
	usersCollection    = "users"
	articlesCollection = "articles"
	commentsCollection = "comments"

	connectTimeout = 10 * time.Second
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Bio          string    `bson:"bio"`
	Image        string    `bson:"image"`
	Follows      []string  `bson:"follows"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type articleDoc struct {
	ID          string    `bson:"_id"`
	Slug        string    `bson:"slug"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Body        string    `bson:"body"`
	AuthorID    string    `bson:"authorId"`
	TagList     []string  `bson:"tagList"`
	Favorites   []string  `bson:"favorites"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	Body      string    `bson:"body"`
	ArticleID string    `bson:"articleId"`
	AuthorID  string    `bson:"authorId"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	articles *mongo.Collection
	comments *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to uri, selects database and ensures the indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		users:    db.Collection(usersCollection),
		articles: db.Collection(articlesCollection),
		comments: db.Collection(commentsCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "follows", Value: 1}}},
		},
		s.articles: {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "tagList", Value: 1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
		},
		s.comments: {
			{Keys: bson.D{{Key: "articleId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	return s.client.Disconnect(ctx)
}

// Drop removes every collection. Used by tests to start clean.
func (s *Store) Drop(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.users, s.articles, s.comments} {
		if err := c.Drop(ctx); err != nil {
			return err
		}
	}

	return s.ensureIndexes(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}

	return err
}

func conflict(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrConflict
	}

	return err
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}

	return list
}

func (d userDoc) model() *model.User {
	return &model.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Bio:          d.Bio,
		Image:        d.Image,
		Follows:      nonNil(d.Follows),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
