package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	doc := userDoc{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Bio:          u.Bio,
		Image:        u.Image,
		Follows:      nonNil(u.Follows),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	_, err := s.users.InsertOne(ctx, doc)

	return conflict(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}

	return doc.model(), nil
}

func (s *Store) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	return s.taken(ctx, "username", username, exceptID)
}

func (s *Store) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	return s.taken(ctx, "email", email, exceptID)
}

func (s *Store) taken(ctx context.Context, field, value, exceptID string) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{
		field: value,
		"_id": bson.M{"$ne": exceptID},
	})

	return n > 0, err
}

func (s *Store) UpdateUser(ctx context.Context, id string, ch model.UserChanges) (*model.User, error) {
	set := bson.M{}
	if ch.Username != nil {
		set["username"] = *ch.Username
	}
	if ch.Email != nil {
		set["email"] = *ch.Email
	}
	if ch.PasswordHash != nil {
		set["passwordHash"] = *ch.PasswordHash
	}
	if ch.Bio != nil {
		set["bio"] = *ch.Bio
	}
	if ch.Image != nil {
		set["image"] = *ch.Image
	}
	if !ch.UpdatedAt.IsZero() {
		set["updatedAt"] = ch.UpdatedAt
	}
	if len(set) == 0 {
		return s.UserByID(ctx, id)
	}

	return s.modifyUser(ctx, id, bson.M{"$set": set})
}

func (s *Store) AddFollower(ctx context.Context, userID, followerID string) (*model.User, error) {
	return s.modifyUser(ctx, userID, bson.M{"$addToSet": bson.M{"follows": followerID}})
}

func (s *Store) RemoveFollower(ctx context.Context, userID, followerID string) (*model.User, error) {
	return s.modifyUser(ctx, userID, bson.M{"$pull": bson.M{"follows": followerID}})
}

func (s *Store) modifyUser(ctx context.Context, id string, update bson.M) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	if err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, conflict(notFound(err))
	}

	return doc.model(), nil
}

func (s *Store) FollowedBy(ctx context.Context, followerID string) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cur, err := s.users.Find(ctx, bson.M{"follows": followerID}, opts)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}

	return ids, nil
}

// usersByID loads users keyed by id.
func (s *Store) usersByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID] = d.model()
	}

	return out, nil
}

var _ store.Users = (*Store)(nil)
