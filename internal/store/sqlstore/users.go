package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	row := userRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Bio:          u.Bio,
		Image:        u.Image,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}

	return conflict(s.db.WithContext(ctx).Create(&row).Error)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userWhere(ctx, "id = ?", id)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.userWhere(ctx, "username = ?", username)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userWhere(ctx, "email = ?", email)
}

func (s *Store) userWhere(ctx context.Context, query string, arg string) (*model.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		return nil, notFound(err)
	}

	followers, err := s.followersOf(ctx, []string{row.ID})
	if err != nil {
		return nil, err
	}

	return toUser(row, followers[row.ID]), nil
}

func (s *Store) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	return s.taken(ctx, "username = ?", username, exceptID)
}

func (s *Store) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	return s.taken(ctx, "email = ?", email, exceptID)
}

func (s *Store) taken(ctx context.Context, query, value, exceptID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&userRow{}).
		Where(query, value).
		Where("id <> ?", exceptID).
		Count(&n).Error

	return n > 0, err
}

func (s *Store) UpdateUser(ctx context.Context, id string, ch model.UserChanges) (*model.User, error) {
	values := map[string]interface{}{}
	if ch.Username != nil {
		values["username"] = *ch.Username
	}
	if ch.Email != nil {
		values["email"] = *ch.Email
	}
	if ch.PasswordHash != nil {
		values["password_hash"] = *ch.PasswordHash
	}
	if ch.Bio != nil {
		values["bio"] = *ch.Bio
	}
	if ch.Image != nil {
		values["image"] = *ch.Image
	}
	if !ch.UpdatedAt.IsZero() {
		values["updated_at"] = ch.UpdatedAt
	}

	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, conflict(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}

	return s.UserByID(ctx, id)
}

func (s *Store) AddFollower(ctx context.Context, userID, followerID string) (*model.User, error) {
	if _, err := s.UserByID(ctx, userID); err != nil {
		return nil, err
	}

	row := followRow{UserID: userID, FollowerID: followerID, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}

	return s.UserByID(ctx, userID)
}

func (s *Store) RemoveFollower(ctx context.Context, userID, followerID string) (*model.User, error) {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND follower_id = ?", userID, followerID).
		Delete(&followRow{}).Error
	if err != nil {
		return nil, err
	}

	return s.UserByID(ctx, userID)
}

func (s *Store) FollowedBy(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&followRow{}).
		Where("follower_id = ?", followerID).
		Order("created_at").
		Pluck("user_id", &ids).Error

	return ids, err
}

// followersOf maps each user id to its follows set.
func (s *Store) followersOf(ctx context.Context, userIDs []string) (map[string][]string, error) {
	var rows []followRow
	err := s.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(userIDs))
	for _, r := range rows {
		out[r.UserID] = append(out[r.UserID], r.FollowerID)
	}

	return out, nil
}

// usersByID loads users with their follows sets, keyed by id.
func (s *Store) usersByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []userRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	followers, err := s.followersOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.ID] = toUser(r, followers[r.ID])
	}

	return out, nil
}

func toUser(r userRow, follows []string) *model.User {
	if follows == nil {
		follows = []string{}
	}

	return &model.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Bio:          r.Bio,
		Image:        r.Image,
		Follows:      follows,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
