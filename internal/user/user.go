// Package user implements registration, login and the current-user routes.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/password"
	"github.com/SergeyParamoshkin/realworld/internal/store"
	"github.com/SergeyParamoshkin/realworld/internal/token"
	"github.com/SergeyParamoshkin/realworld/internal/userpayload"
	"github.com/SergeyParamoshkin/realworld/internal/validate"
)

const (
	registeredPhrase = "already registered"
	takenPhrase      = "already taken"
)

const (
	msgRegisterFailed = "registration failed"
	msgLoginFailed    = "login failed"
	msgUpdateFailed   = "update failed"
)

var registerMessages = validate.Messages{
	"username.required": "username is required",
	"email.required":    "email is required",
	"email.email":       "email is malformed",
	"password.required": "password is required",
}

var loginMessages = validate.Messages{
	"email.required":    "email is required",
	"email.email":       "email is malformed",
	"password.required": "password is required",
}

var updateMessages = validate.Messages{
	"email.email": "email is malformed",
	"image.url":   "image must be a valid URL",
}

type Service struct {
	users store.Users
	codec *token.Codec
	now   func() time.Time
}

func NewService(users store.Users, codec *token.Codec, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{users: users, codec: codec, now: now}
}

func (s *Service) payload(u *model.User) (*userpayload.UserPayload, error) {
	tok, err := s.codec.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return userpayload.NewUserPayloadResponse(u, tok), nil
}

func (s *Service) Register(ctx context.Context, req *userpayload.RegisterRequest) (*userpayload.UserPayload, error) {
	if detail := validate.Struct(req, registerMessages); detail != nil {
		return nil, apperr.Validation(msgRegisterFailed, detail...)
	}

	claims := []claim{{"username", &req.Username}, {"email", &req.Email}}
	detail, err := s.taken(ctx, "", registeredPhrase, claims...)
	if err != nil {
		return nil, err
	}
	if detail != nil {
		return nil, apperr.Conflict(msgRegisterFailed, detail...)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &model.User{
		ID:           model.NewID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Image:        model.DefaultImage,
		Follows:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, s.lostRace(ctx, msgRegisterFailed, "", registeredPhrase, claims...)
		}

		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.payload(u)
}

func (s *Service) Login(ctx context.Context, req *userpayload.LoginRequest) (*userpayload.UserPayload, error) {
	if detail := validate.Struct(req, loginMessages); detail != nil {
		return nil, apperr.Validation(msgLoginFailed, detail...)
	}

	u, err := s.users.UserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Validation(msgLoginFailed, "email not registered")
	}
	if err != nil {
		return nil, err
	}

	if !password.Check(u.PasswordHash, req.Password) {
		return nil, apperr.Validation(msgLoginFailed, "password incorrect")
	}

	return s.payload(u)
}

// Current returns the viewer with the token the request was authenticated with.
func (s *Service) Current(ctx context.Context, userID, tok string) (*userpayload.UserPayload, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	return userpayload.NewUserPayloadResponse(u, tok), nil
}

// Update applies the fields of req that differ from the stored user and
// issues a fresh token.
func (s *Service) Update(ctx context.Context, userID string, req *userpayload.UpdateRequest) (*userpayload.UserPayload, error) {
	if detail := validate.Struct(req, updateMessages); detail != nil {
		return nil, apperr.Validation(msgUpdateFailed, detail...)
	}

	claims := []claim{{"email", req.Email}, {"username", req.Username}}
	detail, err := s.taken(ctx, userID, takenPhrase, claims...)
	if err != nil {
		return nil, err
	}
	if detail != nil {
		return nil, apperr.Conflict(msgUpdateFailed, detail...)
	}

	u, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	ch := model.UserChanges{
		Username: changed(req.Username, u.Username),
		Email:    changed(req.Email, u.Email),
		Bio:      changed(req.Bio, u.Bio),
		Image:    changed(req.Image, u.Image),
	}
	if req.Password != nil && !password.Check(u.PasswordHash, *req.Password) {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		ch.PasswordHash = &hash
	}
	if ch.Empty() {
		return nil, apperr.Validation(msgUpdateFailed, "nothing to update")
	}
	ch.UpdatedAt = s.now().UTC()

	u, err = s.users.UpdateUser(ctx, userID, ch)
	if errors.Is(err, store.ErrConflict) {
		return nil, s.lostRace(ctx, msgUpdateFailed, userID, takenPhrase, claims...)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return s.payload(u)
}

// claim is a unique user field a request wants to hold. A nil value is
// not checked.
type claim struct {
	field string
	value *string
}

// taken lists, in order, the claims already held by a user other than exceptID.
func (s *Service) taken(ctx context.Context, exceptID, phrase string, claims ...claim) ([]string, error) {
	var detail []string
	for _, c := range claims {
		if c.value == nil {
			continue
		}

		check := s.users.UsernameTaken
		if c.field == "email" {
			check = s.users.EmailTaken
		}
		taken, err := check(ctx, *c.value, exceptID)
		if err != nil {
			return nil, err
		}
		if taken {
			detail = append(detail, c.field+" "+phrase)
		}
	}

	return detail, nil
}

// lostRace builds the conflict error for a write the unique index rejected
// after the taken checks had passed.
func (s *Service) lostRace(ctx context.Context, message, exceptID, phrase string, claims ...claim) error {
	detail, err := s.taken(ctx, exceptID, phrase, claims...)
	if err != nil {
		return err
	}
	if detail == nil {
		detail = []string{"username or email " + phrase}
	}

	return apperr.Conflict(message, detail...)
}

func (s *Service) lookup(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}

	return u, err
}

// changed returns v unless it is absent or equal to current.
func changed(v *string, current string) *string {
	if v == nil || *v == current {
		return nil
	}

	return v
}
