package userpayload

import (
	"net/http"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/validate"
)

//--
// Request and Response payloads for the users api.
//
// Request payloads implement render.Binder: Bind runs after the JSON body is
// decoded and normalizes it, trimming every string and treating fields left
// empty as absent.
//--

// UserPayload is the authenticated user as returned by register, login and
// the current-user routes.
type UserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
	Token    string `json:"token"`
}

func NewUserPayloadResponse(u *model.User, token string) *UserPayload {
	return &UserPayload{
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Image:    u.Image,
		Token:    token,
	}
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (p *RegisterRequest) Bind(r *http.Request) error {
	validate.TrimAll(&p.Username, &p.Email, &p.Password)

	return nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (p *LoginRequest) Bind(r *http.Request) error {
	validate.TrimAll(&p.Email, &p.Password)

	return nil
}

// UpdateRequest holds the fields a user may change; nil leaves a field as is.
type UpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image" validate:"omitempty,url"`
}

func (p *UpdateRequest) Bind(r *http.Request) error {
	p.Username = validate.Optional(p.Username)
	p.Email = validate.Optional(p.Email)
	p.Password = validate.Optional(p.Password)
	p.Bio = validate.Optional(p.Bio)
	p.Image = validate.Optional(p.Image)

	return nil
}
