// Package profile serves public profiles and the follow relationship.
package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/auth"
	"github.com/SergeyParamoshkin/realworld/internal/dataresponse"
	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/pathparam"
	"github.com/SergeyParamoshkin/realworld/internal/projection"
	"github.com/SergeyParamoshkin/realworld/internal/store"
)

type Service struct {
	users store.Users
}

func NewService(users store.Users) *Service {
	return &Service{users: users}
}

func (s *Service) target(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user does not exist")
	}

	return u, err
}

func (s *Service) Get(ctx context.Context, username, viewerID string) (projection.Profile, error) {
	u, err := s.target(ctx, username)
	if err != nil {
		return projection.Profile{}, err
	}

	return projection.ProjectProfile(u, viewerID), nil
}

// Follow adds viewerID to the follows set of username. Following twice or
// following yourself is rejected.
func (s *Service) Follow(ctx context.Context, username, viewerID string) (projection.Profile, error) {
	u, err := s.target(ctx, username)
	if err != nil {
		return projection.Profile{}, err
	}

	if u.ID == viewerID {
		return projection.Profile{}, apperr.Validation("error", "you cannot follow yourself")
	}
	if projection.ProjectProfile(u, viewerID).Following {
		return projection.Profile{}, apperr.Validation("error", "already following this user")
	}

	u, err = s.users.AddFollower(ctx, u.ID, viewerID)
	if err != nil {
		return projection.Profile{}, err
	}

	return projection.ProjectProfile(u, viewerID), nil
}

func (s *Service) Unfollow(ctx context.Context, username, viewerID string) (projection.Profile, error) {
	u, err := s.target(ctx, username)
	if err != nil {
		return projection.Profile{}, err
	}

	u, err = s.users.RemoveFollower(ctx, u.ID, viewerID)
	if err != nil {
		return projection.Profile{}, err
	}

	return projection.ProjectProfile(u, viewerID), nil
}

type API struct {
	service *Service
	gate    *auth.Gate
}

func NewAPI(service *Service, gate *auth.Gate) *API {
	return &API{service: service, gate: gate}
}

// Router serves /profiles.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/{username}", func(r chi.Router) {
		r.With(a.gate.Optional).Get("/", a.Get)
		r.With(a.gate.Required).Post("/follow", a.Follow)
		r.With(a.gate.Required).Delete("/follow", a.Unfollow)
	})

	return r
}

type action func(ctx context.Context, username, viewerID string) (projection.Profile, error)

func (a *API) serve(w http.ResponseWriter, r *http.Request, do action) {
	p, err := do(r.Context(), pathparam.Get(r, "username"), auth.ViewerID(r.Context()))
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.OK(p))
}

func (a *API) Get(w http.ResponseWriter, r *http.Request)      { a.serve(w, r, a.service.Get) }
func (a *API) Follow(w http.ResponseWriter, r *http.Request)   { a.serve(w, r, a.service.Follow) }
func (a *API) Unfollow(w http.ResponseWriter, r *http.Request) { a.serve(w, r, a.service.Unfollow) }
