package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/realworld/internal/auth"
	"github.com/SergeyParamoshkin/realworld/internal/dataresponse"
	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/userpayload"
)

type API struct {
	service *Service
	gate    *auth.Gate
}

func NewAPI(service *Service, gate *auth.Gate) *API {
	return &API{service: service, gate: gate}
}

// UsersRouter serves /users.
func (a *API) UsersRouter() http.Handler {
	r := chi.NewRouter()
	r.Post("/", a.Register)
	r.Post("/login", a.Login)

	return r
}

// UserRouter serves /user, the authenticated user's own account.
func (a *API) UserRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(a.gate.Required)
	r.Get("/", a.Current)
	r.Put("/", a.Update)

	return r
}

// Register creates an account and returns it with a token.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.RegisterRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.BadRequest(w, r, err)

		return
	}

	u, err := a.service.Register(r.Context(), data)
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.Created("registration successful", u))
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.LoginRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.BadRequest(w, r, err)

		return
	}

	u, err := a.service.Login(r.Context(), data)
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.New(http.StatusOK, "login successful", u))
}

func (a *API) Current(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())

	u, err := a.service.Current(r.Context(), id.UserID, id.Token)
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.OK(u))
}

func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.UpdateRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.BadRequest(w, r, err)

		return
	}

	u, err := a.service.Update(r.Context(), auth.ViewerID(r.Context()), data)
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.OK(u))
}
