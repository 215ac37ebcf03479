package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/realworld/internal/auth"
	"github.com/SergeyParamoshkin/realworld/internal/dataresponse"
	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/pathparam"
)

type API struct {
	service *Service
	gate    *auth.Gate
}

func NewAPI(service *Service, gate *auth.Gate) *API {
	return &API{service: service, gate: gate}
}

// Routes registers the comment routes on the /articles router.
func (a *API) Routes(r chi.Router) {
	r.Route("/{slug}/comments", func(r chi.Router) {
		r.With(a.gate.Optional).Get("/", a.ListComments)
		r.With(a.gate.Required).Post("/", a.CreateComment)
		r.With(a.gate.Required).Delete("/{id}", a.DeleteComment)
	})
}

func (a *API) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := a.service.List(r.Context(), pathparam.Get(r, "slug"), auth.ViewerID(r.Context()))
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.New(http.StatusOK, "comments fetched", comments))
}

func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	data := &Request{}
	if err := render.Bind(r, data); err != nil {
		errresponse.BadRequest(w, r, err)

		return
	}

	c, err := a.service.Create(r.Context(), pathparam.Get(r, "slug"), auth.ViewerID(r.Context()), data)
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.Created("comment created", c))
}

func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := a.service.Delete(r.Context(), pathparam.Get(r, "slug"), pathparam.Get(r, "id"), auth.ViewerID(r.Context()))
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.New(http.StatusOK, "comment deleted", Deleted))
}
