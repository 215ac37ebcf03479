package article

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/realworld/internal/articlerequest"
	"github.com/SergeyParamoshkin/realworld/internal/auth"
	"github.com/SergeyParamoshkin/realworld/internal/dataresponse"
	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/pathparam"
	"github.com/SergeyParamoshkin/realworld/internal/projection"
)

type API struct {
	service *Service
	gate    *auth.Gate
}

func NewAPI(service *Service, gate *auth.Gate) *API {
	return &API{service: service, gate: gate}
}

// Routes registers the article routes on r, which is mounted at /articles.
func (a *API) Routes(r chi.Router) {
	r.With(a.gate.Optional).Get("/", a.ListArticles)
	r.With(a.gate.Required).Get("/feed", a.Feed)
	r.With(a.gate.Required).Post("/", a.CreateArticle)

	r.Route("/{slug}", func(r chi.Router) {
		r.With(a.gate.Optional, a.ArticleCtx).Get("/", a.GetArticle)
		r.With(a.gate.Required, a.ArticleCtx).Put("/", a.UpdateArticle)
		r.With(a.gate.Required, a.ArticleCtx).Delete("/", a.DeleteArticle)

		r.With(a.gate.Required).Post("/favorite", a.Favorite)
		r.With(a.gate.Required).Delete("/favorite", a.Unfavorite)
	})
}

// ListArticles returns one page of articles filtered by tag, author or
// favoriting user.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	q, err := articlerequest.ParseListQuery(r.URL.Query())
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	list, err := a.service.List(r.Context(), q, auth.ViewerID(r.Context()))
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.New(http.StatusOK, "articles fetched", list))
}

// Feed returns the articles of the authors the viewer follows.
func (a *API) Feed(w http.ResponseWriter, r *http.Request) {
	page, err := articlerequest.ParsePage(r.URL.Query())
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	list, err := a.service.Feed(r.Context(), page, auth.ViewerID(r.Context()))
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.OK(list))
}

// CreateArticle persists the posted Article and returns it
// back to the client as an acknowledgement.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.ArticleRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.BadRequest(w, r, err)

		return
	}

	article, err := a.service.Create(r.Context(), auth.ViewerID(r.Context()), data)
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.Created("article created", article))
}

// GetArticle returns the Article loaded by ArticleCtx.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	article := FromContext(r.Context())

	dataresponse.Write(w, r, dataresponse.New(http.StatusOK, "article fetched",
		projection.ProjectArticle(article, auth.ViewerID(r.Context()))))
}

// UpdateArticle updates an existing Article in our persistent store.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	data := &articlerequest.UpdateRequest{}
	if err := render.Bind(r, data); err != nil {
		errresponse.BadRequest(w, r, err)

		return
	}

	article, err := a.service.Update(r.Context(), FromContext(r.Context()), auth.ViewerID(r.Context()), data)
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.Created("article updated", article))
}

// DeleteArticle removes an existing Article from our persistent store.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	article, err := a.service.Delete(r.Context(), FromContext(r.Context()), auth.ViewerID(r.Context()))
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.Created("article deleted", article))
}

func (a *API) Favorite(w http.ResponseWriter, r *http.Request) {
	a.favorite(w, r, a.service.Favorite)
}

func (a *API) Unfavorite(w http.ResponseWriter, r *http.Request) {
	a.favorite(w, r, a.service.Unfavorite)
}

func (a *API) favorite(w http.ResponseWriter, r *http.Request, do func(ctx context.Context, slug, viewerID string) (projection.Article, error)) {
	article, err := do(r.Context(), pathparam.Get(r, "slug"), auth.ViewerID(r.Context()))
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.Created("success", article))
}
