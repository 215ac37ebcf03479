package article

import (
	"context"
	"net/http"

	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/pathparam"
)

type ctxKey int8

const ctxKeyArticle ctxKey = iota

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. In case
// the Article could not be found, we stop here and return a 404.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		article, err := a.service.Load(r.Context(), pathparam.Get(r, "slug"))
		if err != nil {
			errresponse.Fail(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyArticle, article)))
	})
}

// FromContext returns the article loaded by ArticleCtx.
func FromContext(ctx context.Context) *model.Article {
	article, _ := ctx.Value(ctxKeyArticle).(*model.Article)

	return article
}
