// Package server assembles the HTTP router: the shared middleware stack, the
// diagnostic routes and every resource api under /api.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/realworld/internal/article"
	"github.com/SergeyParamoshkin/realworld/internal/auth"
	"github.com/SergeyParamoshkin/realworld/internal/cache"
	"github.com/SergeyParamoshkin/realworld/internal/comment"
	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/logging"
	"github.com/SergeyParamoshkin/realworld/internal/metrics"
	"github.com/SergeyParamoshkin/realworld/internal/profile"
	"github.com/SergeyParamoshkin/realworld/internal/ratelimit"
	"github.com/SergeyParamoshkin/realworld/internal/store"
	"github.com/SergeyParamoshkin/realworld/internal/tag"
	"github.com/SergeyParamoshkin/realworld/internal/token"
	"github.com/SergeyParamoshkin/realworld/internal/user"
)

// APIPrefix is where every resource route lives.
const APIPrefix = "/api"

type APIs struct {
	Users    *user.API
	Profiles *profile.API
	Articles *article.API
	Comments *comment.API
	Tags     *tag.API
}

// Deps are the shared collaborators every service is built on.
type Deps struct {
	Store store.Store
	Codec *token.Codec
	// Tags is optional; nil disables tag caching.
	Tags cache.Tags
	Now  func() time.Time
}

// NewAPIs builds every service and its api over d.
func NewAPIs(d Deps) APIs {
	gate := auth.NewGate(d.Codec)

	return APIs{
		Users:    user.NewAPI(user.NewService(d.Store, d.Codec, d.Now), gate),
		Profiles: profile.NewAPI(profile.NewService(d.Store), gate),
		Articles: article.NewAPI(article.NewService(d.Store, d.Tags, d.Now), gate),
		Comments: comment.NewAPI(comment.NewService(d.Store, d.Now), gate),
		Tags:     tag.NewAPI(tag.NewService(d.Store, d.Tags)),
	}
}

type Options struct {
	Logger *zap.SugaredLogger
	// Metrics is optional.
	Metrics   *metrics.Metrics
	RateLimit float64
	RateBurst int
}

// New returns the application router.
func New(opts Options, apis APIs) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(logging.AccessLog)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("root.")); err != nil {
			logging.FromContext(r.Context()).Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Debugw("ping")
		if _, err := w.Write([]byte("pong")); err != nil {
			logging.FromContext(r.Context()).Errorw(err.Error())
		}
	})

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(ratelimit.Middleware(opts.RateLimit, opts.RateBurst))
		// Set before mounting so every sub-router inherits them.
		r.NotFound(notFound)
		r.MethodNotAllowed(methodNotAllowed)

		r.Mount("/users", apis.Users.UsersRouter())
		r.Mount("/user", apis.Users.UserRouter())
		r.Mount("/profiles", apis.Profiles.Router())

		// RESTy routes for "articles" resource
		r.Route("/articles", func(r chi.Router) {
			apis.Articles.Routes(r)
			apis.Comments.Routes(r)
		})

		r.Mount("/tags", apis.Tags.Router())
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, errresponse.ErrNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, errresponse.ErrMethodNotAllowed)
}

// Recoverer turns a panic into the generic 500 envelope and logs it.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if e, ok := rvr.(error); ok && errors.Is(e, http.ErrAbortHandler) {
				panic(rvr)
			}

			err := fmt.Errorf("panic: %v", rvr)
			logging.FromContext(r.Context()).Errorw("recovered", "error", err, "stack", string(debug.Stack()))
			_ = render.Render(w, r, errresponse.ErrUnknown(err))
		}()

		next.ServeHTTP(w, r)
	})
}
