//
// RealWorld
// =========
// A blogging platform API: users, profiles, articles, comments, favorites
// and tags, served as JSON under /api.
//
// Print the route docs generated from the router with the -routes flag:
// `go run . -routes`
//
// Boot the server:
// ----------------
// $ REALWORLD_JWT_SECRET=change-me go run .
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/ping
// pong
//
// $ curl -X POST -d '{"username":"alice","email":"alice@x.com","password":"pw123"}' http://localhost:3333/api/users
// {"statusCode":201,"message":"registration successful","data":{"username":"alice",...,"token":"..."}}
//
// $ curl -H "Authorization: Token $TOKEN" -X POST -d '{"title":"Hello World","description":"d","body":"b"}' http://localhost:3333/api/articles
// {"statusCode":201,"message":"article created","data":{"slug":"Hello-World",...}}
//
// $ curl http://localhost:3333/api/articles?tag=go&limit=2
// {"statusCode":200,"message":"articles fetched","data":{"articles":[...],"articlesCount":3}}
//
// Metrics are scraped from the diag listener:
// $ curl http://localhost:9999/metrics
//
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/docgen"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/realworld/internal/cache"
	"github.com/SergeyParamoshkin/realworld/internal/config"
	"github.com/SergeyParamoshkin/realworld/internal/logging"
	"github.com/SergeyParamoshkin/realworld/internal/metrics"
	"github.com/SergeyParamoshkin/realworld/internal/server"
	"github.com/SergeyParamoshkin/realworld/internal/store"
	"github.com/SergeyParamoshkin/realworld/internal/store/mongostore"
	"github.com/SergeyParamoshkin/realworld/internal/store/sqlstore"
	"github.com/SergeyParamoshkin/realworld/internal/token"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	sugarLogger *zap.SugaredLogger
	config      *config.Config
}

func main() {
	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() // flushes buffer, if any

	a := App{
		sugarLogger: logger.Sugar(),
		config:      cfg,
	}

	if err := a.run(); err != nil {
		a.sugarLogger.Errorw("exiting", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func (a *App) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Passing -routes to the program prints the docs for the router
	// definition without touching any backend.
	if a.config.Routes {
		codec, err := token.NewCodec(a.config.JWTSecret, a.config.TokenTTL)
		if err != nil {
			return err
		}
		r := server.New(server.Options{}, server.NewAPIs(server.Deps{Codec: codec}))
		// nolint
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/realworld",
			Intro:       "Routes of the realworld api.",
		}))

		return nil
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			a.sugarLogger.Errorw("closing store", "error", err)
		}
	}()

	tags, err := a.openTagCache(ctx)
	if err != nil {
		return err
	}

	codec, err := token.NewCodec(a.config.JWTSecret, a.config.TokenTTL)
	if err != nil {
		return err
	}

	m, err := metrics.New(config.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	r := server.New(server.Options{
		Logger:    a.sugarLogger,
		Metrics:   m,
		RateLimit: a.config.RateLimit,
		RateBurst: a.config.RateBurst,
	}, server.NewAPIs(server.Deps{
		Store: st,
		Codec: codec,
		Tags:  tags,
		Now:   time.Now,
	}))

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", m.Handler().ServeHTTP)

	return a.serve(ctx, map[string]http.Handler{
		a.config.Addr:     r,
		a.config.DiagAddr: diagRouter,
	})
}

func (a *App) openStore(ctx context.Context) (store.Store, error) {
	switch a.config.Store {
	case config.StoreMongo:
		a.sugarLogger.Infow("using mongodb store", "database", a.config.MongoDB)

		return mongostore.Open(ctx, a.config.MongoURI, a.config.MongoDB)
	default:
		a.sugarLogger.Infow("using sqlite store", "path", a.config.SQLitePath)

		return sqlstore.OpenFile(a.config.SQLitePath, a.config.Debug)
	}
}

// openTagCache falls back to an in-process cache for the sqlite store,
// which only one process serves, and to none for mongodb.
func (a *App) openTagCache(ctx context.Context) (cache.Tags, error) {
	if a.config.RedisAddr == "" {
		if a.config.Store == config.StoreMongo {
			return nil, nil
		}

		return &cache.Memory{}, nil
	}

	rdb, err := cache.Dial(ctx, a.config.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("redis %s: %w", a.config.RedisAddr, err)
	}
	a.sugarLogger.Infow("caching tags in redis", "addr", a.config.RedisAddr)

	return cache.NewRedis(rdb), nil
}

// serve runs one server per address until ctx is done or any of them fails,
// then shuts all of them down.
func (a *App) serve(ctx context.Context, handlers map[string]http.Handler) error {
	errs := make(chan error, len(handlers))
	servers := make([]*http.Server, 0, len(handlers))

	for addr, h := range handlers {
		srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
		servers = append(servers, srv)

		go func() {
			a.sugarLogger.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- fmt.Errorf("%s: %w", srv.Addr, err)
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		a.sugarLogger.Infow("shutting down")
	case err = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			a.sugarLogger.Errorw(serr.Error())
		}
	}

	return err
}
