// Package tag serves the set of tags used across all articles.
package tag

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/realworld/internal/cache"
	"github.com/SergeyParamoshkin/realworld/internal/dataresponse"
	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/logging"
)

// Store lists the tag list of every article.
type Store interface {
	TagLists(ctx context.Context) ([][]string, error)
}

type Service struct {
	store Store
	cache cache.Tags
}

func NewService(s Store, c cache.Tags) *Service {
	if c == nil {
		c = cache.Nop{}
	}

	return &Service{store: s, cache: c}
}

// List returns every tag once, in order of first use. A cache failure falls
// back to the store.
func (s *Service) List(ctx context.Context) ([]string, error) {
	log := logging.FromContext(ctx)

	tags, gen, ok, err := s.cache.Get(ctx)
	if err != nil {
		log.Warnw("tag cache read failed", "error", err)
	}
	if ok {
		return tags, nil
	}

	lists, err := s.store.TagLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tags = Flatten(lists)
	if err := s.cache.Set(ctx, gen, tags); err != nil {
		log.Warnw("tag cache write failed", "error", err)
	}

	return tags, nil
}

// Flatten merges lists into one list without duplicates, keeping the first
// occurrence of each tag.
func Flatten(lists [][]string) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, list := range lists {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	return out
}

type API struct {
	service *Service
}

func NewAPI(service *Service) *API {
	return &API{service: service}
}

// Router serves /tags. The route needs no token.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", a.ListTags)

	return r
}

func (a *API) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := a.service.List(r.Context())
	if err != nil {
		errresponse.Fail(w, r, err)

		return
	}

	dataresponse.Write(w, r, dataresponse.OK(tags))
}
