// Package ratelimit throttles requests per client address with token buckets.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
)

// DefaultExpiresIn is how long an idle visitor keeps its bucket.
const DefaultExpiresIn = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store holds one limiter per identifier.
type Store struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      rate.Limit
	burst     int
	expiresIn time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewStore(r float64, burst int) *Store {
	if burst < 1 {
		burst = 1
	}

	return &Store{
		visitors:  make(map[string]*visitor),
		rate:      rate.Limit(r),
		burst:     burst,
		expiresIn: DefaultExpiresIn,
		now:       time.Now,
	}
}

// Allow takes a token from the bucket of identifier.
func (s *Store) Allow(identifier string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	v, ok := s.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.visitors[identifier] = v
	}
	v.lastSeen = now

	if now.Sub(s.lastSweep) > s.expiresIn {
		s.sweep(now)
	}

	return v.limiter.AllowN(now, 1)
}

func (s *Store) sweep(now time.Time) {
	for id, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.expiresIn {
			delete(s.visitors, id)
		}
	}
	s.lastSweep = now
}

// Middleware answers 429 once a client runs out of tokens.
// A non-positive rate disables limiting.
func Middleware(r float64, burst int) func(next http.Handler) http.Handler {
	if r <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	s := NewStore(r, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !s.Allow(identify(req)) {
				_ = render.Render(w, req, errresponse.ErrTooManyRequests)

				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func identify(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
