// Package auth is the gate in front of every route: it reads the
// "Authorization: Token <token>" header and resolves the viewer identity.
// It only decodes the credential and never looks the user up.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/errresponse"
	"github.com/SergeyParamoshkin/realworld/internal/logging"
	"github.com/SergeyParamoshkin/realworld/internal/token"
)

type Mode int8

const (
	// ModeNone skips token inspection entirely.
	ModeNone Mode = iota
	// ModeOptional resolves the viewer when it can and continues anonymous otherwise.
	ModeOptional
	// ModeRequired rejects the request with 401 unless the token verifies.
	ModeRequired
)

const scheme = "Token "

const (
	detailNoToken      = "no token"
	detailInvalidToken = "invalid token"
)

type ctxKey int8

const ctxKeyIdentity ctxKey = iota

// Identity is the resolved viewer of a request.
type Identity struct {
	UserID string
	Token  string
}

type Gate struct {
	codec *token.Codec
}

func NewGate(codec *token.Codec) *Gate {
	return &Gate{codec: codec}
}

// Authenticate classifies an Authorization header value.
func (g *Gate) Authenticate(header string) (Identity, error) {
	raw, ok := strings.CutPrefix(header, scheme)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return Identity{}, apperr.Unauthenticated(detailNoToken)
	}

	if !g.codec.WellFormed(raw) {
		return Identity{}, apperr.Unauthenticated(detailInvalidToken)
	}

	userID, err := g.codec.Parse(raw)
	if err != nil {
		return Identity{}, apperr.Unauthenticated(detailInvalidToken)
	}

	return Identity{UserID: userID, Token: raw}, nil
}

// Middleware returns the gate for mode.
func (g *Gate) Middleware(mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mode == ModeNone {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				if mode == ModeRequired {
					errresponse.Fail(w, r, err)

					return
				}
				logging.FromContext(r.Context()).Debugw("continuing anonymous", "reason", err.Error())
				next.ServeHTTP(w, r)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func (g *Gate) Required(next http.Handler) http.Handler {
	return g.Middleware(ModeRequired)(next)
}

func (g *Gate) Optional(next http.Handler) http.Handler {
	return g.Middleware(ModeOptional)(next)
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)

	return id, ok
}

// ViewerID returns the resolved user id, or "" for an anonymous request.
func ViewerID(ctx context.Context) string {
	id, _ := FromContext(ctx)

	return id.UserID
}
