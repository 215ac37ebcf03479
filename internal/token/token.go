// Package token issues and verifies the bearer credentials handed to users.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SergeyParamoshkin/realworld/internal/model"
)

const DefaultTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Codec signs and parses HS256 tokens carrying a user id.
type Codec struct {
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
	encodedLen int
}

type Option func(*Codec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret string, ttl time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	// Every id has the same length, so every token encodes to the same
	// length as this probe.
	probe, err := c.Issue(strings.Repeat("0", model.IDLength))
	if err != nil {
		return nil, err
	}
	c.encodedLen = len(probe)

	return c, nil
}

// Issue returns a signed token for userID, valid for the codec's TTL.
func (c *Codec) Issue(userID string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the signature and expiry of raw and returns its user id.
func (c *Codec) Parse(raw string) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// WellFormed is a structural pre-filter: it only checks that raw has the
// encoded length every token from this codec has.
func (c *Codec) WellFormed(raw string) bool {
	return len(raw) == c.encodedLen
}
