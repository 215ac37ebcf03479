//go:build !integration

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallDecodesEnvelopes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"statusCode":200,"message":"success","data":["go","web"]}`))
		case "/api/user":
			assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"statusCode":401,"message":"token authentication","detail":["invalid token"]}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()

	c := &Client{Addr: srv.URL}
	ctx := context.Background()

	tags, err := c.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)

	_, err = c.WithToken("abc").CurrentUser(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, []string{"invalid token"}, apiErr.Detail)
	assert.Empty(t, c.Token, "WithToken leaves the original untouched")

	_, err = c.Profile(ctx, "alice")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, []string{"upstream down"}, apiErr.Detail)
}

func TestListOptionsQuery(t *testing.T) {
	assert.Empty(t, ListOptions{}.query().Encode())
	assert.Equal(t, "author=alice&limit=2&tag=x",
		ListOptions{Tag: "x", Author: "alice", Limit: 2}.query().Encode())
}
