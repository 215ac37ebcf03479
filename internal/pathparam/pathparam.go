// Package pathparam reads decoded chi route parameters.
package pathparam

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// Get returns the route parameter key with percent-escapes decoded. chi
// matches on the raw path when it holds an escaped "/", so a slug like
// "AC/DC-Live" arrives as "AC%2FDC-Live". A malformed escape is returned as is.
func Get(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)

	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}

	return v
}
