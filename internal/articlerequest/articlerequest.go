// Package articlerequest holds the request payloads of the articles api.
package articlerequest

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
	"github.com/SergeyParamoshkin/realworld/internal/validate"
)

const (
	DefaultOffset = 0
	DefaultLimit  = 10
)

// ArticleRequest is the body of a create. Bind trims every field and the
// tags, dropping tags that end up empty.
type ArticleRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Body        string   `json:"body" validate:"required"`
	TagList     []string `json:"tagList"`
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	validate.TrimAll(&a.Title, &a.Description, &a.Body)
	a.TagList = validate.Strings(a.TagList)

	return nil
}

// UpdateRequest is the body of an update; nil leaves a field as is.
type UpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Body        *string   `json:"body"`
	TagList     *[]string `json:"tagList"`
}

func (u *UpdateRequest) Bind(r *http.Request) error {
	u.Title = validate.Optional(u.Title)
	u.Description = validate.Optional(u.Description)
	u.Body = validate.Optional(u.Body)
	if u.TagList != nil {
		tags := validate.Strings(*u.TagList)
		u.TagList = &tags
	}

	return nil
}

// Page is a skip/take window over a newest-first listing.
type Page struct {
	Offset int
	Limit  int
}

// ListQuery is the query string of GET /articles.
type ListQuery struct {
	Tag       string
	Author    string
	Favorited string
	Page
}

// ParsePage reads offset and limit, defaulting to 0 and 10.
func ParsePage(q url.Values) (Page, error) {
	p := Page{Offset: DefaultOffset, Limit: DefaultLimit}

	var detail []string
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			detail = append(detail, "offset must be a non-negative integer")
		} else {
			p.Offset = n
		}
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			detail = append(detail, "limit must be a positive integer")
		} else {
			p.Limit = n
		}
	}
	if detail != nil {
		return Page{}, apperr.Validation("invalid parameters", detail...)
	}

	return p, nil
}

func ParseListQuery(q url.Values) (ListQuery, error) {
	page, err := ParsePage(q)
	if err != nil {
		return ListQuery{}, err
	}

	return ListQuery{
		Tag:       strings.TrimSpace(q.Get("tag")),
		Author:    strings.TrimSpace(q.Get("author")),
		Favorited: strings.TrimSpace(q.Get("favorited")),
		Page:      page,
	}, nil
}
