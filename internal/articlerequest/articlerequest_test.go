package articlerequest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/realworld/internal/apperr"
)

func TestParseListQuery(t *testing.T) {
	q, err := ParseListQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, ListQuery{Page: Page{Offset: 0, Limit: 10}}, q)

	q, err = ParseListQuery(url.Values{"tag": {" x "}, "author": {"alice"}, "offset": {"2"}, "limit": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, ListQuery{Tag: "x", Author: "alice", Page: Page{Offset: 2, Limit: 5}}, q)
}

func TestParsePageRejectsGarbage(t *testing.T) {
	_, err := ParsePage(url.Values{"offset": {"-1"}, "limit": {"zero"}})
	require.Error(t, err)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Len(t, e.Detail, 2)

	_, err = ParsePage(url.Values{"limit": {"0"}})
	assert.Error(t, err)
}

func TestBindNormalizes(t *testing.T) {
	body := `{"title":"  Hello World ","description":" d","body":"b ","tagList":[" go ",""," "]}`
	r := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	a := &ArticleRequest{}
	require.NoError(t, render.Bind(r, a))
	assert.Equal(t, "Hello World", a.Title)
	assert.Equal(t, "d", a.Description)
	assert.Equal(t, []string{"go"}, a.TagList)

	r = httptest.NewRequest(http.MethodPut, "/api/articles/x", strings.NewReader(`{"title":"  ","body":"new"}`))
	r.Header.Set("Content-Type", "application/json")

	u := &UpdateRequest{}
	require.NoError(t, render.Bind(r, u))
	assert.Nil(t, u.Title)
	assert.Nil(t, u.TagList)
	require.NotNil(t, u.Body)
	assert.Equal(t, "new", *u.Body)
}
