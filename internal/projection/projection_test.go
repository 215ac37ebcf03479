package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SergeyParamoshkin/realworld/internal/model"
)

func TestProjectProfileFollowing(t *testing.T) {
	u := &model.User{Username: "alice", Follows: []string{"bob", "carol"}}

	cases := []struct {
		viewer string
		want   bool
	}{
		{"bob", true},
		{"carol", true},
		{"dave", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ProjectProfile(u, c.viewer).Following, c.viewer)
	}
}

func TestProjectArticleAnonymous(t *testing.T) {
	// An anonymous viewer never sees favorited or following, whatever the sets hold.
	a := &model.Article{
		Slug:      "s",
		Favorites: []string{"", "bob"},
		Author:    &model.User{Username: "alice", Follows: []string{"", "bob"}},
	}

	got := ProjectArticle(a, "")
	assert.False(t, got.Favorited)
	assert.False(t, got.Author.Following)
	assert.Equal(t, 2, got.FavoritesCount)
}

func TestProjectArticleViewer(t *testing.T) {
	a := &model.Article{
		Slug:      "hello-world",
		TagList:   []string{"go"},
		Favorites: []string{"bob"},
		Author:    &model.User{Username: "alice", Follows: []string{"carol"}},
	}

	bob := ProjectArticle(a, "bob")
	assert.True(t, bob.Favorited)
	assert.False(t, bob.Author.Following)
	assert.Equal(t, 1, bob.FavoritesCount)

	carol := ProjectArticle(a, "carol")
	assert.False(t, carol.Favorited)
	assert.True(t, carol.Author.Following)
}

func TestProjectArticleDoesNotMutate(t *testing.T) {
	a := &model.Article{
		TagList:   []string{"go", "web"},
		Favorites: []string{"bob"},
		Author:    &model.User{Username: "alice", Follows: []string{"bob"}},
	}

	got := ProjectArticle(a, "bob")
	got.TagList[0] = "changed"

	assert.Equal(t, []string{"go", "web"}, a.TagList)
	assert.Equal(t, []string{"bob"}, a.Favorites)
	assert.Equal(t, []string{"bob"}, a.Author.Follows)
}

func TestProjectArticleNilTags(t *testing.T) {
	got := ProjectArticle(&model.Article{}, "")
	assert.NotNil(t, got.TagList)
	assert.Empty(t, got.TagList)
	assert.Equal(t, Profile{}, got.Author)
}

func TestProjectComment(t *testing.T) {
	c := &model.Comment{
		ID:     "c1",
		Body:   "nice",
		Author: &model.User{Username: "bob", Follows: []string{"alice"}},
	}

	assert.True(t, ProjectComment(c, "alice").Author.Following)
	assert.False(t, ProjectComment(c, "").Author.Following)

	list := ProjectComments([]*model.Comment{c}, "alice")
	assert.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].ID)
}
