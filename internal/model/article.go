package model

import (
	"strings"
	"time"
)

// Article data model. Author is populated by the store on reads.
type Article struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Body        string
	AuthorID    string
	Author      *User
	TagList     []string
	Favorites   []string // ids of users who favorited the article
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArticleChanges carries the fields of an article update. Nil means unchanged.
type ArticleChanges struct {
	Title       *string
	Slug        *string
	Description *string
	Body        *string
	TagList     *[]string
	UpdatedAt   time.Time
}

func (c ArticleChanges) Empty() bool {
	return c.Title == nil && c.Slug == nil && c.Description == nil && c.Body == nil && c.TagList == nil
}

// ArticleFilter narrows an article listing. A nil AuthorIDs means any author.
type ArticleFilter struct {
	Tag         string
	AuthorIDs   []string
	FavoritedBy string
	Offset      int
	Limit       int
}

// Slugify turns a title into its URL slug: every run of whitespace becomes a
// single hyphen.
func Slugify(title string) string {
	return strings.Join(strings.Fields(title), "-")
}
