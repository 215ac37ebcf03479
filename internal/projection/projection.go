// Package projection derives the viewer-relative read model (following,
// favorited, favoritesCount) from stored entities. Every function returns a
// freshly built view and never touches the entity it reads.
//
// An empty viewerID stands for an anonymous viewer, for whom every
// relationship flag is false.
package projection

import (
	"slices"
	"time"

	"github.com/SergeyParamoshkin/realworld/internal/model"
)

type Profile struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

type Article struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      bool      `json:"favorited"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Profile   `json:"author"`
}

type Comment struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Body      string    `json:"body"`
	Author    Profile   `json:"author"`
}

func member(set []string, viewerID string) bool {
	return viewerID != "" && slices.Contains(set, viewerID)
}

// ProjectProfile reports whether viewerID follows u.
func ProjectProfile(u *model.User, viewerID string) Profile {
	if u == nil {
		return Profile{}
	}

	return Profile{
		Username:  u.Username,
		Bio:       u.Bio,
		Image:     u.Image,
		Following: member(u.Follows, viewerID),
	}
}

func ProjectArticle(a *model.Article, viewerID string) Article {
	tags := make([]string, len(a.TagList))
	copy(tags, a.TagList)

	return Article{
		Slug:           a.Slug,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		TagList:        tags,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Favorited:      member(a.Favorites, viewerID),
		FavoritesCount: len(a.Favorites),
		Author:         ProjectProfile(a.Author, viewerID),
	}
}

func ProjectArticles(as []*model.Article, viewerID string) []Article {
	out := make([]Article, 0, len(as))
	for _, a := range as {
		out = append(out, ProjectArticle(a, viewerID))
	}

	return out
}

func ProjectComment(c *model.Comment, viewerID string) Comment {
	return Comment{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Body:      c.Body,
		Author:    ProjectProfile(c.Author, viewerID),
	}
}

func ProjectComments(cs []*model.Comment, viewerID string) []Comment {
	out := make([]Comment, 0, len(cs))
	for _, c := range cs {
		out = append(out, ProjectComment(c, viewerID))
	}

	return out
}
