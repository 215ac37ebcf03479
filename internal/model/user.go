package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultImage is the avatar given to users who never set one.
const DefaultImage = "https://lu-static.vercel.app/lu-real-world/smileAvatar.svg"

// IDLength is the length of every identifier issued by NewID.
const IDLength = 36

// User data model.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Bio          string
	Image        string
	// Follows holds the ids of the users following this user. Following a
	// profile adds the follower's id to the followed user's set.
	Follows   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserChanges carries the fields of a user update. Nil means unchanged.
type UserChanges struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Bio          *string
	Image        *string
	UpdatedAt    time.Time
}

func (c UserChanges) Empty() bool {
	return c.Username == nil && c.Email == nil && c.PasswordHash == nil && c.Bio == nil && c.Image == nil
}

// Comment data model. Author is populated by the store on reads.
type Comment struct {
	ID        string
	Body      string
	ArticleID string
	AuthorID  string
	Author    *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID returns a fresh identifier for any stored entity.
func NewID() string {
	return uuid.NewString()
}
