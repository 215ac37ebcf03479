package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":         "Hello-World",
		"how to  train\tyour": "how-to-train-your",
		"single":              "single",
		"  padded title  ":    "padded-title",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewIDLength(t *testing.T) {
	assert.Len(t, NewID(), IDLength)
	assert.NotEqual(t, NewID(), NewID())
}

func TestChangesEmpty(t *testing.T) {
	assert.True(t, UserChanges{}.Empty())
	bio := "x"
	assert.False(t, UserChanges{Bio: &bio}.Empty())

	assert.True(t, ArticleChanges{}.Empty())
	tags := []string{}
	assert.False(t, ArticleChanges{TagList: &tags}.Empty())
}
