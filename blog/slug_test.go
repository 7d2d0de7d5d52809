package blog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/model"
)

func TestSlugify(t *testing.T) {
	for _, tt := range []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Go 1.18 Generics", "go-1-18-generics"},
		{"UPPER lower MiXeD", "upper-lower-mixed"},
		{"---", ""},
		{"", ""},
	} {
		assert.Equal(t, tt.want, slugify(tt.title), "slugify(%q)", tt.title)
	}
}

func TestFreeSlugSuffixes(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	author := registerActor(t, s, "alice", model.RoleAuthor)

	first := createPost(t, s, author, PostInput{Title: "Hello World", Content: "one", Published: true})
	second := createPost(t, s, author, PostInput{Title: "Hello World", Content: "two", Published: true})
	third := createPost(t, s, author, PostInput{Title: "Hello World", Content: "three", Published: true})

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-2", second.Slug)
	assert.Equal(t, "hello-world-3", third.Slug)

	// An empty base falls back to a usable slug rather than an empty one.
	slug, err := s.freeSlug(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "post", slug)
}
