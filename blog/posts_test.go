package blog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/apperr"
	"inkwell/model"
	"inkwell/policy"
)

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	author := registerActor(t, s, "alice", model.RoleAuthor)
	reader := registerActor(t, s, "bob", model.RoleReader)
	seedCategory(t, st, "Go", "go")

	t.Run("author creates", func(t *testing.T) {
		post, err := s.CreatePost(ctx, author, PostInput{
			Title:        "Hello World",
			Excerpt:      "a greeting",
			Content:      "body",
			CategorySlug: "go",
			Published:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, "hello-world", post.Slug)
		assert.True(t, post.IsAuthor)
		assert.Equal(t, int64(0), post.Views)
		require.NotNil(t, post.Category)
		assert.Equal(t, "go", post.Category.Slug)
		require.NotNil(t, post.Author)
		assert.Equal(t, "alice", post.Author.Username)
	})

	t.Run("reader is forbidden", func(t *testing.T) {
		_, err := s.CreatePost(ctx, reader, PostInput{Title: "No", Content: "no"})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		_, err := s.CreatePost(ctx, policy.Anonymous, PostInput{Title: "No", Content: "no"})
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("missing fields are collected", func(t *testing.T) {
		_, err := s.CreatePost(ctx, author, PostInput{})
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "title")
		assert.Contains(t, v.Fields, "content")
	})

	t.Run("unknown category is a field problem", func(t *testing.T) {
		_, err := s.CreatePost(ctx, author, PostInput{
			Title: "X", Content: "y", CategorySlug: "nope",
		})
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "category")
	})
}

func TestDraftVisibility(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	carol := registerActor(t, s, "carol", model.RoleAuthor)
	bob := registerActor(t, s, "bob", model.RoleReader)

	createPost(t, s, alice, PostInput{Title: "Draft Piece", Content: "wip"})
	createPost(t, s, alice, PostInput{Title: "Public Piece", Content: "done", Published: true})

	t.Run("listing hides drafts from everyone but the owner", func(t *testing.T) {
		for name, actor := range map[string]policy.Actor{
			"anonymous":    policy.Anonymous,
			"reader":       bob,
			"other author": carol,
		} {
			page, err := s.ListPosts(ctx, actor, PostFilters{})
			require.NoError(t, err, name)
			require.Len(t, page.Results, 1, name)
			assert.Equal(t, "public-piece", page.Results[0].Slug, name)
		}

		page, err := s.ListPosts(ctx, alice, PostFilters{})
		require.NoError(t, err)
		assert.Len(t, page.Results, 2)
	})

	t.Run("retrieval reports hidden drafts as absent", func(t *testing.T) {
		for name, actor := range map[string]policy.Actor{
			"anonymous":    policy.Anonymous,
			"reader":       bob,
			"other author": carol,
		} {
			_, err := s.GetPost(ctx, actor, "draft-piece")
			assert.ErrorIs(t, err, apperr.ErrNotFound, name)
		}

		post, err := s.GetPost(ctx, alice, "draft-piece")
		require.NoError(t, err)
		assert.False(t, post.Published)
	})

	t.Run("unknown slug is the same absence", func(t *testing.T) {
		_, err := s.GetPost(ctx, bob, "never-written")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestViewCounting(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	bob := registerActor(t, s, "bob", model.RoleReader)

	createPost(t, s, alice, PostInput{Title: "Counted", Content: "body", Published: true})

	t.Run("non-author retrieval increments", func(t *testing.T) {
		post, err := s.GetPost(ctx, bob, "counted")
		require.NoError(t, err)
		assert.Equal(t, int64(1), post.Views)

		post, err = s.GetPost(ctx, policy.Anonymous, "counted")
		require.NoError(t, err)
		assert.Equal(t, int64(2), post.Views)
	})

	t.Run("author retrieval does not", func(t *testing.T) {
		post, err := s.GetPost(ctx, alice, "counted")
		require.NoError(t, err)
		assert.Equal(t, int64(2), post.Views)

		stored, err := st.PostBySlug(ctx, "counted")
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Views)
	})
}

// Concurrent retrievals by distinct non-authors each count exactly once.
func TestViewCountingConcurrent(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	bob := registerActor(t, s, "bob", model.RoleReader)
	carol := registerActor(t, s, "carol", model.RoleReader)

	createPost(t, s, alice, PostInput{Title: "Contended", Content: "body", Published: true})

	var wg sync.WaitGroup
	for _, actor := range []policy.Actor{bob, carol} {
		wg.Add(1)
		go func(a policy.Actor) {
			defer wg.Done()
			_, err := s.GetPost(ctx, a, "contended")
			assert.NoError(t, err)
		}(actor)
	}
	wg.Wait()

	stored, err := st.PostBySlug(ctx, "contended")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Views)
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	carol := registerActor(t, s, "carol", model.RoleAuthor)

	createPost(t, s, alice, PostInput{Title: "Hello World", Content: "body", Published: true})

	t.Run("slug survives a title change", func(t *testing.T) {
		post, err := s.UpdatePost(ctx, alice, "hello-world", PostInput{
			Title: "Hello Galaxy", Content: "body", Published: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Hello Galaxy", post.Title)
		assert.Equal(t, "hello-world", post.Slug)

		// Still addressable under the original slug.
		got, err := s.GetPost(ctx, alice, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, "Hello Galaxy", got.Title)
	})

	t.Run("non-owner of a visible post is forbidden", func(t *testing.T) {
		_, err := s.UpdatePost(ctx, carol, "hello-world", PostInput{Title: "Mine", Content: "x", Published: true})
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("non-owner of a draft sees absence", func(t *testing.T) {
		createPost(t, s, alice, PostInput{Title: "Hidden Draft", Content: "wip"})
		_, err := s.UpdatePost(ctx, carol, "hidden-draft", PostInput{Title: "Mine", Content: "x"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("update does not rewind views", func(t *testing.T) {
		bob := registerActor(t, s, "bob", model.RoleReader)
		_, err := s.GetPost(ctx, bob, "hello-world")
		require.NoError(t, err)

		_, err = s.UpdatePost(ctx, alice, "hello-world", PostInput{
			Title: "Hello Galaxy", Content: "edited", Published: true,
		})
		require.NoError(t, err)

		stored, err := st.PostBySlug(ctx, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Views)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	carol := registerActor(t, s, "carol", model.RoleAuthor)

	createPost(t, s, alice, PostInput{Title: "Doomed", Content: "body", Published: true})
	createPost(t, s, alice, PostInput{Title: "Secret", Content: "wip"})

	assert.ErrorIs(t, s.DeletePost(ctx, carol, "doomed"), apperr.ErrForbidden)
	assert.ErrorIs(t, s.DeletePost(ctx, carol, "secret"), apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, policy.Anonymous, "doomed"), apperr.ErrForbidden)

	require.NoError(t, s.DeletePost(ctx, alice, "doomed"))
	_, err := s.GetPost(ctx, alice, "doomed")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListPostsFilters(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	seedCategory(t, st, "Go", "go")
	seedCategory(t, st, "Rust", "rust")

	createPost(t, s, alice, PostInput{Title: "Alpha", Content: "about concurrency", CategorySlug: "go", Published: true})
	createPost(t, s, alice, PostInput{Title: "Beta", Content: "about borrowing", CategorySlug: "rust", Published: true})
	createPost(t, s, alice, PostInput{Title: "Gamma", Excerpt: "concurrency notes", Content: "misc", Published: true})

	t.Run("search spans title, content and excerpt", func(t *testing.T) {
		page, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{Search: "CONCURRENCY"})
		require.NoError(t, err)
		require.Len(t, page.Results, 2)

		page, err = s.ListPosts(ctx, policy.Anonymous, PostFilters{Search: "beta"})
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "beta", page.Results[0].Slug)
	})

	t.Run("category filter", func(t *testing.T) {
		page, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{CategorySlug: "go"})
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "alpha", page.Results[0].Slug)
	})

	t.Run("title ordering", func(t *testing.T) {
		page, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{Ordering: "title"})
		require.NoError(t, err)
		require.Len(t, page.Results, 3)
		assert.Equal(t, "Alpha", page.Results[0].Title)
		assert.Equal(t, "Gamma", page.Results[2].Title)

		page, err = s.ListPosts(ctx, policy.Anonymous, PostFilters{Ordering: "-title"})
		require.NoError(t, err)
		assert.Equal(t, "Gamma", page.Results[0].Title)
	})

	t.Run("views ordering", func(t *testing.T) {
		bob := registerActor(t, s, "bob", model.RoleReader)
		_, err := s.GetPost(ctx, bob, "beta")
		require.NoError(t, err)

		page, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{Ordering: "-views"})
		require.NoError(t, err)
		assert.Equal(t, "beta", page.Results[0].Slug)
	})

	t.Run("unknown ordering is rejected", func(t *testing.T) {
		_, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{Ordering: "author"})
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "ordering")
	})
}

func TestListPostsPagination(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)

	for i := 0; i < PageSize+2; i++ {
		createPost(t, s, alice, PostInput{
			Title:     fmt.Sprintf("Post %02d", i),
			Content:   "body",
			Published: true,
		})
	}

	first, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(PageSize+2), first.Count)
	assert.Len(t, first.Results, PageSize)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, PageSize, first.PageSize)

	second, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Results, 2)

	third, err := s.ListPosts(ctx, policy.Anonymous, PostFilters{Page: 3})
	require.NoError(t, err)
	assert.Empty(t, third.Results)
	assert.Equal(t, int64(PageSize+2), third.Count)
}

func TestMyPosts(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	carol := registerActor(t, s, "carol", model.RoleAuthor)

	createPost(t, s, alice, PostInput{Title: "Mine Draft", Content: "wip"})
	createPost(t, s, alice, PostInput{Title: "Mine Public", Content: "done", Published: true})
	createPost(t, s, carol, PostInput{Title: "Hers", Content: "done", Published: true})

	page, err := s.MyPosts(ctx, alice, 1)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
	for _, p := range page.Results {
		assert.True(t, p.IsAuthor)
	}

	_, err = s.MyPosts(ctx, policy.Anonymous, 1)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestFeaturedAndPopular(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	alice := registerActor(t, s, "alice", model.RoleAuthor)
	bob := registerActor(t, s, "bob", model.RoleReader)

	createPost(t, s, alice, PostInput{Title: "Starred", Content: "body", Published: true, Featured: true})
	createPost(t, s, alice, PostInput{Title: "Plain", Content: "body", Published: true})
	createPost(t, s, alice, PostInput{Title: "Hidden Star", Content: "wip", Featured: true})

	featured, err := s.FeaturedPosts(ctx, policy.Anonymous)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "starred", featured[0].Slug)

	for i := 0; i < 3; i++ {
		_, err := s.GetPost(ctx, bob, "plain")
		require.NoError(t, err)
	}
	popular, err := s.PopularPosts(ctx, policy.Anonymous)
	require.NoError(t, err)
	require.NotEmpty(t, popular)
	assert.Equal(t, "plain", popular[0].Slug)
}
