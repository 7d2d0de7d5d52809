package blog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"inkwell/auth"
	"inkwell/model"
	"inkwell/policy"
	"inkwell/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	tokens := auth.NewTokenService(st, []byte("test-secret"))
	return NewService(st, tokens), st
}

// registerActor registers a user with the given role and resolves it into a
// policy actor the way the middleware would.
func registerActor(t *testing.T, s *Service, username string, role model.Role) policy.Actor {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		Password2: "password123",
		Role:      role,
	})
	require.NoError(t, err)
	actor, err := s.Actor(context.Background(), res.User.Id)
	require.NoError(t, err)
	return actor
}

// seedCategory inserts a category directly, standing in for the out-of-band
// administrative path that manages the taxonomy.
func seedCategory(t *testing.T, st *memory.Store, name, slug string) *model.Category {
	t.Helper()
	c := &model.Category{Id: uuid.New().String(), Name: name, Slug: slug}
	require.NoError(t, st.CreateCategory(context.Background(), c))
	return c
}

func createPost(t *testing.T, s *Service, actor policy.Actor, in PostInput) *model.PostDetailView {
	t.Helper()
	post, err := s.CreatePost(context.Background(), actor, in)
	require.NoError(t, err)
	return post
}
