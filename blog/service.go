// Package blog is the content repository: it executes operations the
// authorization engine has allowed and applies their derived-state side
// effects (view increments, slug assignment, aggregate counters). Every
// operation takes an explicit policy.Actor; there is no ambient request
// state.
package blog

import (
	"context"
	"errors"

	"inkwell/apperr"
	"inkwell/auth"
	"inkwell/model"
	"inkwell/policy"
	"inkwell/store"
	Logger "inkwell/utils/log"
)

// PageSize is the fixed page size for post listings.
const PageSize = 10

type Service struct {
	store  store.Store
	tokens *auth.TokenService
}

func NewService(st store.Store, tokens *auth.TokenService) *Service {
	return &Service{store: st, tokens: tokens}
}

// Tokens exposes the token service for the transport layer (refresh/logout
// pass straight through to it).
func (s *Service) Tokens() *auth.TokenService {
	return s.tokens
}

// Actor resolves a validated user id into a policy actor with its role
// attached. An unknown id (e.g. a token outliving its account) reads as
// unauthenticated.
func (s *Service) Actor(ctx context.Context, userID string) (policy.Actor, error) {
	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return policy.Anonymous, apperr.ErrUnauthenticated
		}
		return policy.Anonymous, s.unavailable("resolving actor", err)
	}
	return policy.Actor{UserID: userID, Role: profile.Role}, nil
}

// unavailable logs the underlying storage failure and degrades it to the
// Unavailable sentinel; the core never retries on the caller's behalf.
func (s *Service) unavailable(op string, err error) error {
	Logger.Log.WithError(err).Error("storage failure: ", op)
	return apperr.ErrUnavailable
}

// postView assembles the list view of a post as seen by actor, pulling the
// fresh approved-comment count and the category's live published count.
func (s *Service) postView(ctx context.Context, p *model.Post, actor policy.Actor) (*model.PostView, error) {
	commentCount, err := s.store.ApprovedCommentCount(ctx, p.Id)
	if err != nil {
		return nil, s.unavailable("counting comments", err)
	}
	categoryView, err := s.categoryView(ctx, p.Category)
	if err != nil {
		return nil, err
	}
	return model.NewPostView(p, actor.UserID, commentCount, categoryView), nil
}

func (s *Service) categoryView(ctx context.Context, c *model.Category) (*model.CategoryView, error) {
	if c == nil {
		return nil, nil
	}
	count, err := s.store.PublishedPostCount(ctx, c.Id)
	if err != nil {
		return nil, s.unavailable("counting category posts", err)
	}
	return model.NewCategoryView(c, count), nil
}
