package blog

import (
	"context"

	"inkwell/apperr"
	"inkwell/model"
	"inkwell/policy"
	Logger "inkwell/utils/log"
)

// ProfileInput is a partial profile update; nil fields are left untouched.
// Role and the aggregate counters have no input fields at all: they are
// read-only regardless of actor, and the transport layer rejects attempts to
// set them before this struct is ever built.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Avatar    *string
	Website   *string
	Location  *string
}

// GetProfile returns the actor's own profile with fresh aggregate counters.
func (s *Service) GetProfile(ctx context.Context, actor policy.Actor) (*model.ProfileView, error) {
	if !actor.Authenticated() {
		return nil, apperr.ErrUnauthenticated
	}
	return s.profileView(ctx, actor.UserID)
}

// UpdateProfile applies a partial update to the actor's own profile. The
// profile endpoint only ever addresses the actor's profile, but the ownership
// rule is still evaluated explicitly so it stays enumerable next to the rest.
func (s *Service) UpdateProfile(ctx context.Context, actor policy.Actor, in ProfileInput) (*model.ProfileView, error) {
	if !actor.Authenticated() {
		return nil, apperr.ErrUnauthenticated
	}
	profile, err := s.store.ProfileByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, s.unavailable("loading profile", err)
	}
	if policy.Decide(actor, policy.ActionUpdateProfile, policy.Resource{ProfileOwnerID: profile.UserID}) != policy.Allow {
		return nil, apperr.ErrForbidden
	}

	if in.FirstName != nil || in.LastName != nil {
		user, err := s.store.UserByID(ctx, actor.UserID)
		if err != nil {
			return nil, s.unavailable("loading user", err)
		}
		if in.FirstName != nil {
			user.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			user.LastName = *in.LastName
		}
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, s.unavailable("updating user", err)
		}
	}

	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.Avatar != nil {
		profile.Avatar = *in.Avatar
	}
	if in.Website != nil {
		profile.Website = *in.Website
	}
	if in.Location != nil {
		profile.Location = *in.Location
	}
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return nil, s.unavailable("updating profile", err)
	}

	Logger.Log.Info("profile updated for user ", actor.UserID)
	return s.profileView(ctx, actor.UserID)
}

func (s *Service) profileView(ctx context.Context, userID string) (*model.ProfileView, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, s.unavailable("loading user", err)
	}
	profile, err := s.store.ProfileByUserID(ctx, userID)
	if err != nil {
		return nil, s.unavailable("loading profile", err)
	}
	stats, err := s.store.ProfileStats(ctx, userID)
	if err != nil {
		return nil, s.unavailable("loading profile stats", err)
	}
	return model.NewProfileView(user, profile, stats), nil
}
