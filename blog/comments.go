package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"inkwell/apperr"
	"inkwell/model"
	"inkwell/policy"
	"inkwell/store"
	Logger "inkwell/utils/log"
)

// PendingModerationMessage is all a commenter ever gets back: the created
// entity is deliberately not echoed, so nothing implies immediate visibility.
const PendingModerationMessage = "Comment submitted successfully! It will appear after approval."

// CommentInput is a comment submission. Name and email are required for
// anonymous actors and ignored for authenticated ones, whose account identity
// is used instead.
type CommentInput struct {
	PostSlug string
	Name     string
	Email    string
	Content  string
}

// CreateComment appends a pending comment to a post in the actor's visible
// set. The comment starts unapproved and stays invisible until the
// out-of-band moderation path approves it.
func (s *Service) CreateComment(ctx context.Context, actor policy.Actor, in CommentInput) error {
	if policy.Decide(actor, policy.ActionCreateComment, policy.Resource{}) != policy.Allow {
		return apperr.ErrForbidden
	}

	post, err := s.loadVisible(ctx, actor, in.PostSlug)
	if err != nil {
		return err
	}

	comment := &model.Comment{
		Id:      uuid.New().String(),
		PostID:  post.Id,
		Content: strings.TrimSpace(in.Content),
	}

	v := apperr.NewValidation()
	if comment.Content == "" {
		v.Add("content", "This field is required")
	}
	if actor.Authenticated() {
		user, err := s.store.UserByID(ctx, actor.UserID)
		if err != nil {
			return s.unavailable("loading user", err)
		}
		comment.UserID = &user.Id
		comment.Name = user.FullName()
		comment.Email = user.Email
	} else {
		comment.Name = strings.TrimSpace(in.Name)
		comment.Email = strings.TrimSpace(in.Email)
		if comment.Name == "" {
			v.Add("name", "This field is required")
		}
		if comment.Email == "" {
			v.Add("email", "This field is required")
		}
	}
	if !v.Empty() {
		return v
	}

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return s.unavailable("creating comment", err)
	}
	Logger.Log.Info("comment pending moderation on post ", post.Slug)
	return nil
}

// ListComments returns the approved comments of a post, oldest first. An
// unknown slug yields an empty list rather than an error, matching the
// filter-style semantics of the listing endpoint.
func (s *Service) ListComments(ctx context.Context, postSlug string) ([]*model.CommentView, error) {
	post, err := s.store.PostBySlug(ctx, postSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []*model.CommentView{}, nil
		}
		return nil, s.unavailable("loading post", err)
	}
	comments, err := s.store.ApprovedCommentsByPost(ctx, post.Id)
	if err != nil {
		return nil, s.unavailable("loading comments", err)
	}
	views := make([]*model.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, model.NewCommentView(c))
	}
	return views, nil
}
