package blog

import (
	"context"
	"errors"

	"inkwell/apperr"
	"inkwell/model"
	"inkwell/store"
)

// ListCategories returns every category with a live count of its published
// posts. The count is computed against the post table on every call, never
// read from a stored counter.
func (s *Service) ListCategories(ctx context.Context) ([]*model.CategoryView, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, s.unavailable("listing categories", err)
	}
	views := make([]*model.CategoryView, 0, len(categories))
	for _, c := range categories {
		view, err := s.categoryView(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetCategory returns a single category by slug with its live count.
func (s *Service) GetCategory(ctx context.Context, slug string) (*model.CategoryView, error) {
	category, err := s.store.CategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, s.unavailable("loading category", err)
	}
	return s.categoryView(ctx, category)
}
