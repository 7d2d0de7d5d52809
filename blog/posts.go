package blog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"inkwell/apperr"
	"inkwell/model"
	"inkwell/policy"
	"inkwell/store"
	"inkwell/utils"
	Logger "inkwell/utils/log"
)

// slugCreateRetries bounds how often a create is retried when a concurrent
// creation claims the candidate slug first.
const slugCreateRetries = 3

// featuredLimit caps the featured and popular listings.
const featuredLimit = 5

var orderings = []string{
	string(store.OrderCreatedAsc), string(store.OrderCreatedDesc),
	string(store.OrderTitleAsc), string(store.OrderTitleDesc),
	string(store.OrderViewsAsc), string(store.OrderViewsDesc),
}

// PostFilters are the caller-facing listing knobs; visibility is derived from
// the actor, never from the filters.
type PostFilters struct {
	Search       string
	CategorySlug string
	Ordering     string
	Page         int
}

// PostPage is one page of a post listing.
type PostPage struct {
	Count    int64             `json:"count"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Results  []*model.PostView `json:"results"`
}

// PostInput carries the mutable post fields. Category is addressed by slug;
// empty means uncategorized.
type PostInput struct {
	Title        string
	Excerpt      string
	Content      string
	Image        string
	CategorySlug string
	Published    bool
	Featured     bool
}

// ListPosts returns the actor's visible set, filtered, ordered and paged.
// Anonymous actors see published posts only; authenticated actors
// additionally see their own drafts.
func (s *Service) ListPosts(ctx context.Context, actor policy.Actor, f PostFilters) (*PostPage, error) {
	order := store.OrderCreatedDesc
	if f.Ordering != "" {
		if !utils.ContainsString(orderings, f.Ordering) {
			return nil, apperr.NewValidation().Add("ordering", "Unknown ordering "+f.Ordering)
		}
		order = store.PostOrder(f.Ordering)
	}

	filter := store.PostFilter{
		Search:       f.Search,
		CategorySlug: f.CategorySlug,
		ViewerID:     actor.UserID,
		Order:        order,
		Page:         f.Page,
		PageSize:     PageSize,
	}
	return s.page(ctx, actor, filter)
}

// MyPosts lists every post owned by the actor, drafts included.
func (s *Service) MyPosts(ctx context.Context, actor policy.Actor, page int) (*PostPage, error) {
	if !actor.Authenticated() {
		return nil, apperr.ErrUnauthenticated
	}
	filter := store.PostFilter{
		AuthorID: actor.UserID,
		Order:    store.OrderCreatedDesc,
		Page:     page,
		PageSize: PageSize,
	}
	return s.page(ctx, actor, filter)
}

// FeaturedPosts returns the newest published featured posts.
func (s *Service) FeaturedPosts(ctx context.Context, actor policy.Actor) ([]*model.PostView, error) {
	filter := store.PostFilter{
		FeaturedOnly: true,
		Order:        store.OrderCreatedDesc,
		Page:         1,
		PageSize:     featuredLimit,
	}
	p, err := s.page(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

// PopularPosts returns the most viewed published posts.
func (s *Service) PopularPosts(ctx context.Context, actor policy.Actor) ([]*model.PostView, error) {
	filter := store.PostFilter{
		Order:    store.OrderViewsDesc,
		Page:     1,
		PageSize: featuredLimit,
	}
	p, err := s.page(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	return p.Results, nil
}

func (s *Service) page(ctx context.Context, actor policy.Actor, filter store.PostFilter) (*PostPage, error) {
	posts, total, err := s.store.ListPosts(ctx, filter)
	if err != nil {
		return nil, s.unavailable("listing posts", err)
	}
	results := make([]*model.PostView, 0, len(posts))
	for _, p := range posts {
		view, err := s.postView(ctx, p, actor)
		if err != nil {
			return nil, err
		}
		results = append(results, view)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return &PostPage{Count: total, Page: page, PageSize: filter.PageSize, Results: results}, nil
}

// GetPost retrieves a post by slug within the actor's visible set. A hidden
// or absent post is NotFound either way, so existence is never leaked. When
// the actor is not the post's author the view counter is bumped atomically;
// authors never inflate their own count.
func (s *Service) GetPost(ctx context.Context, actor policy.Actor, slug string) (*model.PostDetailView, error) {
	post, err := s.loadVisible(ctx, actor, slug)
	if err != nil {
		return nil, err
	}

	if actor.UserID != post.AuthorID {
		if err := s.store.IncrementViews(ctx, post.Id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, s.unavailable("incrementing views", err)
		}
		post.Views++
	}

	comments, err := s.store.ApprovedCommentsByPost(ctx, post.Id)
	if err != nil {
		return nil, s.unavailable("loading comments", err)
	}
	categoryView, err := s.categoryView(ctx, post.Category)
	if err != nil {
		return nil, err
	}
	return model.NewPostDetailView(post, actor.UserID, comments, categoryView), nil
}

// CreatePost creates a post owned by the actor. Requires the author role; the
// slug is derived from the title here, once, and never rewritten afterwards.
func (s *Service) CreatePost(ctx context.Context, actor policy.Actor, in PostInput) (*model.PostDetailView, error) {
	if !actor.Authenticated() {
		return nil, apperr.ErrUnauthenticated
	}
	if policy.Decide(actor, policy.ActionCreatePost, policy.Resource{}) != policy.Allow {
		return nil, apperr.ErrForbidden
	}
	if err := validatePostInput(in); err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, in.CategorySlug)
	if err != nil {
		return nil, err
	}

	var post *model.Post
	for attempt := 0; ; attempt++ {
		slug, err := s.freeSlug(ctx, slugify(in.Title))
		if err != nil {
			return nil, err
		}
		post = &model.Post{
			Id:         uuid.New().String(),
			Slug:       slug,
			AuthorID:   actor.UserID,
			CategoryID: categoryID,
			Title:      in.Title,
			Excerpt:    in.Excerpt,
			Content:    in.Content,
			Image:      in.Image,
			Published:  in.Published,
			Featured:   in.Featured,
		}
		err = s.store.CreatePost(ctx, post)
		if err == nil {
			break
		}
		// A concurrent creation can win the slug between the probe and the
		// insert; the unique constraint reports it and we pick the next free
		// suffix.
		if !isConflict(err) || attempt >= slugCreateRetries {
			return nil, s.unavailable("creating post", err)
		}
	}

	Logger.Log.Info("created post ", post.Slug, " by ", actor.UserID)
	return s.detailView(ctx, actor, post.Slug)
}

// UpdatePost applies in to the actor's own post. The slug never changes, no
// matter how the title does. A post outside the actor's visible set is
// NotFound; a visible post owned by someone else is Forbidden.
func (s *Service) UpdatePost(ctx context.Context, actor policy.Actor, slug string, in PostInput) (*model.PostDetailView, error) {
	post, err := s.loadVisible(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	if policy.Decide(actor, policy.ActionUpdatePost, policy.Resource{Post: post}) != policy.Allow {
		return nil, apperr.ErrForbidden
	}
	if err := validatePostInput(in); err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, in.CategorySlug)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Excerpt = in.Excerpt
	post.Content = in.Content
	post.Image = in.Image
	post.CategoryID = categoryID
	post.Published = in.Published
	post.Featured = in.Featured
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return nil, s.unavailable("updating post", err)
	}
	return s.detailView(ctx, actor, slug)
}

// DeletePost removes the actor's own post. Same visibility/ownership split as
// UpdatePost.
func (s *Service) DeletePost(ctx context.Context, actor policy.Actor, slug string) error {
	post, err := s.loadVisible(ctx, actor, slug)
	if err != nil {
		return err
	}
	if policy.Decide(actor, policy.ActionDeletePost, policy.Resource{Post: post}) != policy.Allow {
		return apperr.ErrForbidden
	}
	if err := s.store.DeletePost(ctx, post.Id); err != nil {
		return s.unavailable("deleting post", err)
	}
	Logger.Log.Info("deleted post ", slug, " by ", actor.UserID)
	return nil
}

// loadVisible loads a post by slug and applies the read-visibility rule:
// anything the actor may not read is reported as absent.
func (s *Service) loadVisible(ctx context.Context, actor policy.Actor, slug string) (*model.Post, error) {
	post, err := s.store.PostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, s.unavailable("loading post", err)
	}
	if policy.Decide(actor, policy.ActionReadPost, policy.Resource{Post: post}) != policy.Allow {
		return nil, apperr.ErrNotFound
	}
	return post, nil
}

// detailView re-reads a post and builds its detail view without touching the
// view counter (used after create/update where the actor is the author).
func (s *Service) detailView(ctx context.Context, actor policy.Actor, slug string) (*model.PostDetailView, error) {
	post, err := s.loadVisible(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ApprovedCommentsByPost(ctx, post.Id)
	if err != nil {
		return nil, s.unavailable("loading comments", err)
	}
	categoryView, err := s.categoryView(ctx, post.Category)
	if err != nil {
		return nil, err
	}
	return model.NewPostDetailView(post, actor.UserID, comments, categoryView), nil
}

// resolveCategory maps a category slug to its id; empty slug means
// uncategorized. An unknown slug is a validation problem, not NotFound: the
// post is the resource here, the category is just an attribute.
func (s *Service) resolveCategory(ctx context.Context, slug string) (*string, error) {
	if slug == "" {
		return nil, nil
	}
	category, err := s.store.CategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NewValidation().Add("category", "Unknown category "+slug)
		}
		return nil, s.unavailable("loading category", err)
	}
	return &category.Id, nil
}

func validatePostInput(in PostInput) error {
	v := apperr.NewValidation()
	if in.Title == "" {
		v.Add("title", "This field is required")
	}
	if in.Content == "" {
		v.Add("content", "This field is required")
	}
	if v.Empty() {
		return nil
	}
	return v
}
