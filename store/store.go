// Package store defines the persistence contracts the core services operate
// through. Implementations must provide uniqueness constraints on username,
// email, post slug and category slug, an atomic increment for post views, and
// consume-once semantics for refresh tokens. Two implementations exist:
// store/postgres for runtime and store/memory for tests.
package store

import (
	"context"
	"errors"

	"inkwell/model"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("store: record not found")

	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("store: uniqueness conflict")
)

// PostOrder selects the sort key for post listings. A leading '-' means
// descending, mirroring the ordering query parameter.
type PostOrder string

const (
	OrderCreatedAsc  PostOrder = "created_at"
	OrderCreatedDesc PostOrder = "-created_at"
	OrderTitleAsc    PostOrder = "title"
	OrderTitleDesc   PostOrder = "-title"
	OrderViewsAsc    PostOrder = "views"
	OrderViewsDesc   PostOrder = "-views"
)

// PostFilter narrows and pages a post listing. The zero value lists published
// posts in reverse creation order.
//
// ViewerID widens the published-only base set with the viewer's own posts;
// AuthorID instead restricts the listing to one author's posts regardless of
// published state (the caller is responsible for only setting it to the
// requesting actor).
type PostFilter struct {
	Search       string
	CategorySlug string
	ViewerID     string
	AuthorID     string
	FeaturedOnly bool
	Order        PostOrder
	Page         int
	PageSize     int
}

type UserStore interface {
	// CreateUserWithProfile persists both records atomically; a conflict on
	// username or email leaves nothing behind and returns ErrConflict.
	CreateUserWithProfile(ctx context.Context, u *model.User, p *model.Profile) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
}

type ProfileStore interface {
	ProfileByUserID(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, p *model.Profile) error
	// ProfileStats recomputes the derived counters from the post and comment
	// tables: the user's post count, the sum of views over their posts, and
	// the number of approved comments on their posts.
	ProfileStats(ctx context.Context, userID string) (model.ProfileStats, error)
}

type CategoryStore interface {
	// CreateCategory serves the administrative path (and tests); the public
	// API only ever reads categories. Returns ErrConflict on a taken slug.
	CreateCategory(ctx context.Context, c *model.Category) error
	ListCategories(ctx context.Context) ([]*model.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	// PublishedPostCount is the live count backing category views.
	PublishedPostCount(ctx context.Context, categoryID string) (int64, error)
}

type PostStore interface {
	// CreatePost returns ErrConflict when the slug is already taken.
	CreatePost(ctx context.Context, p *model.Post) error
	// PostBySlug loads a post with its author and category attached.
	PostBySlug(ctx context.Context, slug string) (*model.Post, error)
	UpdatePost(ctx context.Context, p *model.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, f PostFilter) ([]*model.Post, int64, error)
	// IncrementViews bumps the view counter by one as an atomic
	// read-modify-write; concurrent calls never lose an increment.
	IncrementViews(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	// ApprovedCommentsByPost returns moderated comments only, oldest first,
	// with the submitting user attached when there is one.
	ApprovedCommentsByPost(ctx context.Context, postID string) ([]*model.Comment, error)
	ApprovedCommentCount(ctx context.Context, postID string) (int64, error)
}

type TokenStore interface {
	SaveRefreshToken(ctx context.Context, t *model.RefreshToken) error
	// ConsumeRefreshToken atomically removes and returns the token. At most
	// one of any number of concurrent calls for the same token succeeds; the
	// rest get ErrNotFound.
	ConsumeRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
}

// Store is the full persistence surface consumed by the services.
type Store interface {
	UserStore
	ProfileStore
	CategoryStore
	PostStore
	CommentStore
	TokenStore
}
