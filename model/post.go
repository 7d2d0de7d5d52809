package model

import "time"

/*

Post is a single authored article

Id: primary key
CreatedAt/UpdatedAt: entity timestamps
Slug: unique URL identifier derived from the title at creation time and
      immutable afterwards, title edits never change it
AuthorID:
Author: owning user, the only identity allowed to mutate the post
CategoryID:
Category: optional grouping, "belongs-to" relation, detached on category delete

Title/Excerpt/Content: article body in plain text
Image: reference URL into the media store, empty when no image was uploaded
Published: unpublished posts are drafts, visible only to their author
Featured: editorial flag surfaced by the featured listing
Views: monotonically increasing read counter, incremented atomically in
       storage on every retrieval by a non-author

*/
type Post struct {
	Id         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Slug       string `gorm:"uniqueIndex"`
	AuthorID   string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Author     *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CategoryID *string
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Title      string
	Excerpt    string
	Content    string
	Image      string
	Published  bool
	Featured   bool
	Views      int64
}

// PostView is the list shape of a post. IsAuthor is derived from the viewing
// actor, not stored.
type PostView struct {
	Id           string        `json:"id"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Author       *UserView     `json:"author"`
	Excerpt      string        `json:"excerpt"`
	Category     *CategoryView `json:"category"`
	Image        string        `json:"image,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Published    bool          `json:"published"`
	Featured     bool          `json:"featured"`
	Views        int64         `json:"views"`
	CommentCount int64         `json:"comment_count"`
	IsAuthor     bool          `json:"is_author"`
}

// PostDetailView is the single-post shape: the list shape plus the full
// content and the approved comment thread.
type PostDetailView struct {
	PostView
	Content  string         `json:"content"`
	Comments []*CommentView `json:"comments"`
}

// NewPostView derives the list view of post as seen by actorID (empty string
// for anonymous). commentCount is the approved-comment count, taken fresh from
// storage by the caller; same for the category's published-post count carried
// inside categoryView.
func NewPostView(p *Post, actorID string, commentCount int64, categoryView *CategoryView) *PostView {
	v := &PostView{
		Id:           p.Id,
		Title:        p.Title,
		Slug:         p.Slug,
		Excerpt:      p.Excerpt,
		Category:     categoryView,
		Image:        p.Image,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Published:    p.Published,
		Featured:     p.Featured,
		Views:        p.Views,
		CommentCount: commentCount,
		IsAuthor:     actorID != "" && actorID == p.AuthorID,
	}
	if p.Author != nil {
		v.Author = NewUserView(p.Author)
	}
	return v
}

// NewPostDetailView derives the detail view of post as seen by actorID.
// comments must already be filtered to approved entries.
func NewPostDetailView(p *Post, actorID string, comments []*Comment, categoryView *CategoryView) *PostDetailView {
	views := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, NewCommentView(c))
	}
	return &PostDetailView{
		PostView: *NewPostView(p, actorID, int64(len(comments)), categoryView),
		Content:  p.Content,
		Comments: views,
	}
}
