package model

import "time"

/*

Comment is reader feedback on a post, append-only through the API

Id: primary key
CreatedAt: time when entity is created
PostID:
Post: parent post, required
UserID:
User: submitting account, nil for anonymous comments
Name/Email: submitted identity for anonymous comments; filled from the
            account for authenticated ones
Content: comment body in plain text
Approved: false until moderated through an administrative path outside this
          API; unapproved comments never appear in any exposed listing

*/
type Comment struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	PostID    string `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Post      *Post  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID    *string
	User      *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Name      string
	Email     string
	Content   string
	Approved  bool
}

// CommentView is the externally visible shape of an approved comment.
// UserName prefers the linked account's username over the submitted name.
type CommentView struct {
	Id        string    `json:"id"`
	PostID    string    `json:"post"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCommentView(c *Comment) *CommentView {
	userName := c.Name
	if c.User != nil {
		userName = c.User.Username
	}
	return &CommentView{
		Id:        c.Id,
		PostID:    c.PostID,
		Name:      c.Name,
		Content:   c.Content,
		UserName:  userName,
		CreatedAt: c.CreatedAt,
	}
}
