package model

import "time"

/*

Category is an editorial grouping for posts

Id: primary key
CreatedAt: time when entity is created
Name: human readable name
Slug: unique URL identifier derived from the name
Description: free-form description

Posts reference categories optionally. Deleting a category detaches its posts
(FK set to NULL) instead of orphaning or cascading them.

*/
type Category struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	Name        string
	Slug        string `gorm:"uniqueIndex"`
	Description string
}

// CategoryView reports a category together with a live count of its published
// posts. The count is never stored; callers take it fresh from the post table.
type CategoryView struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	PostCount   int64     `json:"post_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCategoryView(c *Category, publishedCount int64) *CategoryView {
	return &CategoryView{
		Id:          c.Id,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		PostCount:   publishedCount,
		CreatedAt:   c.CreatedAt,
	}
}
