// Package postgres implements store.Store on gorm. Uniqueness is enforced by
// the unique indexes declared on the models; conflicts surface as
// store.ErrConflict so the services can turn them into validation errors or
// slug retries.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/model"
	"inkwell/store"
)

const uniqueViolationCode = "23505"

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

// normalize maps gorm errors onto the store sentinels.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return store.ErrConflict
	}
	return err
}

// ---- users ----

func (s *Store) CreateUserWithProfile(ctx context.Context, u *model.User, p *model.Profile) error {
	return normalize(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(p).Error
	}))
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, normalize(err)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, normalize(err)
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, normalize(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", u.Id).
		Updates(map[string]interface{}{
			"password_hash": u.PasswordHash,
			"first_name":    u.FirstName,
			"last_name":     u.LastName,
		})
	if res.Error != nil {
		return normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---- profiles ----

func (s *Store) ProfileByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, normalize(err)
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *model.Profile) error {
	// Role is deliberately excluded: only an out-of-band process may change it.
	res := s.db.WithContext(ctx).Model(&model.Profile{}).Where("id = ?", p.Id).
		Updates(map[string]interface{}{
			"bio":      p.Bio,
			"avatar":   p.Avatar,
			"website":  p.Website,
			"location": p.Location,
		})
	if res.Error != nil {
		return normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ProfileStats(ctx context.Context, userID string) (model.ProfileStats, error) {
	var stats model.ProfileStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Post{}).Where("author_id = ?", userID).
		Count(&stats.TotalPosts).Error; err != nil {
		return stats, normalize(err)
	}
	if err := db.Model(&model.Post{}).Where("author_id = ?", userID).
		Select("COALESCE(SUM(views), 0)").Scan(&stats.TotalViews).Error; err != nil {
		return stats, normalize(err)
	}
	if err := db.Model(&model.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.author_id = ? AND comments.approved", userID).
		Count(&stats.TotalComments).Error; err != nil {
		return stats, normalize(err)
	}
	return stats, nil
}

// ---- categories ----

func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	return normalize(s.db.WithContext(ctx).Create(c).Error)
}

func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	if err := s.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, normalize(err)
	}
	return categories, nil
}

func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	if err := s.db.WithContext(ctx).First(&c, "slug = ?", slug).Error; err != nil {
		return nil, normalize(err)
	}
	return &c, nil
}

func (s *Store) PublishedPostCount(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("category_id = ? AND published", categoryID).Count(&n).Error
	return n, normalize(err)
}

// ---- posts ----

func (s *Store) CreatePost(ctx context.Context, p *model.Post) error {
	return normalize(s.db.WithContext(ctx).Omit("Author", "Category").Create(p).Error)
}

func (s *Store) PostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var p model.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Category").
		First(&p, "slug = ?", slug).Error
	if err != nil {
		return nil, normalize(err)
	}
	return &p, nil
}

func (s *Store) UpdatePost(ctx context.Context, p *model.Post) error {
	// Slug and views are never written here: the slug is immutable after
	// creation and the counter is owned by IncrementViews.
	res := s.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", p.Id).
		Updates(map[string]interface{}{
			"title":       p.Title,
			"excerpt":     p.Excerpt,
			"content":     p.Content,
			"image":       p.Image,
			"category_id": p.CategoryID,
			"published":   p.Published,
			"featured":    p.Featured,
		})
	if res.Error != nil {
		return normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id)
	if res.Error != nil {
		return normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context, f store.PostFilter) ([]*model.Post, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Post{})

	if f.AuthorID != "" {
		q = q.Where("posts.author_id = ?", f.AuthorID)
	} else if f.ViewerID != "" {
		q = q.Where("posts.published OR posts.author_id = ?", f.ViewerID)
	} else {
		q = q.Where("posts.published")
	}
	if f.FeaturedOnly {
		q = q.Where("posts.featured")
	}
	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.Search != "" {
		needle := "%" + f.Search + "%"
		q = q.Where("posts.title ILIKE ? OR posts.content ILIKE ? OR posts.excerpt ILIKE ?",
			needle, needle, needle)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, normalize(err)
	}

	switch f.Order {
	case store.OrderCreatedAsc:
		q = q.Order("posts.created_at asc")
	case store.OrderTitleAsc:
		q = q.Order("posts.title asc")
	case store.OrderTitleDesc:
		q = q.Order("posts.title desc")
	case store.OrderViewsAsc:
		q = q.Order("posts.views asc")
	case store.OrderViewsDesc:
		q = q.Order("posts.views desc")
	default:
		q = q.Order("posts.created_at desc")
	}

	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * f.PageSize).Limit(f.PageSize)
	}

	var posts []*model.Post
	if err := q.Preload("Author").Preload("Category").Find(&posts).Error; err != nil {
		return nil, 0, normalize(err)
	}
	return posts, total, nil
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	// Single-statement read-modify-write, safe under concurrent retrievals.
	res := s.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return normalize(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Post{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, normalize(err)
}

// ---- comments ----

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	return normalize(s.db.WithContext(ctx).Omit("Post", "User").Create(c).Error)
}

func (s *Store) ApprovedCommentsByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ? AND approved", postID).
		Order("created_at asc").Find(&comments).Error
	if err != nil {
		return nil, normalize(err)
	}
	return comments, nil
}

func (s *Store) ApprovedCommentCount(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND approved", postID).Count(&n).Error
	return n, normalize(err)
}

// ---- refresh tokens ----

func (s *Store) SaveRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	return normalize(s.db.WithContext(ctx).Create(t).Error)
}

func (s *Store) ConsumeRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row so two concurrent refreshes serialize; the loser then
		// observes zero rows deleted.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, "token = ?", token).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.RefreshToken{}, "token = ?", token)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, normalize(err)
	}
	return &t, nil
}
