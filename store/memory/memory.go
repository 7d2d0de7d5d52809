// Package memory is a mutex-guarded in-memory implementation of store.Store.
// It mirrors the postgres implementation's semantics (uniqueness conflicts,
// atomic view increments, consume-once refresh tokens) so the service unit
// tests can run against it without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/model"
	"inkwell/store"
)

type Store struct {
	mu sync.RWMutex

	usersByID      map[string]*model.User
	profilesByUser map[string]*model.Profile
	categoriesByID map[string]*model.Category
	postsByID      map[string]*model.Post
	commentsByID   map[string]*model.Comment
	refreshTokens  map[string]*model.RefreshToken
}

func NewStore() *Store {
	return &Store{
		usersByID:      make(map[string]*model.User),
		profilesByUser: make(map[string]*model.Profile),
		categoriesByID: make(map[string]*model.Category),
		postsByID:      make(map[string]*model.Post),
		commentsByID:   make(map[string]*model.Comment),
		refreshTokens:  make(map[string]*model.RefreshToken),
	}
}

var _ store.Store = (*Store)(nil)

// stamp fills a zero creation timestamp the way gorm does on insert.
func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// ---- users ----

func (s *Store) CreateUserWithProfile(ctx context.Context, u *model.User, p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.usersByID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return store.ErrConflict
		}
	}
	cu := *u
	cp := *p
	stamp(&cu.CreatedAt)
	stamp(&cp.CreatedAt)
	s.usersByID[u.Id] = &cu
	s.profilesByUser[p.UserID] = &cp
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cu := *u
	return &cu, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.usersByID {
		if u.Username == username {
			cu := *u
			return &cu, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.usersByID {
		if u.Email == email {
			cu := *u
			return &cu, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByID[u.Id]; !ok {
		return store.ErrNotFound
	}
	cu := *u
	s.usersByID[u.Id] = &cu
	return nil
}

// ---- profiles ----

func (s *Store) ProfileByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profilesByUser[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profilesByUser[p.UserID]; !ok {
		return store.ErrNotFound
	}
	cp := *p
	s.profilesByUser[p.UserID] = &cp
	return nil
}

func (s *Store) ProfileStats(ctx context.Context, userID string) (model.ProfileStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats model.ProfileStats
	for _, p := range s.postsByID {
		if p.AuthorID != userID {
			continue
		}
		stats.TotalPosts++
		stats.TotalViews += p.Views
		for _, c := range s.commentsByID {
			if c.PostID == p.Id && c.Approved {
				stats.TotalComments++
			}
		}
	}
	return stats, nil
}

// ---- categories ----

func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categoriesByID {
		if existing.Slug == c.Slug {
			return store.ErrConflict
		}
	}
	cc := *c
	stamp(&cc.CreatedAt)
	s.categoriesByID[c.Id] = &cc
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Category, 0, len(s.categoriesByID))
	for _, c := range s.categoriesByID {
		cc := *c
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categoriesByID {
		if c.Slug == slug {
			cc := *c
			return &cc, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) PublishedPostCount(ctx context.Context, categoryID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.postsByID {
		if p.Published && p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// ---- posts ----

func (s *Store) CreatePost(ctx context.Context, p *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.postsByID {
		if existing.Slug == p.Slug {
			return store.ErrConflict
		}
	}
	cp := *p
	stamp(&cp.CreatedAt)
	stamp(&cp.UpdatedAt)
	s.postsByID[p.Id] = &cp
	return nil
}

func (s *Store) PostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.postsByID {
		if p.Slug == slug {
			return s.attachRelations(p), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdatePost(ctx context.Context, p *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.postsByID[p.Id]
	if !ok {
		return store.ErrNotFound
	}
	cp := *p
	// The counter is owned by IncrementViews; a stale struct must not rewind it.
	cp.Views = existing.Views
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now()
	cp.Author = nil
	cp.Category = nil
	s.postsByID[p.Id] = &cp
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.postsByID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.postsByID, id)
	for cid, c := range s.commentsByID {
		if c.PostID == id {
			delete(s.commentsByID, cid)
		}
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context, f store.PostFilter) ([]*model.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*model.Post{}
	for _, p := range s.postsByID {
		if !s.matches(p, f) {
			continue
		}
		matched = append(matched, s.attachRelations(p))
	}
	sortPosts(matched, f.Order)

	total := int64(len(matched))
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		lo := (page - 1) * f.PageSize
		if lo >= len(matched) {
			return []*model.Post{}, total, nil
		}
		hi := lo + f.PageSize
		if hi > len(matched) {
			hi = len(matched)
		}
		matched = matched[lo:hi]
	}
	return matched, total, nil
}

func (s *Store) matches(p *model.Post, f store.PostFilter) bool {
	if f.AuthorID != "" {
		if p.AuthorID != f.AuthorID {
			return false
		}
	} else if !p.Published && (f.ViewerID == "" || p.AuthorID != f.ViewerID) {
		return false
	}
	if f.FeaturedOnly && !p.Featured {
		return false
	}
	if f.CategorySlug != "" {
		if p.CategoryID == nil {
			return false
		}
		c, ok := s.categoriesByID[*p.CategoryID]
		if !ok || c.Slug != f.CategorySlug {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) &&
			!strings.Contains(strings.ToLower(p.Excerpt), needle) {
			return false
		}
	}
	return true
}

func sortPosts(posts []*model.Post, order store.PostOrder) {
	less := func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) }
	switch order {
	case store.OrderCreatedAsc:
		less = func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) }
	case store.OrderTitleAsc:
		less = func(i, j int) bool { return posts[i].Title < posts[j].Title }
	case store.OrderTitleDesc:
		less = func(i, j int) bool { return posts[i].Title > posts[j].Title }
	case store.OrderViewsAsc:
		less = func(i, j int) bool { return posts[i].Views < posts[j].Views }
	case store.OrderViewsDesc:
		less = func(i, j int) bool { return posts[i].Views > posts[j].Views }
	}
	sort.SliceStable(posts, less)
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postsByID[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Views++
	return nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.postsByID {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// attachRelations returns a copy of p with Author and Category pointers filled
// in, the moral equivalent of the postgres store's preloads. Caller must hold
// at least the read lock.
func (s *Store) attachRelations(p *model.Post) *model.Post {
	cp := *p
	if u, ok := s.usersByID[p.AuthorID]; ok {
		cu := *u
		cp.Author = &cu
	}
	if p.CategoryID != nil {
		if c, ok := s.categoriesByID[*p.CategoryID]; ok {
			cc := *c
			cp.Category = &cc
		}
	}
	return &cp
}

// ---- comments ----

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc := *c
	cc.Post = nil
	cc.User = nil
	stamp(&cc.CreatedAt)
	s.commentsByID[c.Id] = &cc
	return nil
}

func (s *Store) ApprovedCommentsByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*model.Comment{}
	for _, c := range s.commentsByID {
		if c.PostID != postID || !c.Approved {
			continue
		}
		cc := *c
		if c.UserID != nil {
			if u, ok := s.usersByID[*c.UserID]; ok {
				cu := *u
				cc.User = &cu
			}
		}
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ApprovedCommentCount(ctx context.Context, postID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.commentsByID {
		if c.PostID == postID && c.Approved {
			n++
		}
	}
	return n, nil
}

// ApproveComment flips the moderation flag. It exists for tests standing in
// for the out-of-band administrative path; the API never calls it.
func (s *Store) ApproveComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commentsByID[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Approved = true
	return nil
}

// CommentsByPost returns every comment on a post regardless of moderation
// state, oldest first. Test helper; the API only ever reads approved comments.
func (s *Store) CommentsByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*model.Comment{}
	for _, c := range s.commentsByID {
		if c.PostID != postID {
			continue
		}
		cc := *c
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CommentByID exists for tests inspecting moderation state.
func (s *Store) CommentByID(ctx context.Context, id string) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commentsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

// ---- refresh tokens ----

func (s *Store) SaveRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ct := *t
	s.refreshTokens[t.Token] = &ct
	return nil
}

func (s *Store) ConsumeRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.refreshTokens[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.refreshTokens, token)
	ct := *t
	return &ct, nil
}
