package model

import "time"

// Role gates post authorship. It is assigned once at registration and never
// changed through the profile-update path; only an out-of-band process may
// alter it afterwards.
type Role string

const (
	RoleReader Role = "reader"
	RoleAuthor Role = "author"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleReader || r == RoleAuthor
}

/*

Profile is the 1:1 companion record of a User

Id: primary key
CreatedAt: time when entity is created
UserID: owning user, exactly one profile per user
Role: reader or author, controls who may create posts
Bio/Avatar/Website/Location: free-form presentation fields

Aggregate counters (total posts, views, comments) are intentionally NOT stored
here. They are recomputed from the post and comment tables whenever a profile
view is built, so they cannot drift.

*/
type Profile struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    string `gorm:"uniqueIndex;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Role      Role
	Bio       string
	Avatar    string
	Website   string
	Location  string
}

// ProfileStats carries the derived counters for a profile view. Counts are
// taken fresh from storage by the caller.
type ProfileStats struct {
	TotalPosts    int64
	TotalViews    int64
	TotalComments int64
}

// ProfileView is the externally visible shape of a Profile, flattened with the
// owning user's identity fields.
type ProfileView struct {
	Id            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          Role      `json:"role"`
	Bio           string    `json:"bio"`
	Avatar        string    `json:"avatar"`
	Website       string    `json:"website"`
	Location      string    `json:"location"`
	TotalPosts    int64     `json:"total_posts"`
	TotalViews    int64     `json:"total_views"`
	TotalComments int64     `json:"total_comments"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewProfileView(u *User, p *Profile, stats ProfileStats) *ProfileView {
	return &ProfileView{
		Id:            p.Id,
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          p.Role,
		Bio:           p.Bio,
		Avatar:        p.Avatar,
		Website:       p.Website,
		Location:      p.Location,
		TotalPosts:    stats.TotalPosts,
		TotalViews:    stats.TotalViews,
		TotalComments: stats.TotalComments,
		CreatedAt:     p.CreatedAt,
	}
}
