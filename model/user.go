package model

import "time"

/*

User is a registered account

Id: primary key
CreatedAt: time when entity is created
Username: unique login name, immutable after registration
Email: unique contact address
PasswordHash: bcrypt hash of the password, never exposed through any view
FirstName/LastName: display name fields, mutable through profile update
Profile: the 1:1 profile record, created in the same transaction as the user

*/
type User struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	Username     string `gorm:"uniqueIndex"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	FirstName    string
	LastName     string
	Profile      *Profile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// FullName is the preferred display name, falling back to the username when
// no name fields are set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// UserView is the externally visible shape of a User.
type UserView struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func NewUserView(u *User) *UserView {
	return &UserView{
		Id:        u.Id,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
