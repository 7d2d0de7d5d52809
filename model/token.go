package model

import "time"

/*

RefreshToken is a server-stored long-lived credential

Token: the opaque random token string handed to the client, primary key
UserID: owning user
CreatedAt: time when entity is created
ExpiresAt: hard expiry; expired rows are equivalent to absent ones

A row's presence is what makes the token valid: rotation and revocation both
delete the row, so a consumed or revoked token can never mint another pair.

*/
type RefreshToken struct {
	Token     string `gorm:"primaryKey"`
	UserID    string `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its hard expiry at time now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
