package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Verified     bool
	AvatarURL    *string
	RefreshToken *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy without secret material.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = nil
	return u
}

// HasRefreshToken reports whether token equals the stored refresh token.
func (u User) HasRefreshToken(token string) bool {
	return u.RefreshToken != nil && *u.RefreshToken == token
}
