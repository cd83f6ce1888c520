package domain

import "time"

// UserRegisteredEvent represents the payload for contacts.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       int64
	Username     string
	Email        string
	Role         Role
	RegisteredAt time.Time
}

// EmailVerificationRequestedEvent asks the mailer to deliver a confirmation link.
type EmailVerificationRequestedEvent struct {
	EventID     string
	UserID      int64
	Username    string
	Email       string
	Token       string
	Host        string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// RefreshTokenReusedEvent signals a refresh token that did not match the stored one.
type RefreshTokenReusedEvent struct {
	EventID    string
	UserID     int64
	Email      string
	DetectedAt time.Time
	IPAddress  *string
}
