package domain

import "time"

// TokenScope declares the purpose a token was issued for.
type TokenScope string

const (
	ScopeAccess      TokenScope = "access_token"
	ScopeRefresh     TokenScope = "refresh_token"
	ScopeEmailVerify TokenScope = "email_token"
)

// TokenTypeBearer is the token_type returned alongside a token pair.
const TokenTypeBearer = "bearer"

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// TokenClaims is the decoded view of a signed token.
type TokenClaims struct {
	Subject   string
	Scope     TokenScope
	IssuedAt  time.Time
	ExpiresAt time.Time
}
