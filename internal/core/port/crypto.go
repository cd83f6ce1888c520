package port

import "github.com/InkyWorld/goit-web-hw-14/internal/core/domain"

// PasswordPolicyValidator enforces password strength requirements.
type PasswordPolicyValidator interface {
	Validate(password string, inputs ...string) error
}

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}

// TokenIssuer signs and decodes scoped tokens.
type TokenIssuer interface {
	IssueAccess(subject string) (string, error)
	IssueRefresh(subject string) (string, error)
	IssueEmail(subject string) (string, domain.TokenClaims, error)
	Decode(token string, expected domain.TokenScope) (domain.TokenClaims, error)
}
