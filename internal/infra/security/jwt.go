package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
)

var (
	// ErrInvalidToken indicates a malformed, tampered or expired token.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrTokenExpired indicates the token is past its expiry. It matches ErrInvalidToken.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
	// ErrWrongScope indicates a valid token presented for a different purpose.
	ErrWrongScope = errors.New("jwt: invalid scope for token")
)

// EmailTokenTTL is the fixed lifetime of email verification tokens.
const EmailTokenTTL = 24 * time.Hour

const (
	defaultAccessTokenTTL  = 30 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenConfig holds the signing secret, algorithm and session lifetimes.
type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithTokenClock overrides the clock used for issuing and validating tokens.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// TokenService issues and decodes HMAC-signed scoped tokens.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	cfg    TokenConfig
	now    func() time.Time
}

var _ port.TokenIssuer = (*TokenService)(nil)

type scopedClaims struct {
	Scope domain.TokenScope `json:"scope"`
	jwt.RegisteredClaims
}

// NewTokenService validates cfg and builds the service.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt: secret is required")
	}

	var method *jwt.SigningMethodHMAC
	switch strings.ToUpper(cfg.Algorithm) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("jwt: unsupported algorithm %q", cfg.Algorithm)
	}

	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTokenTTL
	}

	svc := &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue signs a token for subject with the given scope. ttl is used as is,
// so a zero ttl yields a token that is already expired.
func (s *TokenService) Issue(subject string, scope domain.TokenScope, ttl time.Duration) (string, domain.TokenClaims, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", domain.TokenClaims{}, fmt.Errorf("jwt: subject is required")
	}

	now := s.now().UTC()
	claims := scopedClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.TokenClaims{}, fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, toDomainClaims(claims), nil
}

// IssueAccess signs an access token with the configured access lifetime.
func (s *TokenService) IssueAccess(subject string) (string, error) {
	token, _, err := s.Issue(subject, domain.ScopeAccess, s.cfg.AccessTTL)
	return token, err
}

// IssueRefresh signs a refresh token with the configured refresh lifetime.
func (s *TokenService) IssueRefresh(subject string) (string, error) {
	token, _, err := s.Issue(subject, domain.ScopeRefresh, s.cfg.RefreshTTL)
	return token, err
}

// IssueEmail signs an email verification token valid for EmailTokenTTL.
func (s *TokenService) IssueEmail(subject string) (string, domain.TokenClaims, error) {
	return s.Issue(subject, domain.ScopeEmailVerify, EmailTokenTTL)
}

// Decode verifies signature and expiry and then checks the scope.
func (s *TokenService) Decode(token string, expected domain.TokenScope) (domain.TokenClaims, error) {
	var claims scopedClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.TokenClaims{}, ErrTokenExpired
		}
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return domain.TokenClaims{}, ErrInvalidToken
	}
	if claims.Scope != expected {
		return domain.TokenClaims{}, ErrWrongScope
	}

	return toDomainClaims(claims), nil
}

func toDomainClaims(c scopedClaims) domain.TokenClaims {
	out := domain.TokenClaims{Subject: c.Subject, Scope: c.Scope}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
