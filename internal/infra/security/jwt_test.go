package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
)

func newTestTokenService(t *testing.T, opts ...TokenOption) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{Secret: "test-secret", Algorithm: "HS256"}, opts...)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}
	return svc
}

func TestTokenRoundTripPerScope(t *testing.T) {
	svc := newTestTokenService(t)
	scopes := []domain.TokenScope{domain.ScopeAccess, domain.ScopeRefresh, domain.ScopeEmailVerify}

	for _, scope := range scopes {
		token, issued, err := svc.Issue("user@example.com", scope, time.Minute)
		if err != nil {
			t.Fatalf("Issue(%s) returned error: %v", scope, err)
		}
		claims, err := svc.Decode(token, scope)
		if err != nil {
			t.Fatalf("Decode(%s) returned error: %v", scope, err)
		}
		if claims.Subject != "user@example.com" {
			t.Fatalf("unexpected subject %q", claims.Subject)
		}
		if !claims.ExpiresAt.Equal(issued.ExpiresAt) {
			t.Fatalf("expiry mismatch: %s vs %s", claims.ExpiresAt, issued.ExpiresAt)
		}

		for _, other := range scopes {
			if other == scope {
				continue
			}
			if _, err := svc.Decode(token, other); !errors.Is(err, ErrWrongScope) {
				t.Fatalf("Decode(%s token as %s) = %v, want ErrWrongScope", scope, other, err)
			}
		}
	}
}

func TestEmailTokenIgnoresSessionLifetimes(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	svc, err := NewTokenService(TokenConfig{
		Secret:     "test-secret",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: time.Hour,
	}, WithTokenClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	_, claims, err := svc.IssueEmail("user@example.com")
	if err != nil {
		t.Fatalf("IssueEmail returned error: %v", err)
	}
	if want := now.Add(24 * time.Hour); !claims.ExpiresAt.Equal(want) {
		t.Fatalf("email token expires at %s, want %s", claims.ExpiresAt, want)
	}
	if claims.Scope != domain.ScopeEmailVerify {
		t.Fatalf("unexpected scope %q", claims.Scope)
	}
}

func TestTokenZeroTTLIsExpired(t *testing.T) {
	svc := newTestTokenService(t)

	token, _, err := svc.Issue("user@example.com", domain.ScopeAccess, 0)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = svc.Decode(token, domain.ScopeAccess)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry to classify as ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpiresWithClock(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, WithTokenClock(func() time.Time { return now }))

	token, err := svc.IssueAccess("user@example.com")
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	now = now.Add(29 * time.Minute)
	if _, err := svc.Decode(token, domain.ScopeAccess); err != nil {
		t.Fatalf("expected token to be valid before expiry, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := svc.Decode(token, domain.ScopeAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after 31 minutes, got %v", err)
	}
}

func TestEmailTokenLastsOneDay(t *testing.T) {
	now := time.Date(2025, time.January, 28, 9, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, WithTokenClock(func() time.Time { return now }))

	_, claims, err := svc.IssueEmail("user@example.com")
	if err != nil {
		t.Fatalf("IssueEmail returned error: %v", err)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != 24*time.Hour {
		t.Fatalf("expected 24h lifetime, got %s", got)
	}
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(TokenConfig{Secret: "another-secret"})
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}

	token, err := other.IssueAccess("user@example.com")
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}
	if _, err := svc.Decode(token, domain.ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeRejectsGarbageAndNoneAlg(t *testing.T) {
	svc := newTestTokenService(t)

	if _, err := svc.Decode("not-a-token", domain.ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, scopedClaims{
		Scope: domain.ScopeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := svc.Decode(raw, domain.ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg none, got %v", err)
	}
}

func TestNewTokenServiceValidatesConfig(t *testing.T) {
	if _, err := NewTokenService(TokenConfig{}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewTokenService(TokenConfig{Secret: "s", Algorithm: "RS256"}); err == nil {
		t.Fatal("expected error for asymmetric algorithm")
	}
}

func TestIssueRequiresSubject(t *testing.T) {
	svc := newTestTokenService(t)
	if _, _, err := svc.Issue("  ", domain.ScopeAccess, time.Minute); err == nil {
		t.Fatal("expected error for empty subject")
	}
}
