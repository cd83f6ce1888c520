package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/logger"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

const (
	maxUsernameLength  = 50
	maxUserEmailLength = 150
)

// SignupInput captures the payload for account creation.
type SignupInput struct {
	Username string
	Email    string
	Password string
	// Host is the public base URL used to build the confirmation link.
	Host string
}

// AuthService coordinates signup, login, token refresh, email confirmation
// and resolution of the principal behind an access token.
type AuthService struct {
	users    port.UserRepository
	sessions port.SessionCache
	tokens   port.TokenIssuer
	hasher   port.PasswordHasher
	policy   port.PasswordPolicyValidator
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	sessions port.SessionCache,
	tokens port.TokenIssuer,
	hasher port.PasswordHasher,
	policy port.PasswordPolicyValidator,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		policy:   policy,
		events:   events,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Signup creates an unverified principal and requests the confirmation email.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		return domain.User{}, invalid("username", "username is required")
	case n > maxUsernameLength:
		return domain.User{}, invalid("username", "username must be at most %d characters", maxUsernameLength)
	}
	if err := validateEmail(email, maxUserEmailLength); err != nil {
		return domain.User{}, err
	}
	if s.policy != nil {
		if err := s.policy.Validate(in.Password, username, email); err != nil {
			return domain.User{}, invalid("password", "%s", err.Error())
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrAccountExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, ErrAccountExists
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       created.ID,
			Username:     created.Username,
			Email:        created.Email,
			Role:         created.Role,
			RegisteredAt: s.now(),
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("publish user registered failed", zap.Int64("user_id", created.ID), zap.Error(err))
		}
	}
	if err := s.requestVerification(ctx, *created, in.Host); err != nil {
		s.logger.Warn("request verification email failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	}

	return created.Sanitized(), nil
}

// Login verifies credentials and returns a fresh token pair. The stored
// refresh token is replaced by the new one.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidEmail
		}
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.Verified {
		return domain.TokenPair{}, ErrEmailNotVerified
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domain.TokenPair{}, ErrInvalidPassword
	}

	return s.rotate(ctx, *user)
}

// Refresh exchanges a refresh token for a new pair. A token that does not
// equal the stored one clears the stored token, so both parties of a replay
// must log in again.
func (s *AuthService) Refresh(ctx context.Context, token string, clientIP string) (domain.TokenPair, error) {
	claims, err := s.tokens.Decode(token, domain.ScopeRefresh)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TokenPair{}, ErrUnauthenticated
		}
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.HasRefreshToken(token) {
		if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return domain.TokenPair{}, fmt.Errorf("clear refresh token: %w", err)
		}
		s.logger.Warn("refresh token mismatch",
			zap.Int64("user_id", user.ID),
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.String("client_ip", logger.MaskIP(clientIP)),
		)
		s.publishReuse(ctx, *user, clientIP)
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	return s.rotate(ctx, *user)
}

// ConfirmEmail marks the token's subject verified. It reports true when the
// principal was already verified, in which case nothing is written.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	claims, err := s.tokens.Decode(token, domain.ScopeEmailVerify)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrVerification
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}
	if user.Verified {
		return true, nil
	}

	if err := s.users.MarkVerified(ctx, user.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrVerification
		}
		return false, fmt.Errorf("mark verified: %w", err)
	}
	s.invalidateSession(ctx, user.Email)
	return false, nil
}

// RequestEmail re-sends the confirmation email. It reports true when the
// principal is already verified.
func (s *AuthService) RequestEmail(ctx context.Context, email, host string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}
	if user.Verified {
		return true, nil
	}
	if err := s.requestVerification(ctx, *user, host); err != nil {
		return false, err
	}
	return false, nil
}

// Authenticate resolves the principal behind an access token through the
// session cache. A cache outage falls back to persistence; a corrupt entry
// is returned as an error.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.tokens.Decode(token, domain.ScopeAccess)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	email := claims.Subject

	if s.sessions != nil {
		cached, ok, err := s.sessions.Get(ctx, email)
		switch {
		case err != nil && errors.Is(err, repository.ErrDecode):
			return domain.User{}, err
		case err != nil:
			s.logger.Warn("session cache read failed, falling back to database",
				zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		case ok:
			return *cached, nil
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUnauthenticated
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Set(ctx, *user); err != nil {
			s.logger.Warn("session cache write failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		}
	}
	return user.Sanitized(), nil
}

func (s *AuthService) rotate(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	access, err := s.tokens.IssueAccess(user.Email)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(user.Email)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.TokenTypeBearer,
	}, nil
}

func (s *AuthService) requestVerification(ctx context.Context, user domain.User, host string) error {
	token, claims, err := s.tokens.IssueEmail(user.Email)
	if err != nil {
		return fmt.Errorf("issue email token: %w", err)
	}
	if s.events == nil {
		return nil
	}
	event := domain.EmailVerificationRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Token:       token,
		Host:        host,
		RequestedAt: claims.IssuedAt,
		ExpiresAt:   claims.ExpiresAt,
	}
	if err := s.events.PublishEmailVerificationRequested(ctx, event); err != nil {
		return fmt.Errorf("publish verification request: %w", err)
	}
	return nil
}

func (s *AuthService) publishReuse(ctx context.Context, user domain.User, clientIP string) {
	if s.events == nil {
		return
	}
	event := domain.RefreshTokenReusedEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		Email:      user.Email,
		DetectedAt: s.now(),
	}
	if clientIP != "" {
		event.IPAddress = &clientIP
	}
	if err := s.events.PublishRefreshTokenReused(ctx, event); err != nil {
		s.logger.Warn("publish refresh token reuse failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

func (s *AuthService) invalidateSession(ctx context.Context, email string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Invalidate(ctx, email); err != nil {
		s.logger.Warn("session cache invalidate failed", zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	}
}

func validateEmail(email string, maxLength int) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	if utf8.RuneCountInString(email) > maxLength {
		return invalid("email", "email must be at most %d characters", maxLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "value is not a valid email address")
	}
	return nil
}
