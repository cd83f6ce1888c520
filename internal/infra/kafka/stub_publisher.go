package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, userID int64, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Int64("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"username":      event.Username,
		"email":         logger.MaskEmail(event.Email),
		"role":          event.Role,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent(EventUserRegistered, event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishEmailVerificationRequested logs the confirmation link so it can be
// followed by hand without a mailer.
func (p *StubPublisher) PublishEmailVerificationRequested(_ context.Context, event domain.EmailVerificationRequestedEvent) error {
	payload := map[string]any{
		"username":   event.Username,
		"email":      logger.MaskEmail(event.Email),
		"link":       VerificationLink(event.Host, event.Token),
		"expires_at": event.ExpiresAt,
	}
	p.logEvent(EventEmailVerificationRequested, event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishRefreshTokenReused logs auth.refresh_token_reused events.
func (p *StubPublisher) PublishRefreshTokenReused(_ context.Context, event domain.RefreshTokenReusedEvent) error {
	ip := ""
	if event.IPAddress != nil {
		ip = logger.MaskIP(*event.IPAddress)
	}
	payload := map[string]any{
		"email":       logger.MaskEmail(event.Email),
		"ip_address":  ip,
		"detected_at": event.DetectedAt,
	}
	p.logEvent(EventRefreshTokenReused, event.UserID, event.DetectedAt, payload)
	return nil
}

// VerificationLink joins the public base URL with the confirmation route.
func VerificationLink(host, token string) string {
	for len(host) > 0 && host[len(host)-1] == '/' {
		host = host[:len(host)-1]
	}
	return host + "/api/auth/confirmed_email/" + token
}

var _ port.EventPublisher = (*StubPublisher)(nil)
