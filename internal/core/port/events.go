package port

import (
	"context"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishEmailVerificationRequested(ctx context.Context, event domain.EmailVerificationRequestedEvent) error
	PublishRefreshTokenReused(ctx context.Context, event domain.RefreshTokenReusedEvent) error
}
