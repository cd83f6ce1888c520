package port

import (
	"context"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, id int64, token *string) error
	MarkVerified(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email string, url *string) (*domain.User, error)
}
