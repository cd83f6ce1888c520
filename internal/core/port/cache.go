package port

import (
	"context"
	"time"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
)

// Cache is the key-value store backing session and query entries.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// SessionCache stores principal snapshots keyed by email.
type SessionCache interface {
	Get(ctx context.Context, email string) (*domain.User, bool, error)
	Set(ctx context.Context, user domain.User) error
	Invalidate(ctx context.Context, email string) error
}

// ContactCache stores serialized contact query results keyed by fingerprint.
type ContactCache interface {
	GetList(ctx context.Context, key string) ([]domain.Contact, bool, error)
	SetList(ctx context.Context, key string, contacts []domain.Contact) error
	GetOne(ctx context.Context, key string) (*domain.Contact, bool, error)
	SetOne(ctx context.Context, key string, contact domain.Contact) error
	Invalidate(ctx context.Context, keys ...string) error
}
