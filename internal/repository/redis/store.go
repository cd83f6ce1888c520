package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
)

// Store is the raw key-value adapter shared by the session and contact caches.
type Store struct {
	client *red.Client
}

var _ port.Cache = (*Store)(nil)

// NewStore wraps client.
func NewStore(client *red.Client) *Store {
	return &Store{client: client}
}

// Get returns the stored bytes and whether the key exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, red.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// SetEx stores value under key with ttl in a single SET EX command.
func (s *Store) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	if ttl <= 0 {
		return fmt.Errorf("redis setex %s: ttl must be positive", key)
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis setex %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
