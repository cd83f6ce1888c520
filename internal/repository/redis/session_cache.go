package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
	"github.com/InkyWorld/goit-web-hw-14/internal/infra/telemetry"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

const (
	defaultSessionPrefix = "user"
	defaultSessionTTL    = 900 * time.Second
	sessionFamily        = "session"
)

// SessionCache stores principal snapshots under user:<email>.
type SessionCache struct {
	store   port.Cache
	ttl     time.Duration
	metrics *telemetry.CacheMetrics
}

var _ port.SessionCache = (*SessionCache)(nil)

// NewSessionCache builds a session cache. A non-positive ttl selects 900s.
func NewSessionCache(store port.Cache, ttl time.Duration, metrics *telemetry.CacheMetrics) *SessionCache {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionCache{store: store, ttl: ttl, metrics: metrics}
}

// SessionKey returns the cache key for email.
func SessionKey(email string) string {
	return defaultSessionPrefix + ":" + email
}

// Get returns the cached principal for email. A payload that fails to parse
// is reported as *repository.DecodeError.
func (c *SessionCache) Get(ctx context.Context, email string) (*domain.User, bool, error) {
	key := SessionKey(email)
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.metrics.ObserveLookup(sessionFamily, telemetry.CacheError)
		return nil, false, err
	}
	if !ok {
		c.metrics.ObserveLookup(sessionFamily, telemetry.CacheMiss)
		return nil, false, nil
	}

	var payload UserPayload
	if err := decodeStrict(raw, &payload); err != nil {
		c.metrics.ObserveLookup(sessionFamily, telemetry.CacheCorrupt)
		return nil, false, &repository.DecodeError{Key: key, Err: err}
	}
	user, err := UserFromSerializable(payload)
	if err != nil {
		c.metrics.ObserveLookup(sessionFamily, telemetry.CacheCorrupt)
		return nil, false, &repository.DecodeError{Key: key, Err: err}
	}

	c.metrics.ObserveLookup(sessionFamily, telemetry.CacheHit)
	return &user, true, nil
}

// Set stores a snapshot of user with the configured ttl.
func (c *SessionCache) Set(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(UserToSerializable(user))
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}
	err = c.store.SetEx(ctx, SessionKey(user.Email), c.ttl, raw)
	c.metrics.ObserveWrite(sessionFamily, err)
	return err
}

// Invalidate drops the snapshot for email.
func (c *SessionCache) Invalidate(ctx context.Context, email string) error {
	return c.store.Delete(ctx, SessionKey(email))
}
