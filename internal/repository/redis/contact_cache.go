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
	defaultQueryTTL = 60 * time.Second
	contactFamily   = "contacts"
)

// ContactCache stores serialized contact query results keyed by fingerprint.
type ContactCache struct {
	store   port.Cache
	ttl     time.Duration
	metrics *telemetry.CacheMetrics
}

var _ port.ContactCache = (*ContactCache)(nil)

// NewContactCache builds a contact cache. A non-positive ttl selects 60s.
func NewContactCache(store port.Cache, ttl time.Duration, metrics *telemetry.CacheMetrics) *ContactCache {
	if ttl <= 0 {
		ttl = defaultQueryTTL
	}
	return &ContactCache{store: store, ttl: ttl, metrics: metrics}
}

// GetList returns the cached list under key.
func (c *ContactCache) GetList(ctx context.Context, key string) ([]domain.Contact, bool, error) {
	raw, ok, err := c.lookup(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var payloads []ContactPayload
	if err := decodeStrict(raw, &payloads); err != nil {
		return nil, false, c.corrupt(key, err)
	}
	if payloads == nil {
		return nil, false, c.corrupt(key, fmt.Errorf("expected a JSON array"))
	}
	contacts := make([]domain.Contact, 0, len(payloads))
	for i, p := range payloads {
		contact, err := FromSerializable(p)
		if err != nil {
			return nil, false, c.corrupt(key, fmt.Errorf("item %d: %w", i, err))
		}
		contacts = append(contacts, contact)
	}

	c.metrics.ObserveLookup(contactFamily, telemetry.CacheHit)
	return contacts, true, nil
}

// SetList stores contacts under key.
func (c *ContactCache) SetList(ctx context.Context, key string, contacts []domain.Contact) error {
	payloads := make([]ContactPayload, 0, len(contacts))
	for _, contact := range contacts {
		payloads = append(payloads, ToSerializable(contact))
	}
	return c.write(ctx, key, payloads)
}

// GetOne returns the cached contact under key.
func (c *ContactCache) GetOne(ctx context.Context, key string) (*domain.Contact, bool, error) {
	raw, ok, err := c.lookup(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var payload ContactPayload
	if err := decodeStrict(raw, &payload); err != nil {
		return nil, false, c.corrupt(key, err)
	}
	contact, err := FromSerializable(payload)
	if err != nil {
		return nil, false, c.corrupt(key, err)
	}

	c.metrics.ObserveLookup(contactFamily, telemetry.CacheHit)
	return &contact, true, nil
}

// SetOne stores contact under key.
func (c *ContactCache) SetOne(ctx context.Context, key string, contact domain.Contact) error {
	return c.write(ctx, key, ToSerializable(contact))
}

// Invalidate drops keys.
func (c *ContactCache) Invalidate(ctx context.Context, keys ...string) error {
	return c.store.Delete(ctx, keys...)
}

func (c *ContactCache) lookup(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.ObserveLookup(contactFamily, telemetry.CacheError)
	case !ok:
		c.metrics.ObserveLookup(contactFamily, telemetry.CacheMiss)
	}
	return raw, ok, err
}

func (c *ContactCache) write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = c.store.SetEx(ctx, key, c.ttl, raw)
	c.metrics.ObserveWrite(contactFamily, err)
	return err
}

func (c *ContactCache) corrupt(key string, err error) error {
	c.metrics.ObserveLookup(contactFamily, telemetry.CacheCorrupt)
	return &repository.DecodeError{Key: key, Err: err}
}
