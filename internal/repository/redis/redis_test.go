package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/domain"
	"github.com/InkyWorld/goit-web-hw-14/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func sampleContact(id int64) domain.Contact {
	created := time.Date(2025, time.June, 1, 10, 30, 0, 0, time.UTC)
	info := "met at conference"
	return domain.Contact{
		ID:             id,
		Name:           "Ann",
		Surname:        "Lee",
		Email:          "ann@example.com",
		Phone:          "0501234567",
		BirthDate:      time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
		AdditionalInfo: &info,
		OwnerID:        7,
		CreatedAt:      &created,
		UpdatedAt:      &created,
	}
}

func TestStoreGetMissAndSetEx(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewStore(client)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "absent"); err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := store.SetEx(ctx, "k", time.Minute, []byte("v")); err != nil {
		t.Fatalf("SetEx returned error: %v", err)
	}
	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(value) != "v" {
		t.Fatalf("unexpected get result %q ok=%v err=%v", value, ok, err)
	}
	if ttl := server.TTL("k"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	if err := store.SetEx(ctx, "k", 0, []byte("v")); err == nil {
		t.Fatal("expected error for zero ttl")
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestStoreReportsUpstreamFailure(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewStore(client)
	server.Close()

	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestSessionCacheRoundTrip(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewSessionCache(NewStore(client), 0, nil)
	ctx := context.Background()

	now := time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	token := "secret-refresh"
	user := domain.User{
		ID:           5,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "argon2id$...",
		Verified:     true,
		RefreshToken: &token,
		Role:         domain.RoleModerator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := cache.Set(ctx, user); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if ttl := server.TTL("user:alice@example.com"); ttl != 900*time.Second {
		t.Fatalf("expected 900s ttl, got %v", ttl)
	}

	got, ok, err := cache.Get(ctx, "alice@example.com")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.ID != 5 || got.Role != domain.RoleModerator || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if got.PasswordHash != "" || got.RefreshToken != nil {
		t.Fatal("session snapshot must not carry secrets")
	}

	if err := cache.Invalidate(ctx, "alice@example.com"); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "alice@example.com"); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestSessionCacheCorruptPayload(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewSessionCache(NewStore(client), time.Minute, nil)

	if err := server.Set("user:bob@example.com", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, _, err := cache.Get(context.Background(), "bob@example.com")
	var decodeErr *repository.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Key != "user:bob@example.com" {
		t.Fatalf("unexpected key %q", decodeErr.Key)
	}
}

func TestContactCacheListRoundTrip(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewContactCache(NewStore(client), 0, nil)
	ctx := context.Background()

	contacts := []domain.Contact{sampleContact(1), sampleContact(2)}
	contacts[1].AdditionalInfo = nil
	contacts[1].CreatedAt = nil
	contacts[1].UpdatedAt = nil

	if err := cache.SetList(ctx, "contacts:user=7:limit=10:offset=0", contacts); err != nil {
		t.Fatalf("SetList returned error: %v", err)
	}
	if ttl := server.TTL("contacts:user=7:limit=10:offset=0"); ttl != time.Minute {
		t.Fatalf("expected 60s ttl, got %v", ttl)
	}

	got, ok, err := cache.GetList(ctx, "contacts:user=7:limit=10:offset=0")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(got))
	}
	if *got[0].AdditionalInfo != "met at conference" || !got[0].BirthDate.Equal(contacts[0].BirthDate) {
		t.Fatalf("unexpected first contact %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(*contacts[0].CreatedAt) {
		t.Fatalf("created_at not preserved: %v", got[0].CreatedAt)
	}
	if got[1].AdditionalInfo != nil || got[1].CreatedAt != nil {
		t.Fatalf("expected absent optional fields, got %+v", got[1])
	}
}

func TestContactCacheEmptyListIsHit(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewContactCache(NewStore(client), time.Minute, nil)
	ctx := context.Background()

	if err := cache.SetList(ctx, "k", nil); err != nil {
		t.Fatalf("SetList returned error: %v", err)
	}
	got, ok, err := cache.GetList(ctx, "k")
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("expected empty hit, got %v ok=%v err=%v", got, ok, err)
	}
}

func TestContactCacheCorruptPayloads(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewContactCache(NewStore(client), time.Minute, nil)
	ctx := context.Background()

	cases := map[string]string{
		"garbage":       "<<<",
		"null":          "null",
		"unknown field": `[{"id":1,"name":"a","surname":"b","email":"e","phone":"p","date_of_birth":"1990-01-01","user_id":1,"extra":true}]`,
		"bad date":      `[{"id":1,"name":"a","surname":"b","email":"e","phone":"p","date_of_birth":"01/01/1990","user_id":1}]`,
		"missing owner": `[{"id":1,"name":"a","surname":"b","email":"e","phone":"p","date_of_birth":"1990-01-01"}]`,
	}
	for name, payload := range cases {
		if err := server.Set("list", payload); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, _, err := cache.GetList(ctx, "list"); !errors.Is(err, repository.ErrDecode) {
			t.Errorf("%s: expected ErrDecode, got %v", name, err)
		}
	}

	if err := server.Set("one", `{"id":"x"}`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := cache.GetOne(ctx, "one"); !errors.Is(err, repository.ErrDecode) {
		t.Fatalf("expected ErrDecode for single contact, got %v", err)
	}
}

func TestContactCacheSingleAndInvalidate(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewContactCache(NewStore(client), time.Minute, nil)
	ctx := context.Background()

	if err := cache.SetOne(ctx, "contact:user=7:pk=1", sampleContact(1)); err != nil {
		t.Fatalf("SetOne returned error: %v", err)
	}
	got, ok, err := cache.GetOne(ctx, "contact:user=7:pk=1")
	if err != nil || !ok || got.ID != 1 {
		t.Fatalf("unexpected GetOne result %+v ok=%v err=%v", got, ok, err)
	}

	if err := cache.Invalidate(ctx, "contact:user=7:pk=1"); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}
	if _, ok, _ := cache.GetOne(ctx, "contact:user=7:pk=1"); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestRateLimitRepositorySlidingWindow(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rl", TTL: time.Minute})
	ctx := context.Background()

	base := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := repo.RecordAttempt(ctx, "contacts:1.2.3.4", base.Add(time.Duration(i)*5*time.Second)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}
	if ttl := server.TTL("rl:contacts:1.2.3.4"); ttl != time.Minute {
		t.Fatalf("expected key ttl 1m, got %v", ttl)
	}

	ref := base.Add(22 * time.Second)
	if err := repo.TrimWindow(ctx, "contacts:1.2.3.4", 20*time.Second, ref); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}
	count, err := repo.CountAttempts(ctx, "contacts:1.2.3.4", 20*time.Second, ref)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 attempts in window, got %d", count)
	}

	oldest, ok, err := repo.OldestAttempt(ctx, "contacts:1.2.3.4", 20*time.Second, ref)
	if err != nil || !ok {
		t.Fatalf("OldestAttempt ok=%v err=%v", ok, err)
	}
	if !oldest.Equal(base.Add(5 * time.Second)) {
		t.Fatalf("unexpected oldest attempt %v", oldest)
	}

	if _, err := repo.CountAttempts(ctx, "x", 0, ref); err == nil {
		t.Fatal("expected error for non-positive window")
	}
}
