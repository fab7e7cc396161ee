package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"rivals-tracker/internal/domain"
	"rivals-tracker/internal/store"

	"github.com/rs/zerolog"
)

func TestPlayerCacheRoundTripUsesLowercasedKey(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := NewPlayerCacheRepository(s, zerolog.New(io.Discard))

	at := time.UnixMilli(1700000000123)
	err := repo.Put(ctx, domain.CacheEntry{
		PlayerKey: "Spiderman123",
		Payload:   json.RawMessage(`{"player":{"player_name":"Spiderman123"}}`),
		CachedAt:  at,
	})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	raw, ok, _ := s.Get(ctx, "playerStats:spiderman123")
	if !ok {
		t.Fatalf("expected entry under lowercased key")
	}
	if raw != `{"data":{"player":{"player_name":"Spiderman123"}},"cachedAt":1700000000123}` {
		t.Fatalf("unexpected stored value %s", raw)
	}

	entry, err := repo.Get(ctx, "SPIDERMAN123")
	if err != nil || entry == nil {
		t.Fatalf("expected entry, got %v %v", entry, err)
	}
	if !entry.CachedAt.Equal(at) {
		t.Fatalf("expected cachedAt %v, got %v", at, entry.CachedAt)
	}
}

func TestPlayerCacheMalformedAndEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := NewPlayerCacheRepository(s, zerolog.New(io.Discard))

	_ = s.Set(ctx, "playerStats:bad", "{not json")
	var pe *domain.ParseError
	if _, err := repo.Get(ctx, "bad"); !errors.As(err, &pe) {
		t.Fatalf("expected parse error, got %v", err)
	}

	_ = s.Set(ctx, "playerStats:nodata", `{"cachedAt":5}`)
	if entry, err := repo.Get(ctx, "nodata"); err != nil || entry != nil {
		t.Fatalf("expected entry without data to be ignored, got %v %v", entry, err)
	}

	if entry, err := repo.Get(ctx, "absent"); err != nil || entry != nil {
		t.Fatalf("expected nil for absent entry, got %v %v", entry, err)
	}
}

func TestUpdateLockRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := NewUpdateLockRepository(s, zerolog.New(io.Discard))

	until := time.UnixMilli(1700001800000)
	if err := repo.Set(ctx, domain.UpdateLock{PlayerKey: "Hulk", LockedUntil: until}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if raw, _, _ := s.Get(ctx, "playerUpdateLock:hulk"); raw != "1700001800000" {
		t.Fatalf("expected epoch-ms string, got %q", raw)
	}

	lock, err := repo.Get(ctx, "hulk")
	if err != nil || lock == nil || !lock.LockedUntil.Equal(until) {
		t.Fatalf("unexpected lock %v %v", lock, err)
	}

	if err := repo.Clear(ctx, "HULK"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if lock, _ := repo.Get(ctx, "hulk"); lock != nil {
		t.Fatalf("expected lock cleared")
	}

	_ = s.Set(ctx, "playerUpdateLock:hulk", "NaN-ish")
	if lock, err := repo.Get(ctx, "hulk"); err != nil || lock != nil {
		t.Fatalf("expected malformed lock ignored, got %v %v", lock, err)
	}
}
