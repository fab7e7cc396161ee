package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/domain"
	"rivals-tracker/internal/store"

	"github.com/rs/zerolog"
)

type cachedPlayer struct {
	Data     json.RawMessage `json:"data"`
	CachedAt int64           `json:"cachedAt"`
}

// PlayerCacheRepository keeps the last successful player payload per player key.
type PlayerCacheRepository struct {
	store  store.Store
	logger zerolog.Logger
}

func NewPlayerCacheRepository(s store.Store, logger zerolog.Logger) *PlayerCacheRepository {
	return &PlayerCacheRepository{
		store:  s,
		logger: logger,
	}
}

func PlayerKey(player string) string {
	return strings.ToLower(player)
}

func playerCacheKey(player string) string {
	return constants.PlayerCachePrefix + PlayerKey(player)
}

// Get returns nil when nothing is cached. A malformed entry yields a *domain.ParseError.
func (r *PlayerCacheRepository) Get(ctx context.Context, player string) (*domain.CacheEntry, error) {
	key := playerCacheKey(player)
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read player cache: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var entry cachedPlayer
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, &domain.ParseError{Key: key, Err: err}
	}
	if len(entry.Data) == 0 || string(entry.Data) == "null" || entry.CachedAt == 0 {
		return nil, nil
	}

	return &domain.CacheEntry{
		PlayerKey: PlayerKey(player),
		Payload:   entry.Data,
		CachedAt:  time.UnixMilli(entry.CachedAt),
	}, nil
}

func (r *PlayerCacheRepository) Put(ctx context.Context, entry domain.CacheEntry) error {
	b, err := json.Marshal(cachedPlayer{
		Data:     entry.Payload,
		CachedAt: entry.CachedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode player cache: %w", err)
	}

	if err := r.store.Set(ctx, playerCacheKey(entry.PlayerKey), string(b)); err != nil {
		return fmt.Errorf("failed to write player cache: %w", err)
	}

	r.logger.Debug().
		Str("player", entry.PlayerKey).
		Time("cached_at", entry.CachedAt).
		Msg("player cache updated")
	return nil
}
