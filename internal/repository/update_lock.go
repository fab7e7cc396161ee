package repository

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/domain"
	"rivals-tracker/internal/store"

	"github.com/rs/zerolog"
)

// UpdateLockRepository persists the update cooldown as an epoch-ms deadline.
type UpdateLockRepository struct {
	store  store.Store
	logger zerolog.Logger
}

func NewUpdateLockRepository(s store.Store, logger zerolog.Logger) *UpdateLockRepository {
	return &UpdateLockRepository{
		store:  s,
		logger: logger,
	}
}

func updateLockKey(player string) string {
	return constants.UpdateLockPrefix + PlayerKey(player)
}

// Get returns nil when no lock is stored or the stored value is not a number.
func (r *UpdateLockRepository) Get(ctx context.Context, player string) (*domain.UpdateLock, error) {
	raw, ok, err := r.store.Get(ctx, updateLockKey(player))
	if err != nil {
		return nil, fmt.Errorf("failed to read update lock: %w", err)
	}
	if !ok {
		return nil, nil
	}

	ms, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		r.logger.Warn().Str("player", PlayerKey(player)).Str("value", raw).Msg("ignoring malformed update lock")
		return nil, nil
	}

	return &domain.UpdateLock{
		PlayerKey:   PlayerKey(player),
		LockedUntil: time.UnixMilli(int64(ms)),
	}, nil
}

func (r *UpdateLockRepository) Set(ctx context.Context, lock domain.UpdateLock) error {
	value := strconv.FormatInt(lock.LockedUntil.UnixMilli(), 10)
	if err := r.store.Set(ctx, updateLockKey(lock.PlayerKey), value); err != nil {
		return fmt.Errorf("failed to write update lock: %w", err)
	}
	r.logger.Debug().
		Str("player", PlayerKey(lock.PlayerKey)).
		Time("locked_until", lock.LockedUntil).
		Msg("update lock set")
	return nil
}

func (r *UpdateLockRepository) Clear(ctx context.Context, player string) error {
	if err := r.store.Remove(ctx, updateLockKey(player)); err != nil {
		return fmt.Errorf("failed to clear update lock: %w", err)
	}
	return nil
}
