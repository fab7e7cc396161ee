// Package viewer drives a single player page: cached data, the update cooldown and its countdown.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/domain"
	"rivals-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var ErrUpdateLocked = errors.New("update is locked")

const UpdateRequestedMessage = "Update requested. Refreshing stats..."

type DataState int

const (
	NoCache DataState = iota
	Fresh
	Stale
)

func (s DataState) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "no-cache"
	}
}

type LockState int

const (
	Unlocked LockState = iota
	Locked
)

func (s LockState) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlocked"
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Options struct {
	FreshnessWindow time.Duration
	LockWindow      time.Duration
	Clock           Clock
}

// Snapshot is a consistent view of the page for rendering.
type Snapshot struct {
	Player         string
	Data           json.RawMessage
	CachedAt       time.Time
	DataState      DataState
	LockState      LockState
	Remaining      time.Duration
	Loading        bool
	Updating       bool
	UpdateDisabled bool
	Error          string
	UpdateMessage  string
}

type Page struct {
	player    string
	client    Client
	cache     *repository.PlayerCacheRepository
	locks     *repository.UpdateLockRepository
	clock     Clock
	freshness time.Duration
	lockFor   time.Duration
	logger    zerolog.Logger
	flight    singleflight.Group

	mu            sync.Mutex
	data          json.RawMessage
	cachedAt      time.Time
	state         DataState
	nextUpdateAt  time.Time
	loading       bool
	updating      bool
	errMsg        string
	updateMessage string
}

func NewPage(player string, client Client, cache *repository.PlayerCacheRepository, locks *repository.UpdateLockRepository, opts Options, logger zerolog.Logger) *Page {
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = constants.FreshnessWindow
	}
	if opts.LockWindow <= 0 {
		opts.LockWindow = constants.UpdateLockWindow
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	return &Page{
		player:    player,
		client:    client,
		cache:     cache,
		locks:     locks,
		clock:     opts.Clock,
		freshness: opts.FreshnessWindow,
		lockFor:   opts.LockWindow,
		logger:    logger.With().Str("player", repository.PlayerKey(player)).Logger(),
	}
}

// Mount serves a fresh cache entry if there is one and fetches otherwise.
// A persisted update lock is restored either way.
func (p *Page) Mount(ctx context.Context) error {
	entry, err := p.cache.Get(ctx, p.player)
	var pe *domain.ParseError
	if errors.As(err, &pe) {
		p.logger.Warn().Err(err).Msg("failed to parse cached player data")
		entry, err = nil, nil
	}
	if err != nil {
		return err
	}

	lock, err := p.locks.Get(ctx, p.player)
	if err != nil {
		return err
	}

	now := p.clock.Now()
	fetch := true

	p.mu.Lock()
	switch {
	case entry == nil:
		p.state = NoCache
	case now.Sub(entry.CachedAt) < p.freshness:
		p.data = entry.Payload
		p.cachedAt = entry.CachedAt
		p.state = Fresh
		fetch = false
	default:
		p.state = Stale
	}
	if lock != nil {
		p.nextUpdateAt = lock.LockedUntil
	}
	p.mu.Unlock()

	p.logger.Debug().
		Str("state", p.DataState().String()).
		Bool("fetch", fetch).
		Msg("page mounted")

	if fetch {
		return p.Refresh(ctx)
	}
	return nil
}

// Refresh fetches the player and overwrites the cache on success only.
// Concurrent calls share one request.
func (p *Page) Refresh(ctx context.Context) error {
	_, err, _ := p.flight.Do(repository.PlayerKey(p.player), func() (any, error) {
		return nil, p.fetch(ctx)
	})
	return err
}

func (p *Page) fetch(ctx context.Context) error {
	p.mu.Lock()
	p.loading = true
	p.errMsg = ""
	p.mu.Unlock()

	raw, err := p.client.FetchPlayer(ctx, p.player)
	if err != nil {
		p.mu.Lock()
		p.loading = false
		p.errMsg = failureMessage(err, "Request failed", "Failed to load player data")
		p.mu.Unlock()
		p.logger.Warn().Err(err).Msg("player fetch failed")
		return err
	}

	now := p.clock.Now()
	if err := p.cache.Put(ctx, domain.CacheEntry{PlayerKey: p.player, Payload: raw, CachedAt: now}); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist player cache")
	}

	p.mu.Lock()
	p.loading = false
	p.data = raw
	p.cachedAt = now
	p.state = Fresh
	p.mu.Unlock()
	return nil
}

// Update asks the upstream to refresh the player, starts the cooldown and refetches.
func (p *Page) Update(ctx context.Context) error {
	p.mu.Lock()
	if p.updateDisabledLocked(p.clock.Now()) {
		p.mu.Unlock()
		return ErrUpdateLocked
	}
	p.updating = true
	p.updateMessage = ""
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.updating = false
		p.mu.Unlock()
	}()

	if err := p.client.RequestUpdate(ctx, p.player); err != nil {
		p.mu.Lock()
		p.updateMessage = failureMessage(err, "Update failed", "Update failed")
		p.mu.Unlock()
		p.logger.Warn().Err(err).Msg("update request failed")
		return err
	}

	until := p.clock.Now().Add(p.lockFor)
	p.mu.Lock()
	p.nextUpdateAt = until
	p.updateMessage = UpdateRequestedMessage
	p.mu.Unlock()

	if err := p.locks.Set(ctx, domain.UpdateLock{PlayerKey: p.player, LockedUntil: until}); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist update lock")
	}
	p.logger.Info().Time("locked_until", until).Msg("update requested")

	return p.Refresh(ctx)
}

// Tick releases an elapsed lock and returns the time left on it.
func (p *Page) Tick(ctx context.Context) time.Duration {
	now := p.clock.Now()

	p.mu.Lock()
	expired := !p.nextUpdateAt.IsZero() && !now.Before(p.nextUpdateAt)
	if expired {
		p.nextUpdateAt = time.Time{}
	}
	remaining := p.remainingLocked(now)
	p.mu.Unlock()

	if expired {
		if err := p.locks.Clear(ctx, p.player); err != nil {
			p.logger.Warn().Err(err).Msg("failed to clear update lock")
		}
		p.logger.Debug().Msg("update lock released")
	}
	return remaining
}

func (p *Page) Remaining() time.Duration {
	now := p.clock.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remainingLocked(now)
}

func (p *Page) remainingLocked(now time.Time) time.Duration {
	if p.nextUpdateAt.IsZero() {
		return 0
	}
	return max(0, p.nextUpdateAt.Sub(now))
}

func (p *Page) UpdateDisabled() bool {
	now := p.clock.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateDisabledLocked(now)
}

func (p *Page) updateDisabledLocked(now time.Time) bool {
	return p.updating || p.loading || p.remainingLocked(now) > 0
}

// DataState checks freshness lazily against the current time.
func (p *Page) DataState() DataState {
	now := p.clock.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dataStateLocked(now)
}

func (p *Page) dataStateLocked(now time.Time) DataState {
	if p.state == Fresh && now.Sub(p.cachedAt) >= p.freshness {
		return Stale
	}
	return p.state
}

func (p *Page) LockState() LockState {
	if p.Remaining() > 0 {
		return Locked
	}
	return Unlocked
}

func (p *Page) Snapshot() Snapshot {
	now := p.clock.Now()
	p.mu.Lock()
	defer p.mu.Unlock()

	remaining := p.remainingLocked(now)
	lock := Unlocked
	if remaining > 0 {
		lock = Locked
	}
	return Snapshot{
		Player:         p.player,
		Data:           p.data,
		CachedAt:       p.cachedAt,
		DataState:      p.dataStateLocked(now),
		LockState:      lock,
		Remaining:      remaining,
		Loading:        p.loading,
		Updating:       p.updating,
		UpdateDisabled: p.updateDisabledLocked(now),
		Error:          p.errMsg,
		UpdateMessage:  p.updateMessage,
	}
}

// failureMessage prefers the body's {error}, then "<prefix> (status)", then fallback.
func failureMessage(err error, prefix, fallback string) string {
	if ue, ok := domain.AsUpstream(err); ok {
		if msg := ue.Message(); msg != "" {
			return msg
		}
		return fmt.Sprintf("%s (%d)", prefix, ue.Status)
	}
	return fallback
}
