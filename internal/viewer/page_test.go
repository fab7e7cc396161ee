package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"rivals-tracker/internal/config"
	"rivals-tracker/internal/domain"
	"rivals-tracker/internal/repository"
	"rivals-tracker/internal/store"

	"github.com/rs/zerolog"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeClient struct {
	mu        sync.Mutex
	fetches   int
	updates   int
	payload   json.RawMessage
	fetchErr  error
	updateErr error
}

func (f *fakeClient) FetchPlayer(context.Context, string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payload, nil
}

func (f *fakeClient) RequestUpdate(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return f.updateErr
}

type fixture struct {
	clock   *fakeClock
	client  *fakeClient
	session *store.MemoryStore
	durable *store.MemoryStore
	cache   *repository.PlayerCacheRepository
	locks   *repository.UpdateLockRepository
}

func newFixture() *fixture {
	logger := zerolog.New(io.Discard)
	f := &fixture{
		clock:   &fakeClock{now: time.UnixMilli(1700000000000)},
		client:  &fakeClient{payload: json.RawMessage(`{"player":{"player_name":"Spiderman123"}}`)},
		session: store.NewMemoryStore(),
		durable: store.NewMemoryStore(),
	}
	f.cache = repository.NewPlayerCacheRepository(f.session, logger)
	f.locks = repository.NewUpdateLockRepository(f.durable, logger)
	return f
}

func (f *fixture) page(player string) *Page {
	return NewPage(player, f.client, f.cache, f.locks, Options{
		FreshnessWindow: 30 * time.Minute,
		LockWindow:      30 * time.Minute,
		Clock:           f.clock,
	}, zerolog.New(io.Discard))
}

func (f *fixture) seedCache(t *testing.T, player string, age time.Duration) {
	t.Helper()
	err := f.cache.Put(context.Background(), domain.CacheEntry{
		PlayerKey: player,
		Payload:   json.RawMessage(`{"cached":true}`),
		CachedAt:  f.clock.Now().Add(-age),
	})
	if err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

func TestMountServesFreshCacheWithoutFetching(t *testing.T) {
	f := newFixture()
	f.seedCache(t, "Spiderman123", 29*time.Minute)

	p := f.page("Spiderman123")
	if err := p.Mount(context.Background()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	if f.client.fetches != 0 {
		t.Fatalf("expected no fetch, got %d", f.client.fetches)
	}
	snap := p.Snapshot()
	if snap.DataState != Fresh || string(snap.Data) != `{"cached":true}` {
		t.Fatalf("expected cached payload, got %s %s", snap.DataState, snap.Data)
	}

	f.clock.Advance(time.Minute)
	if p.DataState() != Stale {
		t.Fatalf("expected cache to go stale once the window elapses")
	}
}

func TestMountFetchesWhenCacheExpired(t *testing.T) {
	f := newFixture()
	f.seedCache(t, "spiderman123", 31*time.Minute)

	p := f.page("Spiderman123")
	if err := p.Mount(context.Background()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	if f.client.fetches != 1 {
		t.Fatalf("expected one fetch, got %d", f.client.fetches)
	}
	entry, _ := f.cache.Get(context.Background(), "spiderman123")
	if entry == nil || !entry.CachedAt.Equal(f.clock.Now()) {
		t.Fatalf("expected cache overwritten at now, got %+v", entry)
	}
	if string(entry.Payload) != string(f.client.payload) {
		t.Fatalf("expected fetched payload cached, got %s", entry.Payload)
	}
	if p.DataState() != Fresh {
		t.Fatalf("expected fresh, got %s", p.DataState())
	}
}

func TestMountFetchesWhenCacheMissingOrMalformed(t *testing.T) {
	f := newFixture()
	_ = f.session.Set(context.Background(), "playerStats:broken", "{oops")

	for _, player := range []string{"nobody", "broken"} {
		if err := f.page(player).Mount(context.Background()); err != nil {
			t.Fatalf("mount %s failed: %v", player, err)
		}
	}
	if f.client.fetches != 2 {
		t.Fatalf("expected two fetches, got %d", f.client.fetches)
	}
}

func TestFailedFetchLeavesCacheUntouched(t *testing.T) {
	f := newFixture()
	f.seedCache(t, "hulk", 45*time.Minute)
	before, _, _ := f.session.Get(context.Background(), "playerStats:hulk")

	f.client.fetchErr = &domain.UpstreamError{Status: 404, Body: []byte(`{"error":"Player not found"}`)}
	p := f.page("hulk")
	if err := p.Mount(context.Background()); err == nil {
		t.Fatalf("expected mount to surface the fetch error")
	}

	after, _, _ := f.session.Get(context.Background(), "playerStats:hulk")
	if before != after {
		t.Fatalf("expected cache unchanged, got %s", after)
	}
	snap := p.Snapshot()
	if snap.Error != "Player not found" {
		t.Fatalf("expected upstream error message, got %q", snap.Error)
	}
	if snap.DataState != Stale || snap.Data != nil {
		t.Fatalf("expected stale with no data, got %s %s", snap.DataState, snap.Data)
	}

	f.client.fetchErr = &domain.UpstreamError{Status: 502, Body: []byte(`<html>`)}
	_ = p.Refresh(context.Background())
	if got := p.Snapshot().Error; got != "Request failed (502)" {
		t.Fatalf("expected status message, got %q", got)
	}

	f.client.fetchErr = &domain.NetworkError{Op: "GET", Err: errors.New("refused")}
	_ = p.Refresh(context.Background())
	if got := p.Snapshot().Error; got != "Failed to load player data" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestUpdateLocksAndCountsDown(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := f.page("Hulk")
	if err := p.Mount(ctx); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	if err := p.Update(ctx); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if f.client.updates != 1 || f.client.fetches != 2 {
		t.Fatalf("expected update then refetch, got updates=%d fetches=%d", f.client.updates, f.client.fetches)
	}

	snap := p.Snapshot()
	if snap.LockState != Locked || !snap.UpdateDisabled || snap.UpdateMessage != UpdateRequestedMessage {
		t.Fatalf("unexpected snapshot after update %+v", snap)
	}
	if raw, ok, _ := f.durable.Get(ctx, "playerUpdateLock:hulk"); !ok || raw != "1700001800000" {
		t.Fatalf("expected persisted lock deadline, got %q", raw)
	}

	if err := p.Update(ctx); !errors.Is(err, ErrUpdateLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}

	prev := p.Remaining()
	for prev > 0 {
		f.clock.Advance(time.Second)
		rem := p.Tick(ctx)
		if rem >= prev {
			t.Fatalf("expected remaining to decrease, %v then %v", prev, rem)
		}
		if rem > 0 && !p.UpdateDisabled() {
			t.Fatalf("update enabled with %v remaining", rem)
		}
		prev = rem
	}

	if p.UpdateDisabled() || p.LockState() != Unlocked {
		t.Fatalf("expected update enabled after the lock elapsed")
	}
	if _, ok, _ := f.durable.Get(ctx, "playerUpdateLock:hulk"); ok {
		t.Fatalf("expected persisted lock cleared")
	}
}

func TestMountRestoresPersistedLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedCache(t, "hulk", time.Minute)
	_ = f.locks.Set(ctx, domain.UpdateLock{PlayerKey: "hulk", LockedUntil: f.clock.Now().Add(10 * time.Minute)})

	p := f.page("HULK")
	if err := p.Mount(ctx); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	if got := p.Remaining(); got != 10*time.Minute {
		t.Fatalf("expected 10m remaining, got %v", got)
	}
	if !p.UpdateDisabled() {
		t.Fatalf("expected update disabled while locked")
	}
}

func TestFailedUpdateDoesNotLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.client.updateErr = &domain.UpstreamError{Status: 500, Body: []byte(`{}`)}
	p := f.page("hulk")

	if err := p.Update(ctx); err == nil {
		t.Fatalf("expected update error")
	}
	snap := p.Snapshot()
	if snap.LockState != Unlocked || snap.UpdateDisabled {
		t.Fatalf("expected unlocked after failure, got %+v", snap)
	}
	if snap.UpdateMessage != "Update failed (500)" {
		t.Fatalf("unexpected update message %q", snap.UpdateMessage)
	}
	if f.client.fetches != 0 {
		t.Fatalf("expected no refetch after failed update")
	}
}

func TestCountdownStopsCleanly(t *testing.T) {
	f := newFixture()
	p := f.page("hulk")

	ticks := make(chan time.Duration, 16)
	c := NewCountdown(p, 5*time.Millisecond, func(d time.Duration) {
		select {
		case ticks <- d:
		default:
		}
	})
	c.Start(context.Background())
	c.Start(context.Background())

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a tick")
	}

	c.Stop()
	c.Stop()
}

func TestProxyClientPathsAndErrors(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/v2/player/Spider Man/update" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"Failed to update player"}`))
			return
		}
		_, _ = w.Write([]byte(`{"player":{}}`))
	}))
	defer srv.Close()

	c := NewProxyClient(&config.Config{ProxyBaseURL: srv.URL, PublicAPIVersion: "v2"}, zerolog.New(io.Discard))

	raw, err := c.FetchPlayer(context.Background(), "Spider Man")
	if err != nil || string(raw) != `{"player":{}}` {
		t.Fatalf("unexpected fetch result %s %v", raw, err)
	}

	err = c.RequestUpdate(context.Background(), "Spider Man")
	ue, ok := domain.AsUpstream(err)
	if !ok || ue.Status != http.StatusBadGateway || ue.Message() != "Failed to update player" {
		t.Fatalf("expected upstream error, got %v", err)
	}

	if len(paths) != 2 || paths[0] != "/api/v2/player/Spider Man" {
		t.Fatalf("unexpected paths %v", paths)
	}
}
