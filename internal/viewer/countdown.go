package viewer

import (
	"context"
	"sync"
	"time"

	"rivals-tracker/internal/constants"
)

// Countdown ticks a page's update lock until stopped.
type Countdown struct {
	page     *Page
	interval time.Duration
	onTick   func(remaining time.Duration)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCountdown(page *Page, interval time.Duration, onTick func(time.Duration)) *Countdown {
	if interval <= 0 {
		interval = constants.CountdownTick
	}
	if onTick == nil {
		onTick = func(time.Duration) {}
	}
	return &Countdown{page: page, interval: interval, onTick: onTick}
}

// Start is a no-op if the countdown is already running.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

func (c *Countdown) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.onTick(c.page.Tick(ctx))
		}
	}
}

// Stop cancels the ticker and waits for the loop to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
