// SPDX-License-Identifier: MIT
package playback

import (
	"context"
	"sync"
	"time"

	"equalizer/internal/log"
)

// DefaultTickInterval is the cursor redraw cadence.
const DefaultTickInterval = 100 * time.Millisecond

// Ticker calls a function at a fixed interval from its own goroutine until
// stopped. Stopping playback does not stop the Ticker; only Stop or the
// parent context ending does.
type Ticker struct {
	interval time.Duration
	fn       func()

	mu     sync.Mutex         // Protects cancel during Start/Stop.
	cancel context.CancelFunc // Non-nil while running.
	wg     sync.WaitGroup     // Waits for the loop goroutine during Stop.
}

// NewTicker returns a stopped Ticker. A non-positive interval falls back
// to DefaultTickInterval.
func NewTicker(interval time.Duration, fn func()) *Ticker {
	if interval <= 0 {
		log.Warnf("Ticker: invalid interval %s, defaulting to %s", interval, DefaultTickInterval)
		interval = DefaultTickInterval
	}
	return &Ticker{interval: interval, fn: fn}
}

// Start launches the tick loop. Calling Start on a running Ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.loop(ctx)
}

func (t *Ticker) loop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fn()
		}
	}
}

// Stop cancels the loop and waits for an in-flight tick to finish. It is
// idempotent and safe before Start. It must not be called from inside the
// tick function.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	t.wg.Wait()
}

// Running reports whether the loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }
