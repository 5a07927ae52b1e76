// SPDX-License-Identifier: MIT
package playback

import (
	"errors"
	"testing"
	"time"

	"equalizer/internal/errs"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestClockPlayer(t *testing.T) (*ClockPlayer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewClockPlayer()
	p.now = clock.now
	if err := p.Open(Media{Samples: make([]float64, 1000), SampleRate: 100}); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return p, clock
}

func TestClockPlayer_Position(t *testing.T) {
	p, clock := newTestClockPlayer(t)

	if p.Duration() != 10*time.Second {
		t.Fatalf("Duration() = %s, want 10s", p.Duration())
	}

	clock.advance(time.Second)
	if p.Position() != 0 {
		t.Errorf("position before Play = %s, want 0", p.Position())
	}

	p.Play()
	clock.advance(2 * time.Second)
	if got := p.Position(); got != 2*time.Second {
		t.Errorf("position after 2s = %s", got)
	}

	p.Pause()
	clock.advance(5 * time.Second)
	if got := p.Position(); got != 2*time.Second {
		t.Errorf("position while paused = %s, want 2s", got)
	}

	p.Play()
	p.SetPlaybackRate(2)
	clock.advance(time.Second)
	if got := p.Position(); got != 4*time.Second {
		t.Errorf("position at 2x = %s, want 4s", got)
	}

	clock.advance(time.Minute)
	if got := p.Position(); got != 10*time.Second {
		t.Errorf("position past the end = %s, want 10s", got)
	}
}

func TestClockPlayer_SeekAndStop(t *testing.T) {
	p, clock := newTestClockPlayer(t)

	p.SetPosition(time.Hour)
	if p.Position() != 10*time.Second {
		t.Errorf("seek past end = %s", p.Position())
	}
	p.Play()
	if p.Position() != 0 {
		t.Errorf("play at end should rewind, got %s", p.Position())
	}

	clock.advance(3 * time.Second)
	p.Stop()
	if p.Position() != 0 {
		t.Errorf("position after Stop = %s", p.Position())
	}

	p.SetPlaybackRate(-1)
	p.Play()
	clock.advance(time.Second)
	if p.Position() != time.Second {
		t.Errorf("invalid rate changed speed: %s", p.Position())
	}
}

func TestClockPlayer_OpenEmpty(t *testing.T) {
	if err := NewClockPlayer().Open(Media{}); !errors.Is(err, errs.ErrPlaybackUnavailable) {
		t.Errorf("Open(empty) error = %v", err)
	}
}
