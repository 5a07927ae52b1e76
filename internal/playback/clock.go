// SPDX-License-Identifier: MIT
package playback

import (
	"fmt"
	"math"
	"sync"
	"time"

	"equalizer/internal/errs"
)

// ClockPlayer is a silent Player whose position follows the wall clock. It
// lets the cursor run on machines without an audio device.
type ClockPlayer struct {
	now func() time.Time

	mu       sync.Mutex
	duration time.Duration
	offset   time.Duration // Position when the clock last started or seeked.
	started  time.Time     // Zero while not running.
	rate     float64
}

var _ Player = (*ClockPlayer)(nil)

// NewClockPlayer returns a stopped ClockPlayer.
func NewClockPlayer() *ClockPlayer {
	return &ClockPlayer{now: time.Now, rate: 1}
}

func (p *ClockPlayer) Open(m Media) error {
	if len(m.Samples) == 0 || m.SampleRate <= 0 {
		return fmt.Errorf("%w: empty media", errs.ErrPlaybackUnavailable)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = time.Duration(float64(len(m.Samples)) / m.SampleRate * float64(time.Second))
	p.offset = 0
	p.started = time.Time{}
	return nil
}

// position must be called with p.mu held.
func (p *ClockPlayer) position() time.Duration {
	pos := p.offset
	if !p.started.IsZero() {
		pos += time.Duration(float64(p.now().Sub(p.started)) * p.rate)
	}
	return min(pos, p.duration)
}

func (p *ClockPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position()
}

func (p *ClockPlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *ClockPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started.IsZero() {
		return
	}
	if p.offset >= p.duration {
		p.offset = 0
	}
	p.started = p.now()
}

func (p *ClockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = p.position()
	p.started = time.Time{}
}

func (p *ClockPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = 0
	p.started = time.Time{}
}

func (p *ClockPlayer) SetPosition(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = max(0, min(d, p.duration))
	if !p.started.IsZero() {
		p.started = p.now()
	}
}

// SetPlaybackRate changes speed without moving the position. Invalid rates
// are ignored.
func (p *ClockPlayer) SetPlaybackRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started.IsZero() {
		p.offset = p.position()
		p.started = p.now()
	}
	p.rate = rate
}
