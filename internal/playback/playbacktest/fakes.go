// SPDX-License-Identifier: MIT

// Package playbacktest provides in-memory Player and Surface doubles for
// exercising the cursor and orchestrator without audio hardware or a UI.
package playbacktest

import (
	"sync"
	"time"

	"equalizer/internal/playback"
)

// FakePlayer is a Player whose position is set by the test.
type FakePlayer struct {
	mu       sync.Mutex
	media    playback.Media
	position time.Duration
	duration time.Duration
	rate     float64
	playing  bool
	opened   int
	OpenErr  error // Returned by Open when set.
	Calls    []string
}

var _ playback.Player = (*FakePlayer)(nil)

// NewFakePlayer returns a stopped player at rate 1.
func NewFakePlayer() *FakePlayer {
	return &FakePlayer{rate: 1}
}

func (p *FakePlayer) record(call string) {
	p.Calls = append(p.Calls, call)
}

// Open takes the media duration from the sample count unless OpenErr is set.
func (p *FakePlayer) Open(m playback.Media) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("open")
	if p.OpenErr != nil {
		return p.OpenErr
	}
	p.media = m
	p.opened++
	p.position = 0
	p.duration = time.Duration(float64(len(m.Samples)) / m.SampleRate * float64(time.Second))
	return nil
}

func (p *FakePlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *FakePlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *FakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("play")
	p.playing = true
}

func (p *FakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("pause")
	p.playing = false
}

// Stop halts playback and rewinds to zero.
func (p *FakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("stop")
	p.playing = false
	p.position = 0
}

func (p *FakePlayer) SetPosition(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("setPosition")
	p.position = d
}

func (p *FakePlayer) SetPlaybackRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("setRate")
	p.rate = rate
}

// Seek moves the position without recording a call, as playback would.
func (p *FakePlayer) Seek(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = d
}

// SetDuration overrides the media duration.
func (p *FakePlayer) SetDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = d
}

// Playing reports whether Play was the last transport call.
func (p *FakePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Rate returns the last playback rate set.
func (p *FakePlayer) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Media returns the last opened media.
func (p *FakePlayer) Media() playback.Media {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.media
}

// Surface records every call made to it.
type Surface struct {
	mu sync.Mutex

	XMin, XMax float64
	Lo, Hi     float64
	Xs, Ys     []float64
	ScaleX     float64
	ScaleY     float64

	Plots    int
	Updates  int
	Clears   int
	Scales   int
	Curves   int // Curves currently drawn.
	LastCall string
}

var _ playback.Surface = (*Surface)(nil)

// NewSurface returns an empty recording surface.
func NewSurface() *Surface {
	return &Surface{ScaleX: 1, ScaleY: 1}
}

func (s *Surface) SetLimits(xMin, xMax float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.XMin, s.XMax = xMin, xMax
	s.LastCall = "setLimits"
}

func (s *Surface) Plot(xs, ys []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Xs, s.Ys = xs, ys
	s.Plots++
	s.Curves++
	s.LastCall = "plot"
}

func (s *Surface) SetData(xs, ys []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Xs, s.Ys = xs, ys
	s.Updates++
	s.LastCall = "setData"
}

func (s *Surface) SetXRange(lo, hi float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lo, s.Hi = lo, hi
	s.LastCall = "setXRange"
}

func (s *Surface) ScaleBy(sx, sy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ScaleX *= sx
	s.ScaleY *= sy
	s.Scales++
	s.LastCall = "scaleBy"
}

func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Xs, s.Ys = nil, nil
	s.Clears++
	s.Curves = 0
	s.LastCall = "clear"
}

// Snapshot returns the recorded points and range under the lock.
func (s *Surface) Snapshot() (xs, ys []float64, lo, hi float64, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Xs, s.Ys, s.Lo, s.Hi, s.Updates
}
