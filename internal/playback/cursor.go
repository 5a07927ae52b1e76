// SPDX-License-Identifier: MIT
package playback

import (
	"math"
	"sort"
	"sync"

	"equalizer/internal/log"
	"equalizer/internal/waveform"
)

// Options tunes the cursor's viewport behaviour.
type Options struct {
	Lookback      float64 // Width of the visible window behind the cursor, in seconds.
	ZoomInFactor  float64 // Viewport scale applied by ZoomIn.
	ZoomOutFactor float64 // Viewport scale applied by ZoomOut.
}

// DefaultOptions returns a 4 second lookback and 0.9/1.1 zoom steps.
func DefaultOptions() Options {
	return Options{
		Lookback:      4,
		ZoomInFactor:  0.9,
		ZoomOutFactor: 1.1,
	}
}

// Cursor maps the player's position onto the sample buffer and reveals
// the time-domain curve up to it on every tick.
//
// All methods are safe for concurrent use; the tick usually arrives from a
// Ticker goroutine while controls arrive from the UI.
type Cursor struct {
	mu      sync.Mutex
	player  Player
	surface Surface
	opts    Options

	timestamps []float64 // Shared with the loaded Signal, read only.
	samples    []float64 // Shared with the loaded Signal, read only.
	maxTime    float64

	state State
	index int  // Exclusive reveal bound from the last rendered tick.
	curve bool // Surface currently holds the time-domain curve.
}

// NewCursor returns an Idle cursor with no signal.
func NewCursor(player Player, surface Surface, opts Options) *Cursor {
	def := DefaultOptions()
	if opts.Lookback <= 0 {
		opts.Lookback = def.Lookback
	}
	if opts.ZoomInFactor <= 0 {
		opts.ZoomInFactor = def.ZoomInFactor
	}
	if opts.ZoomOutFactor <= 0 {
		opts.ZoomOutFactor = def.ZoomOutFactor
	}
	return &Cursor{
		player:  player,
		surface: surface,
		opts:    opts,
	}
}

// Load switches to sig, returns to Idle and restarts the plot with the
// first sample.
func (c *Cursor) Load(sig *waveform.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timestamps = sig.Timestamps()
	c.samples = sig.Samples()
	c.maxTime = sig.Duration()
	c.state = Idle
	c.index = 0

	c.surface.Clear()
	c.surface.SetLimits(0, math.Inf(1))
	c.plotFirstSample()

	log.Debugf("Cursor: loaded %d samples (%.3fs)", len(c.samples), c.maxTime)
}

// plotFirstSample draws the initial one-point curve. Caller holds c.mu.
func (c *Cursor) plotFirstSample() {
	c.surface.Plot(c.timestamps[:1], c.samples[:1])
	c.curve = true
}

// Play starts or resumes playback from Idle, Paused or Stopped. Playing
// again after a stop starts from the beginning.
func (c *Cursor) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.samples == nil || c.state == Playing {
		return
	}
	if c.state == Stopped {
		c.player.SetPosition(0)
		c.index = 0
		if !c.curve {
			c.plotFirstSample()
		}
	}
	c.state = Playing
	c.player.Play()
}

// Pause suspends playback. Only a playing cursor can pause.
func (c *Cursor) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		return
	}
	c.state = Paused
	c.player.Pause()
}

// TogglePause pauses a playing cursor and resumes a paused one. It never
// restarts a stopped or idle cursor.
func (c *Cursor) TogglePause() {
	switch c.State() {
	case Playing:
		c.Pause()
	case Paused:
		c.Play()
	}
}

// Stop halts playback, clears the plot and rewinds the viewport to
// [0, lookback].
func (c *Cursor) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.player.Stop()
	c.state = Stopped
	c.index = 0
	c.curve = false
	c.surface.Clear()
	c.surface.SetXRange(0, c.opts.Lookback)
}

// Reset restarts playback from zero regardless of the current state.
func (c *Cursor) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.samples == nil {
		return
	}
	c.player.Stop()
	c.player.SetPosition(0)
	c.index = 0
	if !c.curve {
		c.plotFirstSample()
	}
	c.state = Playing
	c.player.Play()
}

// Tick syncs the plot to the player's position and reports whether
// anything was drawn. It does nothing unless the cursor is Playing and the
// player reports a positive duration. Reaching the end of the media moves
// the cursor to Stopped after this final tick is drawn.
func (c *Cursor) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing || c.samples == nil {
		return false
	}

	duration := c.player.Duration()
	if duration <= 0 {
		log.Debugf("Cursor: skipping tick, player reports duration %s", duration)
		return false
	}

	progress := float64(c.player.Position()) / float64(duration)
	if progress < 0 || math.IsNaN(progress) {
		progress = 0
	}
	if progress >= 1 {
		progress = 1
		c.state = Stopped
		log.Debugf("Cursor: reached end of media")
	}

	target := progress * c.maxTime
	index := sort.SearchFloat64s(c.timestamps, target)
	c.index = index

	c.surface.SetXRange(target-c.opts.Lookback, target)
	c.surface.SetData(c.timestamps[:index], c.samples[:index])
	return true
}

// SetRate forwards a playback speed multiplier to the player.
func (c *Cursor) SetRate(rate float64) {
	c.player.SetPlaybackRate(rate)
}

// ZoomIn shrinks the viewport.
func (c *Cursor) ZoomIn() {
	c.surface.ScaleBy(c.opts.ZoomInFactor, c.opts.ZoomInFactor)
}

// ZoomOut grows the viewport.
func (c *Cursor) ZoomOut() {
	c.surface.ScaleBy(c.opts.ZoomOutFactor, c.opts.ZoomOutFactor)
}

// State returns the current playback state.
func (c *Cursor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Index returns the exclusive reveal bound drawn by the last tick.
func (c *Cursor) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}
