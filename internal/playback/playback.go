// SPDX-License-Identifier: MIT

/*
Package playback keeps a time-domain plot in step with an external media
player.

The Cursor reads the player's position on every tick, maps it to an index
into the loaded sample buffer and reveals the curve up to that index. The
player and the plot are collaborators behind the Player and Surface
interfaces; the Cursor never owns them.

State machine:

	Idle -> Playing <-> Paused
	Playing/Paused -> Stopped -> (Play) Playing
	any -> Idle on Load

Ticks keep firing in every state and are no-ops unless Playing.
*/
package playback

import "time"

// Media is what a Player needs to start playback of a loaded file.
type Media struct {
	Path       string    // Local file the samples were decoded from ("" for generated audio).
	Samples    []float64 // Mono samples in [-1, 1].
	SampleRate float64   // Hz.
}

// Player is the external media player.
type Player interface {
	Open(m Media) error
	Position() time.Duration
	Duration() time.Duration
	Play()
	Pause()
	Stop()
	SetPosition(d time.Duration)
	SetPlaybackRate(rate float64)
}

// Surface is a 2D line plot with a pannable, zoomable viewport.
type Surface interface {
	SetLimits(xMin, xMax float64) // Hard bounds the viewport is clamped to.
	Plot(xs, ys []float64)        // Draw a new curve.
	SetData(xs, ys []float64)     // Replace the points of the current curve.
	SetXRange(lo, hi float64)     // Move the viewport.
	ScaleBy(sx, sy float64)       // Zoom the viewport around its centre.
	Clear()                       // Remove every curve.
}

// State is the cursor's playback state.
type State int

// Cursor states.
const (
	Idle State = iota
	Playing
	Paused
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Discard is a Surface that draws nothing.
var Discard Surface = discard{}

type discard struct{}

func (discard) SetLimits(float64, float64)  {}
func (discard) Plot([]float64, []float64)    {}
func (discard) SetData([]float64, []float64) {}
func (discard) SetXRange(float64, float64)   {}
func (discard) ScaleBy(float64, float64)     {}
func (discard) Clear()                       {}

// Tee fans every call out to each surface in order.
type Tee []Surface

var _ Surface = Tee(nil)

func (t Tee) SetLimits(xMin, xMax float64) {
	for _, s := range t {
		s.SetLimits(xMin, xMax)
	}
}

func (t Tee) Plot(xs, ys []float64) {
	for _, s := range t {
		s.Plot(xs, ys)
	}
}

func (t Tee) SetData(xs, ys []float64) {
	for _, s := range t {
		s.SetData(xs, ys)
	}
}

func (t Tee) SetXRange(lo, hi float64) {
	for _, s := range t {
		s.SetXRange(lo, hi)
	}
}

func (t Tee) ScaleBy(sx, sy float64) {
	for _, s := range t {
		s.ScaleBy(sx, sy)
	}
}

func (t Tee) Clear() {
	for _, s := range t {
		s.Clear()
	}
}
