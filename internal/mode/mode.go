// SPDX-License-Identifier: MIT

// Package mode holds the strategies that reshape the displayed spectrum in
// response to a single slider value.
package mode

import "equalizer/internal/analysis"

// Mode reacts to a frequency control value. Implementations decide what the
// value means; the caller only forwards it.
type Mode interface {
	ModifyFrequency(value int)
}

// Refresher is implemented by modes whose output depends on the smoothing
// window. Refresh redraws with the current settings.
type Refresher interface {
	Refresh()
}

// View is the part of the orchestrator a mode reads from and draws on.
type View interface {
	Spectrum() analysis.Spectrum
	SmoothingWindow() analysis.Window
	ShowSpectrum(s analysis.Spectrum)
}

// Passthrough ignores the control value.
type Passthrough struct{}

var _ Mode = Passthrough{}

func (Passthrough) ModifyFrequency(int) {}
