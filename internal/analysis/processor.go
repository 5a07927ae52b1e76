// SPDX-License-Identifier: MIT
package analysis

import "equalizer/internal/waveform"

// SpectrumSource computes a spectrum from a loaded signal.
type SpectrumSource interface {
	Analyze(sig *waveform.Signal) (Spectrum, error)
}

// SpectrumProvider exposes the spectrum currently on display. This
// decouples publishers (UDP, meters) from whoever owns the spectrum.
type SpectrumProvider interface {
	DisplayedSpectrum() Spectrum // A copy of the spectrum after any mode reshaping.
}

// WindowSource generates smoothing windows.
type WindowSource interface {
	Generate(family Family, length int, amplitude float64) (Window, error)
}
