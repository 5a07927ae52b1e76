// SPDX-License-Identifier: MIT
package mode

import (
	"fmt"
	"sync"

	"equalizer/internal/analysis"
	"equalizer/internal/errs"
	"equalizer/internal/log"
)

const (
	// MaxSliderValue is the top of the gain slider; half of it is unity gain.
	MaxSliderValue = 20
	// UnitySliderValue leaves a band untouched.
	UnitySliderValue = 10
)

// Equalizer scales one band of the spectrum at a time. The smoothing window
// is stretched across the active band so the gain tapers toward the band
// edges instead of stepping.
type Equalizer struct {
	mu     sync.Mutex
	view   View
	bands  []analysis.FrequencyBand
	gains  []float64
	active int
}

var (
	_ Mode      = (*Equalizer)(nil)
	_ Refresher = (*Equalizer)(nil)
)

// NewEqualizer returns an equalizer over bands with every gain at 1.
func NewEqualizer(view View, bands []analysis.FrequencyBand) (*Equalizer, error) {
	if view == nil {
		return nil, fmt.Errorf("%w: equalizer needs a view", errs.ErrInvalidInput)
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: equalizer needs at least one band", errs.ErrInvalidInput)
	}
	gains := make([]float64, len(bands))
	for i := range gains {
		gains[i] = 1
	}
	return &Equalizer{
		view:  view,
		bands: append([]analysis.FrequencyBand(nil), bands...),
		gains: gains,
	}, nil
}

// NewUniform splits [0, maxHz) into n equal bands.
func NewUniform(view View, n int, maxHz float64) (*Equalizer, error) {
	return NewEqualizer(view, analysis.UniformBands(n, maxHz))
}

// NewMusical uses the sub/bass/mid/treble split up to nyquist.
func NewMusical(view View, nyquist float64) (*Equalizer, error) {
	return NewEqualizer(view, analysis.MusicalBands(nyquist))
}

// SelectBand makes band i the target of ModifyFrequency.
func (e *Equalizer) SelectBand(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.bands) {
		return fmt.Errorf("%w: band %d out of range [0, %d)", errs.ErrInvalidInput, i, len(e.bands))
	}
	e.active = i
	return nil
}

// Active returns the selected band index.
func (e *Equalizer) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Bands returns a copy of the bands.
func (e *Equalizer) Bands() []analysis.FrequencyBand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]analysis.FrequencyBand(nil), e.bands...)
}

// Gains returns a copy of the per-band gains.
func (e *Equalizer) Gains() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]float64(nil), e.gains...)
}

// ModifyFrequency sets the active band's gain to value/10, clamped to the
// slider range, and shows the reshaped spectrum.
func (e *Equalizer) ModifyFrequency(value int) {
	if value < 0 || value > MaxSliderValue {
		log.Debugf("Equalizer: clamping slider value %d to [0, %d]", value, MaxSliderValue)
		value = max(0, min(value, MaxSliderValue))
	}

	e.mu.Lock()
	e.gains[e.active] = float64(value) / UnitySliderValue
	e.mu.Unlock()
	e.show()
}

// Refresh reshapes the spectrum with the view's current window. It does
// nothing while every gain is at unity.
func (e *Equalizer) Refresh() {
	e.mu.Lock()
	unity := true
	for _, g := range e.gains {
		if g != 1 {
			unity = false
			break
		}
	}
	e.mu.Unlock()
	if !unity {
		e.show()
	}
}

func (e *Equalizer) show() {
	e.mu.Lock()
	gains := append([]float64(nil), e.gains...)
	bands := e.bands
	e.mu.Unlock()

	shaped := Apply(e.view.Spectrum(), e.view.SmoothingWindow(), bands, gains)
	e.view.ShowSpectrum(shaped)
}

// Apply returns a copy of s with every band scaled by its gain. Inside a
// band the gain is weighted by the window coefficient at the bin's relative
// position: factor = 1 + (gain-1)*w. An empty window weights every bin by 1.
// Factors never go below zero.
func Apply(s analysis.Spectrum, w analysis.Window, bands []analysis.FrequencyBand, gains []float64) analysis.Spectrum {
	out := s.Clone()
	for i, freq := range out.Frequencies {
		for b, band := range bands {
			if !band.Contains(freq) {
				continue
			}
			if gains[b] == 1 {
				break
			}
			weight := windowWeight(w.Coefficients, band, freq)
			out.Magnitudes[i] *= max(0, 1+(gains[b]-1)*weight)
			break
		}
	}
	return out
}

func windowWeight(coeffs []float64, band analysis.FrequencyBand, freq float64) float64 {
	if len(coeffs) == 0 {
		return 1
	}
	width := band.HighHz - band.LowHz
	if width <= 0 {
		return coeffs[0]
	}
	pos := int((freq - band.LowHz) / width * float64(len(coeffs)))
	return coeffs[min(max(pos, 0), len(coeffs)-1)]
}
