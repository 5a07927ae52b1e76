// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"
	"sync"

	"equalizer/internal/errs"
	"equalizer/internal/log"
	"equalizer/internal/waveform"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum is a one-sided amplitude spectrum: non-negative frequencies in
// ascending order with their magnitudes. Both slices have the same length.
type Spectrum struct {
	Frequencies []float64 // Bin centre frequencies (Hz), ascending from 0.
	Magnitudes  []float64 // Coherent amplitude per bin, doubled for the folded negative half.
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.Frequencies) }

// Peak returns the index of the largest magnitude. ok is false for an
// empty spectrum.
func (s Spectrum) Peak() (index int, ok bool) {
	if len(s.Magnitudes) == 0 {
		return 0, false
	}
	for i, m := range s.Magnitudes {
		if m > s.Magnitudes[index] {
			index = i
		}
	}
	return index, true
}

// Clone returns a deep copy, so callers may reshape magnitudes freely.
func (s Spectrum) Clone() Spectrum {
	c := Spectrum{
		Frequencies: make([]float64, len(s.Frequencies)),
		Magnitudes:  make([]float64, len(s.Magnitudes)),
	}
	copy(c.Frequencies, s.Frequencies)
	copy(c.Magnitudes, s.Magnitudes)
	return c
}

// SpectrumAnalyzer computes the one-sided amplitude spectrum of a whole
// Signal. The FFT plan is reused while consecutive signals have the same
// (even) length; results are never cached.
type SpectrumAnalyzer struct {
	mu            sync.Mutex
	fftCalculator *fourier.FFT // Reusable FFT calculator, rebuilt when the size changes.
	fftSize       int
}

// Compile-time check.
var _ SpectrumSource = (*SpectrumAnalyzer)(nil)

// NewSpectrumAnalyzer returns an analyzer with no plan allocated yet.
func NewSpectrumAnalyzer() *SpectrumAnalyzer {
	return &SpectrumAnalyzer{}
}

// Analyze returns the one-sided spectrum of sig.
//
// The sampling interval is taken from the first two timestamps, so the
// signal needs at least two samples. An odd-length signal loses its last
// sample so the positive and negative frequency halves split evenly. Every
// DFT bin is divided by the (even) length n and the positive half is
// doubled to account for the discarded negative mirror.
func (a *SpectrumAnalyzer) Analyze(sig *waveform.Signal) (Spectrum, error) {
	if sig == nil || sig.Len() < 2 {
		return Spectrum{}, fmt.Errorf("%w: spectrum needs at least 2 samples", errs.ErrInvalidInput)
	}

	t := sig.Timestamps()
	y := sig.Samples()
	dt := t[1] - t[0]

	n := len(y)
	if n%2 != 0 {
		n--
	}
	y = y[:n]

	freqs := Frequencies(n, dt)
	k := FirstNegative(freqs)

	coeffs := a.coefficients(y)
	if k > len(coeffs) {
		k = len(coeffs)
	}

	out := Spectrum{
		Frequencies: make([]float64, k),
		Magnitudes:  make([]float64, k),
	}
	copy(out.Frequencies, freqs[:k])

	norm := 1.0 / float64(n)
	for i := range k {
		out.Magnitudes[i] = 2 * cmplx.Abs(coeffs[i]*complex(norm, 0))
	}

	log.Debugf("Analysis: spectrum of %d samples (dt=%g) -> %d bins", n, dt, k)
	return out, nil
}

// coefficients runs the real FFT over y. For real input only the first
// n/2+1 coefficients are produced; the rest are their conjugate mirror.
func (a *SpectrumAnalyzer) coefficients(y []float64) []complex128 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fftCalculator == nil || a.fftSize != len(y) {
		a.fftCalculator = fourier.NewFFT(len(y))
		a.fftSize = len(y)
	}
	return a.fftCalculator.Coefficients(nil, y)
}

// Frequencies returns the frequency of each of the n DFT bins for a
// sampling interval dt, in standard FFT order: 0 up to the highest
// positive frequency, then the negative frequencies ascending to -1/(n*dt).
func Frequencies(n int, dt float64) []float64 {
	freqs := make([]float64, n)
	if n == 0 {
		return freqs
	}
	step := 1.0 / (float64(n) * dt)

	positive := (n-1)/2 + 1
	for i := range positive {
		freqs[i] = float64(i) * step
	}
	for i := positive; i < n; i++ {
		freqs[i] = float64(i-n) * step
	}
	return freqs
}

// FirstNegative returns the index of the first negative frequency, or 0
// when there is none.
func FirstNegative(freqs []float64) int {
	for i, f := range freqs {
		if f < 0 {
			return i
		}
	}
	return 0
}
