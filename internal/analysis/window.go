// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"strings"

	"equalizer/internal/errs"
	"equalizer/internal/log"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Family selects the smoothing window shape. Exactly one is active at a time.
type Family int

// Available smoothing window families.
const (
	Hamming Family = iota
	Hanning
	Rectangular
	Gaussian
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case Hamming:
		return "Hamming"
	case Hanning:
		return "Hanning"
	case Rectangular:
		return "Rectangular"
	case Gaussian:
		return "Gaussian"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Families lists the supported families in selector order.
func Families() []Family {
	return []Family{Hamming, Hanning, Rectangular, Gaussian}
}

// ParseFamily converts a name (case-insensitive) to a Family.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hamming":
		return Hamming, nil
	case "hann", "hanning":
		return Hanning, nil
	case "rect", "rectangular", "boxcar":
		return Rectangular, nil
	case "gauss", "gaussian":
		return Gaussian, nil
	default:
		return Hamming, fmt.Errorf("%w: unknown window family '%s'", errs.ErrInvalidInput, name)
	}
}

// fwhmToSigma converts a full width at half maximum into a standard deviation.
var fwhmToSigma = 1 / (2 * math.Sqrt(2*math.Ln2))

// Window is a generated smoothing window.
type Window struct {
	Family       Family
	Length       int
	Amplitude    float64
	Coefficients []float64
}

// Max returns the largest coefficient.
func (w Window) Max() float64 {
	if len(w.Coefficients) == 0 {
		return 0
	}
	return floats.Max(w.Coefficients)
}

// WindowGenerator builds smoothing windows. It is stateless; every call
// allocates a fresh coefficient slice.
type WindowGenerator struct{}

var _ WindowSource = WindowGenerator{}

// NewWindowGenerator returns a WindowGenerator.
func NewWindowGenerator() WindowGenerator { return WindowGenerator{} }

// Generate returns a window of the given family and length scaled to amplitude.
//
// Windows are periodic (DFT-even): a symmetric window of length+1 points
// with the final point dropped. A single-point window is [1] before scaling.
//
// Hamming and Hanning are divided by their own maximum, so their peak is
// exactly amplitude. Rectangular is all amplitude. Gaussian treats length as
// its FWHM and multiplies the unit-peak curve by amplitude without
// normalizing, so an even length peaks at amplitude and an odd length
// slightly below it.
func (WindowGenerator) Generate(family Family, length int, amplitude float64) (Window, error) {
	if length <= 0 {
		return Window{}, fmt.Errorf("%w: window length must be positive, got %d", errs.ErrInvalidInput, length)
	}
	if amplitude < 0 || math.IsNaN(amplitude) || math.IsInf(amplitude, 0) {
		return Window{}, fmt.Errorf("%w: window amplitude must be a non-negative number, got %f", errs.ErrInvalidInput, amplitude)
	}

	var coeffs []float64
	switch family {
	case Hamming, Hanning:
		coeffs = periodic(length, func(seq []float64) []float64 {
			if family == Hamming {
				return window.Hamming(seq)
			}
			return window.Hann(seq)
		})
		peak := floats.Max(coeffs)
		if peak == 0 || math.IsNaN(peak) {
			return Window{}, fmt.Errorf("%w: %s window of length %d has zero maximum", errs.ErrDegenerateWindow, family, length)
		}
		floats.Scale(amplitude/peak, coeffs)

	case Rectangular:
		coeffs = periodic(length, window.Rectangular)
		floats.Scale(amplitude, coeffs)

	case Gaussian:
		sigma := float64(length) * fwhmToSigma
		coeffs = periodic(length, func(seq []float64) []float64 {
			// gonum's sigma is relative to the half width (N-1)/2.
			half := float64(len(seq)-1) / 2
			return window.Gaussian{Sigma: sigma / half}.Transform(seq)
		})
		floats.Scale(amplitude, coeffs)

	default:
		return Window{}, fmt.Errorf("%w: unknown window family %d", errs.ErrInvalidInput, int(family))
	}

	log.Debugf("Analysis: generated %s window (length=%d, amplitude=%g)", family, length, amplitude)

	return Window{
		Family:       family,
		Length:       length,
		Amplitude:    amplitude,
		Coefficients: coeffs,
	}, nil
}

// periodic applies fn to a symmetric window of length+1 ones and drops the
// last point.
func periodic(length int, fn func([]float64) []float64) []float64 {
	if length == 1 {
		return []float64{1}
	}
	seq := make([]float64, length+1)
	for i := range seq {
		seq[i] = 1.0
	}
	seq = fn(seq)
	return seq[:length]
}
