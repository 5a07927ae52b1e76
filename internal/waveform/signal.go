// SPDX-License-Identifier: MIT

/*
Package waveform owns the loaded sample buffer.

A Signal is immutable once built: the samples, the sample rate and the
per-sample timestamps t[i] = i / sampleRate never change. A new load
replaces the Signal held by the Store wholesale, and dependents that cache
anything derived from the old buffer (plot ranges, cursor index) are reset
explicitly through the Store's reset hooks.
*/
package waveform

import (
	"fmt"
	"math"

	"equalizer/internal/errs"
)

// Signal is a mono sample buffer with its sample rate and timestamps.
type Signal struct {
	samples    []float64
	timestamps []float64
	sampleRate float64
}

// New copies samples into a new Signal and precomputes its timestamps.
// It fails with errs.ErrInvalidInput if sampleRate is not a positive finite
// number or samples is empty.
func New(samples []float64, sampleRate float64) (*Signal, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %f", errs.ErrInvalidInput, sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: signal has no samples", errs.ErrInvalidInput)
	}

	y := make([]float64, len(samples))
	copy(y, samples)

	t := make([]float64, len(samples))
	for i := range t {
		t[i] = float64(i) / sampleRate
	}

	return &Signal{
		samples:    y,
		timestamps: t,
		sampleRate: sampleRate,
	}, nil
}

// Len returns the number of samples.
func (s *Signal) Len() int { return len(s.samples) }

// SampleRate returns the sample rate in Hz.
func (s *Signal) SampleRate() float64 { return s.sampleRate }

// Samples returns the sample buffer. The slice is shared with the Signal
// and must not be modified.
func (s *Signal) Samples() []float64 { return s.samples }

// Timestamps returns t[i] = i / SampleRate, ascending. The slice is shared
// with the Signal and must not be modified.
func (s *Signal) Timestamps() []float64 { return s.timestamps }

// Duration returns the timestamp of the last sample, i.e. max(t).
func (s *Signal) Duration() float64 {
	return s.timestamps[len(s.timestamps)-1]
}

// MixDown averages interleaved frames into a mono buffer. A trailing
// partial frame is dropped.
func MixDown(interleaved []float64, channels int) ([]float64, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", errs.ErrInvalidInput, channels)
	}
	if channels == 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out, nil
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)
	inv := 1.0 / float64(channels)

	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			out[f] = (interleaved[idx] + interleaved[idx+1]) * 0.5
		}
	default:
		for f := range frames {
			sum := 0.0
			base := f * channels
			for c := range channels {
				sum += interleaved[base+c]
			}
			out[f] = sum * inv
		}
	}

	return out, nil
}
