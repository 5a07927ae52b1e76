package analysis

import (
	"math"

	"equalizer/internal/log"
	"equalizer/internal/waveform"
)

// OnsetDetector finds note and drum onsets from jumps in frame energy.
type OnsetDetector struct {
	Threshold float64 // Minimum frame RMS for an onset.
	MinRatio  float64 // Required energy increase over the previous frame.
	FrameSize int     // Samples per frame.
}

// DefaultOnsetDetector returns the settings used by the analyze command.
func DefaultOnsetDetector() OnsetDetector {
	return OnsetDetector{Threshold: 0.05, MinRatio: 1.5, FrameSize: 1024}
}

// Detect returns the start time in seconds of every frame whose RMS is
// above Threshold and at least MinRatio times the previous frame's. A
// frame following silence always qualifies. A trailing partial frame is
// ignored.
func (d OnsetDetector) Detect(sig *waveform.Signal) []float64 {
	if sig == nil {
		return nil
	}
	frame := d.FrameSize
	if frame <= 0 {
		frame = DefaultOnsetDetector().FrameSize
	}

	samples := sig.Samples()
	times := sig.Timestamps()
	var onsets []float64
	last := 0.0
	for start := 0; start+frame <= len(samples); start += frame {
		energy := RMS(samples[start : start+frame])
		if energy > d.Threshold && (last == 0 || energy/last > d.MinRatio) {
			onsets = append(onsets, times[start])
		}
		last = energy
	}

	log.Debugf("Analysis: %d onsets in %d frames of %d samples", len(onsets), len(samples)/frame, frame)
	return onsets
}

// RMS returns the root mean square of buf, or 0 for an empty buffer.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	var sumSquare float64
	for _, v := range buf {
		sumSquare += v * v
	}
	return math.Sqrt(sumSquare / float64(len(buf)))
}
