// SPDX-License-Identifier: MIT
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errInvalidFile = errors.New("not a valid file for this format")

// fullScale returns the magnitude of the most negative integer sample.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
		return float64(int64(1) << (bitDepth - 1)), nil
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
}

// fromIntBuffer normalizes integer PCM to [-1, 1]. WAV stores 8-bit audio
// unsigned, AIFF signed.
func fromIntBuffer(buf *audio.IntBuffer, bitDepth int, unsigned8 bool) (PCM, error) {
	if buf == nil || buf.Format == nil {
		return PCM{}, errors.New("missing PCM format")
	}
	scale, err := fullScale(bitDepth)
	if err != nil {
		return PCM{}, err
	}
	offset := 0.0
	if bitDepth == 8 && unsigned8 {
		offset = scale
	}

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = (float64(v) - offset) / scale
	}
	return PCM{
		Samples:    samples,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

func decodeWAV(r io.ReadSeeker) (PCM, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return PCM{}, errInvalidFile
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	return fromIntBuffer(buf, int(dec.BitDepth), true)
}

func decodeAIFF(r io.ReadSeeker) (PCM, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return PCM{}, errInvalidFile
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	return fromIntBuffer(buf, int(dec.BitDepth), false)
}
