// SPDX-License-Identifier: MIT
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// go-mp3 always produces 16-bit little-endian stereo.
const mp3Channels = 2

func decodeMP3(r io.ReadSeeker) (PCM, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return PCM{}, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return PCM{}, fmt.Errorf("reading mp3 frames: %w", err)
	}

	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		samples[i] = float64(v) / 32768.0
	}
	// Drop a trailing half frame.
	samples = samples[:len(samples)-len(samples)%mp3Channels]

	return PCM{
		Samples:    samples,
		Channels:   mp3Channels,
		SampleRate: dec.SampleRate(),
	}, nil
}

func decodeOgg(r io.ReadSeeker) (PCM, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return PCM{}, err
	}
	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v)
	}
	return PCM{
		Samples:    samples,
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
	}, nil
}
