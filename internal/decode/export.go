// SPDX-License-Identifier: MIT
package decode

import (
	"fmt"
	"math"
	"os"

	"equalizer/internal/errs"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes mono samples in [-1, 1] to path as integer PCM.
// Samples outside the range are clipped.
func WriteWAV(path string, samples []float64, sampleRate, bitDepth int) error {
	if sampleRate <= 0 || len(samples) == 0 {
		return fmt.Errorf("%w: cannot write %d samples at %dHz", errs.ErrInvalidInput, len(samples), sampleRate)
	}
	scale, err := fullScale(bitDepth)
	if err != nil || bitDepth == 8 {
		return fmt.Errorf("%w: unsupported bit depth %d", errs.ErrInvalidInput, bitDepth)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(file, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range samples {
		v = math.Max(-1, math.Min(1, v))
		buf.Data[i] = int(math.Max(-scale, math.Min(scale-1, math.Round(v*scale))))
	}

	if err := enc.Write(buf); err != nil {
		file.Close()
		return fmt.Errorf("writing samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return file.Close()
}
