// SPDX-License-Identifier: MIT

// Package decode turns audio files into mono float64 samples. Formats are
// picked by file extension.
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"equalizer/internal/errs"
	"equalizer/internal/log"
	"equalizer/internal/waveform"
)

// PCM is decoded audio with interleaved samples in [-1, 1].
type PCM struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// Frames returns the number of samples per channel.
func (p PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Decoder decodes one container format.
type Decoder interface {
	Decode(r io.ReadSeeker) (PCM, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r io.ReadSeeker) (PCM, error)

func (f DecoderFunc) Decode(r io.ReadSeeker) (PCM, error) { return f(r) }

// Registry maps lower-case file extensions (with the dot) to decoders.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry returns a registry with WAV, AIFF, MP3 and Ogg Vorbis.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(".wav", DecoderFunc(decodeWAV))
	r.Register(".wave", DecoderFunc(decodeWAV))
	r.Register(".aif", DecoderFunc(decodeAIFF))
	r.Register(".aiff", DecoderFunc(decodeAIFF))
	r.Register(".mp3", DecoderFunc(decodeMP3))
	r.Register(".ogg", DecoderFunc(decodeOgg))
	return r
}

// Register adds or replaces the decoder for ext.
func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[normalizeExt(ext)] = d
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.lookup(path)
	return ok
}

func (r *Registry) lookup(path string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[normalizeExt(filepath.Ext(path))]
	return d, ok
}

// DecodePCM opens path and decodes it without mixing channels.
func (r *Registry) DecodePCM(path string) (PCM, error) {
	d, ok := r.lookup(path)
	if !ok {
		return PCM{}, fmt.Errorf("%w: unsupported format '%s'", errs.ErrPlaybackUnavailable, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return PCM{}, fmt.Errorf("%w: %w", errs.ErrPlaybackUnavailable, err)
	}
	defer f.Close()

	pcm, err := d.Decode(f)
	if err != nil {
		return PCM{}, fmt.Errorf("%w: decode %s: %w", errs.ErrPlaybackUnavailable, filepath.Base(path), err)
	}
	if pcm.Channels <= 0 || pcm.SampleRate <= 0 || len(pcm.Samples) == 0 {
		return PCM{}, fmt.Errorf("%w: %s has no audio (%d channels at %dHz)",
			errs.ErrPlaybackUnavailable, filepath.Base(path), pcm.Channels, pcm.SampleRate)
	}
	return pcm, nil
}

// Decode opens path and returns mono samples and the sample rate.
func (r *Registry) Decode(path string) ([]float64, float64, error) {
	pcm, err := r.DecodePCM(path)
	if err != nil {
		return nil, 0, err
	}
	mono, err := waveform.MixDown(pcm.Samples, pcm.Channels)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", errs.ErrPlaybackUnavailable, err)
	}
	log.Debugf("Decode: %s -> %d frames, %d channels at %dHz",
		filepath.Base(path), len(mono), pcm.Channels, pcm.SampleRate)
	return mono, float64(pcm.SampleRate), nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
