// SPDX-License-Identifier: MIT
package decode

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"equalizer/internal/errs"
	"equalizer/pkg/utils"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func TestWAVRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		tol      float64
	}{
		{"16-bit", 16, 1.0 / 32768},
		{"24-bit", 24, 1.0 / 8388608},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tone.wav")
			in := utils.GenerateSine(800, 8000, 440, 0.5)
			if err := WriteWAV(path, in, 8000, tt.bitDepth); err != nil {
				t.Fatalf("WriteWAV error: %v", err)
			}

			out, rate, err := NewRegistry().Decode(path)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if rate != 8000 {
				t.Errorf("sample rate = %g, want 8000", rate)
			}
			if len(out) != len(in) {
				t.Fatalf("decoded %d samples, want %d", len(out), len(in))
			}
			for i := range in {
				if math.Abs(out[i]-in[i]) > tt.tol {
					t.Fatalf("sample %d = %g, want %g", i, out[i], in[i])
				}
			}
		})
	}
}

func TestDecode_StereoMixedToMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	enc := wav.NewEncoder(f, 1000, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 1000},
		Data:           []int{16384, 0, -16384, -16384, 0, 16384},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close error: %v", err)
	}
	f.Close()

	r := NewRegistry()
	pcm, err := r.DecodePCM(path)
	if err != nil {
		t.Fatalf("DecodePCM error: %v", err)
	}
	if pcm.Channels != 2 || pcm.Frames() != 3 {
		t.Errorf("pcm = %d channels, %d frames", pcm.Channels, pcm.Frames())
	}

	mono, _, err := r.Decode(path)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := []float64{0.25, -0.5, 0.25}
	for i := range want {
		if math.Abs(mono[i]-want[i]) > 1e-9 {
			t.Errorf("mono[%d] = %g, want %g", i, mono[i], want[i])
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("definitely not a riff file"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	garbageMP3 := filepath.Join(dir, "garbage.mp3")
	if err := os.WriteFile(garbageMP3, []byte{0, 1, 2, 3}, 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"unsupported extension", filepath.Join(dir, "song.flac")},
		{"missing file", filepath.Join(dir, "missing.wav")},
		{"invalid wav", garbage},
		{"invalid mp3", garbageMP3},
	}
	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := r.Decode(tt.path); !errors.Is(err, errs.ErrPlaybackUnavailable) {
				t.Errorf("Decode error = %v, want ErrPlaybackUnavailable", err)
			}
		})
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := NewRegistry()
	want := []string{".aif", ".aiff", ".mp3", ".ogg", ".wav", ".wave"}
	if got := r.Extensions(); !slices.Equal(got, want) {
		t.Errorf("Extensions = %v, want %v", got, want)
	}
	if !r.Supports("Song.WAV") {
		t.Error("extension matching should ignore case")
	}

	r.Register("raw", DecoderFunc(func(_ io.ReadSeeker) (PCM, error) {
		return PCM{Samples: []float64{0.5, -0.5}, Channels: 1, SampleRate: 10}, nil
	}))
	path := filepath.Join(t.TempDir(), "x.raw")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	samples, rate, err := r.Decode(path)
	if err != nil || rate != 10 || len(samples) != 2 {
		t.Errorf("custom decoder: samples=%v rate=%g err=%v", samples, rate, err)
	}
}

func TestFromIntBuffer_Unsigned8(t *testing.T) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:   []int{0, 128, 255},
	}
	pcm, err := fromIntBuffer(buf, 8, true)
	if err != nil {
		t.Fatalf("fromIntBuffer error: %v", err)
	}
	want := []float64{-1, 0, 127.0 / 128}
	for i := range want {
		if pcm.Samples[i] != want[i] {
			t.Errorf("sample %d = %g, want %g", i, pcm.Samples[i], want[i])
		}
	}
	if _, err := fromIntBuffer(buf, 12, false); err == nil {
		t.Error("expected error for 12-bit audio")
	}
}

func TestWriteWAV_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	for _, tc := range []struct {
		samples  []float64
		rate     int
		bitDepth int
	}{
		{nil, 8000, 16},
		{[]float64{0}, 0, 16},
		{[]float64{0}, 8000, 8},
		{[]float64{0}, 8000, 20},
	} {
		if err := WriteWAV(path, tc.samples, tc.rate, tc.bitDepth); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("WriteWAV(%d samples, %d Hz, %d bit) error = %v", len(tc.samples), tc.rate, tc.bitDepth, err)
		}
	}
}
