// SPDX-License-Identifier: MIT
/*
Package audio plays loaded signals through PortAudio and lists the host's
audio devices.

The Player keeps a mono output stream open for the loaded media and fills
each buffer from the sample slice on the PortAudio callback thread. The
stream stays running while paused; the callback writes silence. Position
advances by the playback rate in source samples per output frame, so a
rate of 2 plays twice as fast at a higher pitch.
*/
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"equalizer/internal/config"
	"equalizer/internal/errs"
	"equalizer/internal/log"
	"equalizer/internal/playback"
	"equalizer/pkg/bitint"

	"github.com/gordonklaus/portaudio"
)

// stream is the part of *portaudio.Stream the Player uses.
type stream interface {
	Start() error
	Stop() error
	Close() error
}

// openStreamFunc opens and starts a mono output stream that calls fill for
// every buffer. Tests replace it to run without audio hardware.
var openStreamFunc = openPortAudioStream

// Player is a playback.Player backed by a PortAudio output stream.
type Player struct {
	cfg config.AudioConfig

	mu         sync.Mutex
	samples    []float32
	sampleRate float64
	pos        float64 // Fractional index of the next source sample.
	rate       float64
	playing    bool
	stream     stream
	opened     uint64 // Generation handed to the latest stream opener.
	current    uint64 // Generation of stream.
}

var _ playback.Player = (*Player)(nil)

// NewPlayer returns a Player for the configured output device. No stream is
// opened until Open. Buffer sizes are rounded up to a power of two.
func NewPlayer(cfg config.AudioConfig) *Player {
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = config.DefaultFramesPerBuffer
	}
	if !bitint.IsPowerOfTwo(cfg.FramesPerBuffer) {
		n := bitint.NextPowerOfTwo(cfg.FramesPerBuffer)
		log.Infof("Player: rounding %d frames per buffer up to %d", cfg.FramesPerBuffer, n)
		cfg.FramesPerBuffer = n
	}
	return &Player{cfg: cfg, rate: 1}
}

// Open replaces the current media and opens a stream at its sample rate.
// Playback starts paused at position zero. The previous stream is released
// only after the new one is running; if the new stream fails to open the
// previous media keeps playing.
func (p *Player) Open(m playback.Media) error {
	if len(m.Samples) == 0 || m.SampleRate <= 0 {
		return fmt.Errorf("%w: empty media", errs.ErrPlaybackUnavailable)
	}
	samples := make([]float32, len(m.Samples))
	for i, v := range m.Samples {
		samples[i] = float32(v)
	}

	p.mu.Lock()
	p.opened++
	gen := p.opened
	p.mu.Unlock()

	s, err := openStreamFunc(p.cfg, m.SampleRate, func(out []float32) { p.fill(gen, out) })
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrPlaybackUnavailable, err)
	}

	p.mu.Lock()
	prev := p.stream
	p.samples = samples
	p.sampleRate = m.SampleRate
	p.pos = 0
	p.playing = false
	p.stream = s
	p.current = gen
	p.mu.Unlock()

	if err := release(prev); err != nil {
		log.Warnf("Player: closing previous stream: %v", err)
	}

	log.Infof("Player: opened %d samples at %gHz", len(samples), m.SampleRate)
	return nil
}

// fill is the stream callback for the stream opened as generation gen. A
// stream that is no longer current writes silence. It must not allocate.
func (p *Player) fill(gen uint64, out []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := float64(len(p.samples))
	for i := range out {
		if gen != p.current || !p.playing || p.pos >= n {
			out[i] = 0
			continue
		}
		out[i] = p.samples[int(p.pos)]
		p.pos += p.rate
		if p.pos >= n {
			p.pos = n
			p.playing = false
		}
	}
}

// Position returns the playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.toDuration(p.pos)
}

// Duration returns the length of the loaded media, or 0.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.toDuration(float64(len(p.samples)))
}

func (p *Player) toDuration(samples float64) time.Duration {
	if p.sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples / p.sampleRate * float64(time.Second))
}

func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos >= float64(len(p.samples)) {
		p.pos = 0
	}
	p.playing = len(p.samples) > 0
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// Stop pauses and rewinds to the start.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.pos = 0
}

// SetPosition seeks, clamping to the media bounds.
func (p *Player) SetPosition(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := d.Seconds() * p.sampleRate
	p.pos = math.Max(0, math.Min(pos, float64(len(p.samples))))
}

// SetPlaybackRate sets the speed multiplier. Non-positive rates are ignored.
func (p *Player) SetPlaybackRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		log.Warnf("Player: ignoring playback rate %g", rate)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
}

// Playing reports whether audio is being produced.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close stops and releases the stream.
func (p *Player) Close() error {
	return p.closeStream()
}

func (p *Player) closeStream() error {
	p.mu.Lock()
	s := p.stream
	p.stream = nil
	p.playing = false
	p.mu.Unlock()
	return release(s)
}

// release stops and closes s. Stop waits for the callback, which takes
// p.mu, so it must be called without the lock held.
func release(s stream) error {
	if s == nil {
		return nil
	}
	if err := s.Stop(); err != nil {
		s.Close()
		return err
	}
	return s.Close()
}

// paStream owns a PortAudio stream and the library reference it was opened
// with.
type paStream struct {
	*portaudio.Stream
}

func (s paStream) Close() error {
	err := s.Stream.Close()
	if terr := Terminate(); err == nil {
		err = terr
	}
	return err
}

func openPortAudioStream(cfg config.AudioConfig, sampleRate float64, fill func([]float32)) (stream, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}

	device, err := OutputDevice(cfg.OutputDevice)
	if err != nil {
		Terminate()
		return nil, err
	}

	latency := device.DefaultHighOutputLatency
	if cfg.LowLatency {
		latency = device.DefaultLowOutputLatency
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: cfg.FramesPerBuffer,
		SampleRate:      sampleRate,
	}

	s, err := portaudio.OpenStream(params, fill)
	if err != nil {
		Terminate()
		return nil, err
	}
	if err := s.Start(); err != nil {
		s.Close()
		Terminate()
		return nil, err
	}

	log.Debugf("Player: output stream on %s (latency %s)", device.Name, latency)
	return paStream{s}, nil
}
