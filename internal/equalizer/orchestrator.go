// SPDX-License-Identifier: MIT

// Package equalizer wires the signal store, spectrum analyzer, window
// generator and playback cursor to an external player and three plot
// surfaces, and exposes the user-facing controls.
package equalizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"equalizer/internal/analysis"
	"equalizer/internal/errs"
	"equalizer/internal/log"
	"equalizer/internal/mode"
	"equalizer/internal/playback"
	"equalizer/internal/transport"
	"equalizer/internal/waveform"
)

// Source decodes a media file into mono samples.
type Source interface {
	Decode(path string) (samples []float64, sampleRate float64, err error)
}

// WindowSettings selects the smoothing window shown on load.
type WindowSettings struct {
	Family    analysis.Family
	Length    int
	Amplitude float64
}

// Options configures an Orchestrator.
type Options struct {
	Cursor        playback.Options
	TickInterval  time.Duration
	InternalClock bool // Drive Tick from a playback.Ticker instead of the caller.
	Autoplay      bool
	Rate          float64
	Window        WindowSettings
}

// DefaultOptions returns the internal clock at 100ms, autoplay at normal
// speed and a 50 point Hamming window.
func DefaultOptions() Options {
	return Options{
		Cursor:        playback.DefaultOptions(),
		TickInterval:  playback.DefaultTickInterval,
		InternalClock: true,
		Autoplay:      true,
		Rate:          1,
		Window:        WindowSettings{Family: analysis.Hamming, Length: 50, Amplitude: 1},
	}
}

// Deps are the collaborators an Orchestrator drives. Player and TimePlot
// are required; missing plots discard their output and Transport is
// optional.
type Deps struct {
	Player        playback.Player
	Source        Source
	TimePlot      playback.Surface
	FrequencyPlot playback.Surface
	WindowPlot    playback.Surface
	Transport     transport.Transport
	Analyzer      analysis.SpectrumSource
	Windows       analysis.WindowSource
}

// Orchestrator owns the loaded signal, its spectrum and the current
// smoothing window.
type Orchestrator struct {
	opts Options
	deps Deps

	store  *waveform.Store
	cursor *playback.Cursor
	ticker *playback.Ticker

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	spectrum   analysis.Spectrum // As analyzed.
	shown      analysis.Spectrum // As displayed after mode reshaping.
	window     analysis.Window
	mode       mode.Mode
	customMode bool

	closeOnce sync.Once
	closeErr  error
}

var (
	_ mode.View                 = (*Orchestrator)(nil)
	_ analysis.SpectrumProvider = (*Orchestrator)(nil)
)

// New validates deps, draws the initial smoothing window and returns an
// Orchestrator with nothing loaded.
func New(opts Options, deps Deps) (*Orchestrator, error) {
	if deps.Player == nil {
		return nil, fmt.Errorf("%w: a player is required", errs.ErrInvalidInput)
	}
	if deps.TimePlot == nil {
		return nil, fmt.Errorf("%w: a time plot is required", errs.ErrInvalidInput)
	}
	if deps.FrequencyPlot == nil {
		deps.FrequencyPlot = playback.Discard
	}
	if deps.WindowPlot == nil {
		deps.WindowPlot = playback.Discard
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analysis.NewSpectrumAnalyzer()
	}
	if deps.Windows == nil {
		deps.Windows = analysis.NewWindowGenerator()
	}
	if opts.Rate == 0 {
		opts.Rate = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		opts:   opts,
		deps:   deps,
		store:  waveform.NewStore(),
		cursor: playback.NewCursor(deps.Player, deps.TimePlot, opts.Cursor),
		ctx:    ctx,
		cancel: cancel,
		mode:   mode.Passthrough{},
	}
	o.ticker = playback.NewTicker(opts.TickInterval, func() { o.Tick() })
	o.store.OnReplace(o.cursor.Load)

	if _, err := o.PreviewWindow(opts.Window.Family, opts.Window.Length, opts.Window.Amplitude); err != nil {
		cancel()
		return nil, fmt.Errorf("initial smoothing window: %w", err)
	}
	return o, nil
}

// Load decodes path and loads it. On any failure the previous signal,
// spectrum and plots are left untouched.
func (o *Orchestrator) Load(path string) error {
	if o.deps.Source == nil {
		return fmt.Errorf("%w: no file source configured", errs.ErrPlaybackUnavailable)
	}
	samples, rate, err := o.deps.Source.Decode(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return o.load(playback.Media{Path: path, Samples: samples, SampleRate: rate})
}

// LoadSamples loads an in-memory mono signal.
func (o *Orchestrator) LoadSamples(samples []float64, sampleRate float64) error {
	return o.load(playback.Media{Samples: samples, SampleRate: sampleRate})
}

func (o *Orchestrator) load(m playback.Media) error {
	sig, err := waveform.New(m.Samples, m.SampleRate)
	if err != nil {
		return fmt.Errorf("load signal: %w", err)
	}
	spectrum, err := o.deps.Analyzer.Analyze(sig)
	if err != nil {
		return fmt.Errorf("analyze signal: %w", err)
	}
	m.Samples = sig.Samples()
	if err := o.deps.Player.Open(m); err != nil {
		return fmt.Errorf("open player: %w", err)
	}

	o.mu.Lock()
	o.spectrum = spectrum
	o.shown = spectrum.Clone()
	if !o.customMode {
		if eq, err := mode.NewMusical(o, sig.SampleRate()/2); err == nil {
			o.mode = eq
		}
	}
	rate := o.opts.Rate
	o.mu.Unlock()

	o.store.Replace(sig)
	o.drawSpectrum(spectrum)

	if rate != 1 {
		o.cursor.SetRate(rate)
	}
	if o.opts.InternalClock {
		o.ticker.Start(o.ctx)
	}
	if o.opts.Autoplay {
		o.cursor.Play()
	}

	log.Infof("Equalizer: loaded %d samples at %gHz (%.2fs, %d spectrum bins)",
		sig.Len(), sig.SampleRate(), sig.Duration(), spectrum.Len())
	return nil
}

func (o *Orchestrator) drawSpectrum(s analysis.Spectrum) {
	o.deps.FrequencyPlot.Clear()
	o.deps.FrequencyPlot.Plot(s.Frequencies, s.Magnitudes)
	if o.deps.Transport != nil {
		if err := o.deps.Transport.Send(transport.NewSpectrumMessage(s.Frequencies, s.Magnitudes)); err != nil {
			log.Debugf("Equalizer: spectrum publish failed: %v", err)
		}
	}
}

// Play starts or resumes playback.
func (o *Orchestrator) Play() { o.cursor.Play() }

// Pause pauses playback.
func (o *Orchestrator) Pause() { o.cursor.Pause() }

// TogglePause pauses when playing and resumes when paused.
func (o *Orchestrator) TogglePause() { o.cursor.TogglePause() }

// Stop halts playback and clears the time plot.
func (o *Orchestrator) Stop() { o.cursor.Stop() }

// Reset restarts playback from the beginning.
func (o *Orchestrator) Reset() { o.cursor.Reset() }

// ZoomIn shrinks the time plot viewport.
func (o *Orchestrator) ZoomIn() { o.cursor.ZoomIn() }

// ZoomOut grows the time plot viewport.
func (o *Orchestrator) ZoomOut() { o.cursor.ZoomOut() }

// Tick advances the time plot to the player's position.
func (o *Orchestrator) Tick() bool { return o.cursor.Tick() }

// State returns the playback state.
func (o *Orchestrator) State() playback.State { return o.cursor.State() }

// SetSpeed sets the playback rate multiplier.
func (o *Orchestrator) SetSpeed(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: playback rate %g", errs.ErrInvalidInput, rate)
	}
	o.mu.Lock()
	o.opts.Rate = rate
	o.mu.Unlock()
	o.cursor.SetRate(rate)
	return nil
}

// PreviewWindow generates a smoothing window, draws it against sample
// index and makes it the current window. A mode that shapes by the window
// redraws the spectrum. An invalid request leaves the previous window in
// place.
func (o *Orchestrator) PreviewWindow(family analysis.Family, length int, amplitude float64) (analysis.Window, error) {
	w, err := o.deps.Windows.Generate(family, length, amplitude)
	if err != nil {
		return analysis.Window{}, err
	}

	o.mu.Lock()
	o.window = w
	m := o.mode
	o.mu.Unlock()

	xs := make([]float64, len(w.Coefficients))
	for i := range xs {
		xs[i] = float64(i)
	}
	o.deps.WindowPlot.Clear()
	o.deps.WindowPlot.Plot(xs, w.Coefficients)

	if r, ok := m.(mode.Refresher); ok && o.store.Loaded() {
		r.Refresh()
	}
	return w, nil
}

// ModifyFrequency forwards a slider value to the active mode.
func (o *Orchestrator) ModifyFrequency(value int) {
	o.mu.RLock()
	m := o.mode
	o.mu.RUnlock()
	m.ModifyFrequency(value)
}

// SetMode replaces the active mode. A nil mode restores the default band
// equalizer on the next load.
func (o *Orchestrator) SetMode(m mode.Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m == nil {
		o.mode = mode.Passthrough{}
		o.customMode = false
		return
	}
	o.mode = m
	o.customMode = true
}

// Mode returns the active mode.
func (o *Orchestrator) Mode() mode.Mode {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mode
}

// Spectrum returns a copy of the spectrum as analyzed.
func (o *Orchestrator) Spectrum() analysis.Spectrum {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.spectrum.Clone()
}

// DisplayedSpectrum returns a copy of the spectrum currently shown.
func (o *Orchestrator) DisplayedSpectrum() analysis.Spectrum {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.shown.Clone()
}

// SmoothingWindow returns the current smoothing window.
func (o *Orchestrator) SmoothingWindow() analysis.Window {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.window
}

// ShowSpectrum replaces the displayed spectrum and redraws it.
func (o *Orchestrator) ShowSpectrum(s analysis.Spectrum) {
	o.mu.Lock()
	o.shown = s.Clone()
	o.mu.Unlock()
	o.drawSpectrum(s)
}

// Signal returns the loaded signal, or nil.
func (o *Orchestrator) Signal() *waveform.Signal {
	return o.store.Current()
}

// Close stops the ticker and the player and closes the transport and any
// player that holds resources. Later calls return the first result.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.cancel()
		o.ticker.Stop()
		if o.store.Loaded() {
			o.deps.Player.Stop()
		}

		var errList []error
		if c, ok := o.deps.Player.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errList = append(errList, fmt.Errorf("close player: %w", err))
			}
		}
		if o.deps.Transport != nil {
			if err := o.deps.Transport.Close(); err != nil {
				errList = append(errList, fmt.Errorf("close transport: %w", err))
			}
		}
		o.closeErr = errors.Join(errList...)
		log.Debugf("Equalizer: closed")
	})
	return o.closeErr
}
