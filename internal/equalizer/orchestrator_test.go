// SPDX-License-Identifier: MIT
package equalizer

import (
	"errors"
	"math"
	"testing"
	"time"

	"equalizer/internal/analysis"
	"equalizer/internal/errs"
	"equalizer/internal/mode"
	"equalizer/internal/playback"
	"equalizer/internal/playback/playbacktest"
	"equalizer/internal/transport"
	"equalizer/pkg/utils"
)

type fakeSource struct {
	samples []float64
	rate    float64
	err     error
	paths   []string
}

func (s *fakeSource) Decode(path string) ([]float64, float64, error) {
	s.paths = append(s.paths, path)
	return s.samples, s.rate, s.err
}

type fixture struct {
	orch      *Orchestrator
	player    *playbacktest.FakePlayer
	timePlot  *playbacktest.Surface
	freqPlot  *playbacktest.Surface
	winPlot   *playbacktest.Surface
	source    *fakeSource
	transport *utils.RecordingTransport
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		player:    playbacktest.NewFakePlayer(),
		timePlot:  playbacktest.NewSurface(),
		freqPlot:  playbacktest.NewSurface(),
		winPlot:   playbacktest.NewSurface(),
		source:    &fakeSource{samples: utils.GenerateCosine(1000, 1000, 100, 1), rate: 1000},
		transport: &utils.RecordingTransport{},
	}
	orch, err := New(opts, Deps{
		Player:        f.player,
		Source:        f.source,
		TimePlot:      f.timePlot,
		FrequencyPlot: f.freqPlot,
		WindowPlot:    f.winPlot,
		Transport:     f.transport,
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { orch.Close() })
	f.orch = orch
	return f
}

// manualOptions disables the internal clock and autoplay.
func manualOptions() Options {
	opts := DefaultOptions()
	opts.InternalClock = false
	opts.Autoplay = false
	return opts
}

func TestNew_DrawsInitialWindow(t *testing.T) {
	f := newFixture(t, manualOptions())

	w := f.orch.SmoothingWindow()
	if w.Family != analysis.Hamming || len(w.Coefficients) != 50 {
		t.Fatalf("initial window = %s/%d, want Hamming/50", w.Family, len(w.Coefficients))
	}
	if f.winPlot.Plots != 1 || len(f.winPlot.Xs) != 50 || f.winPlot.Xs[49] != 49 {
		t.Errorf("window plot: plots=%d points=%d", f.winPlot.Plots, len(f.winPlot.Xs))
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(DefaultOptions(), Deps{TimePlot: playback.Discard}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("missing player error = %v", err)
	}
	if _, err := New(DefaultOptions(), Deps{Player: playbacktest.NewFakePlayer()}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("missing time plot error = %v", err)
	}

	opts := DefaultOptions()
	opts.Window.Length = 0
	_, err := New(opts, Deps{Player: playbacktest.NewFakePlayer(), TimePlot: playback.Discard})
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("bad window error = %v", err)
	}
}

func TestLoad_PlotsSpectrumAndResetsCursor(t *testing.T) {
	f := newFixture(t, manualOptions())

	if err := f.orch.Load("tone.wav"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if f.orch.State() != playback.Idle {
		t.Errorf("state = %s, want idle", f.orch.State())
	}
	if f.orch.Signal() == nil || f.orch.Signal().Len() != 1000 {
		t.Fatal("signal not stored")
	}
	if f.player.Media().SampleRate != 1000 {
		t.Errorf("player opened at %g Hz", f.player.Media().SampleRate)
	}

	s := f.orch.Spectrum()
	if s.Len() != 500 {
		t.Fatalf("spectrum has %d bins, want 500", s.Len())
	}
	peak, ok := s.Peak()
	if !ok || math.Abs(s.Frequencies[peak]-100) > 1e-9 {
		t.Errorf("peak at %g Hz, want 100", s.Frequencies[peak])
	}
	if f.freqPlot.Plots != 1 || len(f.freqPlot.Xs) != 500 {
		t.Errorf("frequency plot: plots=%d points=%d", f.freqPlot.Plots, len(f.freqPlot.Xs))
	}
	if len(f.timePlot.Xs) != 1 || !math.IsInf(f.timePlot.XMax, 1) {
		t.Errorf("time plot not reset to the first sample")
	}

	msg, ok := f.transport.Last().(transport.SpectrumMessage)
	if !ok || len(msg.Magnitudes) != 500 {
		t.Errorf("spectrum not published, last message %T", f.transport.Last())
	}
}

func TestLoad_FailureKeepsPreviousState(t *testing.T) {
	f := newFixture(t, manualOptions())
	if err := f.orch.Load("first.wav"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	before := f.orch.Spectrum()
	plots := f.freqPlot.Plots

	tests := []struct {
		name    string
		setup   func()
		wantErr error
	}{
		{
			name:    "decode",
			setup:   func() { f.source.err = errs.ErrPlaybackUnavailable },
			wantErr: errs.ErrPlaybackUnavailable,
		},
		{
			name:    "zero sample rate",
			setup:   func() { f.source.err = nil; f.source.rate = 0 },
			wantErr: errs.ErrInvalidInput,
		},
		{
			name:    "single sample",
			setup:   func() { f.source.rate = 1000; f.source.samples = []float64{1} },
			wantErr: errs.ErrInvalidInput,
		},
		{
			name: "player",
			setup: func() {
				f.source.samples = utils.GenerateSine(64, 1000, 10, 1)
				f.player.OpenErr = errs.ErrPlaybackUnavailable
			},
			wantErr: errs.ErrPlaybackUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			if err := f.orch.Load("second.wav"); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load error = %v, want %v", err, tt.wantErr)
			}
			if f.orch.Signal().Len() != 1000 {
				t.Error("failed load replaced the signal")
			}
			if f.orch.Spectrum().Len() != before.Len() || f.freqPlot.Plots != plots {
				t.Error("failed load touched the spectrum")
			}
		})
	}
}

func TestLoad_WithoutSource(t *testing.T) {
	orch, err := New(manualOptions(), Deps{Player: playbacktest.NewFakePlayer(), TimePlot: playback.Discard})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer orch.Close()
	if err := orch.Load("x.wav"); !errors.Is(err, errs.ErrPlaybackUnavailable) {
		t.Errorf("Load error = %v, want ErrPlaybackUnavailable", err)
	}
}

func TestLoad_Autoplay(t *testing.T) {
	opts := manualOptions()
	opts.Autoplay = true
	opts.Rate = 1.5
	f := newFixture(t, opts)

	if err := f.orch.LoadSamples(utils.GenerateSine(100, 100, 5, 1), 100); err != nil {
		t.Fatalf("LoadSamples error: %v", err)
	}
	if f.orch.State() != playback.Playing || !f.player.Playing() {
		t.Errorf("autoplay: state=%s playing=%v", f.orch.State(), f.player.Playing())
	}
	if f.player.Rate() != 1.5 {
		t.Errorf("rate = %g, want 1.5", f.player.Rate())
	}
}

func TestControls(t *testing.T) {
	f := newFixture(t, manualOptions())
	if err := f.orch.Load("tone.wav"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	f.orch.Play()
	f.player.Seek(500 * time.Millisecond)
	if !f.orch.Tick() {
		t.Fatal("tick while playing did not render")
	}
	if hi := f.timePlot.Hi; math.Abs(hi-0.4995) > 1e-12 {
		t.Errorf("x range ends at %g, want 0.4995", hi)
	}

	f.orch.TogglePause()
	if f.orch.State() != playback.Paused {
		t.Errorf("state = %s, want paused", f.orch.State())
	}
	f.orch.Stop()
	if f.orch.State() != playback.Stopped {
		t.Errorf("state = %s, want stopped", f.orch.State())
	}
	f.orch.Reset()
	if f.orch.State() != playback.Playing || f.player.Position() != 0 {
		t.Errorf("reset: state=%s position=%s", f.orch.State(), f.player.Position())
	}

	f.orch.ZoomIn()
	if f.timePlot.Scales != 1 {
		t.Error("zoom not forwarded to the time plot")
	}

	if err := f.orch.SetSpeed(2); err != nil || f.player.Rate() != 2 {
		t.Errorf("SetSpeed(2): err=%v rate=%g", err, f.player.Rate())
	}
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := f.orch.SetSpeed(bad); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("SetSpeed(%g) error = %v", bad, err)
		}
	}
}

func TestPreviewWindow(t *testing.T) {
	f := newFixture(t, manualOptions())

	w, err := f.orch.PreviewWindow(analysis.Gaussian, 8, 3)
	if err != nil {
		t.Fatalf("PreviewWindow error: %v", err)
	}
	if math.Abs(w.Coefficients[4]-3) > 1e-12 {
		t.Errorf("gaussian centre = %g, want 3", w.Coefficients[4])
	}
	if f.winPlot.Plots != 2 || len(f.winPlot.Ys) != 8 {
		t.Errorf("window plot: plots=%d points=%d", f.winPlot.Plots, len(f.winPlot.Ys))
	}

	if _, err := f.orch.PreviewWindow(analysis.Hanning, -1, 1); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("invalid length error = %v", err)
	}
	if f.orch.SmoothingWindow().Family != analysis.Gaussian {
		t.Error("invalid preview replaced the current window")
	}
}

func TestModifyFrequency_DefaultEqualizer(t *testing.T) {
	f := newFixture(t, manualOptions())
	if _, err := f.orch.PreviewWindow(analysis.Rectangular, 4, 1); err != nil {
		t.Fatalf("PreviewWindow error: %v", err)
	}
	f.orch.ModifyFrequency(20) // no-op before a load
	if err := f.orch.Load("tone.wav"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	eq, ok := f.orch.Mode().(*mode.Equalizer)
	if !ok {
		t.Fatalf("mode after load is %T, want *mode.Equalizer", f.orch.Mode())
	}
	if err := eq.SelectBand(1); err != nil { // bass, 60-250 Hz
		t.Fatalf("SelectBand error: %v", err)
	}
	f.orch.ModifyFrequency(20)

	shown := f.orch.DisplayedSpectrum()
	orig := f.orch.Spectrum()
	for i, freq := range shown.Frequencies {
		want := orig.Magnitudes[i]
		if freq >= 60 && freq < 250 {
			want *= 2
		}
		if math.Abs(shown.Magnitudes[i]-want) > 1e-12 {
			t.Fatalf("bin %g Hz = %g, want %g", freq, shown.Magnitudes[i], want)
		}
	}
	if f.freqPlot.Plots != 2 {
		t.Errorf("frequency plot redrawn %d times, want 2", f.freqPlot.Plots)
	}
}

func TestPreviewWindow_ReshapesDisplayedSpectrum(t *testing.T) {
	f := newFixture(t, manualOptions())
	if err := f.orch.Load("tone.wav"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	eq := f.orch.Mode().(*mode.Equalizer)
	if err := eq.SelectBand(1); err != nil {
		t.Fatalf("SelectBand error: %v", err)
	}
	f.orch.ModifyFrequency(20) // shaped by the default Hamming window

	if _, err := f.orch.PreviewWindow(analysis.Rectangular, 4, 1); err != nil {
		t.Fatalf("PreviewWindow error: %v", err)
	}

	shown := f.orch.DisplayedSpectrum()
	orig := f.orch.Spectrum()
	for i, freq := range shown.Frequencies {
		want := orig.Magnitudes[i]
		if freq >= 60 && freq < 250 {
			want *= 2
		}
		if math.Abs(shown.Magnitudes[i]-want) > 1e-12 {
			t.Fatalf("bin %g Hz = %g, want %g after the window change", freq, shown.Magnitudes[i], want)
		}
	}
	if f.freqPlot.Plots != 3 {
		t.Errorf("frequency plot redrawn %d times, want 3", f.freqPlot.Plots)
	}
}

type countingMode struct{ values []int }

func (m *countingMode) ModifyFrequency(v int) { m.values = append(m.values, v) }

func TestSetMode(t *testing.T) {
	f := newFixture(t, manualOptions())
	m := &countingMode{}
	f.orch.SetMode(m)
	if err := f.orch.Load("tone.wav"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	f.orch.ModifyFrequency(3)
	if len(m.values) != 1 || m.values[0] != 3 {
		t.Errorf("custom mode received %v", m.values)
	}

	f.orch.SetMode(nil)
	if _, ok := f.orch.Mode().(mode.Passthrough); !ok {
		t.Errorf("mode after reset is %T", f.orch.Mode())
	}
}

func TestInternalClock(t *testing.T) {
	opts := DefaultOptions()
	opts.TickInterval = 5 * time.Millisecond
	f := newFixture(t, opts)

	if err := f.orch.LoadSamples(utils.GenerateSine(1000, 100, 1, 1), 100); err != nil {
		t.Fatalf("LoadSamples error: %v", err)
	}
	f.player.Seek(f.player.Duration())

	deadline := time.Now().Add(2 * time.Second)
	for f.orch.State() != playback.Stopped && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.orch.State() != playback.Stopped {
		t.Fatalf("internal clock never reached the end, state %s", f.orch.State())
	}
}

func TestClose_Idempotent(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	if err := f.orch.LoadSamples(utils.GenerateSine(100, 100, 1, 1), 100); err != nil {
		t.Fatalf("LoadSamples error: %v", err)
	}
	if err := f.orch.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := f.orch.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
	if !f.transport.Closed {
		t.Error("transport not closed")
	}
	if f.player.Playing() {
		t.Error("player still playing after Close")
	}
}
