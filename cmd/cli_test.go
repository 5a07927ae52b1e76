package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"equalizer/internal/errs"

	"github.com/spf13/cobra"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFlagsOverrideConfig(t *testing.T) {
	a := &app{}
	root := newRootCommand(a)
	root.AddCommand(&cobra.Command{Use: "noop", RunE: func(*cobra.Command, []string) error { return nil }})
	root.SetArgs([]string{"noop", "--rate", "2", "--ws", "--no-autoplay", "--window", "gaussian", "--device", "3"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	cfg := a.cfg
	if cfg.Playback.Rate != 2 {
		t.Errorf("rate = %g, want 2", cfg.Playback.Rate)
	}
	if !cfg.Transport.WebSocketEnabled {
		t.Error("websocket not enabled")
	}
	if cfg.Playback.Autoplay {
		t.Error("autoplay still on")
	}
	if cfg.Window.Family != "gaussian" || cfg.Audio.OutputDevice != 3 {
		t.Errorf("window=%s device=%d", cfg.Window.Family, cfg.Audio.OutputDevice)
	}
	if cfg.Window.Length != 50 {
		t.Errorf("unset flag changed window length to %d", cfg.Window.Length)
	}
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"rate too high", []string{"window", "--rate", "100"}},
		{"unknown window", []string{"window", "--window", "kaiser"}},
		{"bad device", []string{"window", "--device", "-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
				t.Errorf("error = %v, want invalid configuration", err)
			}
		})
	}
}

func TestWindowCommand(t *testing.T) {
	out, err := run(t, "window", "rectangular", "--window-length", "5", "--window-amplitude", "2")
	if err != nil {
		t.Fatalf("window error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d coefficients, want 5:\n%s", len(lines), out)
	}
	if lines[4] != "4\t2.000000" {
		t.Errorf("last line = %q", lines[4])
	}

	if _, err := run(t, "window", "kaiser"); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("unknown family error = %v", err)
	}
}

func TestToneThenAnalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	out, err := run(t, "tone", path, "--frequency", "440", "--duration", "1", "--sample-rate", "8000")
	if err != nil {
		t.Fatalf("tone error: %v", err)
	}
	if !strings.Contains(out, "8000 samples") {
		t.Errorf("tone output = %q", out)
	}

	out, err = run(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	for _, want := range []string{"Sample rate: 8000 Hz", "Bins:        4000", "Peak:        440.0 Hz", "bass", "treble"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "analyze", path, "--bands", "4", "--onsets")
	if err != nil {
		t.Fatalf("analyze --bands error: %v", err)
	}
	if !strings.Contains(out, "band4") {
		t.Errorf("uniform bands missing:\n%s", out)
	}
	if !strings.Contains(out, "Onsets: 1\n  0.000 s") {
		t.Errorf("expected one onset at the start:\n%s", out)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := run(t, "analyze", filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, errs.ErrPlaybackUnavailable) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := run(t, "analyze"); err == nil {
		t.Error("analyze without a file should fail")
	}
	if _, err := run(t, "tone", filepath.Join(t.TempDir(), "x.wav"), "--bits", "8"); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("8-bit tone error = %v", err)
	}
}
