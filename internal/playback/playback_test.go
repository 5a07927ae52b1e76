package playback_test

import (
	"testing"

	"equalizer/internal/playback"
	"equalizer/internal/playback/playbacktest"
)

func TestTee(t *testing.T) {
	a, b := playbacktest.NewSurface(), playbacktest.NewSurface()
	tee := playback.Tee{a, b}

	tee.Plot([]float64{0, 1}, []float64{1, 2})
	tee.SetXRange(-1, 1)
	tee.Clear()

	for name, s := range map[string]*playbacktest.Surface{"a": a, "b": b} {
		if s.Plots != 1 || s.Clears != 1 {
			t.Errorf("%s: plots=%d clears=%d, want 1 each", name, s.Plots, s.Clears)
		}
		if s.Lo != -1 || s.Hi != 1 {
			t.Errorf("%s: range = [%g, %g]", name, s.Lo, s.Hi)
		}
	}

	playback.Discard.Plot(nil, nil)
}
