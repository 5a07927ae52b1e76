package analysis

import (
	"math"
	"testing"

	"equalizer/internal/waveform"
	"equalizer/pkg/utils"
)

func TestRMS(t *testing.T) {
	tests := []struct {
		name string
		buf  []float64
		want float64
	}{
		{"empty", nil, 0},
		{"constant", []float64{0.5, -0.5, 0.5, -0.5}, 0.5},
		{"sine", utils.GenerateSine(1000, 1000, 10, 1), 1 / math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RMS(tt.buf); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RMS() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestOnsetDetector_Detect(t *testing.T) {
	// 0.5s of silence, 0.5s of tone, 0.5s of silence, 0.5s of louder tone.
	samples := make([]float64, 0, 2000)
	samples = append(samples, make([]float64, 500)...)
	samples = append(samples, utils.GenerateSine(500, 1000, 50, 0.3)...)
	samples = append(samples, make([]float64, 500)...)
	samples = append(samples, utils.GenerateSine(500, 1000, 50, 0.9)...)

	sig, err := waveform.New(samples, 1000)
	if err != nil {
		t.Fatal(err)
	}

	d := OnsetDetector{Threshold: 0.05, MinRatio: 1.5, FrameSize: 100}
	got := d.Detect(sig)
	want := []float64{0.5, 1.5}
	if len(got) != len(want) {
		t.Fatalf("onsets = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("onset %d = %g, want %g", i, got[i], want[i])
		}
	}

	if d.Detect(nil) != nil {
		t.Error("nil signal should have no onsets")
	}

	quiet := OnsetDetector{Threshold: 1, MinRatio: 1.5, FrameSize: 100}
	if got := quiet.Detect(sig); len(got) != 0 {
		t.Errorf("threshold above peak found onsets %v", got)
	}
}
