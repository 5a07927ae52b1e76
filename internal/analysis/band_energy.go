package analysis

import (
	"fmt"
	"math"
)

// FrequencyBand defines the name and frequency range [LowHz, HighHz) of a band.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// Contains reports whether freq falls inside the band.
func (b FrequencyBand) Contains(freq float64) bool {
	return freq >= b.LowHz && freq < b.HighHz
}

// MusicalBands returns the sub/bass/mid/treble split, with the treble band
// running up to nyquist.
func MusicalBands(nyquist float64) []FrequencyBand {
	return []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: math.Max(4000, nyquist)},
	}
}

// UniformBands splits [0, maxHz) into n equal bands. The last band is
// widened by a hair so maxHz itself is included.
func UniformBands(n int, maxHz float64) []FrequencyBand {
	if n <= 0 || maxHz <= 0 {
		return nil
	}
	width := maxHz / float64(n)
	bands := make([]FrequencyBand, n)
	for i := range bands {
		bands[i] = FrequencyBand{
			Name:   fmt.Sprintf("band%d", i+1),
			LowHz:  float64(i) * width,
			HighHz: float64(i+1) * width,
		}
	}
	bands[n-1].HighHz = math.Nextafter(maxHz, math.Inf(1))
	return bands
}

// BandEnergies returns the RMS magnitude of the spectrum bins inside each
// band. A band with no bins reports 0.
func BandEnergies(s Spectrum, bands []FrequencyBand) []float64 {
	energy := make([]float64, len(bands))
	counts := make([]int, len(bands))

	for i, freq := range s.Frequencies {
		for b, band := range bands {
			if band.Contains(freq) {
				energy[b] += s.Magnitudes[i] * s.Magnitudes[i]
				counts[b]++
				break
			}
		}
	}

	for b := range energy {
		if counts[b] > 0 {
			energy[b] = math.Sqrt(energy[b] / float64(counts[b]))
		}
	}
	return energy
}
