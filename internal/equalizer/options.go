// SPDX-License-Identifier: MIT
package equalizer

import (
	"equalizer/internal/analysis"
	"equalizer/internal/config"
	"equalizer/internal/playback"
)

// OptionsFromConfig maps the playback and window sections of cfg onto
// Options. The internal clock is left on; the TUI turns it off and ticks
// from its own loop.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	family, err := analysis.ParseFamily(cfg.Window.Family)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Cursor: playback.Options{
			Lookback:      cfg.Playback.Lookback,
			ZoomInFactor:  cfg.Playback.ZoomInFactor,
			ZoomOutFactor: cfg.Playback.ZoomOutFactor,
		},
		TickInterval:  cfg.Playback.TickInterval,
		InternalClock: true,
		Autoplay:      cfg.Playback.Autoplay,
		Rate:          cfg.Playback.Rate,
		Window: WindowSettings{
			Family:    family,
			Length:    cfg.Window.Length,
			Amplitude: cfg.Window.Amplitude,
		},
	}, nil
}
