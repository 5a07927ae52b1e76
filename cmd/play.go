package cmd

import (
	"fmt"
	"io"
	"os"

	"equalizer/internal/audio"
	"equalizer/internal/equalizer"
	"equalizer/internal/log"
	"equalizer/internal/tui"

	"github.com/spf13/cobra"
)

// runPlayer opens the terminal player, optionally loading args[0].
func (a *app) runPlayer(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	if len(args) > 0 {
		cfg.File = args[0]
	}
	cfg.TUIMode = true

	if pick, _ := cmd.Flags().GetBool("pick-device"); pick {
		chosen, err := tui.StartDeviceListUI(cfg.Audio)
		if err != nil {
			return err
		}
		cfg.Audio = chosen
	}

	restore, err := redirectLogs(cfg.LogFile)
	if err != nil {
		return err
	}
	defer restore()

	opts, err := equalizer.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.InternalClock = false

	plots := tui.NewPlots()
	s, err := openSession(cfg, opts, audio.NewPlayer(cfg.Audio), surfaces{
		time:      plots.Time,
		frequency: plots.Frequency,
		window:    plots.Window,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	return tui.StartPlayerUI(s.orch, plots, cfg.File, cfg.Playback.TickInterval)
}

// redirectLogs sends log output to path, or discards it when path is
// empty, so log lines do not tear the TUI.
func redirectLogs(path string) (restore func(), err error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
