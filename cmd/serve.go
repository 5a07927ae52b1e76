package cmd

import (
	"time"

	"equalizer/internal/audio"
	"equalizer/internal/equalizer"
	"equalizer/internal/log"
	"equalizer/internal/playback"

	"github.com/spf13/cobra"
)

func (a *app) newServeCommand() *cobra.Command {
	var (
		silent bool
		once   bool
	)
	serveCmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Play a file and publish its plots over the network without a terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			cfg.File = args[0]
			cfg.Transport.WebSocketEnabled = true

			opts, err := equalizer.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}

			var player playback.Player = playback.NewClockPlayer()
			if !silent {
				player = audio.NewPlayer(cfg.Audio)
			}

			s, err := openSession(cfg, opts, player, surfaces{})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.orch.Load(cfg.File); err != nil {
				return err
			}
			log.Infof("Serving %s on ws://%s/ws", cfg.File, cfg.Transport.WebSocketAddress)
			if cfg.Transport.UDPEnabled {
				log.Infof("Streaming spectrum packets to %s", cfg.Transport.UDPTargetAddress)
			}

			ctx := cmd.Context()
			poll := time.NewTicker(cfg.Playback.TickInterval)
			defer poll.Stop()
			for {
				select {
				case <-ctx.Done():
					log.Infof("Shutting down")
					return nil
				case <-poll.C:
					if once && s.orch.State() == playback.Stopped {
						log.Infof("Reached the end of %s", cfg.File)
						return nil
					}
				}
			}
		},
	}
	serveCmd.Flags().BoolVar(&silent, "silent", false, "Follow the wall clock instead of playing through an audio device")
	serveCmd.Flags().BoolVar(&once, "once", false, "Exit when playback reaches the end of the file")
	return serveCmd
}
