package cmd

import (
	"errors"
	"fmt"

	"equalizer/internal/config"
	"equalizer/internal/decode"
	"equalizer/internal/equalizer"
	"equalizer/internal/log"
	"equalizer/internal/playback"
	"equalizer/internal/transport"
	"equalizer/internal/transport/udp"
)

// surfaces are the local plots an Orchestrator draws on. Nil entries are
// only published remotely.
type surfaces struct {
	time, frequency, window playback.Surface
}

// session is an Orchestrator plus the network publishers attached to it.
type session struct {
	orch      *equalizer.Orchestrator
	publisher *udp.UDPPublisher
	sender    *udp.UDPSender
}

// openSession builds an Orchestrator for player. When the WebSocket is
// enabled the plots are published to it; when UDP is enabled the displayed
// spectrum is streamed as packets.
func openSession(cfg *config.Config, opts equalizer.Options, player playback.Player, local surfaces) (*session, error) {
	var remote []transport.Transport
	if cfg.Transport.WebSocketEnabled {
		remote = append(remote, transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress))
	}
	if cfg.Debug {
		remote = append(remote, transport.NewLoggingTransport())
	}

	var t transport.Transport
	if len(remote) > 0 {
		t = transport.Multi(remote)
	}
	deps := sessionDeps(player, local, t)

	orch, err := equalizer.New(opts, deps)
	if err != nil {
		if deps.Transport != nil {
			deps.Transport.Close()
		}
		return nil, err
	}
	s := &session{orch: orch}

	if cfg.Transport.UDPEnabled {
		if err := s.startUDP(cfg.Transport); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// sessionDeps wires local plots and, when t is set, their remote copies.
// The spectrum reaches remote clients once, as the SpectrumMessage the
// Orchestrator sends on every redraw, so the frequency plot stays local.
func sessionDeps(player playback.Player, local surfaces, t transport.Transport) equalizer.Deps {
	deps := equalizer.Deps{
		Player:        player,
		Source:        decode.NewRegistry(),
		TimePlot:      local.time,
		FrequencyPlot: local.frequency,
		WindowPlot:    local.window,
	}
	if t != nil {
		deps.Transport = t
		deps.TimePlot = mirror(local.time, transport.NewSurface("time", t))
		deps.WindowPlot = mirror(local.window, transport.NewSurface("window", t))
	}
	if deps.TimePlot == nil {
		deps.TimePlot = playback.Discard
	}
	return deps
}

func mirror(local, remote playback.Surface) playback.Surface {
	if local == nil {
		return remote
	}
	return playback.Tee{local, remote}
}

func (s *session) startUDP(cfg config.TransportConfig) error {
	sender, err := udp.NewUDPSender(cfg.UDPTargetAddress)
	if err != nil {
		return fmt.Errorf("udp sender: %w", err)
	}
	pub, err := udp.NewUDPPublisher(cfg.UDPSendInterval, cfg.UDPMaxBins, sender, s.orch)
	if err != nil {
		sender.Close()
		return fmt.Errorf("udp publisher: %w", err)
	}
	pub.Start()
	s.sender, s.publisher = sender, pub
	return nil
}

// Close stops the publishers before the orchestrator so nothing reads a
// closed player.
func (s *session) Close() error {
	var errList []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	if s.sender != nil {
		if err := s.sender.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	if err := s.orch.Close(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		log.Warnf("Session: close: %v", err)
		return err
	}
	return nil
}
