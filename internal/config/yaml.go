// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"equalizer/internal/analysis"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug mode (forces debug logging).
	LogLevel  string          `yaml:"log_level"`         // Logging level (e.g., "debug", "info", "warn", "error").
	LogFile   string          `yaml:"log_file"`          // Log destination while the TUI owns the terminal ("" discards).
	Command   string          `yaml:"command,omitempty"` // A one-off command to execute instead of the player (e.g., "list").
	Audio     AudioConfig     `yaml:"audio"`             // Audio output settings.
	Playback  PlaybackConfig  `yaml:"playback"`          // Cursor and viewport settings.
	Window    WindowConfig    `yaml:"window"`            // Initial smoothing window.
	Transport TransportConfig `yaml:"transport"`         // Remote plot surfaces and spectrum packets.

	// Command line only.
	File    string `yaml:"-"` // Media file to load on start.
	Verbose bool   `yaml:"-"` // Show verbose output.
	TUIMode bool   `yaml:"-"` // Terminal UI mode enabled.
}

// AudioConfig holds settings for the playback device.
type AudioConfig struct {
	OutputDevice    int  `yaml:"output_device"`     // PortAudio device index for playback (-1 for default).
	FramesPerBuffer int  `yaml:"frames_per_buffer"` // Frames per output callback.
	LowLatency      bool `yaml:"low_latency"`       // Request low latency settings from the device.
}

// PlaybackConfig holds settings for the playback cursor.
type PlaybackConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval"`    // Cursor redraw cadence.
	Lookback      float64       `yaml:"lookback_seconds"` // Width of the visible time-domain window.
	ZoomInFactor  float64       `yaml:"zoom_in_factor"`   // Viewport scale for zoom in.
	ZoomOutFactor float64       `yaml:"zoom_out_factor"`  // Viewport scale for zoom out.
	Rate          float64       `yaml:"rate"`             // Initial playback speed multiplier.
	Autoplay      bool          `yaml:"autoplay"`         // Start playback right after a load.
}

// WindowConfig holds the initial smoothing window parameters.
type WindowConfig struct {
	Family    string  `yaml:"family"`    // hamming, hanning, rectangular or gaussian.
	Length    int     `yaml:"length"`    // Number of samples.
	Amplitude float64 `yaml:"amplitude"` // Peak amplitude.
}

// TransportConfig holds settings related to sending plot and spectrum data over the network.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve plot surfaces over a WebSocket.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the WebSocket server.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable sending spectrum packets over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between sending UDP packets.
	UDPMaxBins       int           `yaml:"udp_max_bins"`       // Spectrum bins per packet after pooling.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Verbose:  DefaultVerbosity,
		Audio: AudioConfig{
			OutputDevice:    DefaultOutputDevice,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
		},
		Playback: PlaybackConfig{
			TickInterval:  DefaultTickInterval,
			Lookback:      DefaultLookback,
			ZoomInFactor:  DefaultZoomInFactor,
			ZoomOutFactor: DefaultZoomOutFactor,
			Rate:          DefaultRate,
			Autoplay:      DefaultAutoplay,
		},
		Window: WindowConfig{
			Family:    DefaultWindowFamily,
			Length:    DefaultWindowLength,
			Amplitude: DefaultWindowAmplitude,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddress: DefaultWebSocketAddress,
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
			UDPMaxBins:       DefaultUDPMaxBins,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{
			"config.yaml",
			"equalizer.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and joins all problems into one error.
func (c *Config) Validate() error {
	var errs []error

	// Audio Validation
	if c.Audio.OutputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.output_device must be >= %d, got %d", MinDeviceID, c.Audio.OutputDevice))
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer must be in (0, %d], got %d", MaxBufferFrames, c.Audio.FramesPerBuffer))
	}

	// Playback Validation
	if c.Playback.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("playback.tick_interval must be positive"))
	}
	if c.Playback.Lookback <= 0 {
		errs = append(errs, fmt.Errorf("playback.lookback_seconds must be positive"))
	}
	if c.Playback.ZoomInFactor <= 0 || c.Playback.ZoomOutFactor <= 0 {
		errs = append(errs, fmt.Errorf("playback zoom factors must be positive"))
	}
	if c.Playback.Rate <= 0 || c.Playback.Rate > MaxRate {
		errs = append(errs, fmt.Errorf("playback.rate must be in (0, %g], got %g", MaxRate, c.Playback.Rate))
	}

	// Window Validation
	if _, err := analysis.ParseFamily(c.Window.Family); err != nil {
		errs = append(errs, fmt.Errorf("window.family: %w", err))
	}
	if c.Window.Length <= 0 {
		errs = append(errs, fmt.Errorf("window.length must be positive, got %d", c.Window.Length))
	}
	if c.Window.Amplitude < 0 {
		errs = append(errs, fmt.Errorf("window.amplitude must not be negative, got %g", c.Window.Amplitude))
	}

	// Transport Validation
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		errs = append(errs, fmt.Errorf("transport.websocket_address must be set when the WebSocket is enabled"))
	}
	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress))
		}
		if c.Transport.UDPSendInterval <= 0 {
			errs = append(errs, fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled"))
		}
		if c.Transport.UDPMaxBins <= 0 || c.Transport.UDPMaxBins > MaxUDPBins {
			errs = append(errs, fmt.Errorf("transport.udp_max_bins must be in (0, %d]", MaxUDPBins))
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides reads ENV_* variables over the loaded values. Values
// that fail to parse are ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}

	// ENV_TICK_INTERVAL
	if val, ok := os.LookupEnv("ENV_TICK_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Playback.TickInterval = dur
		}
	}

	// ENV_WS_{...}
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WebSocketAddress = val
	}

	// ENV_UDP_{...}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
		}
	}
}
