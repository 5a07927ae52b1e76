// Package cmd is the command line interface. The root command opens the
// terminal player; subcommands serve plots headless, inspect files and
// list output devices.
package cmd

import (
	"context"
	"fmt"
	"time"

	"equalizer/internal/config"
	"equalizer/internal/log"
	"equalizer/pkg/build"

	"github.com/spf13/cobra"
)

// flagValues holds command line overrides. Only flags the user set are
// applied over the loaded configuration.
type flagValues struct {
	device          int
	framesPerBuffer int
	lowLatency      bool

	tick       time.Duration
	lookback   float64
	rate       float64
	noAutoplay bool

	window    string
	length    int
	amplitude float64

	websocket bool
	wsAddress string
	udp       bool
	udpTarget string

	logLevel string
	logFile  string
	verbose  bool
}

// app carries state shared by every subcommand.
type app struct {
	configPath string
	flags      flagValues
	cfg        *config.Config
}

// Execute runs the CLI until ctx is cancelled or the command returns.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	info := build.Get()

	rootCmd := &cobra.Command{
		Use:           info.Name + " [file]",
		Short:         build.Description,
		Version:       info.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: a.loadConfig,
		RunE:              a.runPlayer,
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to a YAML config file (default: ./config.yaml or ./equalizer.yaml)")

	// Audio output
	pf.IntVarP(&a.flags.device, "device", "d", config.DefaultOutputDevice,
		"Output device ID. Use 'list' to see available devices.")
	pf.IntVarP(&a.flags.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Frames per output buffer (affects latency)")
	pf.BoolVarP(&a.flags.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Request the device's low latency settings")

	// Playback
	pf.DurationVar(&a.flags.tick, "tick", config.DefaultTickInterval, "Plot redraw interval")
	pf.Float64Var(&a.flags.lookback, "lookback", config.DefaultLookback, "Seconds of signal visible behind the cursor")
	pf.Float64VarP(&a.flags.rate, "rate", "r", config.DefaultRate, "Playback speed multiplier")
	pf.BoolVar(&a.flags.noAutoplay, "no-autoplay", false, "Wait for play after loading a file")

	// Smoothing window
	pf.StringVarP(&a.flags.window, "window", "w", config.DefaultWindowFamily,
		"Smoothing window: hamming, hanning, rectangular or gaussian")
	pf.IntVar(&a.flags.length, "window-length", config.DefaultWindowLength, "Smoothing window length in samples")
	pf.Float64Var(&a.flags.amplitude, "window-amplitude", config.DefaultWindowAmplitude, "Smoothing window peak")

	// Transport
	pf.BoolVar(&a.flags.websocket, "ws", false, "Publish plots over a WebSocket")
	pf.StringVar(&a.flags.wsAddress, "ws-address", config.DefaultWebSocketAddress, "WebSocket listen address")
	pf.BoolVar(&a.flags.udp, "udp", false, "Send spectrum packets over UDP")
	pf.StringVar(&a.flags.udpTarget, "udp-target", config.DefaultUDPTargetAddress, "UDP packet destination")

	// Debug
	pf.StringVar(&a.flags.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	pf.StringVar(&a.flags.logFile, "log-file", "", "Write logs here while the player owns the terminal")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", config.DefaultVerbosity, "Show verbose output")

	rootCmd.Flags().Bool("pick-device", false, "Choose the output device interactively before playing")

	rootCmd.AddCommand(
		a.newServeCommand(),
		a.newAnalyzeCommand(),
		a.newWindowCommand(),
		a.newToneCommand(),
		a.newListCommand(),
	)
	return rootCmd
}

// loadConfig reads the config file, applies flag overrides, validates the
// result and configures logging.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !log.Configure(cfg.LogLevel, cfg.Verbose || cfg.Debug) {
		log.Warnf("Unknown log level '%s', using info", cfg.LogLevel)
	}
	a.cfg = cfg
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	f := a.flags

	if changed("device") {
		cfg.Audio.OutputDevice = f.device
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = f.framesPerBuffer
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}
	if changed("tick") {
		cfg.Playback.TickInterval = f.tick
	}
	if changed("lookback") {
		cfg.Playback.Lookback = f.lookback
	}
	if changed("rate") {
		cfg.Playback.Rate = f.rate
	}
	if changed("no-autoplay") {
		cfg.Playback.Autoplay = !f.noAutoplay
	}
	if changed("window") {
		cfg.Window.Family = f.window
	}
	if changed("window-length") {
		cfg.Window.Length = f.length
	}
	if changed("window-amplitude") {
		cfg.Window.Amplitude = f.amplitude
	}
	if changed("ws") {
		cfg.Transport.WebSocketEnabled = f.websocket
	}
	if changed("ws-address") {
		cfg.Transport.WebSocketAddress = f.wsAddress
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = f.udp
	}
	if changed("udp-target") {
		cfg.Transport.UDPTargetAddress = f.udpTarget
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
}
