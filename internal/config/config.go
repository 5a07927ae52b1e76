package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the equalizer.
const (
	// Audio output
	DefaultOutputDevice    = MinDeviceID // System default output device
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode

	// Playback cursor
	DefaultTickInterval  = 100 * time.Millisecond // Redraw cadence
	DefaultLookback      = 4.0                    // Visible time-domain window (seconds)
	DefaultZoomInFactor  = 0.9
	DefaultZoomOutFactor = 1.1
	DefaultRate          = 1.0  // Normal playback speed
	DefaultAutoplay      = true // Start playing as soon as a file is loaded

	// Smoothing window preview
	DefaultWindowFamily    = "hamming"
	DefaultWindowLength    = 50
	DefaultWindowAmplitude = 1.0

	// Transport
	DefaultWebSocketAddress = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz
	DefaultUDPMaxBins       = 256                   // Keeps a packet well below the UDP limit

	// Debug
	DefaultLogLevel  = "info"
	DefaultVerbosity = false

	// Hardware and processing limits
	MinDeviceID     = -1   // -1 represents system default device
	MaxBufferFrames = 8192 // Maximum frames per buffer
	MaxRate         = 16.0 // Fastest playback multiplier accepted
	MaxUDPBins      = 4096 // 16KiB of float32 magnitudes
)
