// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Playback.TickInterval != DefaultTickInterval {
		t.Errorf("tick interval = %s, want %s", cfg.Playback.TickInterval, DefaultTickInterval)
	}
	if cfg.Playback.Lookback != DefaultLookback {
		t.Errorf("lookback = %g, want %g", cfg.Playback.Lookback, DefaultLookback)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
playback:
  tick_interval: 50ms
  lookback_seconds: 2.5
  rate: 1.5
  autoplay: false
window:
  family: gaussian
  length: 16
  amplitude: 3
transport:
  udp_enabled: true
  udp_target_address: "127.0.0.1:9999"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Playback.TickInterval != 50*time.Millisecond {
		t.Errorf("tick interval = %s, want 50ms", cfg.Playback.TickInterval)
	}
	if cfg.Playback.Lookback != 2.5 || cfg.Playback.Rate != 1.5 || cfg.Playback.Autoplay {
		t.Errorf("unexpected playback section: %+v", cfg.Playback)
	}
	if cfg.Window.Family != "gaussian" || cfg.Window.Length != 16 || cfg.Window.Amplitude != 3 {
		t.Errorf("unexpected window section: %+v", cfg.Window)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Audio.FramesPerBuffer != DefaultFramesPerBuffer {
		t.Errorf("frames per buffer = %d, want default", cfg.Audio.FramesPerBuffer)
	}
	if cfg.Transport.UDPSendInterval != DefaultUDPSendInterval {
		t.Errorf("udp interval = %s, want default", cfg.Transport.UDPSendInterval)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
playback:
  rate: 0
window:
  family: kaiser
  length: 0
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"playback.rate", "window.family", "window.length"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate_Transport(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Transport.UDPEnabled = true
	cfg.Transport.UDPTargetAddress = "localhost"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "missing port") {
		t.Errorf("expected missing port error, got %v", err)
	}

	cfg = Default()
	cfg.Transport.WebSocketEnabled = true
	cfg.Transport.WebSocketAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty websocket address")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_TICK_INTERVAL", "250ms")
	t.Setenv("ENV_WS_ENABLED", "true")
	t.Setenv("ENV_WS_ADDRESS", ":9000")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "not-a-duration")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Playback.TickInterval != 250*time.Millisecond {
		t.Errorf("tick interval = %s, want 250ms", cfg.Playback.TickInterval)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddress != ":9000" {
		t.Errorf("websocket overrides not applied: %+v", cfg.Transport)
	}
	if cfg.Transport.UDPSendInterval != DefaultUDPSendInterval {
		t.Errorf("unparseable override changed udp interval to %s", cfg.Transport.UDPSendInterval)
	}
}
