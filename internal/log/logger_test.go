package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   LogLevel
		wantOk bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{" error ", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t)

	SetLevel(LevelWarn)
	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below level were logged: %q", out)
	}
	if !strings.Contains(out, "[WARN]  warn 3") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestConfigure(t *testing.T) {
	captureOutput(t)

	if !Configure("error", false) || GetLevel() != LevelError {
		t.Errorf("Configure(error) level = %v", GetLevel())
	}
	if !Configure("error", true) || GetLevel() != LevelDebug {
		t.Errorf("verbose did not force debug, level = %v", GetLevel())
	}
	if Configure("loud", false) || GetLevel() != LevelInfo {
		t.Errorf("unknown level should fall back to info, got %v", GetLevel())
	}
}
