package audio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

func mockDevices(t *testing.T, devices []*portaudio.DeviceInfo, err error) {
	t.Helper()
	orig := paDevicesFunc
	t.Cleanup(func() { paDevicesFunc = orig })
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return devices, err
	}
}

var testDevices = []*portaudio.DeviceInfo{
	{Name: "Built-in Microphone", MaxInputChannels: 2, DefaultSampleRate: 48000},
	{Name: "Built-in Output", MaxOutputChannels: 2, DefaultSampleRate: 44100,
		DefaultLowOutputLatency: 5 * time.Millisecond, DefaultHighOutputLatency: 20 * time.Millisecond},
}

func TestHostDevices(t *testing.T) {
	mockDevices(t, testDevices, nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
	}
	if devices[1].Name != "Built-in Output" || devices[1].DefaultSampleRate != 44100 {
		t.Errorf("device 1 = %+v", devices[1])
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	mockDevices(t, nil, fmt.Errorf("mock error"))

	_, err := HostDevices()
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestOutputDevice(t *testing.T) {
	mockDevices(t, testDevices, nil)

	dev, err := OutputDevice(1)
	if err != nil {
		t.Fatalf("OutputDevice(1) error: %v", err)
	}
	if dev.Name != "Built-in Output" {
		t.Errorf("OutputDevice(1) = %s", dev.Name)
	}

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", len(testDevices) + 10, "invalid device ID"},
		{"Input only device", 0, "no output channels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutputDevice(tt.id)
			if err == nil {
				t.Errorf("Expected error for ID %d", tt.id)
			} else if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestListDevices(t *testing.T) {
	mockDevices(t, testDevices, nil)

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"[0] Built-in Microphone (Input)",
		"[1] Built-in Output (Output)",
		"Default sample rate: 44100 Hz",
		"Low=5.00ms, High=20.00ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
