package tui

import (
	"fmt"
	"strings"

	"equalizer/internal/audio"
	"equalizer/internal/config"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ConfigScreen
)

// bufferSizes are the frames-per-buffer choices on the config screen.
var bufferSizes = []int{128, 256, 512, 1024, 2048}

// DeviceListModel lets the user pick an output device and buffer size for
// playback.
type DeviceListModel struct {
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType

	bufferIndex int
	chosen      bool
	cfg         config.AudioConfig
}

// NewDeviceListModel returns a picker starting from cfg.
func NewDeviceListModel(cfg config.AudioConfig) DeviceListModel {
	m := DeviceListModel{activeScreen: ListScreen, cfg: cfg}
	m.bufferIndex = indexOf(bufferSizes, cfg.FramesPerBuffer)
	return m
}

func indexOf(values []int, v int) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

// Init fetches the device list.
func (m DeviceListModel) Init() tea.Cmd {
	return fetchDevices
}

func fetchDevices() tea.Msg {
	devices, err := audio.GetDevices()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// outputs keeps the devices that can play audio.
func outputs(devices []audio.Device) []audio.Device {
	var out []audio.Device
	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			out = append(out, d)
		}
	}
	return out
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = outputs(msg.devices)
		for i, d := range m.devices {
			if d.ID == m.cfg.OutputDevice {
				m.selectedIndex = i
			}
		}
		m.refresh()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.activeScreen = ConfigScreen
				}
			}

		case ConfigScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
				m.activeScreen = ListScreen
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.bufferIndex > 0 {
					m.bufferIndex--
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.bufferIndex < len(bufferSizes)-1 {
					m.bufferIndex++
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("l"))):
				m.cfg.LowLatency = !m.cfg.LowLatency
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				m.cfg.OutputDevice = m.devices[m.selectedIndex].ID
				m.cfg.FramesPerBuffer = bufferSizes[m.bufferIndex]
				m.chosen = true
				return m, tea.Quit
			}
		}
		m.refresh()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *DeviceListModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == ConfigScreen {
		m.viewport.SetContent(m.renderDeviceConfig())
		return
	}
	m.viewport.SetContent(m.renderDevices())
}

// View renders the UI
func (m DeviceListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Output Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Configure • q: Quit")
	} else {
		title = titleStyle.Render("Playback Configuration")
		help = infoStyle.Render("↑/↓: Buffer size • l: Low latency • Enter: Use device • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m DeviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No output devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Kind())
		deviceInfo += fmt.Sprintf("    Output channels: %d\n", device.MaxOutputChannels)
		deviceInfo += fmt.Sprintf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m DeviceListModel) renderDeviceConfig() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	sb.WriteString(fmt.Sprintf("Play through: %s\n\n", device.Name))
	sb.WriteString("Frames per buffer:\n")
	for i, size := range bufferSizes {
		marker := " "
		if i == m.bufferIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %d\n", marker, size)
		if i == m.bufferIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}

	latency := "high (stable)"
	if m.cfg.LowLatency {
		latency = "low"
	}
	sb.WriteString(fmt.Sprintf("\nLatency: %s\n", latency))
	return sb.String()
}

// Selection returns the chosen settings and whether the user confirmed them.
func (m DeviceListModel) Selection() (config.AudioConfig, bool) {
	return m.cfg, m.chosen
}

// StartDeviceListUI runs the picker. It returns cfg unchanged when the user
// quits without choosing.
func StartDeviceListUI(cfg config.AudioConfig) (config.AudioConfig, error) {
	p := tea.NewProgram(
		NewDeviceListModel(cfg),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return cfg, err
	}
	if m, ok := final.(DeviceListModel); ok {
		if chosen, ok := m.Selection(); ok {
			return chosen, nil
		}
	}
	return cfg, nil
}
