// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"equalizer/internal/analysis"
	"equalizer/internal/config"
	"equalizer/internal/equalizer"
	"equalizer/internal/mode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065"))

	activeMeterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)
)

// Plot colors.
const (
	TimeColor      = lipgloss.Color("#5FAFFF")
	FrequencyColor = lipgloss.Color("#FFAF5F")
	WindowColor    = lipgloss.Color("#AF87FF")
)

// Window slider steps.
const (
	lengthStep    = 2
	amplitudeStep = 0.5
	speedStep     = 0.25
)

type keyMap struct {
	TogglePause key.Binding
	Play        key.Binding
	Stop        key.Binding
	Reset       key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Family      key.Binding
	Shorter     key.Binding
	Longer      key.Binding
	Quieter     key.Binding
	Louder      key.Binding
	Slower      key.Binding
	Faster      key.Binding
	PrevBand    key.Binding
	NextBand    key.Binding
	GainDown    key.Binding
	GainUp      key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		TogglePause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		Play:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play")),
		Stop:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		Family:      key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "window")),
		Shorter:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "shorter")),
		Longer:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "longer")),
		Quieter:     key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "lower")),
		Louder:      key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "higher")),
		Slower:      key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "slower")),
		Faster:      key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "faster")),
		PrevBand:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "band")),
		NextBand:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "band")),
		GainDown:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "cut")),
		GainUp:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "boost")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePause, k.Stop, k.Reset, k.Family, k.PrevBand, k.GainUp, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TogglePause, k.Play, k.Stop, k.Reset},
		{k.ZoomIn, k.ZoomOut, k.Slower, k.Faster},
		{k.Family, k.Shorter, k.Longer, k.Quieter, k.Louder},
		{k.PrevBand, k.NextBand, k.GainDown, k.GainUp, k.Quit},
	}
}

type tickMsg time.Time

type loadedMsg struct{ err error }

// Plots groups the surfaces the orchestrator draws on.
type Plots struct {
	Time      *Surface
	Frequency *Surface
	Window    *Surface
}

// NewPlots returns the three plots in their default colors.
func NewPlots() Plots {
	return Plots{
		Time:      NewSurface("Signal", TimeColor),
		Frequency: NewSurface("Spectrum", FrequencyColor),
		Window:    NewSurface("Smoothing window", WindowColor),
	}
}

// PlayerModel is the Bubble Tea model driving an Orchestrator. It ticks the
// cursor from its own loop, so the orchestrator's internal clock should be
// off.
type PlayerModel struct {
	orch     *equalizer.Orchestrator
	plots    Plots
	keys     keyMap
	help     help.Model
	interval time.Duration
	file     string

	width, height int

	family    analysis.Family
	length    int
	amplitude float64
	speed     float64
	gain      int

	status string
	err    error
}

// NewPlayerModel returns a model that loads file (if set) on start.
func NewPlayerModel(orch *equalizer.Orchestrator, plots Plots, file string, interval time.Duration) PlayerModel {
	w := orch.SmoothingWindow()
	if interval <= 0 {
		interval = config.DefaultTickInterval
	}
	return PlayerModel{
		orch:      orch,
		plots:     plots,
		keys:      defaultKeyMap(),
		help:      help.New(),
		interval:  interval,
		file:      file,
		family:    w.Family,
		length:    w.Length,
		amplitude: w.Amplitude,
		speed:     1,
		gain:      mode.UnitySliderValue,
		width:     80,
		height:    24,
	}
}

func (m PlayerModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the tick loop and the initial load.
func (m PlayerModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	if m.file != "" {
		orch, file := m.orch, m.file
		cmds = append(cmds, func() tea.Msg { return loadedMsg{err: orch.Load(file)} })
	}
	return tea.Batch(cmds...)
}

// Update handles input and ticks.
func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.orch.Tick()
		return m, m.tick()

	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "Loaded " + filepath.Base(m.file)
			m.gain = mode.UnitySliderValue
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m PlayerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.TogglePause):
		m.orch.TogglePause()
	case key.Matches(msg, m.keys.Play):
		m.orch.Play()
	case key.Matches(msg, m.keys.Stop):
		m.orch.Stop()
	case key.Matches(msg, m.keys.Reset):
		m.orch.Reset()
	case key.Matches(msg, m.keys.ZoomIn):
		m.orch.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.orch.ZoomOut()
	case key.Matches(msg, m.keys.Family):
		m.family = analysis.Families()[int(msg.Runes[0]-'1')]
		m = m.previewWindow()
	case key.Matches(msg, m.keys.Shorter):
		m.length = max(1, m.length-lengthStep)
		m = m.previewWindow()
	case key.Matches(msg, m.keys.Longer):
		m.length += lengthStep
		m = m.previewWindow()
	case key.Matches(msg, m.keys.Quieter):
		m.amplitude = math.Max(0, m.amplitude-amplitudeStep)
		m = m.previewWindow()
	case key.Matches(msg, m.keys.Louder):
		m.amplitude += amplitudeStep
		m = m.previewWindow()
	case key.Matches(msg, m.keys.Slower):
		m = m.setSpeed(m.speed - speedStep)
	case key.Matches(msg, m.keys.Faster):
		m = m.setSpeed(m.speed + speedStep)
	case key.Matches(msg, m.keys.PrevBand):
		m = m.selectBand(-1)
	case key.Matches(msg, m.keys.NextBand):
		m = m.selectBand(1)
	case key.Matches(msg, m.keys.GainDown):
		m.gain = max(0, m.gain-1)
		m.orch.ModifyFrequency(m.gain)
	case key.Matches(msg, m.keys.GainUp):
		m.gain = min(mode.MaxSliderValue, m.gain+1)
		m.orch.ModifyFrequency(m.gain)
	}
	return m, nil
}

func (m PlayerModel) previewWindow() PlayerModel {
	if _, err := m.orch.PreviewWindow(m.family, m.length, m.amplitude); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.status = fmt.Sprintf("%s window, %d samples, peak %.1f", m.family, m.length, m.amplitude)
	return m
}

func (m PlayerModel) setSpeed(speed float64) PlayerModel {
	speed = math.Min(config.MaxRate, speed)
	if err := m.orch.SetSpeed(speed); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.speed = speed
	m.status = fmt.Sprintf("Speed %.2fx", speed)
	return m
}

func (m PlayerModel) selectBand(delta int) PlayerModel {
	eq, ok := m.orch.Mode().(*mode.Equalizer)
	if !ok {
		return m
	}
	n := len(eq.Bands())
	next := (eq.Active() + delta + n) % n
	if err := eq.SelectBand(next); err != nil {
		m.err = err
		return m
	}
	m.gain = int(math.Round(eq.Gains()[next] * mode.UnitySliderValue))
	m.status = "Band " + eq.Bands()[next].Name
	return m
}

// View renders the three plots, the band meters and the key help.
func (m PlayerModel) View() string {
	plotHeight := max(3, (m.height-12)/3)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Equalizer"))
	sb.WriteString(" ")
	sb.WriteString(infoStyle.Render(m.statusLine()))
	sb.WriteString("\n\n")
	sb.WriteString(m.plots.Time.Render(m.width, plotHeight))
	sb.WriteString("\n")
	sb.WriteString(m.plots.Frequency.Render(m.width, plotHeight))
	sb.WriteString("\n")
	sb.WriteString(m.plots.Window.Render(m.width, max(2, plotHeight/2)))
	sb.WriteString("\n\n")
	sb.WriteString(m.renderBands())
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m PlayerModel) statusLine() string {
	name := "no file"
	if sig := m.orch.Signal(); sig != nil {
		name = fmt.Sprintf("%s (%.1fs @ %gHz)", filepath.Base(m.file), sig.Duration(), sig.SampleRate())
	}
	line := fmt.Sprintf("%s | %s | %.2fx", name, m.orch.State(), m.speed)
	if m.status != "" {
		line += " | " + m.status
	}
	return line
}

// renderBands draws one meter per equalizer band with its gain.
func (m PlayerModel) renderBands() string {
	eq, ok := m.orch.Mode().(*mode.Equalizer)
	if !ok {
		return ""
	}
	bands := eq.Bands()
	gains := eq.Gains()
	energies := analysis.BandEnergies(m.orch.DisplayedSpectrum(), bands)

	peak := 0.0
	for _, e := range energies {
		peak = math.Max(peak, e)
	}

	const barWidth = 20
	var sb strings.Builder
	for i, band := range bands {
		filled := 0
		if peak > 0 {
			filled = int(math.Round(energies[i] / peak * barWidth))
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		label := fmt.Sprintf("%-8s %s x%.1f", band.Name, bar, gains[i])
		if i == eq.Active() {
			sb.WriteString(activeMeterStyle.Render(label))
		} else {
			sb.WriteString(meterStyle.Render(label))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// StartPlayerUI runs the player until the user quits.
func StartPlayerUI(orch *equalizer.Orchestrator, plots Plots, file string, interval time.Duration) error {
	p := tea.NewProgram(
		NewPlayerModel(orch, plots, file, interval),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
