// SPDX-License-Identifier: MIT

// Package tui renders the spectrum in the terminal and hosts the input
// device picker.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"spectralizer/pkg/synth"
)

// Provider is the read side of the spectrum analyzer.
type Provider interface {
	SpectrumInto(dst []float64) error
	Bins() int
	FrequencyForBin(i int) float64
	Frames() uint64
}

// StatusInfo is shown under the bars.
type StatusInfo struct {
	Source     string
	Backend    string
	Window     string
	Size       int
	SampleRate float64
}

// VisualizerOptions configures a Visualizer.
type VisualizerOptions struct {
	Provider  Provider
	FPS       int
	Gain      float64
	Smoothing bool
	Status    StatusInfo
}

const (
	minGain  = 1.0 / 64
	maxGain  = 64.0
	gainStep = 1.25

	springFrequency = 8.0
	springDamping   = 0.7

	// Title and status lines.
	chromeLines = 2
)

type keyMap struct {
	Quit     key.Binding
	Pause    key.Binding
	GainUp   key.Binding
	GainDown key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Pause:    key.NewBinding(key.WithKeys(" ")),
	GainUp:   key.NewBinding(key.WithKeys("+", "=")),
	GainDown: key.NewBinding(key.WithKeys("-", "_")),
}

type tickMsg time.Time

// Visualizer is the Bubble Tea model drawing the live spectrum.
type Visualizer struct {
	provider  Provider
	interval  time.Duration
	gain      float64
	smoothing bool
	status    StatusInfo

	bins    []float64 // latest snapshot
	columns []float64 // grouped bins, one per terminal column
	heights []float64 // drawn heights in eighths
	springs springField

	width, height int
	ready         bool
	paused        bool
	frames        uint64
	peakHz        float64
	err           error
}

// NewVisualizer creates the model. FPS <= 0 defaults to 60.
func NewVisualizer(opts VisualizerOptions) Visualizer {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	gain := opts.Gain
	if gain <= 0 {
		gain = 1
	}
	return Visualizer{
		provider:  opts.Provider,
		interval:  time.Second / time.Duration(fps),
		gain:      gain,
		smoothing: opts.Smoothing,
		status:    opts.Status,
		bins:      make([]float64, opts.Provider.Bins()),
		springs:   newSpringField(fps, springFrequency, springDamping),
	}
}

func (m Visualizer) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the redraw ticker.
func (m Visualizer) Init() tea.Cmd {
	return m.tick()
}

func (m Visualizer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, keys.GainUp):
			m.gain = min(m.gain*gainStep, maxGain)
		case key.Matches(msg, keys.GainDown):
			m.gain = max(m.gain/gainStep, minGain)
		}

	case tickMsg:
		if !m.paused {
			m.refresh()
		}
		return m, m.tick()
	}

	return m, nil
}

// layout sizes the column buffers for the current terminal.
func (m *Visualizer) layout() {
	cols := min(m.width, len(m.bins))
	if cols < 1 {
		cols = 1
	}
	if len(m.columns) != cols {
		m.columns = make([]float64, cols)
		m.heights = make([]float64, cols)
	}
	m.springs.resize(cols)
}

func (m Visualizer) rows() int {
	return max(m.height-chromeLines, 1)
}

// refresh pulls a new snapshot and advances the bar heights.
func (m *Visualizer) refresh() {
	if !m.ready || len(m.bins) == 0 {
		return
	}
	if err := m.provider.SpectrumInto(m.bins); err != nil {
		m.err = err
		return
	}
	m.frames = m.provider.Frames()
	if len(m.bins) > 1 {
		m.peakHz = m.provider.FrequencyForBin(synth.PeakBin(m.bins, 1, len(m.bins)-1))
	}

	groupColumns(m.bins, m.columns)
	rows := m.rows()
	for i, v := range m.columns {
		target := barEighths(v, m.gain, rows)
		if m.smoothing {
			m.heights[i] = min(m.springs.step(i, target), float64(rows*8))
		} else {
			m.heights[i] = target
		}
	}
}

func (m Visualizer) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("spectralizer"))
	sb.WriteByte('\n')
	sb.WriteString(renderBars(m.heights, m.rows()))
	sb.WriteByte('\n')
	sb.WriteString(m.statusLine())
	return sb.String()
}

func (m Visualizer) statusLine() string {
	s := m.status
	line := fmt.Sprintf("%s │ %s/%s │ N=%d │ %.0f Hz │ peak %.0f Hz │ gain %.2f │ %d frames",
		s.Source, s.Backend, s.Window, s.Size, s.SampleRate, m.peakHz, m.gain, m.frames)
	if m.paused {
		return pausedStyle.Render("PAUSED") + " " + statusStyle.Render(line)
	}
	return statusStyle.Render(line) + infoStyle.Render("  space: pause • +/-: gain • q: quit")
}

// Run shows the visualizer until the user quits.
func Run(opts VisualizerOptions) error {
	p := tea.NewProgram(NewVisualizer(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
