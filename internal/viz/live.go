package viz

import (
	"fmt"
	"image"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/mazznoer/colorgrad"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/heatsim/internal/export"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

const (
	historyCapacity = 600
	gifCell         = 4
	DefaultGIFPath  = "heatsim.gif"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

type TickMsg time.Time

// Model drives a simulator from Bubble Tea ticks: every TickMsg advances the
// simulation one step while running.
type Model struct {
	sim       *sim.Simulator
	pattern   heat.Pattern
	interval  time.Duration
	running   bool
	frame     sim.Frame
	hasFrame  bool
	radii     []float64
	peaks     []float64
	err       error
	recording bool
	frames    []*image.Paletted
	gifPath   string
	status    string
	showHelp  bool
}

// NewModel wraps s; fps sets the tick rate.
func NewModel(s *sim.Simulator, pattern heat.Pattern, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		sim:      s,
		pattern:  pattern,
		interval: time.Second / time.Duration(fps),
		running:  true,
		radii:    make([]float64, 0, historyCapacity),
		peaks:    make([]float64, 0, historyCapacity),
		gifPath:  DefaultGIFPath,
	}
}

// WithGIFPath sets where recordings are written.
func (m Model) WithGIFPath(path string) Model {
	m.gifPath = path
	return m
}

func (m Model) Running() bool { return m.running }
func (m Model) Err() error    { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "t":
			NextTheme()
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
				m.status = ""
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the simulation one tick and records history.
func (m *Model) step() {
	f, err := m.sim.Tick(m.pattern)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.frame, m.hasFrame = f, true

	if f.HasDistance {
		m.radii = appendCapped(m.radii, f.Distance)
	}
	m.peaks = appendCapped(m.peaks, floats.Max(f.Grid.Field()))

	if m.recording {
		m.captureFrame()
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// reset restores the ambient field and clears history.
func (m *Model) reset() {
	m.sim.Reset()
	m.radii = m.radii[:0]
	m.peaks = m.peaks[:0]
	m.hasFrame = false
	m.err = nil
	m.running = true
}

func (m Model) gradient() colorgrad.Gradient {
	grad, err := export.Palette(CurrentTheme.Palette)
	if err != nil {
		grad, _ = export.Palette(export.DefaultPalette)
	}
	return grad
}

// View renders the TUI interface.
func (m Model) View() string {
	grad := m.gradient()
	src := m.sim.Source()
	canvasView := canvasStyle.Render(Heatmap(m.sim.Grid(), src, grad, CurrentTheme.Accent))

	var s strings.Builder
	title := fmt.Sprintf("HEAT BEAM: %s", strings.ToUpper(string(m.pattern)))
	s.WriteString(headerStyle.Render(GradientText(title, CurrentTheme.Primary, CurrentTheme.Accent)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("HALTED") + "\n" + Subtle.Render(m.err.Error()))
	case m.recording:
		s.WriteString(StatusRecording.Render(fmt.Sprintf("REC %d", len(m.frames))))
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	if len(m.radii) > 1 {
		chart := asciigraph.Plot(m.radii, asciigraph.Height(6), asciigraph.Width(34), asciigraph.Caption("Heat radius"))
		s.WriteString(GraphStyle.Render(chart) + "\n")
	}

	cfg := m.sim.Config()
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.2fs", m.sim.Elapsed())) + "\n")
	s.WriteString(MetricLabel.Render("Tick") + MetricValue.Render(fmt.Sprintf("%d", m.sim.TickCount())) + "\n")
	s.WriteString(MetricLabel.Render("Beam") + MetricValue.Render(fmt.Sprintf("(%.1f, %.1f)", src.Position.X, src.Position.Y)) + "\n")
	radius := "n/a"
	if len(m.radii) > 0 {
		radius = fmt.Sprintf("%.2f", m.radii[len(m.radii)-1])
	}
	s.WriteString(MetricLabel.Render("Radius") + MetricValue.Render(radius) + "\n")
	peak := cfg.Grid.AmbientTemp
	if len(m.peaks) > 0 {
		peak = m.peaks[len(m.peaks)-1]
	}
	s.WriteString(MetricLabel.Render("Peak") + MetricValue.Render(fmt.Sprintf("%.1f°", peak)) + "\n")
	s.WriteString(SparklineChart(m.peaks, 30) + "\n")

	if cfg.Duration > 0 {
		progress := m.sim.Elapsed() / cfg.Duration
		s.WriteString("\n" + MetricLabel.Render("Cycle") + ProgressBar(progress-float64(int(progress)), 18) + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}

	s.WriteString("\n" + Separator(34) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help"))
	statsView := GlassPanel.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset to ambient         ║
║  Q        - Quit                     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) captureFrame() {
	img, err := paletted(m.sim.Grid().Snapshot(), gifCell, m.gradient())
	if err != nil {
		return
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		m.status = err.Error()
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
}
