package viz

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/heatsim/internal/export"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

func newTestModel(t *testing.T, cfg sim.Config) Model {
	t.Helper()
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	return NewModel(s, cfg.Pattern, 30)
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func tick(m Model) Model {
	next, _ := m.Update(TickMsg(time.Now()))
	return next.(Model)
}

func TestModelTicksAdvanceSimulation(t *testing.T) {
	m := newTestModel(t, sim.DefaultConfig())

	for i := 0; i < 3; i++ {
		m = tick(m)
	}
	if m.sim.TickCount() != 3 {
		t.Errorf("expected 3 ticks, got %d", m.sim.TickCount())
	}
	if len(m.radii) != 3 || len(m.peaks) != 3 {
		t.Errorf("history lengths %d/%d", len(m.radii), len(m.peaks))
	}

	_, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestModelPauseAndReset(t *testing.T) {
	m := newTestModel(t, sim.DefaultConfig())
	m = tick(m)

	m = press(m, " ")
	if m.Running() {
		t.Fatal("space should pause")
	}
	m = tick(m)
	if m.sim.TickCount() != 1 {
		t.Errorf("paused model advanced to tick %d", m.sim.TickCount())
	}

	m = press(m, "r")
	if m.sim.TickCount() != 0 || len(m.peaks) != 0 {
		t.Error("reset should clear the simulation and history")
	}
	if !m.Running() {
		t.Error("reset should resume")
	}
	if got := m.sim.Grid().At(0, 0); got != heat.DefaultAmbientTemp {
		t.Errorf("grid not at ambient after reset: %f", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, sim.DefaultConfig())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelHaltsOnDivergence(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Grid.DiffusionRate = 100
	m := newTestModel(t, cfg)

	for i := 0; i < 1000 && m.Err() == nil; i++ {
		m = tick(m)
	}
	if !errors.Is(m.Err(), heat.ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", m.Err())
	}
	if m.Running() {
		t.Error("model should stop after divergence")
	}
	if !strings.Contains(m.View(), "HALTED") {
		t.Error("view should report the halt")
	}
}

func TestModelUntrackedRadius(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.TrackDissipation = false
	m := tick(newTestModel(t, cfg))

	if len(m.radii) != 0 {
		t.Errorf("untracked run recorded radii: %v", m.radii)
	}
	if !strings.Contains(m.View(), "n/a") {
		t.Error("view should show n/a radius")
	}
}

func TestModelRecordGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.gif")
	m := newTestModel(t, sim.DefaultConfig()).WithGIFPath(path)

	m = press(m, "g")
	m = tick(m)
	m = tick(m)
	if len(m.frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(m.frames))
	}
	m = press(m, "g")
	if m.recording {
		t.Error("second g should stop recording")
	}
	if !strings.Contains(m.status, "saved 2 frames") {
		t.Errorf("status = %q", m.status)
	}
}

func TestViewContainsStats(t *testing.T) {
	m := tick(newTestModel(t, sim.DefaultConfig()))
	view := m.View()
	// first circle tick at t=0.1 on 50x50: (25+15cos 0.1, 25+15sin 0.1) rounded
	for _, want := range []string{"CIRCLE", "Radius", "Peak", "Tick", "(40.0, 26.0)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHeatmapShape(t *testing.T) {
	p := heat.DefaultParams()
	p.Rows, p.Cols = 5, 4
	g := heat.NewGrid(p)
	grad, _ := export.Palette("inferno")

	out := Heatmap(g, heat.Source{Position: g.Center()}, grad, CurrentTheme.Accent)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines for 5 rows, got %d", len(lines))
	}
	if n := strings.Count(out, halfBlock); n != 12 {
		t.Errorf("expected 12 glyphs, got %d", n)
	}
}

func TestPalettedFrame(t *testing.T) {
	grad, _ := export.Palette("inferno")
	img, err := paletted([][]float64{{25, 100}}, 2, grad)
	if err != nil {
		t.Fatal(err)
	}
	if len(img.Palette) != 256 {
		t.Errorf("palette size %d", len(img.Palette))
	}
	if img.ColorIndexAt(0, 0) == img.ColorIndexAt(3, 0) {
		t.Error("cold and hot cells share a palette index")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeEmber.Name)

	for _, name := range ThemeNames() {
		if _, err := export.Palette(GetTheme(name).Palette); err != nil {
			t.Errorf("theme %s has bad palette: %v", name, err)
		}
	}
	if GetTheme("nope").Name != ThemeEmber.Name {
		t.Error("unknown theme should fall back to ember")
	}

	SetTheme(ThemeMinimal.Name)
	NextTheme()
	if CurrentTheme.Name != ThemeEmber.Name {
		t.Errorf("expected wrap to ember, got %s", CurrentTheme.Name)
	}
}

func TestSparklineAndProgress(t *testing.T) {
	line := SparklineChart([]float64{1, 2, 3, 4}, 2)
	if n := len([]rune(line)); n != 2 {
		t.Errorf("sparkline has %d runes", n)
	}
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if n := strings.Count(ProgressBar(0.5, 10), "█"); n != 5 {
		t.Errorf("expected 5 filled cells, got %d", n)
	}
	if !strings.Contains(Separator(20), "◆") {
		t.Error("separator missing ornament")
	}
}
