package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"

	trailLength = 12
)

// shades runs from ambient to source temperature.
var shades = []rune(" .:-=+*#%@")

// LiveRenderer is a sim.Observer that redraws the field as ANSI text at most
// frameRate times per second. A frameRate of zero draws every tick.
type LiveRenderer struct {
	out       io.Writer
	label     string
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trail     []struct{ x, y int }
	frames    int
}

func NewLiveRenderer(label string, frameRate int) *LiveRenderer {
	return NewLiveRendererTo(os.Stdout, label, frameRate)
}

func NewLiveRendererTo(out io.Writer, label string, frameRate int) *LiveRenderer {
	return &LiveRenderer{
		out:       out,
		label:     label,
		frameRate: frameRate,
		trail:     make([]struct{ x, y int }, 0, trailLength),
	}
}

func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) OnTick(f sim.Frame) {
	if r.frameRate > 0 {
		elapsed := time.Since(r.lastFrame)
		if elapsed < time.Second/time.Duration(r.frameRate) {
			return
		}
	}
	r.lastFrame = time.Now()

	r.resize(f.Grid.Rows(), f.Grid.Cols())
	r.shade(f.Grid)
	r.drawTrail(f.Source)
	r.render(f)
	r.frames++
}

func (r *LiveRenderer) resize(rows, cols int) {
	if len(r.canvas) == rows && rows > 0 && len(r.canvas[0]) == cols*2 {
		return
	}
	r.canvas = make([][]rune, rows)
	for i := range r.canvas {
		r.canvas[i] = make([]rune, cols*2)
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if y >= 0 && y < len(r.canvas) && x >= 0 && 2*x+1 < len(r.canvas[y]) {
		r.canvas[y][2*x] = c
		r.canvas[y][2*x+1] = c
	}
}

// shade maps each cell onto the shade ramp. Two characters per cell keep the
// aspect ratio close to square.
func (r *LiveRenderer) shade(g *heat.Grid) {
	p := g.Params()
	span := math.Max(p.SourceTemp-p.AmbientTemp, 1)
	top := len(shades) - 1

	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			t := (g.At(row, col) - p.AmbientTemp) / span
			idx := int(math.Round(t * float64(top)))
			if idx < 0 {
				idx = 0
			}
			if idx > top {
				idx = top
			}
			r.set(col, row, shades[idx])
		}
	}
}

func (r *LiveRenderer) drawTrail(src heat.Source) {
	pos := heat.Round(src.Position)
	bx, by := int(pos.Y), int(pos.X)

	r.trail = append(r.trail, struct{ x, y int }{bx, by})
	if len(r.trail) > trailLength {
		r.trail = r.trail[1:]
	}
	for _, p := range r.trail[:len(r.trail)-1] {
		r.set(p.x, p.y, 'o')
	}
	r.set(bx, by, 'O')
}

func (r *LiveRenderer) render(f sim.Frame) {
	width := 0
	if len(r.canvas) > 0 {
		width = len(r.canvas[0])
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	header := fmt.Sprintf("  %s  t=%.2fs  beam=(%.1f, %.1f)", r.label, f.Time, f.Source.Position.X, f.Source.Position.Y)
	if f.HasDistance {
		header += fmt.Sprintf("  radius=%.2f", f.Distance)
	}
	b.WriteString(header + "\n")
	b.WriteString("  +" + strings.Repeat("-", width) + "+\n")

	for _, row := range r.canvas {
		b.WriteString("  |")
		b.WriteString(string(row))
		b.WriteString("|\n")
	}

	b.WriteString("  +" + strings.Repeat("-", width) + "+\n")

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
