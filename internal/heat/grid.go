package heat

import (
	"fmt"
	"math"
)

const (
	DefaultRows          = 50
	DefaultCols          = 50
	DefaultAmbientTemp   = 25.0
	DefaultSourceTemp    = 100.0
	DefaultDiffusionRate = 0.1
	DefaultCoolingRate   = 0.02
	DefaultTimeStep      = 0.1
)

// Params holds the fixed scalars of a grid.
type Params struct {
	Rows          int
	Cols          int
	AmbientTemp   float64
	SourceTemp    float64
	DiffusionRate float64
	CoolingRate   float64
	TimeStep      float64
}

func DefaultParams() Params {
	return Params{
		Rows:          DefaultRows,
		Cols:          DefaultCols,
		AmbientTemp:   DefaultAmbientTemp,
		SourceTemp:    DefaultSourceTemp,
		DiffusionRate: DefaultDiffusionRate,
		CoolingRate:   DefaultCoolingRate,
		TimeStep:      DefaultTimeStep,
	}
}

// Validate rejects parameters the integrator cannot work with. It does not
// check explicit-scheme stability.
func (p Params) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidParams, p.Rows, p.Cols)
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("%w: time step must be positive, got %f", ErrInvalidParams, p.TimeStep)
	}
	if p.DiffusionRate < 0 || p.CoolingRate < 0 {
		return fmt.Errorf("%w: rates must be non-negative (diffusion=%f, cooling=%f)", ErrInvalidParams, p.DiffusionRate, p.CoolingRate)
	}
	for _, v := range []float64{p.AmbientTemp, p.SourceTemp, p.DiffusionRate, p.CoolingRate, p.TimeStep} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite parameter", ErrInvalidParams)
		}
	}
	return nil
}

// Grid is a rows x cols temperature field. The field is stored row-major in a
// flat slice; next is the swap buffer written by Step.
type Grid struct {
	p     Params
	field []float64
	next  []float64
}

// NewGrid returns a grid with every cell at the ambient temperature.
// p is assumed valid; see Params.Validate.
func NewGrid(p Params) *Grid {
	n := p.Rows * p.Cols
	g := &Grid{
		p:     p,
		field: make([]float64, n),
		next:  make([]float64, n),
	}
	g.Reset()
	return g
}

func (g *Grid) Params() Params { return g.p }
func (g *Grid) Rows() int      { return g.p.Rows }
func (g *Grid) Cols() int      { return g.p.Cols }

func (g *Grid) At(r, c int) float64 {
	return g.field[r*g.p.Cols+c]
}

func (g *Grid) Set(r, c int, v float64) {
	g.field[r*g.p.Cols+c] = v
}

func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.p.Rows && c >= 0 && c < g.p.Cols
}

// Field returns the live row-major field. Callers must not modify it.
func (g *Grid) Field() []float64 { return g.field }

// Snapshot returns a deep copy of the field as rows.
func (g *Grid) Snapshot() [][]float64 {
	out := make([][]float64, g.p.Rows)
	for r := range out {
		row := make([]float64, g.p.Cols)
		copy(row, g.field[r*g.p.Cols:(r+1)*g.p.Cols])
		out[r] = row
	}
	return out
}

// Center is the integer grid centre.
func (g *Grid) Center() Position {
	return Position{X: float64(g.p.Rows / 2), Y: float64(g.p.Cols / 2)}
}

// Reset puts every cell back to the ambient temperature.
func (g *Grid) Reset() {
	for i := range g.field {
		g.field[i] = g.p.AmbientTemp
	}
}

func (g *Grid) IsFinite() bool {
	for _, v := range g.field {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (g *Grid) swap() {
	g.field, g.next = g.next, g.field
}
