package heat

import (
	"errors"
	"math"
	"testing"
)

const tol = 1e-9

func TestNewGridAmbient(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		ambient    float64
	}{
		{"default", 50, 50, 25},
		{"single cell", 1, 1, -3.5},
		{"wide", 3, 40, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.Rows, p.Cols, p.AmbientTemp = tt.rows, tt.cols, tt.ambient
			g := NewGrid(p)

			if g.Rows() != tt.rows || g.Cols() != tt.cols {
				t.Fatalf("expected %dx%d, got %dx%d", tt.rows, tt.cols, g.Rows(), g.Cols())
			}
			for r := 0; r < tt.rows; r++ {
				for c := 0; c < tt.cols; c++ {
					if g.At(r, c) != tt.ambient {
						t.Fatalf("cell (%d,%d) = %f, want %f", r, c, g.At(r, c), tt.ambient)
					}
				}
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name  string
		patch func(*Params)
		valid bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"zero rows", func(p *Params) { p.Rows = 0 }, false},
		{"negative cols", func(p *Params) { p.Cols = -1 }, false},
		{"zero dt", func(p *Params) { p.TimeStep = 0 }, false},
		{"negative dt", func(p *Params) { p.TimeStep = -0.1 }, false},
		{"negative diffusion", func(p *Params) { p.DiffusionRate = -1 }, false},
		{"nan source", func(p *Params) { p.SourceTemp = math.NaN() }, false},
		{"zero rates", func(p *Params) { p.DiffusionRate, p.CoolingRate = 0, 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.patch(&p)
			err := p.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestStepPointSource(t *testing.T) {
	g := NewGrid(DefaultParams())
	src := Source{Position: Position{X: 25, Y: 25}}

	Step(g, src)

	// 25 + (100-25)*0.1, neighbours and cooling contribute nothing yet
	if got := g.At(25, 25); math.Abs(got-32.5) > tol {
		t.Errorf("source cell = %f, want 32.5", got)
	}
	if got := g.At(5, 5); got != 25 {
		t.Errorf("far cell = %f, want ambient", got)
	}
	if got := g.At(25, 26); got != 25 {
		t.Errorf("neighbour after first step = %f, want ambient", got)
	}

	Step(g, src)
	// neighbour picks up 0.1 * 0.1 * (32.5 - 25)
	if got := g.At(25, 26); math.Abs(got-25.075) > tol {
		t.Errorf("neighbour after second step = %f, want 25.075", got)
	}
}

func TestStepRoundsPointSource(t *testing.T) {
	g := NewGrid(DefaultParams())
	Step(g, Source{Position: Position{X: 10.4, Y: 11.6}})

	if g.At(10, 12) <= 25 {
		t.Errorf("rounded cell not heated: %f", g.At(10, 12))
	}
	if g.At(10, 11) != 25 {
		t.Errorf("unrounded neighbour changed: %f", g.At(10, 11))
	}
}

func TestStepDiskSource(t *testing.T) {
	p := DefaultParams()
	p.SourceTemp = 500
	g := NewGrid(p)
	src := Source{Position: Position{X: 25, Y: 25}, Radius: 3}

	Step(g, src)

	heated := 0
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			inside := src.Position.Dist(r, c) <= 3
			v := g.At(r, c)
			if inside {
				heated++
				if math.Abs(v-72.5) > tol {
					t.Errorf("footprint cell (%d,%d) = %f, want 72.5", r, c, v)
				}
			} else if v != 25 {
				t.Errorf("cell (%d,%d) outside footprint = %f", r, c, v)
			}
		}
	}
	// lattice points with x^2+y^2 <= 9
	if heated != 29 {
		t.Errorf("expected 29 footprint cells, got %d", heated)
	}
}

func TestStepBoundaryNeverDiffuses(t *testing.T) {
	p := DefaultParams()
	p.Rows, p.Cols = 10, 10
	g := NewGrid(p)

	g.Set(0, 5, 50)
	for r := 1; r < 9; r++ {
		for c := 1; c < 9; c++ {
			g.Set(r, c, 1e6)
		}
	}
	// park the beam outside the grid so only cooling touches the edge
	Step(g, Source{Position: Position{X: -10, Y: -10}})

	want := 50 + (25-50)*0.02*0.1
	if got := g.At(0, 5); math.Abs(got-want) > tol {
		t.Errorf("boundary cell = %f, want cooling only %f", got, want)
	}
	if got := g.At(0, 0); got != 25 {
		t.Errorf("corner = %f, want 25", got)
	}
}

func TestStepBoundaryTakesInjection(t *testing.T) {
	g := NewGrid(DefaultParams())
	Step(g, Source{Position: Position{X: 0, Y: 0}})

	if got := g.At(0, 0); math.Abs(got-32.5) > tol {
		t.Errorf("corner source cell = %f, want 32.5", got)
	}
}

func TestStepDiffusionConservesInterior(t *testing.T) {
	p := DefaultParams()
	p.Rows, p.Cols = 9, 9
	p.AmbientTemp = 0
	p.CoolingRate = 0
	g := NewGrid(p)
	g.Set(4, 4, 100)

	Step(g, Source{Position: Position{X: -50, Y: -50}})

	if got := g.At(4, 4); math.Abs(got-(100-4*0.1*0.1*100)) > tol {
		t.Errorf("centre = %f", got)
	}
	sum := 0.0
	for _, v := range g.Field() {
		sum += v
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("total heat = %f, want 100", sum)
	}
}

func TestStepCoolingRelaxes(t *testing.T) {
	p := DefaultParams()
	p.DiffusionRate = 0
	g := NewGrid(p)
	g.Set(10, 10, 125)

	Step(g, Source{Position: Position{X: 40, Y: 40}})

	want := 125 + (25-125)*0.02*0.1
	if got := g.At(10, 10); math.Abs(got-want) > tol {
		t.Errorf("cooled cell = %f, want %f", got, want)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	g := NewGrid(DefaultParams())
	snap := g.Snapshot()
	snap[3][3] = 999
	if g.At(3, 3) == 999 {
		t.Error("snapshot aliases the live field")
	}
}

func BenchmarkStep(b *testing.B) {
	g := NewGrid(DefaultParams())
	src := Source{Position: Position{X: 25, Y: 25}, Radius: 3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Step(g, src)
	}
}
