package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

// PeakTemperature is the hottest cell seen during a run.
type PeakTemperature struct {
	name string
	peak float64
	seen bool
}

func NewPeakTemperature() *PeakTemperature {
	return &PeakTemperature{name: "peak_temp"}
}

func (p *PeakTemperature) Name() string { return p.name }

func (p *PeakTemperature) Observe(f sim.Frame) {
	v := floats.Max(f.Grid.Field())
	if !p.seen || v > p.peak {
		p.peak, p.seen = v, true
	}
}

func (p *PeakTemperature) Value() float64 { return p.peak }

func (p *PeakTemperature) Reset() {
	p.peak, p.seen = 0, false
}

// MeanExcess averages, over ticks, the mean rise of the field above ambient.
type MeanExcess struct {
	name    string
	sum     float64
	samples int
}

func NewMeanExcess() *MeanExcess {
	return &MeanExcess{name: "mean_excess"}
}

func (m *MeanExcess) Name() string { return m.name }

func (m *MeanExcess) Observe(f sim.Frame) {
	field := f.Grid.Field()
	m.sum += floats.Sum(field)/float64(len(field)) - f.Grid.Params().AmbientTemp
	m.samples++
}

func (m *MeanExcess) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanExcess) Reset() {
	m.sum = 0
	m.samples = 0
}

// HeatedCells counts cells above the heated threshold on the latest tick.
type HeatedCells struct {
	name  string
	count int
}

func NewHeatedCells() *HeatedCells {
	return &HeatedCells{name: "heated_cells"}
}

func (h *HeatedCells) Name() string { return h.name }

func (h *HeatedCells) Observe(f sim.Frame) {
	h.count = CountHeated(f.Grid)
}

func (h *HeatedCells) Value() float64 { return float64(h.count) }
func (h *HeatedCells) Reset()         { h.count = 0 }

// FinalRadius keeps the latest smoothed heat radius, when tracked.
type FinalRadius struct {
	name   string
	radius float64
}

func NewFinalRadius() *FinalRadius {
	return &FinalRadius{name: "final_radius"}
}

func (r *FinalRadius) Name() string { return r.name }

func (r *FinalRadius) Observe(f sim.Frame) {
	if f.HasDistance {
		r.radius = f.Distance
	}
}

func (r *FinalRadius) Value() float64 { return r.radius }
func (r *FinalRadius) Reset()         { r.radius = 0 }

func CountHeated(g *heat.Grid) int {
	n, ambient := 0, g.Params().AmbientTemp
	for _, v := range g.Field() {
		if v-ambient > heat.HeatedThreshold {
			n++
		}
	}
	return n
}

// Default returns a fresh set of the per-run metrics.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPeakTemperature(),
		NewMeanExcess(),
		NewHeatedCells(),
		NewFinalRadius(),
	}
}
