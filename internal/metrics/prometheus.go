package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/heatsim/internal/sim"
)

// Collector exports live simulation gauges to Prometheus. It is a sim.Observer.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks       prometheus.Counter
	SimTime     prometheus.Gauge
	PeakTemp    prometheus.Gauge
	HeatRadius  prometheus.Gauge
	HeatedCells prometheus.Gauge
	SourceX     prometheus.Gauge
	SourceY     prometheus.Gauge
}

// NewCollector registers heatsim metrics against reg, defaulting to the global
// registry when nil. Registering twice reuses the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatsim_ticks_total",
		Help: "Total number of simulated ticks.",
	}), "heatsim_ticks_total")
	if err != nil {
		return nil, err
	}

	c := &Collector{gatherer: gatherer, Ticks: ticks}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.SimTime, "heatsim_sim_time_seconds", "Simulated time of the latest tick."},
		{&c.PeakTemp, "heatsim_peak_temperature", "Hottest cell on the latest tick."},
		{&c.HeatRadius, "heatsim_heat_radius", "Smoothed heat radius on the latest tick."},
		{&c.HeatedCells, "heatsim_heated_cells", "Cells above the heated threshold on the latest tick."},
		{&c.SourceX, "heatsim_source_x", "Beam position along the row axis."},
		{&c.SourceY, "heatsim_source_y", "Beam position along the column axis."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return c, nil
}

func (c *Collector) OnTick(f sim.Frame) {
	c.Ticks.Inc()
	c.SimTime.Set(f.Time)
	c.PeakTemp.Set(floats.Max(f.Grid.Field()))
	c.HeatedCells.Set(float64(CountHeated(f.Grid)))
	c.SourceX.Set(f.Source.Position.X)
	c.SourceY.Set(f.Source.Position.Y)
	if f.HasDistance {
		c.HeatRadius.Set(f.Distance)
	}
}

// Handler serves the registry this collector was registered with.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
