package sim

import (
	"context"
	"math"
	"time"

	"github.com/san-kum/heatsim/internal/heat"
)

// Frame is what a render sink sees after each tick. Grid and Tracker are live
// views owned by the simulator; copy anything kept past OnTick.
type Frame struct {
	Tick        int
	Time        float64
	Source      heat.Source
	Grid        *heat.Grid
	Distance    float64
	HasDistance bool
	Tracker     *heat.Tracker
}

type Observer interface {
	OnTick(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnTick(f Frame) { fn(f) }

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

// Pacer suspends the loop between ticks. It only affects wall-clock pacing,
// never simulated time.
type Pacer interface {
	Wait(ctx context.Context) error
}

// TickerPacer paces ticks at a fixed frame rate.
type TickerPacer struct {
	ticker *time.Ticker
}

func NewTickerPacer(fps int) *TickerPacer {
	if fps <= 0 {
		fps = 30
	}
	return &TickerPacer{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (p *TickerPacer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

func (p *TickerPacer) Stop() { p.ticker.Stop() }

type Config struct {
	Grid             heat.Params
	SourceRadius     float64
	Pattern          heat.Pattern
	Duration         float64
	TrackDissipation bool
	ValidateField    bool
}

func DefaultConfig() Config {
	return Config{
		Grid:             heat.DefaultParams(),
		Pattern:          heat.PatternCircle,
		Duration:         10.0,
		TrackDissipation: true,
		ValidateField:    true,
	}
}

// Ticks is the number of ticks a run of the given duration performs.
func (c Config) Ticks(duration float64) int {
	return int(math.Round(duration / c.Grid.TimeStep))
}

type Result struct {
	Ticks     int
	Times     []float64
	Distances []float64
	Sources   []heat.Position
	Field     [][]float64
	Metrics   map[string]float64
}
