package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/logging"
	log "github.com/sirupsen/logrus"
)

// Simulator owns one grid and one beam and advances them tick by tick.
// It is not safe for concurrent use; see Ensemble for parallel runs.
type Simulator struct {
	cfg       Config
	grid      *heat.Grid
	source    heat.Source
	tracker   *heat.Tracker
	metrics   []Metric
	observers []Observer
	pacer     Pacer
	log       log.FieldLogger
	tick      int
}

type Option func(*Simulator)

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

func WithMetric(m Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m) }
}

func WithPacer(p Pacer) Option {
	return func(s *Simulator) { s.pacer = p }
}

func WithLogger(l log.FieldLogger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:       cfg,
		grid:      heat.NewGrid(cfg.Grid),
		source:    heat.Source{Radius: cfg.SourceRadius},
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logging.Nop(),
	}
	if cfg.TrackDissipation {
		s.tracker = heat.NewTracker(cfg.Ticks(cfg.Duration))
	}
	for _, opt := range opts {
		opt(s)
	}
	s.source.Position = s.grid.Center()
	return s, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Config() Config         { return s.cfg }
func (s *Simulator) Grid() *heat.Grid       { return s.grid }
func (s *Simulator) Source() heat.Source    { return s.source }
func (s *Simulator) Tracker() *heat.Tracker { return s.tracker }
func (s *Simulator) TickCount() int         { return s.tick }
func (s *Simulator) Elapsed() float64       { return float64(s.tick) * s.cfg.Grid.TimeStep }

// Reset returns the grid to ambient, parks the beam at the centre and clears
// the history and metrics.
func (s *Simulator) Reset() {
	s.grid.Reset()
	s.source.Position = s.grid.Center()
	s.tick = 0
	if s.tracker != nil {
		s.tracker.Reset()
	}
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Run simulates duration seconds of the given pattern from a fresh grid.
// ticks = round(duration / timeStep). A cancelled context stops the loop
// between ticks and returns the partial result with ctx.Err().
func (s *Simulator) Run(ctx context.Context, duration float64, pattern heat.Pattern) (*Result, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %f", heat.ErrInvalidParams, duration)
	}
	pattern, err := heat.ParsePattern(string(pattern))
	if err != nil {
		return nil, err
	}

	s.Reset()
	ticks := s.cfg.Ticks(duration)
	result := &Result{
		Times:   make([]float64, 0, ticks),
		Sources: make([]heat.Position, 0, ticks),
		Metrics: make(map[string]float64),
	}

	s.log.WithFields(log.Fields{
		"pattern":  pattern,
		"ticks":    ticks,
		"grid":     fmt.Sprintf("%dx%d", s.grid.Rows(), s.grid.Cols()),
		"radius":   s.source.Radius,
		"duration": duration,
	}).Info("simulation started")

	defer s.collect(result)

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			s.log.WithField("tick", s.tick).Warn("simulation canceled")
			return result, ctx.Err()
		default:
		}

		f, err := s.Tick(pattern)
		if err != nil {
			s.log.WithError(err).Error("simulation stopped")
			return result, err
		}
		result.Ticks++
		result.Times = append(result.Times, f.Time)
		result.Sources = append(result.Sources, f.Source.Position)

		if s.pacer != nil {
			if err := s.pacer.Wait(ctx); err != nil {
				return result, err
			}
		}
	}

	s.log.WithFields(log.Fields{
		"ticks":   result.Ticks,
		"elapsed": s.Elapsed(),
	}).Info("simulation finished")
	return result, nil
}

// Tick advances exactly one step along pattern and notifies observers.
func (s *Simulator) Tick(pattern heat.Pattern) (Frame, error) {
	step := s.tick + 1
	t := float64(step) * s.cfg.Grid.TimeStep

	pos, err := heat.PositionAt(t, pattern, s.grid.Center())
	if err != nil {
		return Frame{}, err
	}
	if s.source.IsPoint() {
		pos = heat.Round(pos)
	}
	s.source.Position = pos

	heat.Step(s.grid, s.source)
	s.tick = step

	if s.cfg.ValidateField && !s.grid.IsFinite() {
		return Frame{}, &heat.SimulationError{Step: step, Time: t, Wrapped: heat.ErrUnstable}
	}

	f := Frame{
		Tick:    step,
		Time:    t,
		Source:  s.source,
		Grid:    s.grid,
		Tracker: s.tracker,
	}
	if s.tracker != nil {
		f.Distance = s.tracker.Observe(t, s.grid, s.source)
		f.HasDistance = true
	}

	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnTick(f)
	}

	s.log.WithFields(log.Fields{
		"tick":     step,
		"x":        pos.X,
		"y":        pos.Y,
		"distance": f.Distance,
	}).Debug("tick")
	return f, nil
}

func (s *Simulator) collect(result *Result) {
	if s.tracker != nil {
		_, result.Distances = s.tracker.History()
	}
	result.Field = s.grid.Snapshot()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if err := cfg.Grid.Validate(); err != nil {
		return err
	}
	if cfg.SourceRadius < 0 {
		return fmt.Errorf("%w: source radius must be non-negative, got %f", heat.ErrInvalidParams, cfg.SourceRadius)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("%w: duration must be non-negative, got %f", heat.ErrInvalidParams, cfg.Duration)
	}
	if cfg.Pattern != "" {
		if _, err := heat.ParsePattern(string(cfg.Pattern)); err != nil {
			return err
		}
	}
	return nil
}
