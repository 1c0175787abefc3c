package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

type countingMetric struct {
	observed int
	last     float64
}

func (m *countingMetric) Name() string { return "count" }
func (m *countingMetric) Observe(f sim.Frame) {
	m.observed++
	m.last = f.Time
}
func (m *countingMetric) Value() float64 { return float64(m.observed) }
func (m *countingMetric) Reset()         { m.observed = 0 }

type countingPacer struct {
	waits int
	err   error
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return p.err
}

func beamConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Duration = 1.0
	return cfg
}

func diskConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Grid.SourceTemp = 500
	cfg.SourceRadius = 3
	cfg.TrackDissipation = false
	cfg.Duration = 1.0
	return cfg
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Run", func() {
		DescribeTable("performs round(duration/timeStep) ticks",
			func(duration float64, want int) {
				s, err := sim.New(beamConfig())
				Expect(err).NotTo(HaveOccurred())

				res, err := s.Run(ctx, duration, heat.PatternCircle)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Ticks).To(Equal(want))
				Expect(res.Times).To(HaveLen(want))
				Expect(res.Distances).To(HaveLen(want))
				Expect(res.Sources).To(HaveLen(want))
				Expect(s.TickCount()).To(Equal(want))
			},
			Entry("one second", 1.0, 10),
			Entry("rounds down", 1.04, 10),
			Entry("rounds up", 1.07, 11),
			Entry("two seconds", 2.0, 20),
		)

		It("advances simulated time by a fixed step per tick", func() {
			s, err := sim.New(beamConfig())
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1.0, heat.PatternX)
			Expect(err).NotTo(HaveOccurred())
			for i, t := range res.Times {
				Expect(t).To(BeNumerically("~", float64(i+1)*0.1, 1e-12))
			}
		})

		It("rounds point-source positions to grid cells", func() {
			s, err := sim.New(beamConfig())
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1.0, heat.PatternCircle)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sources[0]).To(Equal(heat.Position{X: 40, Y: 26}))
		})

		It("keeps raw positions for a disk source and skips the history", func() {
			s, err := sim.New(diskConfig())
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1.0, heat.PatternCircle)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sources[0].X).To(BeNumerically("~", 39.925, 1e-3))
			Expect(res.Distances).To(BeNil())
			Expect(s.Tracker()).To(BeNil())
		})

		It("heats the grid above ambient", func() {
			s, err := sim.New(diskConfig())
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1.0, heat.PatternStatic)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Field).To(HaveLen(50))
			Expect(res.Field[25][25]).To(BeNumerically(">", 25))
			Expect(res.Field[0][0]).To(Equal(25.0))
		})

		It("is deterministic across runs", func() {
			s, err := sim.New(beamConfig())
			Expect(err).NotTo(HaveOccurred())

			first, err := s.Run(ctx, 1.0, heat.PatternCircle)
			Expect(err).NotTo(HaveOccurred())
			second, err := s.Run(ctx, 1.0, heat.PatternCircle)
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Distances).To(Equal(first.Distances))
			Expect(second.Field).To(Equal(first.Field))
		})

		It("notifies observers and metrics once per tick", func() {
			var ticks []int
			obs := sim.ObserverFunc(func(f sim.Frame) {
				ticks = append(ticks, f.Tick)
				Expect(f.HasDistance).To(BeTrue())
				Expect(f.Tracker.Len()).To(Equal(f.Tick))
			})
			m := &countingMetric{}

			s, err := sim.New(beamConfig(), sim.WithObserver(obs), sim.WithMetric(m))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1.0, heat.PatternCircle)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticks).To(Equal([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
			Expect(res.Metrics).To(HaveKeyWithValue("count", 10.0))
		})

		It("waits on the pacer after every tick", func() {
			p := &countingPacer{}
			s, err := sim.New(beamConfig(), sim.WithPacer(p))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(ctx, 1.0, heat.PatternCircle)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.waits).To(Equal(10))
		})

		It("stops when the pacer fails", func() {
			boom := errors.New("timer gone")
			s, err := sim.New(beamConfig(), sim.WithPacer(&countingPacer{err: boom}))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1.0, heat.PatternCircle)
			Expect(err).To(MatchError(boom))
			Expect(res.Ticks).To(Equal(1))
		})

		It("returns the partial result when canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()
			obs := sim.ObserverFunc(func(f sim.Frame) {
				if f.Tick == 5 {
					cancel()
				}
			})

			s, err := sim.New(beamConfig(), sim.WithObserver(obs))
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(cctx, 1.0, heat.PatternCircle)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Ticks).To(Equal(5))
			Expect(res.Distances).To(HaveLen(5))
		})

		It("reports a diverging field", func() {
			cfg := beamConfig()
			cfg.Grid.DiffusionRate = 100

			s, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(ctx, 100, heat.PatternStatic)
			Expect(err).To(MatchError(heat.ErrUnstable))

			var simErr *heat.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(BeNumerically(">", 1))
		})

		It("fails fast on an unknown pattern", func() {
			s, err := sim.New(beamConfig())
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run(ctx, 1.0, heat.Pattern("spiral"))
			Expect(err).To(MatchError(heat.ErrUnknownPattern))
			Expect(res).To(BeNil())
			Expect(s.TickCount()).To(BeZero())
		})

		It("rejects a non-positive duration", func() {
			s, err := sim.New(beamConfig())
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(ctx, 0, heat.PatternCircle)
			Expect(err).To(MatchError(heat.ErrInvalidParams))
		})
	})

	Describe("New", func() {
		DescribeTable("rejects misconfiguration",
			func(patch func(*sim.Config), want error) {
				cfg := beamConfig()
				patch(&cfg)
				_, err := sim.New(cfg)
				Expect(err).To(MatchError(want))
			},
			Entry("zero rows", func(c *sim.Config) { c.Grid.Rows = 0 }, heat.ErrInvalidParams),
			Entry("zero time step", func(c *sim.Config) { c.Grid.TimeStep = 0 }, heat.ErrInvalidParams),
			Entry("negative radius", func(c *sim.Config) { c.SourceRadius = -1 }, heat.ErrInvalidParams),
			Entry("unknown pattern", func(c *sim.Config) { c.Pattern = "wobble" }, heat.ErrUnknownPattern),
		)
	})

	Describe("Tick", func() {
		It("advances one step at a time", func() {
			s, err := sim.New(beamConfig())
			Expect(err).NotTo(HaveOccurred())

			f, err := s.Tick(heat.PatternCircle)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Tick).To(Equal(1))
			Expect(s.Elapsed()).To(BeNumerically("~", 0.1, 1e-12))
			Expect(s.Grid().At(40, 26)).To(BeNumerically("~", 32.5, 1e-9))

			s.Reset()
			Expect(s.TickCount()).To(BeZero())
			Expect(s.Grid().At(40, 26)).To(Equal(25.0))
			Expect(s.Tracker().Len()).To(BeZero())
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs every config independently", func() {
		circle := sim.DefaultConfig()
		circle.Duration = 1.0
		cross := sim.DefaultConfig()
		cross.Pattern = heat.PatternX
		cross.Duration = 2.0

		e := sim.NewEnsemble([]sim.Config{circle, cross}, func() []sim.Metric {
			return []sim.Metric{&countingMetric{}}
		}, nil)

		results, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Ticks).To(Equal(10))
		Expect(results[1].Ticks).To(Equal(20))
		Expect(results[1].Metrics["count"]).To(Equal(20.0))
	})

	It("surfaces a failing run", func() {
		bad := sim.DefaultConfig()
		bad.Pattern = "nope"

		_, err := sim.NewEnsemble([]sim.Config{sim.DefaultConfig(), bad}, nil, nil).Run(context.Background())
		Expect(err).To(MatchError(heat.ErrUnknownPattern))
	})
})
