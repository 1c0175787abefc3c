package automation

import (
	"context"
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/logging"
	"github.com/san-kum/heatsim/internal/metrics"
	"github.com/san-kum/heatsim/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run: a preset (or the defaults) with the keys of
// Config laid over it.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
	SaveAs string    `yaml:"save_as"`
}

// StepResult pairs a step's resolved config with its outcome.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Resolve builds the step's config and validates it.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order, stopping at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, l log.FieldLogger) ([]StepResult, error) {
	if l == nil {
		l = logging.Nop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		sc, err := cfg.Sim()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		opts := []sim.Option{sim.WithLogger(l.WithField("step", i+1))}
		for _, m := range metrics.Default() {
			opts = append(opts, sim.WithMetric(m))
		}
		s, err := sim.New(sc, opts...)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := s.Run(ctx, sc.Duration, sc.Pattern)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs the base config across evenly spaced values of one
// parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds one point of a sweep. Stable is false when the field
// left the finite range.
type SweepResult struct {
	ParamValue  float64
	FinalRadius float64
	PeakTemp    float64
	MeanExcess  float64
	HeatedCells float64
	Stable      bool
}

// Values returns the parameter values the sweep visits.
func (p *ParameterSweep) Values() []float64 {
	if p.NumSteps <= 1 {
		return []float64{p.ParamMin}
	}
	step := (p.ParamMax - p.ParamMin) / float64(p.NumSteps-1)
	vals := make([]float64, p.NumSteps)
	for i := range vals {
		vals[i] = p.ParamMin + float64(i)*step
	}
	return vals
}

// RunSweep executes every point concurrently. Divergent points are reported
// as unstable instead of failing the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, l log.FieldLogger) ([]SweepResult, error) {
	if l == nil {
		l = logging.Nop()
	}

	values := sweep.Values()
	configs := make([]sim.Config, 0, len(values))
	for _, v := range values {
		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.ParamName, v); err != nil {
			return nil, err
		}
		sc, err := cfg.Sim()
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, v, err)
		}
		sc.ValidateField = false
		configs = append(configs, sc)
	}

	results, err := sim.NewEnsemble(configs, metrics.Default, l).Run(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, res := range results {
		out[i] = SweepResult{
			ParamValue:  values[i],
			FinalRadius: res.Metrics["final_radius"],
			PeakTemp:    res.Metrics["peak_temp"],
			MeanExcess:  res.Metrics["mean_excess"],
			HeatedCells: res.Metrics["heated_cells"],
			Stable:      finite(res.Field),
		}
		l.WithFields(log.Fields{
			"param":  sweep.ParamName,
			"value":  values[i],
			"stable": out[i].Stable,
		}).Debug("sweep point done")
	}
	return out, nil
}

func finite(field [][]float64) bool {
	for _, row := range field {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
