package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/metrics"
	"github.com/san-kum/heatsim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no stable parameter combination")

// GridSearch evaluates every combination of the given parameter values and
// keeps the one that minimises a run metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs base with each combination applied. Unknown parameter names
// are rejected up front; combinations that fail to validate or diverge are
// skipped. Prefix metricName with '-' to maximise.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	tunable := config.TunableParams()
	for _, name := range g.paramNames {
		if !slices.Contains(tunable, name) {
			return nil, 0, fmt.Errorf("%w: unknown parameter %q (available: %s)", config.ErrInvalid, name, strings.Join(tunable, ", "))
		}
	}

	sign := 1.0
	if len(metricName) > 0 && metricName[0] == '-' {
		sign, metricName = -1, metricName[1:]
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, base, make(map[string]float64), func(params map[string]float64, m map[string]float64) error {
		val, ok := m[metricName]
		if !ok {
			return fmt.Errorf("optim: unknown metric %q", metricName)
		}
		if sign*val < best {
			best = sign * val
			bestParams = make(map[string]float64, len(params))
			for k, v := range params {
				bestParams[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}

	return bestParams, sign * best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	base *config.Config,
	current map[string]float64,
	visit func(params, metrics map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		m, err := evaluate(ctx, base, current)
		if err != nil {
			if errors.Is(err, config.ErrInvalid) || errors.Is(err, heat.ErrUnstable) {
				return nil
			}
			return err
		}
		return visit(current, m)
	}

	for _, val := range g.ranges[depth] {
		current[g.paramNames[depth]] = val
		if err := g.searchRecursive(ctx, depth+1, base, current, visit); err != nil {
			return err
		}
	}
	delete(current, g.paramNames[depth])
	return nil
}

func evaluate(ctx context.Context, base *config.Config, params map[string]float64) (map[string]float64, error) {
	cfg := base.Clone()
	for name, v := range params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	sc, err := cfg.Sim()
	if err != nil {
		return nil, err
	}

	opts := make([]sim.Option, 0)
	for _, m := range metrics.Default() {
		opts = append(opts, sim.WithMetric(m))
	}
	s, err := sim.New(sc, opts...)
	if err != nil {
		return nil, err
	}
	result, err := s.Run(ctx, sc.Duration, sc.Pattern)
	if err != nil {
		return nil, err
	}
	return result.Metrics, nil
}
