package sim

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Ensemble runs independent simulations concurrently, one goroutine per
// config. Runs share nothing; metrics are built per run by newMetrics.
type Ensemble struct {
	configs    []Config
	newMetrics func() []Metric
	log        log.FieldLogger
}

func NewEnsemble(configs []Config, newMetrics func() []Metric, l log.FieldLogger) *Ensemble {
	return &Ensemble{configs: configs, newMetrics: newMetrics, log: l}
}

// Run returns one result per config, in order. The first error wins.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.configs))
	errs := make([]error, len(e.configs))

	var wg sync.WaitGroup
	for i, cfg := range e.configs {
		wg.Add(1)
		go func(idx int, cfg Config) {
			defer wg.Done()

			opts := []Option{WithLogger(e.log)}
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					opts = append(opts, WithMetric(m))
				}
			}

			s, err := New(cfg, opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, cfg.Duration, cfg.Pattern)
		}(i, cfg)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
