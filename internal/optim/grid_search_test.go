package optim

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/heatsim/internal/config"
)

func smallBase() *config.Config {
	cfg := config.DefaultConfig()
	cfg.GridSize = [2]int{16, 16}
	cfg.Pattern = "static"
	cfg.Duration = 2
	return cfg
}

func TestGridSearchMinimisesPeak(t *testing.T) {
	g := NewGridSearch(
		[]string{"cooling_rate", "source_temp"},
		[][]float64{{0.01, 0.5}, {80, 200}},
	)

	params, peak, err := g.Search(context.Background(), smallBase(), "peak_temp")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if params["source_temp"] != 80 || params["cooling_rate"] != 0.5 {
		t.Errorf("unexpected best params %v", params)
	}
	if peak <= 25 || peak >= 80 {
		t.Errorf("peak = %f", peak)
	}
}

func TestGridSearchMaximise(t *testing.T) {
	g := NewGridSearch([]string{"source_temp"}, [][]float64{{80, 200}})

	params, peak, err := g.Search(context.Background(), smallBase(), "-peak_temp")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if params["source_temp"] != 200 {
		t.Errorf("unexpected best params %v", params)
	}
	if peak <= 80 {
		t.Errorf("peak = %f", peak)
	}
}

func TestGridSearchSkipsInvalid(t *testing.T) {
	g := NewGridSearch([]string{"time_step"}, [][]float64{{-1, 0}})

	_, _, err := g.Search(context.Background(), smallBase(), "peak_temp")
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearchRejectsUnknownParam(t *testing.T) {
	g := NewGridSearch([]string{"source_temp", "difusion_rate"}, [][]float64{{100}, {0.1, 0.2}})

	_, _, err := g.Search(context.Background(), smallBase(), "peak_temp")
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if errors.Is(err, ErrNoCandidate) || !strings.Contains(err.Error(), "difusion_rate") {
		t.Errorf("error should name the bad parameter: %v", err)
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, _, err := NewGridSearch([]string{"source_temp"}, nil).Search(context.Background(), smallBase(), "peak_temp"); err == nil {
		t.Error("expected mismatch error")
	}

	g := NewGridSearch([]string{"source_temp"}, [][]float64{{100}})
	if _, _, err := g.Search(context.Background(), smallBase(), "entropy"); err == nil {
		t.Error("expected unknown metric error")
	}
	if _, _, err := g.Search(context.Background(), smallBase(), "-gravity"); err == nil {
		t.Error("expected unknown metric error")
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"source_temp"}, [][]float64{{100, 200}})
	if _, _, err := g.Search(ctx, smallBase(), "peak_temp"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
