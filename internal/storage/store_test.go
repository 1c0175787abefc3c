package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Ticks:     2,
		Times:     []float64{0.1, 0.2},
		Sources:   []heat.Position{{X: 40, Y: 26}, {X: 40, Y: 27}},
		Distances: []float64{1, 1.3},
		Field: [][]float64{
			{25, 25.5},
			{30.25, 100},
		},
		Metrics: map[string]float64{
			"peak_temp": 100,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("beam")
	runID, err := st.Save("beam", cfg, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Preset != "beam" {
		t.Errorf("expected preset 'beam', got '%s'", meta.Preset)
	}
	if meta.Ticks != 2 {
		t.Errorf("expected 2 ticks, got %d", meta.Ticks)
	}
	if meta.Config != *cfg {
		t.Errorf("config not preserved: %+v", meta.Config)
	}
	if meta.Metrics["peak_temp"] != 100 {
		t.Errorf("expected peak_temp 100, got %f", meta.Metrics["peak_temp"])
	}

	h, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(h.Times) != 2 || len(h.Sources) != 2 || len(h.Distances) != 2 {
		t.Fatalf("history lengths %d/%d/%d", len(h.Times), len(h.Sources), len(h.Distances))
	}
	if h.Sources[1] != (heat.Position{X: 40, Y: 27}) {
		t.Errorf("unexpected source %+v", h.Sources[1])
	}
	if h.Distances[1] != 1.3 {
		t.Errorf("expected distance 1.3, got %f", h.Distances[1])
	}

	field, err := st.LoadField(runID)
	if err != nil {
		t.Fatalf("load field failed: %v", err)
	}
	if len(field) != 2 || field[1][0] != 30.25 {
		t.Errorf("unexpected field %v", field)
	}
}

func TestStoreUntrackedHistory(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res := sampleResult()
	res.Distances = nil
	runID, err := st.Save("", config.GetPreset("disk"), res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	h, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(h.Times) != 2 {
		t.Errorf("expected 2 times, got %d", len(h.Times))
	}
	if len(h.Distances) != 0 {
		t.Errorf("expected no distances, got %v", h.Distances)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := st.Save("beam", config.GetPreset("beam"), sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// stray files and broken runs are skipped
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListEmpty(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadHistory("nope"); err == nil {
		t.Error("expected error for missing history")
	}
}
