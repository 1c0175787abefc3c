package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/sim"
)

const (
	DefaultDuration       = 10.0
	DefaultPattern        = "circle"
	DefaultFrameRate      = 30
	DefaultDiskSourceTemp = 500.0
	DefaultDiskRadius     = 3.0
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	GridSize         [2]int  `yaml:"grid_size,flow" json:"grid_size"`
	AmbientTemp      float64 `yaml:"ambient_temp" json:"ambient_temp"`
	SourceTemp       float64 `yaml:"source_temp" json:"source_temp"`
	DiffusionRate    float64 `yaml:"diffusion_rate" json:"diffusion_rate"`
	CoolingRate      float64 `yaml:"cooling_rate" json:"cooling_rate"`
	TimeStep         float64 `yaml:"time_step" json:"time_step"`
	SourceRadius     float64 `yaml:"source_radius" json:"source_radius"`
	Pattern          string  `yaml:"pattern" json:"pattern"`
	Duration         float64 `yaml:"duration" json:"duration"`
	TrackDissipation bool    `yaml:"track_dissipation" json:"track_dissipation"`
	FrameRate        int     `yaml:"fps" json:"fps"`
}

// DefaultConfig is the tracked point-source beam.
func DefaultConfig() *Config {
	return &Config{
		GridSize:         [2]int{heat.DefaultRows, heat.DefaultCols},
		AmbientTemp:      heat.DefaultAmbientTemp,
		SourceTemp:       heat.DefaultSourceTemp,
		DiffusionRate:    heat.DefaultDiffusionRate,
		CoolingRate:      heat.DefaultCoolingRate,
		TimeStep:         heat.DefaultTimeStep,
		SourceRadius:     0,
		Pattern:          DefaultPattern,
		Duration:         DefaultDuration,
		TrackDissipation: true,
		FrameRate:        DefaultFrameRate,
	}
}

// Load reads a YAML file, or an INI file when path ends in .ini. Keys missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto is Load with base supplying the values of missing keys. base is
// not modified.
func LoadOnto(path string, base *Config) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		return loadINI(path, base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadINI(path string, d *Config) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	grid, thermal, source, run := file.Section("grid"), file.Section("thermal"), file.Section("source"), file.Section("run")
	return &Config{
		GridSize: [2]int{
			grid.Key("rows").MustInt(d.GridSize[0]),
			grid.Key("cols").MustInt(d.GridSize[1]),
		},
		AmbientTemp:      thermal.Key("ambient_temp").MustFloat64(d.AmbientTemp),
		SourceTemp:       thermal.Key("source_temp").MustFloat64(d.SourceTemp),
		DiffusionRate:    thermal.Key("diffusion_rate").MustFloat64(d.DiffusionRate),
		CoolingRate:      thermal.Key("cooling_rate").MustFloat64(d.CoolingRate),
		TimeStep:         thermal.Key("time_step").MustFloat64(d.TimeStep),
		SourceRadius:     source.Key("radius").MustFloat64(d.SourceRadius),
		Pattern:          source.Key("pattern").MustString(d.Pattern),
		Duration:         run.Key("duration").MustFloat64(d.Duration),
		TrackDissipation: run.Key("track_dissipation").MustBool(d.TrackDissipation),
		FrameRate:        run.Key("fps").MustInt(d.FrameRate),
	}, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports misconfiguration as an error wrapping ErrInvalid and the
// underlying heat error.
func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalid, c.Duration)
	}
	if c.FrameRate < 0 {
		return fmt.Errorf("%w: fps must be non-negative, got %d", ErrInvalid, c.FrameRate)
	}
	if c.SourceRadius < 0 {
		return fmt.Errorf("%w: %w: source radius must be non-negative, got %f", ErrInvalid, heat.ErrInvalidParams, c.SourceRadius)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := heat.ParsePattern(c.Pattern); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Params() heat.Params {
	return heat.Params{
		Rows:          c.GridSize[0],
		Cols:          c.GridSize[1],
		AmbientTemp:   c.AmbientTemp,
		SourceTemp:    c.SourceTemp,
		DiffusionRate: c.DiffusionRate,
		CoolingRate:   c.CoolingRate,
		TimeStep:      c.TimeStep,
	}
}

// Sim converts a validated config into the simulator's form.
func (c *Config) Sim() (sim.Config, error) {
	if err := c.Validate(); err != nil {
		return sim.Config{}, err
	}
	pattern, _ := heat.ParsePattern(c.Pattern)
	return sim.Config{
		Grid:             c.Params(),
		SourceRadius:     c.SourceRadius,
		Pattern:          pattern,
		Duration:         c.Duration,
		TrackDissipation: c.TrackDissipation,
		ValidateField:    true,
	}, nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

var tunable = map[string]func(*Config, float64){
	"ambient_temp":   func(c *Config, v float64) { c.AmbientTemp = v },
	"source_temp":    func(c *Config, v float64) { c.SourceTemp = v },
	"diffusion_rate": func(c *Config, v float64) { c.DiffusionRate = v },
	"cooling_rate":   func(c *Config, v float64) { c.CoolingRate = v },
	"time_step":      func(c *Config, v float64) { c.TimeStep = v },
	"source_radius":  func(c *Config, v float64) { c.SourceRadius = v },
	"duration":       func(c *Config, v float64) { c.Duration = v },
}

// SetParam sets a numeric field by its YAML key.
func (c *Config) SetParam(name string, v float64) error {
	set, ok := tunable[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q (available: %s)", ErrInvalid, name, strings.Join(TunableParams(), ", "))
	}
	set(c, v)
	return nil
}

func TunableParams() []string {
	names := make([]string, 0, len(tunable))
	for name := range tunable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
