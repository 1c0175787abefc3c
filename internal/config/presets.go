package config

import "sort"

var Presets = map[string]*Config{
	"beam":   withPattern(DefaultConfig(), "circle"),
	"beam-x": withPattern(DefaultConfig(), "x"),
	"disk":   withPattern(diskConfig(), "circle"),
	"disk-x": withPattern(diskConfig(), "x"),
	"parked": withPattern(diskConfig(), "static"),
}

// diskConfig is the untracked disk-source variant.
func diskConfig() *Config {
	cfg := DefaultConfig()
	cfg.SourceTemp = DefaultDiskSourceTemp
	cfg.SourceRadius = DefaultDiskRadius
	cfg.TrackDissipation = false
	return cfg
}

func withPattern(cfg *Config, pattern string) *Config {
	cfg.Pattern = pattern
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
