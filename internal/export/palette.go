package export

import (
	"fmt"
	"sort"

	"github.com/mazznoer/colorgrad"
)

var palettes = map[string]func() colorgrad.Gradient{
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"plasma":  colorgrad.Plasma,
	"turbo":   colorgrad.Turbo,
	"viridis": colorgrad.Viridis,
	"warm":    colorgrad.Warm,
	"greys":   colorgrad.Greys,
}

const DefaultPalette = "inferno"

// Palette returns the named colour gradient.
func Palette(name string) (colorgrad.Gradient, error) {
	if name == "" {
		name = DefaultPalette
	}
	fn, ok := palettes[name]
	if !ok {
		return colorgrad.Gradient{}, fmt.Errorf("unknown palette: %s", name)
	}
	return fn(), nil
}

func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bounds returns the smallest and largest value in field.
func Bounds(field [][]float64) (lo, hi float64) {
	first := true
	for _, row := range field {
		for _, v := range row {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}

// Normalize maps v from [lo, hi] into [0, 1]. A flat range maps to 0.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
