package heat

import "math"

// Position is a beam location in grid coordinates. X indexes rows, Y columns.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Dist(r, c int) float64 {
	return math.Hypot(float64(r)-p.X, float64(c)-p.Y)
}

// Round snaps p to the nearest grid index.
func Round(p Position) Position {
	return Position{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// Source is the beam. A zero radius is a point source at the cell under
// Position; a positive radius is a filled disk centred on Position.
type Source struct {
	Position Position
	Radius   float64
}

func (s Source) IsPoint() bool { return s.Radius <= 0 }

// Footprint calls fn for every in-bounds cell covered by the source.
func (s Source) Footprint(rows, cols int, fn func(r, c int)) {
	if s.IsPoint() {
		r, c := int(math.Round(s.Position.X)), int(math.Round(s.Position.Y))
		if r >= 0 && r < rows && c >= 0 && c < cols {
			fn(r, c)
		}
		return
	}

	r0 := int(math.Max(0, math.Ceil(s.Position.X-s.Radius)))
	r1 := int(math.Min(float64(rows-1), math.Floor(s.Position.X+s.Radius)))
	c0 := int(math.Max(0, math.Ceil(s.Position.Y-s.Radius)))
	c1 := int(math.Min(float64(cols-1), math.Floor(s.Position.Y+s.Radius)))
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if s.Position.Dist(r, c) <= s.Radius {
				fn(r, c)
			}
		}
	}
}
