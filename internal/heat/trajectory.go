package heat

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Pattern string

const (
	PatternCircle Pattern = "circle"
	PatternX      Pattern = "x"
	PatternStatic Pattern = "static"
)

const (
	CircleRadius = 15.0
	CrossReach   = 20.0
	crossPeriod  = 4.0
)

type trajectory func(t float64, center Position) Position

var trajectories = map[Pattern]trajectory{
	PatternCircle: circle,
	PatternX:      cross,
	PatternStatic: func(_ float64, center Position) Position { return center },
}

// ParsePattern resolves a pattern name, failing on anything unregistered.
func ParsePattern(name string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := trajectories[p]; !ok {
		return "", fmt.Errorf("%w: %q (available: %s)", ErrUnknownPattern, name, strings.Join(Patterns(), ", "))
	}
	return p, nil
}

// Patterns returns the registered pattern names, sorted.
func Patterns() []string {
	names := make([]string, 0, len(trajectories))
	for p := range trajectories {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// PositionAt returns the unrounded beam position at elapsed time t.
func PositionAt(t float64, p Pattern, center Position) (Position, error) {
	fn, ok := trajectories[p]
	if !ok {
		return Position{}, fmt.Errorf("%w: %q", ErrUnknownPattern, string(p))
	}
	return fn(t, center), nil
}

func circle(t float64, center Position) Position {
	return Position{
		X: center.X + CircleRadius*math.Cos(t),
		Y: center.Y + CircleRadius*math.Sin(t),
	}
}

// crossLegs are the corner offsets each unit leg runs between.
var crossLegs = [4][2]Position{
	{{X: -CrossReach, Y: -CrossReach}, {X: CrossReach, Y: CrossReach}},
	{{X: CrossReach, Y: CrossReach}, {X: -CrossReach, Y: -CrossReach}},
	{{X: CrossReach, Y: -CrossReach}, {X: -CrossReach, Y: CrossReach}},
	{{X: -CrossReach, Y: CrossReach}, {X: CrossReach, Y: -CrossReach}},
}

func cross(t float64, center Position) Position {
	t = math.Mod(t, crossPeriod)
	if t < 0 {
		t += crossPeriod
	}
	leg := int(t)
	if leg > 3 {
		leg = 3
	}
	frac := t - float64(leg)
	from, to := crossLegs[leg][0], crossLegs[leg][1]
	return Position{
		X: center.X + from.X + (to.X-from.X)*frac,
		Y: center.Y + from.Y + (to.Y-from.Y)*frac,
	}
}
