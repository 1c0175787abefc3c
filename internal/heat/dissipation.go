package heat

const (
	// HeatedThreshold is the rise above ambient at which a cell counts as heated.
	HeatedThreshold = 45.0
	// MinRadius is reported when no cell is heated.
	MinRadius = 1.0
	// Smoothing is the weight of the newest sample in the radius average.
	Smoothing = 0.7
)

// Measure returns the smoothed heat radius: the largest distance from the beam
// to any heated cell, blended with prior when hasPrior is set.
func Measure(g *Grid, src Source, prior float64, hasPrior bool) float64 {
	rows, cols, ambient := g.p.Rows, g.p.Cols, g.p.AmbientTemp

	rawMax, heated := 0.0, false
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if g.field[r*cols+c]-ambient <= HeatedThreshold {
				continue
			}
			heated = true
			if d := src.Position.Dist(r, c); d > rawMax {
				rawMax = d
			}
		}
	}

	if !heated {
		return MinRadius
	}
	if hasPrior {
		return Smoothing*rawMax + (1-Smoothing)*prior
	}
	return rawMax
}

// Tracker records the heat radius once per tick. Times and Distances always
// have the same length.
type Tracker struct {
	times     []float64
	distances []float64
}

func NewTracker(capacity int) *Tracker {
	return &Tracker{
		times:     make([]float64, 0, capacity),
		distances: make([]float64, 0, capacity),
	}
}

// Observe measures g at elapsed time t, appends the sample and returns it.
func (tr *Tracker) Observe(t float64, g *Grid, src Source) float64 {
	prior, ok := tr.Last()
	d := Measure(g, src, prior, ok)
	tr.times = append(tr.times, t)
	tr.distances = append(tr.distances, d)
	return d
}

func (tr *Tracker) Last() (float64, bool) {
	if len(tr.distances) == 0 {
		return 0, false
	}
	return tr.distances[len(tr.distances)-1], true
}

func (tr *Tracker) Len() int { return len(tr.times) }

// History returns copies of the time and distance sequences.
func (tr *Tracker) History() (times, distances []float64) {
	times = make([]float64, len(tr.times))
	distances = make([]float64, len(tr.distances))
	copy(times, tr.times)
	copy(distances, tr.distances)
	return times, distances
}

func (tr *Tracker) Reset() {
	tr.times = tr.times[:0]
	tr.distances = tr.distances[:0]
}
