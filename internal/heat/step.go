package heat

// Step advances g by one tick with the beam at src.
//
// Every term reads the pre-step field and accumulates into the swap buffer:
// injection over the footprint, 5-point diffusion over interior cells and
// cooling over all cells. The outer ring never diffuses.
func Step(g *Grid, src Source) {
	p, old, next := g.p, g.field, g.next
	rows, cols, dt := p.Rows, p.Cols, p.TimeStep
	copy(next, old)

	src.Footprint(rows, cols, func(r, c int) {
		i := r*cols + c
		next[i] += (p.SourceTemp - old[i]) * dt
	})

	kd := p.DiffusionRate * dt
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; c++ {
			i := r*cols + c
			lap := old[i-cols] + old[i+cols] + old[i-1] + old[i+1] - 4*old[i]
			next[i] += kd * lap
		}
	}

	kc := p.CoolingRate * dt
	for i, v := range old {
		next[i] += (p.AmbientTemp - v) * kc
	}

	g.swap()
}
