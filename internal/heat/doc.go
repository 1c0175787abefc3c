// Package heat provides the numerical core of the beam heat-diffusion simulator.
//
// The package is built from a few small pieces:
//
//   - [Grid]: the temperature field and its scalar parameters
//   - [Source]: the beam, either a single point or a filled disk
//   - [Step]: one explicit finite-difference tick (injection, diffusion, cooling)
//   - [PositionAt]: the beam trajectory for a named [Pattern]
//   - [Measure] and [Tracker]: the smoothed heat radius around the beam
//
// # Example
//
//	g := heat.NewGrid(heat.DefaultParams())
//	src := heat.Source{}
//	for i := 1; i <= 100; i++ {
//	    t := float64(i) * g.Params().TimeStep
//	    pos, _ := heat.PositionAt(t, heat.PatternCircle, g.Center())
//	    src.Position = heat.Round(pos)
//	    heat.Step(g, src)
//	}
//
// # Stability
//
// The scheme is explicit. Keeping DiffusionRate*TimeStep small enough for the
// scheme to stay bounded is the caller's job; nothing here adapts the step.
package heat
