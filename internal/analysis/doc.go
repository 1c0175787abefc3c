// Package analysis characterises recorded beam runs.
//
//   - [PowerSpectrum]: magnitude spectrum of a sampled series
//   - [DominantPeriod]: strongest periodic component, e.g. the beam's lap time
//   - [PathToASCII]: beam path drawn over the grid
//
// # Periodicity
//
// A circling beam repeats every 2π/ω seconds; the column history shows it:
//
//	period, ok := analysis.DominantPeriod(ys, dt)
//	if ok {
//	    fmt.Printf("lap time %.2fs\n", period)
//	}
package analysis
