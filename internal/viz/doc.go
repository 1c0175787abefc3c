// Package viz provides the terminal front end for heat beam simulations.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that advances a simulator once per tick
//   - [Heatmap]: half-block colour rendering of the temperature field
//   - Theme selection with 5 built-in colour schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to ambient
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Q     - Quit
//
// # Recording
//
// The G key records the field as a GIF animation, written to heatsim.gif
// unless another path is set with [Model.WithGIFPath].
package viz
