package heat

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParams indicates a grid or run configuration that cannot be simulated.
	ErrInvalidParams = errors.New("heat: invalid parameters")

	// ErrUnknownPattern indicates a trajectory pattern name that is not registered.
	ErrUnknownPattern = errors.New("heat: unknown trajectory pattern")

	// ErrUnstable indicates the field diverged (NaN or Inf detected).
	ErrUnstable = errors.New("heat: simulation unstable (field diverged)")

	// ErrCanceled indicates the simulation was interrupted.
	ErrCanceled = errors.New("heat: simulation canceled")
)

// SimulationError wraps an error with the tick it occurred on.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
