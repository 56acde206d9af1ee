package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvariantViolation indicates a state outside its admissible bounds.
	// It aborts the run; no partial result is returned.
	ErrInvariantViolation = errors.New("sim: invariant violation")

	// ErrInvalidParameter indicates a malformed input detected before the
	// loop starts, such as a non-positive horizon or an inverted range.
	ErrInvalidParameter = errors.New("sim: invalid parameter")
)

// StepError wraps a hard failure with the step at which it happened.
type StepError struct {
	Step    int
	FXI     float64
	Delta   float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (fxi=%.6f, delta=%.6f): %v", e.Step, e.FXI, e.Delta, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// asInvariant makes sure a validation failure reported by a State matches
// ErrInvariantViolation under errors.Is.
func asInvariant(err error) error {
	if errors.Is(err, ErrInvariantViolation) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
}
