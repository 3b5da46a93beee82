package ode

import "errors"

var (
	// ErrInvalidTimes is returned for fewer than one output time or times that are not strictly monotone.
	ErrInvalidTimes = errors.New("ode: invalid output times")
	// ErrDimensionMismatch is returned when len(x0) differs from the field dimension.
	ErrDimensionMismatch = errors.New("ode: dimension mismatch")
	// ErrStepLimit is returned when MaxSteps is exhausted.
	ErrStepLimit = errors.New("ode: step limit reached")
	// ErrStepUnderflow is returned when the adaptive step shrinks below MinStep.
	ErrStepUnderflow = errors.New("ode: step size underflow")
	// ErrNonFinite is returned when the state becomes NaN or Inf.
	ErrNonFinite = errors.New("ode: non-finite state")
)
