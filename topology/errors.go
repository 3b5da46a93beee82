package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when seeds, domains, jacobians or the field disagree in dimension.
	ErrDimensionMismatch = errors.New("topology: dimension mismatch")
	// ErrSingularJacobian marks a fixed point whose Jacobian could not be decomposed.
	ErrSingularJacobian = errors.New("topology: singular jacobian")
	// ErrInvalidDomain is returned for an interval with Lo > Hi or non-finite bounds.
	ErrInvalidDomain = errors.New("topology: invalid domain")
	// ErrInvalidStep is returned for non-positive arclength, step or horizon parameters.
	ErrInvalidStep = errors.New("topology: invalid step")
)

// SeedFailure records a seed whose root finding failed.
type SeedFailure struct {
	Index int
	Seed  []float64
	Err   error
}

// Error implements error.
func (e *SeedFailure) Error() string {
	return fmt.Sprintf("topology: seed %d %v: %v", e.Index, e.Seed, e.Err)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *SeedFailure) Unwrap() error { return e.Err }
