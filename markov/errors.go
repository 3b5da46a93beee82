package markov

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateKernel indicates that every transition weight of a state is
	// zero or non-finite, so no distribution can be formed.
	ErrDegenerateKernel = errors.New("markov: degenerate kernel")

	// ErrEmptyCloud is returned for a nil or zero-row point cloud.
	ErrEmptyCloud = errors.New("markov: empty point cloud")

	// ErrDimensionMismatch is returned when points, velocities, diffusion
	// inputs, graphs or vectors disagree in shape.
	ErrDimensionMismatch = errors.New("markov: dimension mismatch")

	// ErrNotFit is returned by analyses on a chain without a transition matrix.
	ErrNotFit = errors.New("markov: chain is not fit")

	// ErrInvalidPower is returned for a propagation power below 1, or above 1 on a generator.
	ErrInvalidPower = errors.New("markov: invalid propagation power")

	// ErrInvalidEmbedding is returned when the requested embedding needs more
	// eigenpairs than the chain has states.
	ErrInvalidEmbedding = errors.New("markov: embedding dimension out of range")

	// ErrSingularBasis is returned when the eigenvector basis cannot be inverted.
	ErrSingularBasis = errors.New("markov: eigenvector basis is singular")

	// ErrNoStationary is returned when no stationary vector can be extracted.
	ErrNoStationary = errors.New("markov: no stationary distribution")

	// ErrMissingDiffusion is returned when the kernel method has no diffusion matrix.
	ErrMissingDiffusion = errors.New("markov: diffusion matrix required")

	// ErrIndefiniteDiffusion is returned when the diffusion matrix has an
	// eigenvalue that is not strictly positive.
	ErrIndefiniteDiffusion = errors.New("markov: diffusion matrix is not positive definite")
)

// StateError reports a failure tied to one state of the chain.
type StateError struct {
	State int
	Err   error
}

// Error implements error.
func (e *StateError) Error() string {
	return fmt.Sprintf("markov: state %d: %v", e.State, e.Err)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *StateError) Unwrap() error { return e.Err }
