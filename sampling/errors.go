package sampling

import "errors"

var (
	// ErrInvalidWeights is returned when weights are empty, negative or non-finite.
	ErrInvalidWeights = errors.New("sampling: invalid weights")

	// ErrSampleSize is returned when more items are requested than can be drawn.
	ErrSampleSize = errors.New("sampling: sample size out of range")

	// ErrDimensionMismatch is returned when domain bounds have different lengths
	// or a lower bound exceeds its upper bound.
	ErrDimensionMismatch = errors.New("sampling: dimension mismatch")
)
