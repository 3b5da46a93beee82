package kernel

import "errors"

var (
	// ErrDimensionMismatch is returned when x, v, the neighbourhood columns
	// and the inverse bandwidth disagree on dimensionality.
	ErrDimensionMismatch = errors.New("kernel: dimension mismatch")

	// ErrEmptyNeighborhood is returned for a neighbourhood with no rows.
	ErrEmptyNeighborhood = errors.New("kernel: empty neighborhood")

	// ErrInvalidBandwidth is returned for a non-positive or non-finite inverse bandwidth.
	ErrInvalidBandwidth = errors.New("kernel: invalid bandwidth")
)
