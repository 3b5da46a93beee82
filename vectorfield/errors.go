package vectorfield

import "errors"

var (
	// ErrDimensionMismatch is returned when centres, coefficients or points disagree in shape.
	ErrDimensionMismatch = errors.New("vectorfield: dimension mismatch")
	// ErrInvalidBandwidth is returned for a non-positive or non-finite β.
	ErrInvalidBandwidth = errors.New("vectorfield: invalid bandwidth")
)
