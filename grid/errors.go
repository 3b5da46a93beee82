package grid

import "errors"

var (
	// ErrEmptyCloud is returned for a nil or zero-row point cloud.
	ErrEmptyCloud = errors.New("grid: empty point cloud")
	// ErrDimensionMismatch is returned when points, velocities and grid sizes disagree.
	ErrDimensionMismatch = errors.New("grid: dimension mismatch")
	// ErrInvalidGrid is returned for fewer than two nodes along an axis or non-positive options.
	ErrInvalidGrid = errors.New("grid: invalid grid")
)
