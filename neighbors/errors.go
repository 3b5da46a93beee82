package neighbors

import "errors"

var (
	// ErrEmptyNeighborhood is returned when k < 1, k exceeds the number of
	// available points, or a query yields fewer points than required.
	ErrEmptyNeighborhood = errors.New("neighbors: empty neighborhood")

	// ErrDimensionMismatch is returned when a query point or an index row
	// disagrees with the cloud shape.
	ErrDimensionMismatch = errors.New("neighbors: dimension mismatch")

	// ErrEmptyCloud is returned for a nil or zero-row point cloud.
	ErrEmptyCloud = errors.New("neighbors: empty point cloud")
)
