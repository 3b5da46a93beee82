package rootfind

import "errors"

var (
	// ErrNonConvergent is returned when the iteration budget is exhausted or the step stalls.
	ErrNonConvergent = errors.New("rootfind: did not converge")
	// ErrSingularJacobian is returned when a Newton step meets a (near) singular Jacobian.
	ErrSingularJacobian = errors.New("rootfind: singular jacobian")
	// ErrDimensionMismatch is returned when len(x0) differs from the field dimension.
	ErrDimensionMismatch = errors.New("rootfind: dimension mismatch")
	// ErrNonFinite is returned when f produces NaN or Inf at the starting point.
	ErrNonFinite = errors.New("rootfind: non-finite residual")
)
