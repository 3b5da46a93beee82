package topology

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cellflow/matrix"
)

// Kind is the stability class of a fixed point.
type Kind int

const (
	// Unknown means the Jacobian was missing or could not be decomposed.
	Unknown Kind = iota
	// Stable means every eigenvalue has a negative real part.
	Stable
	// Saddle means the point is not stable and at least one real part is negative.
	Saddle
	// Unstable means no eigenvalue has a negative real part.
	Unstable
)

// UnknownCode is the Code of an Unknown point.
const UnknownCode = 2

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Stable:
		return "stable"
	case Saddle:
		return "saddle"
	case Unstable:
		return "unstable"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Code maps Stable, Saddle and Unstable to −1, 0 and 1; Unknown maps to UnknownCode.
func (k Kind) Code() int {
	switch k {
	case Stable:
		return -1
	case Saddle:
		return 0
	case Unstable:
		return 1
	default:
		return UnknownCode
	}
}

// ClassifyEigenvalues applies the strict rule: stable iff all Re(w) < 0,
// saddle iff not stable and some Re(w) < 0, unstable otherwise. A zero real
// part counts as not negative. An empty spectrum is Unknown.
func ClassifyEigenvalues(w []complex128) Kind {
	if len(w) == 0 {
		return Unknown
	}
	neg := 0
	for _, v := range w {
		if real(v) < 0 {
			neg++
		}
	}
	switch {
	case neg == len(w):
		return Stable
	case neg > 0:
		return Saddle
	default:
		return Unstable
	}
}

// Classify decomposes J and classifies its spectrum. A nil or non-finite J
// or a failed decomposition yields Unknown and an error wrapping
// ErrSingularJacobian.
func Classify(J *matrix.Dense) (Kind, []complex128, error) {
	if J == nil {
		return Unknown, nil, fmt.Errorf("Classify: nil jacobian: %w", ErrSingularJacobian)
	}
	for _, v := range J.RawData() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Unknown, nil, fmt.Errorf("Classify: non-finite jacobian: %w", ErrSingularJacobian)
		}
	}
	eig, err := matrix.Eigen(J, false)
	if err != nil {
		return Unknown, nil, fmt.Errorf("Classify: %v: %w", err, ErrSingularJacobian)
	}
	return ClassifyEigenvalues(eig.Values), eig.Values, nil
}
