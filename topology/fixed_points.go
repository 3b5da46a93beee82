package topology

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/matrix"
)

// DefaultTolerance is the distance under which two fixed points are merged.
const DefaultTolerance = 1e-4

// FixedPoint is a located zero of a vector field.
type FixedPoint struct {
	X []float64
	// J is the Jacobian at X, reconstructed from the solver's QR factors.
	J *matrix.Dense
	// Residual is f(X).
	Residual []float64
	// Eigenvalues of J, nil when Kind is Unknown.
	Eigenvalues []complex128
	Kind        Kind
}

// newFixedPoint classifies J; a classification failure leaves Kind Unknown.
func newFixedPoint(x, residual []float64, J *matrix.Dense) FixedPoint {
	fp := FixedPoint{X: x, J: J, Residual: residual}
	fp.Kind, fp.Eigenvalues, _ = Classify(J)
	return fp
}

// FixedPointSet accumulates fixed points, skipping any candidate within the
// tolerance of a point already held. Adding the same points twice is a no-op.
// Note: not safe for concurrent mutation.
type FixedPointSet struct {
	points []FixedPoint
	tol    float64
}

// NewFixedPointSet returns an empty set. A negative tol disables merging.
func NewFixedPointSet(tol float64) *FixedPointSet {
	return &FixedPointSet{tol: tol}
}

// Tolerance returns the merge distance.
func (s *FixedPointSet) Tolerance() float64 { return s.tol }

// Len returns the number of points.
func (s *FixedPointSet) Len() int { return len(s.points) }

// Add inserts the given points in order and returns how many were new.
func (s *FixedPointSet) Add(points ...FixedPoint) int {
	added := 0
	for _, p := range points {
		if s.tol >= 0 && s.near(p.X) {
			continue
		}
		s.points = append(s.points, p)
		added++
	}
	return added
}

func (s *FixedPointSet) near(x []float64) bool {
	for _, q := range s.points {
		if floats.Distance(x, q.X, 2) <= s.tol {
			return true
		}
	}
	return false
}

// Points returns a copy of the stored points.
func (s *FixedPointSet) Points() []FixedPoint {
	return append([]FixedPoint(nil), s.points...)
}

// X returns the coordinates of every point.
func (s *FixedPointSet) X() [][]float64 {
	out := make([][]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.X
	}
	return out
}

// Jacobians returns the Jacobian of every point.
func (s *FixedPointSet) Jacobians() []*matrix.Dense {
	out := make([]*matrix.Dense, len(s.points))
	for i, p := range s.points {
		out[i] = p.J
	}
	return out
}

// Kinds returns the stability class of every point.
func (s *FixedPointSet) Kinds() []Kind {
	out := make([]Kind, len(s.points))
	for i, p := range s.points {
		out[i] = p.Kind
	}
	return out
}

// Filter returns the points of the given kind.
func (s *FixedPointSet) Filter(k Kind) []FixedPoint {
	var out []FixedPoint
	for _, p := range s.points {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

// Nearest returns the stored point closest to x.
func (s *FixedPointSet) Nearest(x []float64) (FixedPoint, bool) {
	best, bd := -1, math.Inf(1)
	for i, p := range s.points {
		if d := floats.Distance(x, p.X, 2); d < bd {
			best, bd = i, d
		}
	}
	if best < 0 {
		return FixedPoint{}, false
	}
	return s.points[best], true
}

// RemoveRedundantPoints keeps the first of every group of points closer than
// tol to an already kept point. discard[i] reports whether X[i] was dropped.
func RemoveRedundantPoints(X [][]float64, tol float64) (kept [][]float64, discard []bool) {
	discard = make([]bool, len(X))
	for i, x := range X {
		for _, y := range kept {
			if floats.Distance(x, y, 2) < tol {
				discard[i] = true
				break
			}
		}
		if !discard[i] {
			kept = append(kept, x)
		}
	}
	return kept, discard
}
