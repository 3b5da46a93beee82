package kernel

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cellflow/matrix"
)

const (
	opDrift      = "Drift"
	opDensity    = "Density"
	opLocalDrift = "LocalDrift"
)

func check(op string, x []float64, X *matrix.Dense) error {
	if X == nil || X.Rows() == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyNeighborhood)
	}
	if len(x) != X.Cols() {
		return fmt.Errorf("%s: len(x)=%d, neighbourhood dim=%d: %w", op, len(x), X.Cols(), ErrDimensionMismatch)
	}
	return nil
}

// quadForm returns (u)ᵀ A (u) for a d×d row-major A.
func quadForm(a []float64, u []float64) float64 {
	d := len(u)
	var acc, row float64
	for i := 0; i < d; i++ {
		row = 0
		for j := 0; j < d; j++ {
			row += a[i*d+j] * u[j]
		}
		acc += u[i] * row
	}
	return acc
}

// Drift evaluates the drift kernel of (x, v) against every neighbour row of X.
//
// Errors:
//   - ErrEmptyNeighborhood, ErrDimensionMismatch (x, v, X columns or invS shape).
//
// Complexity:
//   - Time O(k*d²), Space O(k+d).
func Drift(x, v []float64, X, invS *matrix.Dense) ([]float64, error) {
	if err := check(opDrift, x, X); err != nil {
		return nil, err
	}
	d := len(x)
	if len(v) != d || invS == nil || invS.Rows() != d || invS.Cols() != d {
		return nil, fmt.Errorf("%s: %w", opDrift, ErrDimensionMismatch)
	}
	return drift(x, v, X, invS.RawData(), 1), nil
}

// drift scales the quadratic form by s so callers can fold a scalar factor into S⁻¹.
func drift(x, v []float64, X *matrix.Dense, invS []float64, s float64) []float64 {
	k, d := X.Rows(), len(x)
	out := make([]float64, k)
	u := make([]float64, d)
	var i, j int
	var row []float64
	for i = 0; i < k; i++ {
		row = X.RawRow(i)
		for j = 0; j < d; j++ {
			u[j] = row[j] - x[j] - v[j]
		}
		out[i] = math.Exp(-0.25 * s * quadForm(invS, u))
	}
	return out
}

// Density evaluates the isotropic density kernel with inverse bandwidth invEps.
//
// Errors:
//   - ErrEmptyNeighborhood, ErrDimensionMismatch, ErrInvalidBandwidth (invEps <= 0 or non-finite).
func Density(x []float64, X *matrix.Dense, invEps float64) ([]float64, error) {
	if err := check(opDensity, x, X); err != nil {
		return nil, err
	}
	if !(invEps > 0) || math.IsInf(invEps, 0) {
		return nil, fmt.Errorf("%s: inv_eps=%g: %w", opDensity, invEps, ErrInvalidBandwidth)
	}
	k, d := X.Rows(), len(x)
	out := make([]float64, k)
	var i, j int
	var acc, dj float64
	var row []float64
	for i = 0; i < k; i++ {
		row = X.RawRow(i)
		acc = 0
		for j = 0; j < d; j++ {
			dj = row[j] - x[j]
			acc += dj * dj
		}
		out[i] = math.Exp(-0.25 * invEps * acc)
	}
	return out, nil
}
