package vectorfield

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/cellflow/matrix"
)

// KernelField is a Gaussian radial-basis reconstruction of a vector field.
// Note: Eval is safe for concurrent use; the receiver is read-only after construction.
type KernelField struct {
	x, c *matrix.Dense
	beta float64
}

// NewKernelField validates and wraps the centres X (n×d), coefficients C (n×d)
// and bandwidth beta.
func NewKernelField(X, C *matrix.Dense, beta float64) (*KernelField, error) {
	if X == nil || C == nil || X.Rows() == 0 {
		return nil, fmt.Errorf("NewKernelField: %w", ErrDimensionMismatch)
	}
	if X.Rows() != C.Rows() || X.Cols() != C.Cols() {
		return nil, fmt.Errorf("NewKernelField: X %dx%d, C %dx%d: %w",
			X.Rows(), X.Cols(), C.Rows(), C.Cols(), ErrDimensionMismatch)
	}
	if !(beta > 0) || math.IsInf(beta, 0) {
		return nil, fmt.Errorf("NewKernelField: beta=%g: %w", beta, ErrInvalidBandwidth)
	}
	return &KernelField{x: X, c: C, beta: beta}, nil
}

// Dim returns the ambient dimension.
func (k *KernelField) Dim() int { return k.x.Cols() }

// Centers returns the number of kernel centres.
func (k *KernelField) Centers() int { return k.x.Rows() }

func (k *KernelField) weight(x, xj []float64) float64 {
	var acc, d float64
	for b := range x {
		d = x[b] - xj[b]
		acc += d * d
	}
	return math.Exp(-k.beta * acc)
}

// Eval writes f(x) into dst.
func (k *KernelField) Eval(dst, x []float64) {
	for a := range dst {
		dst[a] = 0
	}
	for j := 0; j < k.x.Rows(); j++ {
		w := k.weight(x, k.x.RawRow(j))
		cj := k.c.RawRow(j)
		for a := range dst {
			dst[a] += w * cj[a]
		}
	}
}

// JacobianInto writes ∂f_a/∂x_b = Σ_j −2β w_j C_ja (x_b − X_jb) into dst.
func (k *KernelField) JacobianInto(dst *mat.Dense, x []float64) {
	d := k.Dim()
	dst.Zero()
	for j := 0; j < k.x.Rows(); j++ {
		xj := k.x.RawRow(j)
		s := -2 * k.beta * k.weight(x, xj)
		cj := k.c.RawRow(j)
		for a := 0; a < d; a++ {
			for b := 0; b < d; b++ {
				dst.Set(a, b, dst.At(a, b)+s*cj[a]*(x[b]-xj[b]))
			}
		}
	}
}
