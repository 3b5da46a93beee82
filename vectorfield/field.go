package vectorfield

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/cellflow/matrix"
)

// Field maps R^d to R^d. Eval writes f(x) into dst; both have length Dim().
// Implementations must not retain dst or x, and Eval may be called from
// several goroutines at once.
type Field interface {
	Dim() int
	Eval(dst, x []float64)
}

// Differentiable is a Field with an analytic Jacobian; dst is Dim()×Dim()
// with dst(a, b) = ∂f_a/∂x_b.
type Differentiable interface {
	Field
	JacobianInto(dst *mat.Dense, x []float64)
}

// Func adapts a plain function to Field.
type Func struct {
	N int
	F func(dst, x []float64)
}

// Dim returns N.
func (f Func) Dim() int { return f.N }

// Eval calls F.
func (f Func) Eval(dst, x []float64) { f.F(dst, x) }

// At evaluates f at x into a fresh slice.
func At(f Field, x []float64) []float64 {
	out := make([]float64, f.Dim())
	f.Eval(out, x)
	return out
}

// JacobianAt returns the Jacobian of f at x, analytic when f is Differentiable.
func JacobianAt(f Field, x []float64) *mat.Dense {
	d := f.Dim()
	dst := mat.NewDense(d, d, nil)
	if df, ok := f.(Differentiable); ok {
		df.JacobianInto(dst, x)
		return dst
	}
	fd.Jacobian(dst, f.Eval, x, &fd.JacobianSettings{Formula: fd.Central})
	return dst
}

// Jacobian is JacobianAt converted to a matrix.Dense.
func Jacobian(f Field, x []float64) (*matrix.Dense, error) {
	return matrix.FromGonum(JacobianAt(f, x))
}

// Scalar is one real-valued component of a field.
type Scalar func(x []float64) float64

// Component returns x ↦ f(x)[i]. It panics if i is out of range. The result
// reuses one buffer and must not be called concurrently.
func Component(f Field, i int) Scalar {
	if i < 0 || i >= f.Dim() {
		panic("vectorfield: component out of range")
	}
	buf := make([]float64, f.Dim())
	return func(x []float64) float64 {
		f.Eval(buf, x)
		return buf[i]
	}
}

// Negate returns −f. The result is Differentiable when f is.
func Negate(f Field) Field {
	if df, ok := f.(Differentiable); ok {
		return negatedDiff{negated{df}, df}
	}
	return negated{f}
}

type negated struct{ f Field }

func (n negated) Dim() int { return n.f.Dim() }

func (n negated) Eval(dst, x []float64) {
	n.f.Eval(dst, x)
	for i := range dst {
		dst[i] = -dst[i]
	}
}

type negatedDiff struct {
	negated
	df Differentiable
}

func (n negatedDiff) JacobianInto(dst *mat.Dense, x []float64) {
	n.df.JacobianInto(dst, x)
	dst.Scale(-1, dst)
}
