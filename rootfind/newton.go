package rootfind

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/vectorfield"
)

// Result is the outcome of Solve.
type Result struct {
	// X is the final iterate.
	X []float64
	// F is f(X).
	F []float64
	// Norm is ‖F‖₂.
	Norm float64
	// Iterations is the number of Newton steps taken.
	Iterations int
	// Q and R factor the Jacobian at the last linearisation point: J ≈ QᵀR.
	Q, R *matrix.Dense
}

// Jacobian reconstructs QᵀR. It returns nil when no factorization was made.
func (r *Result) Jacobian() *matrix.Dense {
	if r.Q == nil || r.R == nil {
		return nil
	}
	qt, err := matrix.Transpose(r.Q)
	if err != nil {
		return nil
	}
	j, err := matrix.Mul(qt, r.R)
	if err != nil {
		return nil
	}
	return j
}

// Solve runs damped Newton from x0.
// Implementation:
//   - Stage 1: Evaluate f(x0); stop at once when ‖f‖ ≤ FTol.
//   - Stage 2: Factor J(x) = QᵀR and solve J·δ = −f; a singular R ends with ErrSingularJacobian.
//   - Stage 3: Halve λ from 1 until ‖f(x+λδ)‖ < ‖f(x)‖ or λ < MinDamping, then take the step.
//   - Stage 4: Stop on ‖f‖ ≤ FTol, on a stalled step, or after MaxIter steps.
//
// A non-nil Result accompanies ErrNonConvergent and ErrSingularJacobian.
func Solve(f vectorfield.Field, x0 []float64, opts Options) (*Result, error) {
	n := f.Dim()
	if len(x0) != n {
		return nil, fmt.Errorf("Solve: len(x0)=%d, dim=%d: %w", len(x0), n, ErrDimensionMismatch)
	}
	o := opts.normalized()

	x := append([]float64(nil), x0...)
	fx := vectorfield.At(f, x)
	norm := floats.Norm(fx, 2)
	if !finite(norm) {
		return nil, fmt.Errorf("Solve: %w", ErrNonFinite)
	}
	res := &Result{X: x, F: fx, Norm: norm}
	if norm <= o.FTol {
		return res, res.factor(f, o)
	}

	trial := make([]float64, n)
	ft := make([]float64, n)
	for res.Iterations < o.MaxIter {
		if err := res.factor(f, o); err != nil {
			return res, err
		}
		rhs := make([]float64, n)
		floats.ScaleTo(rhs, -1, res.F)
		step, err := matrix.SolveQR(res.Q, res.R, rhs, o.RCond)
		if err != nil {
			if errors.Is(err, matrix.ErrSingular) {
				return res, fmt.Errorf("Solve: iteration %d: %w", res.Iterations, ErrSingularJacobian)
			}
			return res, fmt.Errorf("Solve: %w", err)
		}

		lambda := 1.0
		var tn float64
		for {
			floats.AddScaledTo(trial, res.X, lambda, step)
			f.Eval(ft, trial)
			tn = floats.Norm(ft, 2)
			if finite(tn) && tn < res.Norm {
				break
			}
			if lambda/2 < o.MinDamping {
				break
			}
			lambda /= 2
		}
		res.Iterations++
		if !finite(tn) {
			return res, fmt.Errorf("Solve: iteration %d: %w", res.Iterations, ErrNonConvergent)
		}

		dx := lambda * floats.Norm(step, 2)
		copy(res.X, trial)
		copy(res.F, ft)
		res.Norm = tn
		if res.Norm <= o.FTol {
			return res, res.factor(f, o)
		}
		if dx <= o.XTol*(floats.Norm(res.X, 2)+o.XTol) {
			if res.Norm <= o.AcceptTol {
				return res, res.factor(f, o)
			}
			return res, fmt.Errorf("Solve: stalled at ‖f‖=%g: %w", res.Norm, ErrNonConvergent)
		}
	}
	return res, fmt.Errorf("Solve: %d iterations, ‖f‖=%g: %w", o.MaxIter, res.Norm, ErrNonConvergent)
}

// factor refreshes Q and R from the Jacobian at res.X.
func (r *Result) factor(f vectorfield.Field, o Options) error {
	J, err := vectorfield.Jacobian(f, r.X)
	if err != nil {
		return fmt.Errorf("Solve: jacobian: %w", err)
	}
	if r.Q, r.R, err = matrix.QR(J); err != nil {
		return fmt.Errorf("Solve: qr: %w", err)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
