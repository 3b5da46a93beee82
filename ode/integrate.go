package ode

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/vectorfield"
)

// Integrate solves dx/dt = f(x) with x(times[0]) = x0 and returns one row per
// output time. times must be strictly increasing or strictly decreasing.
//
// On ErrStepLimit, ErrStepUnderflow or ErrNonFinite the rows already reached
// are returned together with the error; the remaining rows are absent.
func Integrate(f vectorfield.Field, x0 []float64, times []float64, opts Options) (*matrix.Dense, error) {
	d := f.Dim()
	if len(x0) != d {
		return nil, fmt.Errorf("Integrate: len(x0)=%d, dim=%d: %w", len(x0), d, ErrDimensionMismatch)
	}
	if err := checkTimes(times); err != nil {
		return nil, fmt.Errorf("Integrate: %w", err)
	}
	o := opts.normalized()

	rows := [][]float64{append([]float64(nil), x0...)}
	var err error
	switch o.Method {
	case RK4:
		rows, err = integrateRK4(f, rows, times, o)
	case DormandPrince:
		rows, err = integrateDopri(f, rows, times, o)
	default:
		return nil, fmt.Errorf("Integrate: unknown method %v", o.Method)
	}
	out, merr := matrix.NewDenseFromRows(rows)
	if merr != nil {
		return nil, fmt.Errorf("Integrate: %w", merr)
	}
	if err != nil {
		return out, fmt.Errorf("Integrate: %w", err)
	}
	return out, nil
}

func checkTimes(times []float64) error {
	if len(times) == 0 {
		return ErrInvalidTimes
	}
	if len(times) == 1 {
		return nil
	}
	dir := math.Copysign(1, times[1]-times[0])
	for i := 1; i < len(times); i++ {
		if !((times[i]-times[i-1])*dir > 0) {
			return fmt.Errorf("times[%d]=%g after %g: %w", i, times[i], times[i-1], ErrInvalidTimes)
		}
	}
	return nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func integrateRK4(f vectorfield.Field, rows [][]float64, times []float64, o Options) ([][]float64, error) {
	if len(times) == 1 {
		return rows, nil
	}
	span := math.Abs(times[len(times)-1] - times[0])
	h := o.Step
	if h <= 0 {
		h = span / DefaultSubsteps
	}
	d := f.Dim()
	x := append([]float64(nil), rows[0]...)
	k1, k2, k3, k4, tmp := make([]float64, d), make([]float64, d), make([]float64, d), make([]float64, d), make([]float64, d)
	steps := 0
	for i := 1; i < len(times); i++ {
		dt := times[i] - times[i-1]
		n := int(math.Ceil(math.Abs(dt) / h))
		if n < 1 {
			n = 1
		}
		hs := dt / float64(n)
		for s := 0; s < n; s++ {
			if steps >= o.MaxSteps {
				return rows, ErrStepLimit
			}
			steps++
			f.Eval(k1, x)
			floats.AddScaledTo(tmp, x, hs/2, k1)
			f.Eval(k2, tmp)
			floats.AddScaledTo(tmp, x, hs/2, k2)
			f.Eval(k3, tmp)
			floats.AddScaledTo(tmp, x, hs, k3)
			f.Eval(k4, tmp)
			for j := range x {
				x[j] += hs / 6 * (k1[j] + 2*k2[j] + 2*k3[j] + k4[j])
			}
			if !allFinite(x) {
				return rows, ErrNonFinite
			}
		}
		rows = append(rows, append([]float64(nil), x...))
	}
	return rows, nil
}
