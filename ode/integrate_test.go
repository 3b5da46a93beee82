package ode_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/cellflow/ode"
	"github.com/katalvlaran/cellflow/vectorfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	decay = vectorfield.Func{N: 1, F: func(dst, x []float64) { dst[0] = -x[0] }}
	// rotation is x' = y, y' = −x; from (1, 0) the solution is (cos t, −sin t).
	rotation = vectorfield.Func{N: 2, F: func(dst, x []float64) {
		dst[0] = x[1]
		dst[1] = -x[0]
	}}
)

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func TestIntegrate_Methods(t *testing.T) {
	rk4 := ode.DefaultOptions()
	rk4.Method = ode.RK4
	cases := []struct {
		name string
		opts ode.Options
		tol  float64
	}{
		{"dopri5", ode.DefaultOptions(), 1e-5},
		{"rk4", rk4, 1e-7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.opts.Method.String())
			times := linspace(0, 2*math.Pi, 9)
			out, err := ode.Integrate(rotation, []float64{1, 0}, times, tc.opts)
			require.NoError(t, err)
			require.Equal(t, len(times), out.Rows())
			for i, tt := range times {
				x, _ := out.At(i, 0)
				y, _ := out.At(i, 1)
				assert.InDelta(t, math.Cos(tt), x, tc.tol, "t=%g", tt)
				assert.InDelta(t, -math.Sin(tt), y, tc.tol, "t=%g", tt)
			}
		})
	}
}

func TestIntegrate_Decay(t *testing.T) {
	out, err := ode.Integrate(decay, []float64{1}, []float64{0, 0.5, 1, 3}, ode.DefaultOptions())
	require.NoError(t, err)
	for i, tt := range []float64{0, 0.5, 1, 3} {
		v, _ := out.At(i, 0)
		assert.InDelta(t, math.Exp(-tt), v, 1e-6)
	}
}

func TestIntegrate_Backward(t *testing.T) {
	out, err := ode.Integrate(decay, []float64{1}, []float64{0, -1}, ode.DefaultOptions())
	require.NoError(t, err)
	v, _ := out.At(1, 0)
	assert.InDelta(t, math.E, v, 1e-5)
}

func TestIntegrate_SinglePoint(t *testing.T) {
	out, err := ode.Integrate(decay, []float64{4}, []float64{7}, ode.DefaultOptions())
	require.NoError(t, err)
	v, _ := out.At(0, 0)
	assert.Equal(t, 4.0, v)
}

func TestIntegrate_Errors(t *testing.T) {
	_, err := ode.Integrate(decay, []float64{1, 2}, []float64{0, 1}, ode.DefaultOptions())
	assert.ErrorIs(t, err, ode.ErrDimensionMismatch)

	_, err = ode.Integrate(decay, []float64{1}, nil, ode.DefaultOptions())
	assert.ErrorIs(t, err, ode.ErrInvalidTimes)
	_, err = ode.Integrate(decay, []float64{1}, []float64{0, 1, 1}, ode.DefaultOptions())
	assert.ErrorIs(t, err, ode.ErrInvalidTimes)

	o := ode.DefaultOptions()
	o.Method = ode.RK4
	o.Step = 0.1
	o.MaxSteps = 15
	out, err := ode.Integrate(decay, []float64{1}, []float64{0, 1, 2}, o)
	assert.ErrorIs(t, err, ode.ErrStepLimit)
	require.NotNil(t, out)
	assert.Equal(t, 2, out.Rows(), "rows up to the last reached time")
}

func TestIntegrate_BlowUp(t *testing.T) {
	quad := vectorfield.Func{N: 1, F: func(dst, x []float64) { dst[0] = x[0] * x[0] }}
	o := ode.DefaultOptions()
	o.MaxSteps = 5000
	out, err := ode.Integrate(quad, []float64{1}, []float64{0, 0.5, 2}, o)
	require.Error(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 2, out.Rows())
	v, _ := out.At(1, 0)
	assert.InDelta(t, 2.0, v, 1e-5)
}

func TestIntegrate_StepGrowth(t *testing.T) {
	drift := vectorfield.Func{N: 1, F: func(dst, _ []float64) { dst[0] = 1 }}
	o := ode.DefaultOptions()
	o.InitialStep = 1e-3
	o.MaxSteps = 12
	out, err := ode.Integrate(drift, []float64{0}, []float64{0, 1000}, o)
	require.NoError(t, err, "an exact step grows by the maximum factor")
	v, _ := out.At(1, 0)
	assert.InDelta(t, 1000.0, v, 1e-9)
}
