package kernel_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/cellflow/kernel"
	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)
	return m
}

func eye(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewIdentity(n)
	require.NoError(t, err)
	return m
}

func TestDrift_FavoursVelocityDirection(t *testing.T) {
	x := []float64{0, 0}
	v := []float64{1, 0}
	X := dense(t, [][]float64{{0, 0}, {1, 0}, {-1, 0}, {0, 1}})

	w, err := kernel.Drift(x, v, X, eye(t, 2))
	require.NoError(t, err)
	require.Len(t, w, 4)
	assert.InDelta(t, 1.0, w[1], 1e-15, "neighbour exactly at x+v")
	assert.InDelta(t, math.Exp(-0.25), w[0], 1e-15)
	assert.InDelta(t, math.Exp(-1), w[2], 1e-15)
	assert.InDelta(t, math.Exp(-0.5), w[3], 1e-15)
	assert.Greater(t, w[1], w[3])
}

func TestDrift_Errors(t *testing.T) {
	X := dense(t, [][]float64{{0, 0}})
	_, err := kernel.Drift([]float64{0}, []float64{0, 0}, X, eye(t, 2))
	assert.ErrorIs(t, err, kernel.ErrDimensionMismatch)
	_, err = kernel.Drift([]float64{0, 0}, []float64{0, 0}, X, eye(t, 3))
	assert.ErrorIs(t, err, kernel.ErrDimensionMismatch)
	_, err = kernel.Drift([]float64{0, 0}, []float64{0, 0}, nil, eye(t, 2))
	assert.ErrorIs(t, err, kernel.ErrEmptyNeighborhood)
}

func TestDensity(t *testing.T) {
	X := dense(t, [][]float64{{0, 0}, {2, 0}})
	w, err := kernel.Density([]float64{0, 0}, X, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w[0])
	assert.InDelta(t, math.Exp(-0.5), w[1], 1e-15)

	_, err = kernel.Density([]float64{0, 0}, X, 0)
	assert.ErrorIs(t, err, kernel.ErrInvalidBandwidth)
}

func TestLocalDrift_EstimatesTau(t *testing.T) {
	// Neighbours strung along v at distance 2 ahead: τ = r/p = 2/1 for the
	// forward neighbours that clear the 70th percentile.
	x := []float64{0, 0}
	v := []float64{1, 0}
	X := dense(t, [][]float64{{0, 0}, {2, 0}, {-1, 0}, {0, 1}, {0, -1}})

	loc, err := kernel.LocalDrift(x, v, X, eye(t, 2))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, loc.Tau, 1e-12)
	require.NotNil(t, loc.InvS)
	s, _ := loc.InvS.At(0, 0)
	assert.InDelta(t, 0.5, s, 1e-12)
	assert.InDelta(t, 1.0, loc.Weights[1], 1e-12, "neighbour at x+τv")
}

func TestLocalDrift_FallbackAndCap(t *testing.T) {
	x := []float64{0, 0}
	// Nothing lies ahead of v: fallback τ.
	loc, err := kernel.LocalDrift(x, []float64{1, 0}, dense(t, [][]float64{{0, 0}, {-1, 0}}), eye(t, 2))
	require.NoError(t, err)
	assert.Equal(t, kernel.FallbackTau, loc.Tau)

	// Tiny velocity with a far neighbour: τ is capped.
	loc, err = kernel.LocalDrift(x, []float64{1e-6, 0}, dense(t, [][]float64{{0, 0}, {1, 0}}), eye(t, 2))
	require.NoError(t, err)
	assert.Equal(t, kernel.MaxTau, loc.Tau)
}

func TestLocalDrift_ZeroSpeed(t *testing.T) {
	loc, err := kernel.LocalDrift([]float64{0, 0}, []float64{0, 0}, dense(t, [][]float64{{0, 0}, {1, 1}}), eye(t, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, loc.Weights)
	assert.Nil(t, loc.InvS)
}

func BenchmarkDrift(b *testing.B) {
	rows := make([][]float64, 200)
	for i := range rows {
		rows[i] = []float64{float64(i) * 0.01, float64(i%7) * 0.1, float64(i%3) * 0.2}
	}
	X, _ := matrix.NewDenseFromRows(rows)
	invS, _ := matrix.NewIdentity(3)
	x, v := []float64{0, 0, 0}, []float64{1, 0.5, 0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = kernel.Drift(x, v, X, invS)
	}
}
