// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"sort"
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
)

func TestMul_DenseAndFallbackAgree(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := mustDense(t, [][]float64{{7, 8}, {9, 10}, {11, 12}})
	want := mustDense(t, [][]float64{{58, 64}, {139, 154}})

	got, err := matrix.Mul(a, b)
	require.NoError(t, err)
	requireClose(t, want, got, tol)

	got, err = matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)
	requireClose(t, want, got, tol)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Mul(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestMatVecAndTranspose(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	y, err := matrix.MatVec(a, []float64{1, -1})
	require.NoError(t, err)
	require.Equal(t, []float64{-1, -1, -1}, y)

	_, err = matrix.MatVec(a, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	requireClose(t, mustDense(t, [][]float64{{1, 3, 5}, {2, 4, 6}}), at, 0)
}

func TestColSums(t *testing.T) {
	a := mustDense(t, [][]float64{{0.5, 1}, {0.5, 0}})
	s, err := matrix.ColSums(a)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1}, s)

	s, err = matrix.ColSums(matrix.DenseToCSC(a))
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1}, s)
}

func TestLUAndInverse(t *testing.T) {
	a := mustDense(t, [][]float64{{4, 3}, {6, 3}})
	l, u, err := matrix.LU(a)
	require.NoError(t, err)
	prod, err := matrix.Mul(l, u)
	require.NoError(t, err)
	requireClose(t, a, prod, tol)

	inv, err := matrix.Inverse(a)
	require.NoError(t, err)
	id, err := matrix.Mul(a, inv)
	require.NoError(t, err)
	eye, _ := matrix.NewIdentity(2)
	requireClose(t, eye, id, 1e-12)

	_, err = matrix.Inverse(mustDense(t, [][]float64{{1, 2}, {2, 4}}))
	require.ErrorIs(t, err, matrix.ErrSingular)
}

func TestQR_ReconstructsAndSolves(t *testing.T) {
	a := mustDense(t, [][]float64{{2, -1, 0}, {1, 3, 1}, {0, 1, 4}})
	q, r, err := matrix.QR(a)
	require.NoError(t, err)

	qt, err := matrix.Transpose(q)
	require.NoError(t, err)
	back, err := matrix.Mul(qt, r)
	require.NoError(t, err)
	requireClose(t, a, back, 1e-12)

	for i := 1; i < 3; i++ {
		for j := 0; j < i; j++ {
			v, _ := r.At(i, j)
			require.Zero(t, v)
		}
	}

	want := []float64{1, -2, 0.5}
	b, err := matrix.MatVec(a, want)
	require.NoError(t, err)
	x, err := matrix.SolveQR(q, r, b, 1e-12)
	require.NoError(t, err)
	require.InDeltaSlice(t, want, x, 1e-12)
}

func TestSolveQR_Singular(t *testing.T) {
	q, r, err := matrix.QR(mustDense(t, [][]float64{{1, 2}, {2, 4}}))
	require.NoError(t, err)
	_, err = matrix.SolveQR(q, r, []float64{1, 1}, 1e-10)
	require.ErrorIs(t, err, matrix.ErrSingular)
}

func TestEigenSym(t *testing.T) {
	a := mustDense(t, [][]float64{{2, 1}, {1, 2}})
	vals, vecs, err := matrix.EigenSym(a, 1e-12, 100)
	require.NoError(t, err)
	sort.Float64s(vals)
	require.InDeltaSlice(t, []float64{1, 3}, vals, 1e-12)

	// Columns are unit length.
	for j := 0; j < 2; j++ {
		v0, _ := vecs.At(0, j)
		v1, _ := vecs.At(1, j)
		require.InDelta(t, 1, math.Hypot(v0, v1), 1e-12)
	}

	_, _, err = matrix.EigenSym(mustDense(t, [][]float64{{1, 2}, {0, 1}}), 1e-12, 10)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)
}
