// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
)

func buildCSC(t *testing.T, r, c int, entries ...matrix.Entry) *matrix.CSC {
	t.Helper()
	b, err := matrix.NewBuilder(r, c)
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, b.Add(e.Row, e.Col, e.Val))
	}
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func TestBuilder_SumsDuplicatesDropsZeros(t *testing.T) {
	s := buildCSC(t, 3, 3,
		matrix.Entry{Row: 2, Col: 0, Val: 1},
		matrix.Entry{Row: 0, Col: 0, Val: 2},
		matrix.Entry{Row: 2, Col: 0, Val: 0.5},
		matrix.Entry{Row: 1, Col: 2, Val: 0},
	)
	require.Equal(t, 2, s.NNZ())
	v, err := s.At(2, 0)
	require.NoError(t, err)
	require.Equal(t, 1.5, v)

	rows, vals := s.Column(0)
	require.Equal(t, []int{0, 2}, rows)
	require.Equal(t, []float64{2, 1.5}, vals)

	rows, _ = s.Column(2)
	require.Empty(t, rows)
}

func TestBuilder_Errors(t *testing.T) {
	_, err := matrix.NewBuilder(0, 1)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	b, err := matrix.NewBuilder(2, 2)
	require.NoError(t, err)
	require.ErrorIs(t, b.Add(2, 0, 1), matrix.ErrOutOfRange)
	require.ErrorIs(t, b.AddColumn(0, []int{0}, nil), matrix.ErrDimensionMismatch)
}

func TestCSC_ReadOnlyAndProducts(t *testing.T) {
	d := mustDense(t, [][]float64{{0, 0.5}, {1, 0.5}})
	s := matrix.DenseToCSC(d)
	require.ErrorIs(t, s.Set(0, 0, 1), matrix.ErrReadOnly)

	y, err := s.MatVec([]float64{1, 2})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, y)

	requireClose(t, d, s.ToDense(), 0)
	dt, err := matrix.Transpose(d)
	require.NoError(t, err)
	requireClose(t, dt, s.Transpose(), 0)
}

func TestMulSparse_MatchesDense(t *testing.T) {
	a := mustDense(t, [][]float64{{1, 0, 2}, {0, 3, 0}, {4, 0, 0}})
	b := mustDense(t, [][]float64{{0, 1, 0}, {2, 0, 0}, {0, 0, 5}})
	want, err := matrix.Mul(a, b)
	require.NoError(t, err)

	got, err := matrix.MulSparse(matrix.DenseToCSC(a), matrix.DenseToCSC(b))
	require.NoError(t, err)
	requireClose(t, want, got, tol)
}
