// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
)

// tol is the absolute tolerance used for floating-point comparisons.
const tol = 1e-9

// hide wraps any Matrix to hide its concrete type and force the At/Set fallback paths.
type hide struct{ matrix.Matrix }

// mustDense builds a Dense from rows or fails the test.
func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)
	return m
}

// requireClose asserts a and b agree element-wise within tol.
func requireClose(t *testing.T, want, got matrix.Matrix, eps float64) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	for i := 0; i < want.Rows(); i++ {
		for j := 0; j < want.Cols(); j++ {
			w, err := want.At(i, j)
			require.NoError(t, err)
			g, err := got.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, w, g, eps, "(%d,%d)", i, j)
		}
	}
}
