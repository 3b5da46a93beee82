// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
)

func TestColumnMeansAndCovariance(t *testing.T) {
	x := mustDense(t, [][]float64{{1, 2}, {3, 6}, {5, 10}})
	means, err := matrix.ColumnMeans(x)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 6}, means)

	cov, _, err := matrix.Covariance(x, true)
	require.NoError(t, err)
	requireClose(t, mustDense(t, [][]float64{{4, 8}, {8, 16}}), cov, tol)

	cov, _, err = matrix.Covariance(hide{x}, false)
	require.NoError(t, err)
	requireClose(t, mustDense(t, [][]float64{{8.0 / 3, 16.0 / 3}, {16.0 / 3, 32.0 / 3}}), cov, tol)

	_, _, err = matrix.Covariance(mustDense(t, [][]float64{{1, 2}}), true)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}
