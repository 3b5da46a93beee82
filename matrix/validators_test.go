// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
)

func TestValidateNotNil_TypedNil(t *testing.T) {
	var d *matrix.Dense
	var s *matrix.CSC
	require.ErrorIs(t, matrix.ValidateNotNil(nil), matrix.ErrNilMatrix)
	require.ErrorIs(t, matrix.ValidateNotNil(d), matrix.ErrNilMatrix)
	require.ErrorIs(t, matrix.ValidateNotNil(s), matrix.ErrNilMatrix)
}

func TestValidateColumnStochastic(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]float64
		wantErr error
	}{
		{"valid", [][]float64{{0.25, 1}, {0.75, 0}}, nil},
		{"column sum off", [][]float64{{0.5, 1}, {0.4, 0}}, matrix.ErrNotStochastic},
		{"negative entry", [][]float64{{1.5, 1}, {-0.5, 0}}, matrix.ErrNotStochastic},
		{"non-square", [][]float64{{1, 1, 1}}, matrix.ErrNonSquare},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mustDense(t, tc.rows)
			err := matrix.ValidateColumnStochastic(m)
			if tc.wantErr == nil {
				require.NoError(t, err)
				require.NoError(t, matrix.ValidateColumnStochastic(matrix.DenseToCSC(m)))
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateColumnStochastic_Epsilon(t *testing.T) {
	m := mustDense(t, [][]float64{{0.5, 1}, {0.5001, 0}})
	require.ErrorIs(t, matrix.ValidateColumnStochastic(m), matrix.ErrNotStochastic)
	require.NoError(t, matrix.ValidateColumnStochastic(m, matrix.WithEpsilon(1e-3)))
}

func TestValidateFiniteAndSymmetric(t *testing.T) {
	m, err := matrix.NewDenseWithOptions(2, 2, matrix.WithNoValidateNaNInf())
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 1, math.NaN()))
	require.ErrorIs(t, matrix.ValidateFinite(m), matrix.ErrNaNInf)
	require.ErrorIs(t, matrix.ValidateFinite(hide{m}), matrix.ErrNaNInf)

	require.NoError(t, matrix.ValidateSymmetric(mustDense(t, [][]float64{{1, 2}, {2, 1}}), 0))
	require.ErrorIs(t, matrix.ValidateSymmetric(mustDense(t, [][]float64{{1, 2}, {2.1, 1}}), 0.01), matrix.ErrAsymmetry)
}

func TestOptions(t *testing.T) {
	o := matrix.NewOptions()
	require.Equal(t, matrix.DefaultEpsilon, o.Epsilon())
	require.Equal(t, matrix.DefaultValidateNaNInf, o.ValidateNaNInf())
	require.Panics(t, func() { matrix.WithEpsilon(-1) })

	d, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	require.ErrorIs(t, d.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)
}
