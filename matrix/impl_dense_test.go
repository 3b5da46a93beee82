// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestNewDenseInvalidDimensions ensures that NewDense rejects non-positive dimensions.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 5)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDense(5, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestAtSetOutOfRange ensures At() and Set() report ErrOutOfRange on invalid access.
func TestAtSetOutOfRange(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(-1, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = m.At(0, 2)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(2, 0, 1.23), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 4.56), matrix.ErrOutOfRange)
}

func TestSetGetAndClone(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	require.NoError(t, m.Set(1, 2, 7.89))

	c := m.Clone()
	require.NoError(t, m.Set(1, 2, 0))
	v, err := c.At(1, 2)
	require.NoError(t, err)
	require.Equal(t, 7.89, v, "clone must not share storage")
}

func TestNewDenseFromRows(t *testing.T) {
	_, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.NewDenseFromRows(nil)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	m := mustDense(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	r, c := m.Shape()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)
	require.Equal(t, []float64{5, 6}, m.RawRow(2))
}

func TestInduced(t *testing.T) {
	m := mustDense(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	sub, err := m.Induced([]int{2, 0})
	require.NoError(t, err)
	requireClose(t, mustDense(t, [][]float64{{5, 6}, {1, 2}}), sub, 0)

	_, err = m.Induced([]int{3})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestGonumRoundTrip(t *testing.T) {
	m := mustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	g := m.ToGonum()
	require.Equal(t, 6.0, g.At(1, 2))

	back, err := matrix.FromGonum(mat.NewDense(2, 2, []float64{9, 8, 7, 6}))
	require.NoError(t, err)
	v, _ := back.At(1, 0)
	require.Equal(t, 7.0, v)
}

func TestApply(t *testing.T) {
	m := mustDense(t, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, m.Apply(func(_, _ int, v float64) float64 { return 2 * v }))
	requireClose(t, mustDense(t, [][]float64{{2, 4}, {6, 8}}), m, 0)
}
