// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
)

func TestEigen_SortedByRealPart(t *testing.T) {
	// Column-stochastic two-state chain with eigenvalues 1 and 0.4.
	p := mustDense(t, [][]float64{{0.8, 0.4}, {0.2, 0.6}})
	sys, err := matrix.Eigen(p, true)
	require.NoError(t, err)
	require.Equal(t, 2, sys.Len())
	require.InDelta(t, 1.0, real(sys.Values[0]), 1e-12)
	require.InDelta(t, 0.4, real(sys.Values[1]), 1e-12)
	require.InDelta(t, 0.0, imag(sys.Values[1]), 1e-12)

	// Leading right eigenvector is proportional to (2, 1).
	v := sys.RealRight(0)
	require.InDelta(t, 2.0, v[0]/v[1], 1e-9)

	// Left leading eigenvector of a column-stochastic matrix is constant.
	l := sys.RealLeft(0)
	require.InDelta(t, l[0], l[1], 1e-9)
}

func TestEigen_RightOnly(t *testing.T) {
	sys, err := matrix.Eigen(mustDense(t, [][]float64{{0, 1}, {-1, 0}}), false)
	require.NoError(t, err)
	require.Nil(t, sys.RealLeft(0))
	require.InDelta(t, 1.0, imag(sys.Values[0]), 1e-12, "+i sorts before -i")
	require.InDelta(t, -1.0, imag(sys.Values[1]), 1e-12)
}

func TestNullSpace(t *testing.T) {
	// P - I for the chain above; kernel spanned by (2, 1)/sqrt(5).
	a := mustDense(t, [][]float64{{-0.2, 0.4}, {0.2, -0.4}})
	ns, err := matrix.NullSpace(a, 1e-10)
	require.NoError(t, err)
	require.NotNil(t, ns)
	require.Equal(t, 1, ns.Cols())
	v0, _ := ns.At(0, 0)
	v1, _ := ns.At(1, 0)
	require.InDelta(t, 2.0, v0/v1, 1e-9)
	require.InDelta(t, 1.0, math.Hypot(v0, v1), 1e-9)

	eye, _ := matrix.NewIdentity(2)
	ns, err = matrix.NullSpace(eye, 1e-10)
	require.NoError(t, err)
	require.Nil(t, ns)
}
