package markov_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/require"
)

// gridCloud returns an n×n lattice with unit spacing and a constant velocity.
func gridCloud(t *testing.T, n int, vx, vy float64) (*matrix.Dense, *matrix.Dense) {
	t.Helper()
	xs := make([][]float64, 0, n*n)
	vs := make([][]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xs = append(xs, []float64{float64(j), float64(i)})
			vs = append(vs, []float64{vx, vy})
		}
	}
	X, err := matrix.NewDenseFromRows(xs)
	require.NoError(t, err)
	V, err := matrix.NewDenseFromRows(vs)
	require.NoError(t, err)
	return X, V
}

func identity(t *testing.T, d int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewIdentity(d)
	require.NoError(t, err)
	return m
}

func dense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)
	return m
}

// residual returns max_i |(P p)_i - p_i|.
func residual(t *testing.T, P matrix.Matrix, p []float64) float64 {
	t.Helper()
	pp, err := matrix.MatVec(P, p)
	require.NoError(t, err)
	var worst float64
	for i := range p {
		if d := pp[i] - p[i]; d > worst {
			worst = d
		} else if -d > worst {
			worst = -d
		}
	}
	return worst
}

func sum(p []float64) float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}
