package topology_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/vectorfield"
	"github.com/stretchr/testify/require"
)

// bistable is f(x, y) = (x − x³, −y): a saddle at the origin and stable nodes at (±1, 0).
var bistable = vectorfield.Func{N: 2, F: func(dst, x []float64) {
	dst[0] = x[0] - x[0]*x[0]*x[0]
	dst[1] = -x[1]
}}

// pitch is f(x, y) = (x² − 1, y): an unstable node at (1, 0) and a saddle at (−1, 0).
var pitch = vectorfield.Func{N: 2, F: func(dst, x []float64) {
	dst[0] = x[0]*x[0] - 1
	dst[1] = x[1]
}}

func diag(t *testing.T, a, b float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows([][]float64{{a, 0}, {0, b}})
	require.NoError(t, err)
	return m
}
