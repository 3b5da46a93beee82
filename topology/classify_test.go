package topology_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Partition(t *testing.T) {
	cases := []struct {
		a, b float64
		want topology.Kind
		code int
	}{
		{-1, -2, topology.Stable, -1},
		{-1, 2, topology.Saddle, 0},
		{1, 2, topology.Unstable, 1},
		{0, -1, topology.Saddle, 0},
		{0, 0, topology.Unstable, 1},
	}
	for _, tc := range cases {
		got, w, err := topology.Classify(diag(t, tc.a, tc.b))
		require.NoError(t, err)
		assert.Len(t, w, 2)
		assert.Equal(t, tc.want, got, "eigenvalues {%g, %g}", tc.a, tc.b)
		assert.Equal(t, tc.code, got.Code())
	}
}

func TestClassifyEigenvalues_Complex(t *testing.T) {
	assert.Equal(t, topology.Stable, topology.ClassifyEigenvalues([]complex128{complex(-0.1, 1), complex(-0.1, -1)}))
	assert.Equal(t, topology.Unstable, topology.ClassifyEigenvalues([]complex128{complex(0.3, 2), complex(0.3, -2)}))
	assert.Equal(t, topology.Unknown, topology.ClassifyEigenvalues(nil))
}

func TestClassify_Unknown(t *testing.T) {
	k, w, err := topology.Classify(nil)
	assert.ErrorIs(t, err, topology.ErrSingularJacobian)
	assert.Equal(t, topology.Unknown, k)
	assert.Nil(t, w)
	assert.Equal(t, topology.UnknownCode, k.Code())
	assert.Equal(t, "unknown", k.String())
}
