package markov_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/cellflow/markov"
	"github.com/katalvlaran/cellflow/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoState(t *testing.T) *markov.Chain {
	t.Helper()
	c, err := markov.NewChain(dense(t, [][]float64{{0.9, 0.5}, {0.1, 0.5}}))
	require.NoError(t, err)
	return c
}

func TestChain_StationaryTwoState(t *testing.T) {
	c := twoState(t)
	for _, m := range []markov.StationaryMethod{markov.StationaryEigen, markov.StationaryNullSpace, markov.StationaryPower} {
		p, err := c.StationaryDistribution(m)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{5.0 / 6, 1.0 / 6}, p, 1e-9)
	}
}

func TestChain_SolveDistributionAgree(t *testing.T) {
	c := twoState(t)
	p0 := []float64{0, 1}
	naive, err := c.SolveDistribution(p0, 3, markov.DistributionNaive)
	require.NoError(t, err)
	spec, err := c.SolveDistribution(p0, 3, markov.DistributionSpectral)
	require.NoError(t, err)
	assert.InDeltaSlice(t, naive, spec, 1e-12)

	same, err := c.SolveDistribution(p0, 0, markov.DistributionSpectral)
	require.NoError(t, err)
	assert.InDeltaSlice(t, p0, same, 1e-12)

	_, err = c.SolveDistribution([]float64{1}, 1, markov.DistributionNaive)
	assert.ErrorIs(t, err, markov.ErrDimensionMismatch)
}

func TestNewChain_RejectsNonSquare(t *testing.T) {
	_, err := markov.NewChain(dense(t, [][]float64{{1, 0}}))
	assert.ErrorIs(t, err, matrix.ErrNonSquare)
}

func TestDiscreteChain_QP(t *testing.T) {
	X, V := gridCloud(t, 4, 1, 0)
	c := markov.NewDiscreteChain()
	require.NoError(t, c.Fit(X, V, markov.WithNeighbors(5)))
	P := c.Matrix()
	require.NoError(t, matrix.ValidateColumnStochastic(P, matrix.WithEpsilon(1e-8)))

	// From (1,1) with v=(1,0) the QP sends the mass to the right neighbour (2,1).
	right, _ := P.At(6, 5)
	assert.InDelta(t, 1.0, right, 1e-4)

	D, err := c.DensityCorrectedDrift(X, markov.DriftOptions{})
	require.NoError(t, err)
	assert.Equal(t, 16, D.Rows())
}

func TestDiscreteChain_QPWithDiffusion(t *testing.T) {
	X, V := gridCloud(t, 4, 1, 0)
	c := markov.NewDiscreteChain()
	require.NoError(t, c.Fit(X, V, markov.WithNeighbors(5), markov.WithDiffusionVector([]float64{0.1, 0.1})))
	require.NoError(t, matrix.ValidateColumnStochastic(c.Matrix(), matrix.WithEpsilon(1e-8)))

	err := c.Fit(X, V, markov.WithDiffusionVector([]float64{1}))
	assert.ErrorIs(t, err, markov.ErrDimensionMismatch)
}

func TestDiscreteChain_Kernel(t *testing.T) {
	X, V := gridCloud(t, 4, 1, 0)
	c := markov.NewDiscreteChain()
	err := c.Fit(X, V, markov.WithMethod(markov.MethodKernel), markov.WithNeighbors(5))
	require.ErrorIs(t, err, markov.ErrMissingDiffusion)

	require.NoError(t, c.Fit(X, V,
		markov.WithMethod(markov.MethodKernel), markov.WithNeighbors(5),
		markov.WithDiffusionMatrix(identity(t, 2)), markov.WithDensityCorrection(2)))
	require.NoError(t, matrix.ValidateColumnStochastic(c.Matrix(), matrix.WithEpsilon(1e-8)))
	_, ok := c.Matrix().(*matrix.Dense)
	assert.True(t, ok)

	p, err := c.StationaryDistribution(markov.StationaryEigen)
	require.NoError(t, err)
	assert.Less(t, residual(t, c.Matrix(), p), 1e-6)
}

func TestContinuousChain(t *testing.T) {
	X, V := gridCloud(t, 4, 1, 0.5)
	c := markov.NewContinuousChain()
	require.NoError(t, c.Fit(X, V, markov.WithNeighbors(5)))
	Q := c.Matrix()

	sums, err := matrix.ColSums(Q)
	require.NoError(t, err)
	for _, s := range sums {
		assert.InDelta(t, 0, s, 1e-12)
	}

	p, err := c.StationaryDistribution()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(p), 1e-12)
	qp, err := matrix.MatVec(Q, p)
	require.NoError(t, err)
	for _, v := range qp {
		assert.InDelta(t, 0, v, 1e-8)
	}

	_, err = c.Propagate(2)
	assert.ErrorIs(t, err, markov.ErrInvalidPower)
	_, err = c.DensityCorrectedDrift(X, markov.DriftOptions{})
	require.NoError(t, err)
}

func TestContinuousChain_SolveDistribution(t *testing.T) {
	c := markov.NewContinuousChain()
	// Wrap a hand-built generator through the embedded Chain API.
	base, err := markov.NewChain(dense(t, [][]float64{{-1, 2}, {1, -2}}))
	require.NoError(t, err)
	*c = markov.ContinuousChain{Chain: *base}

	p, err := c.SolveDistribution([]float64{1, 0}, 50)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, p, 1e-9)

	p, err = c.SolveDistribution([]float64{1, 0}, 0.5)
	require.NoError(t, err)
	want := 2.0/3 + math.Exp(-1.5)/3
	assert.InDelta(t, want, p[0], 1e-9)
}

func TestChain_DiffusionEmbeddingLeftVectors(t *testing.T) {
	// Birth-death chain with spectrum {1, 0.5, 0}.
	P := dense(t, [][]float64{{0.5, 0.25, 0}, {0.5, 0.5, 0.5}, {0, 0.25, 0.5}})
	c, err := markov.NewChain(P)
	require.NoError(t, err)
	Y, err := c.DiffusionEmbedding(1, 2)
	require.NoError(t, err)

	u := make([]float64, 3)
	for i := range u {
		v, _ := Y.At(i, 0)
		u[i] = v / 0.25
	}
	assert.InDelta(t, 1.0, math.Hypot(u[0], math.Hypot(u[1], u[2])), 1e-9)
	for k := 0; k < 3; k++ {
		var acc float64
		for i := 0; i < 3; i++ {
			p, _ := P.At(i, k)
			acc += u[i] * p
		}
		assert.InDelta(t, 0.5*u[k], acc, 1e-9, "uᵀP = λu at column %d", k)
	}
	assert.InDelta(t, 0.0, u[1], 1e-9)
	assert.InDelta(t, -u[0], u[2], 1e-9)
}
