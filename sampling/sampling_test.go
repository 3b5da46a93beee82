package sampling_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRand_Deterministic(t *testing.T) {
	a, b := sampling.NewRand(42), sampling.NewRand(42)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	// seed 0 maps to DefaultSeed.
	assert.Equal(t, sampling.NewRand(sampling.DefaultSeed).Uint64(), sampling.NewRand(0).Uint64())
}

func TestDeriveSeed_StreamsDiffer(t *testing.T) {
	seen := map[uint64]bool{}
	for s := uint64(0); s < 64; s++ {
		v := sampling.DeriveSeed(7, s)
		assert.False(t, seen[v], "stream %d collided", s)
		seen[v] = true
	}
	assert.Equal(t, sampling.DeriveSeed(7, 3), sampling.DeriveSeed(7, 3))
}

func TestShuffle_IsPermutation(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7}
	sampling.Shuffle(a, sampling.NewRand(3))
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, a)
}

func TestChooseWeighted(t *testing.T) {
	w := []float64{0, 1, 1, 0, 1}
	got, err := sampling.ChooseWeighted(sampling.NewSource(9), w, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, got, "zero-weight indices are never drawn")

	got, err = sampling.ChooseWeighted(sampling.NewSource(9), w, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.IsIncreasing(t, got)

	_, err = sampling.ChooseWeighted(nil, w, 4)
	assert.ErrorIs(t, err, sampling.ErrSampleSize)
	_, err = sampling.ChooseWeighted(nil, []float64{1, -1}, 1)
	assert.ErrorIs(t, err, sampling.ErrInvalidWeights)
	_, err = sampling.ChooseWeighted(nil, nil, 0)
	assert.ErrorIs(t, err, sampling.ErrInvalidWeights)
}

func TestLinearRamp(t *testing.T) {
	w := sampling.LinearRamp(3, 0.5, 1)
	require.Len(t, w, 3)
	assert.InDelta(t, 0.5/2.25, w[0], 1e-12)
	assert.InDelta(t, 1/2.25, w[2], 1e-12)
	assert.Equal(t, []float64{1}, sampling.LinearRamp(1, 0.5, 1))
	assert.Nil(t, sampling.LinearRamp(0, 0.5, 1))
}

func TestLatinHypercube_Strata(t *testing.T) {
	const n = 10
	lo, hi := []float64{-1, 0}, []float64{1, 5}
	pts, err := sampling.LatinHypercube(sampling.NewRand(11), n, lo, hi)
	require.NoError(t, err)
	require.Len(t, pts, n)
	for j := range lo {
		width := (hi[j] - lo[j]) / n
		hit := make([]bool, n)
		for _, p := range pts {
			assert.GreaterOrEqual(t, p[j], lo[j])
			assert.LessOrEqual(t, p[j], hi[j])
			s := int((p[j] - lo[j]) / width)
			if s == n {
				s--
			}
			assert.False(t, hit[s], "dimension %d stratum %d hit twice", j, s)
			hit[s] = true
		}
	}

	_, err = sampling.LatinHypercube(nil, n, []float64{1}, []float64{0})
	assert.ErrorIs(t, err, sampling.ErrDimensionMismatch)
	_, err = sampling.Uniform(nil, 0, lo, hi)
	assert.ErrorIs(t, err, sampling.ErrSampleSize)
}
