package topology_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/cellflow/rootfind"
	"github.com/katalvlaran/cellflow/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveRedundantPoints(t *testing.T) {
	kept, discard := topology.RemoveRedundantPoints([][]float64{{0, 0}, {0, 0.00001}, {5, 5}}, 1e-4)
	assert.Len(t, kept, 2)
	assert.Equal(t, []bool{false, true, false}, discard)
}

func TestFixedPointSet_Add(t *testing.T) {
	s := topology.NewFixedPointSet(1e-3)
	a := topology.FixedPoint{X: []float64{0, 0}}
	b := topology.FixedPoint{X: []float64{0, 0.0005}}
	c := topology.FixedPoint{X: []float64{1, 1}}
	assert.Equal(t, 2, s.Add(a, b, c))
	assert.Equal(t, 0, s.Add(a, c))
	assert.Equal(t, 2, s.Len())

	p, ok := s.Nearest([]float64{0.9, 0.8})
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1}, p.X)

	_, ok = topology.NewFixedPointSet(0).Nearest([]float64{0, 0})
	assert.False(t, ok)
}

func TestFindFixedPoints_Aggregate(t *testing.T) {
	seeds := [][]float64{{0.5, 0.3}, {-2, 1}, {0, 5}, {1.5, -0.2}}
	o := topology.DefaultOptions()
	o.Domain = topology.Box(topology.Interval{Lo: 0, Hi: 2}, topology.Interval{Lo: -1, Hi: 1})
	res, err := topology.FindFixedPoints(seeds, pitch, o)
	require.NoError(t, err)

	require.Len(t, res.Failures, 1, "x = 0 has a singular jacobian")
	assert.Equal(t, 2, res.Failures[0].Index)
	assert.ErrorIs(t, &res.Failures[0], rootfind.ErrSingularJacobian)
	assert.Equal(t, 1, res.OutOfDomain, "(-1, 0) lies outside")
	assert.Equal(t, 1, res.Redundant)
	require.Len(t, res.Points, 1)
	assert.InDelta(t, 1.0, res.Points[0].X[0], 1e-8)
	assert.InDelta(t, 0.0, res.Points[0].X[1], 1e-8)
	assert.Equal(t, topology.Unstable, res.Points[0].Kind)
}

func TestFindFixedPoints_Idempotent(t *testing.T) {
	seeds := [][]float64{{-1.4, 0.2}, {0.1, -0.3}, {0.9, 0.9}, {-0.2, 0.1}, {1.3, -1}}
	set, first, err := topology.LocateFixedPoints(context.Background(), seeds, bistable, nil, 1e-4)
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	_, second, err := topology.LocateFixedPoints(context.Background(), seeds, bistable, nil, 1e-4)
	require.NoError(t, err)
	require.Len(t, second.Points, len(first.Points))
	for i := range first.Points {
		assert.InDeltaSlice(t, first.Points[i].X, second.Points[i].X, 1e-12)
	}
	assert.Zero(t, set.Add(second.Points...))

	kinds := map[topology.Kind]int{}
	for _, k := range set.Kinds() {
		kinds[k]++
	}
	assert.Equal(t, 1, kinds[topology.Saddle])
	assert.Equal(t, 2, kinds[topology.Stable])
}

func TestFindFixedPoints_Structural(t *testing.T) {
	_, err := topology.FindFixedPoints([][]float64{{0}}, bistable, topology.DefaultOptions())
	assert.ErrorIs(t, err, topology.ErrDimensionMismatch)

	o := topology.DefaultOptions()
	o.Domain = topology.Domain{{Lo: 1, Hi: 0}, {Lo: 0, Hi: 1}}
	_, err = topology.FindFixedPoints([][]float64{{0, 0}}, bistable, o)
	assert.ErrorIs(t, err, topology.ErrInvalidDomain)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = topology.FindFixedPointsContext(ctx, [][]float64{{0, 0}}, bistable, topology.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
