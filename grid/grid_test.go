package grid_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/cellflow/grid"
	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cloud(t *testing.T) (*matrix.Dense, *matrix.Dense) {
	t.Helper()
	var xs, vs [][]float64
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			xs = append(xs, []float64{float64(j), float64(i)})
			vs = append(vs, []float64{1, 0})
		}
	}
	X, err := matrix.NewDenseFromRows(xs)
	require.NoError(t, err)
	V, err := matrix.NewDenseFromRows(vs)
	require.NoError(t, err)
	return X, V
}

func TestMesh_Enumeration(t *testing.T) {
	X, err := matrix.NewDenseFromRows([][]float64{{0, 0}, {2, 1}})
	require.NoError(t, err)
	m, err := grid.NewMesh(X, []int{3, 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, m.Len())
	assert.Equal(t, []float64{0, 1, 2}, m.Axes[0])
	assert.InDelta(t, 1.0, m.MeanStep(), 1e-12)

	P := m.Points()
	assert.Equal(t, []float64{1, 0}, P.RawRow(1), "dimension 0 varies fastest")
	assert.Equal(t, []float64{0, 1}, P.RawRow(3))

	_, err = grid.NewMesh(X, []int{1, 2}, 0)
	assert.ErrorIs(t, err, grid.ErrInvalidGrid)
	_, err = grid.NewMesh(X, []int{3}, 0)
	assert.ErrorIs(t, err, grid.ErrDimensionMismatch)
}

func TestVelocityOnGrid_ConstantField(t *testing.T) {
	X, V := cloud(t)
	o := grid.DefaultVelocityOptions()
	o.Neighbors = 8
	o.Smooth = 1
	res, err := grid.VelocityOnGrid(context.Background(), X, V, []int{5, 5}, o)
	require.NoError(t, err)
	require.Equal(t, 25, res.Points.Rows())
	require.Len(t, res.Diffusion, 25)

	for r := 0; r < res.Velocities.Rows(); r++ {
		vx, _ := res.Velocities.At(r, 0)
		vy, _ := res.Velocities.At(r, 1)
		assert.GreaterOrEqual(t, vx, 0.0)
		assert.LessOrEqual(t, vx, 1.0+1e-12)
		assert.Zero(t, vy)
		d00, _ := res.Diffusion[r].At(0, 0)
		assert.Zero(t, d00, "identical velocities have no spread")
	}
}

func TestVelocityOnGrid_FilterMass(t *testing.T) {
	X, V := cloud(t)
	o := grid.DefaultVelocityOptions()
	o.Neighbors = 4
	o.FilterMass = true
	o.MinMass = 1e9
	_, err := grid.VelocityOnGrid(context.Background(), X, V, []int{4, 4}, o)
	assert.ErrorIs(t, err, grid.ErrInvalidGrid)

	o.MinMass = 0
	res, err := grid.VelocityOnGrid(context.Background(), X, V, []int{4, 4}, o)
	require.NoError(t, err)
	assert.Equal(t, len(res.Mass), res.Points.Rows())
	for _, m := range res.Mass {
		assert.Greater(t, m, 1e-2)
	}
}

func TestDiffusionMatrices(t *testing.T) {
	V, err := matrix.NewDenseFromRows([][]float64{{1, 0}, {-1, 0}, {0, 2}})
	require.NoError(t, err)
	g := &neighbors.Graph{Indices: [][]int{{0, 1}}, Distances: [][]float64{{0, 1}}}
	D, err := grid.DiffusionMatrices(V, g)
	require.NoError(t, err)
	d00, _ := D[0].At(0, 0)
	d11, _ := D[0].At(1, 1)
	assert.InDelta(t, 0.5, d00, 1e-12)
	assert.Zero(t, d11)
}

func TestSmoothDrift(t *testing.T) {
	X, V := cloud(t)
	o := grid.DefaultSmoothOptions()
	o.K = 6
	U, nodes, err := grid.SmoothDrift(context.Background(), X, V, 4, o)
	require.NoError(t, err)
	assert.Equal(t, 16, nodes.Rows())
	assert.Equal(t, 16, U.Rows())

	_, _, err = grid.SmoothDrift(context.Background(), nil, V, 4, o)
	assert.ErrorIs(t, err, grid.ErrEmptyCloud)
}
