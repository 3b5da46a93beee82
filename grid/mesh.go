package grid

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cellflow/matrix"
)

// Mesh is a regular lattice given by one sorted coordinate axis per dimension.
type Mesh struct {
	Axes [][]float64
}

// NewMesh spans the bounding box of X, widened on each side by pad times the
// extent, with nums[j] evenly spaced nodes along dimension j.
func NewMesh(X *matrix.Dense, nums []int, pad float64) (*Mesh, error) {
	if X == nil || X.Rows() == 0 {
		return nil, ErrEmptyCloud
	}
	d := X.Cols()
	if len(nums) != d {
		return nil, fmt.Errorf("NewMesh: %d sizes for d=%d: %w", len(nums), d, ErrDimensionMismatch)
	}
	axes := make([][]float64, d)
	for j := 0; j < d; j++ {
		if nums[j] < 2 {
			return nil, fmt.Errorf("NewMesh: axis %d has %d nodes: %w", j, nums[j], ErrInvalidGrid)
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < X.Rows(); i++ {
			v, _ := X.At(i, j)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		ext := math.Abs(hi - lo)
		lo -= pad * ext
		hi += pad * ext
		axes[j] = linspace(lo, hi, nums[j])
	}
	return &Mesh{Axes: axes}, nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}

// Len returns the number of nodes.
func (m *Mesh) Len() int {
	n := 1
	for _, a := range m.Axes {
		n *= len(a)
	}
	return n
}

// MeanStep returns the average node spacing over all axes.
func (m *Mesh) MeanStep() float64 {
	var s float64
	for _, a := range m.Axes {
		s += a[1] - a[0]
	}
	return s / float64(len(m.Axes))
}

// Points enumerates the nodes as rows, dimension 0 varying fastest.
func (m *Mesh) Points() *matrix.Dense {
	n, d := m.Len(), len(m.Axes)
	out, _ := matrix.NewDense(n, d)
	idx := make([]int, d)
	for r := 0; r < n; r++ {
		row := out.RawRow(r)
		for j := 0; j < d; j++ {
			row[j] = m.Axes[j][idx[j]]
		}
		for j := 0; j < d; j++ {
			idx[j]++
			if idx[j] < len(m.Axes[j]) {
				break
			}
			idx[j] = 0
		}
	}
	return out
}
