package grid

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
)

// VelocityOptions tunes VelocityOnGrid.
type VelocityOptions struct {
	// Density multiplies the node count along every axis.
	Density int
	// Smooth scales the Gaussian width relative to the mean node spacing.
	Smooth float64
	// Neighbors is the per-node neighbourhood size; 0 means max(1, n/50).
	Neighbors int
	// FilterMass drops nodes whose kernel mass is at or below MinMass.
	FilterMass bool
	// MinMass is the mass cut-off; 0 means clip(P99(mass)/100, 0.01, 1).
	MinMass float64
	// Workers bounds query parallelism.
	Workers int
}

// DefaultVelocityOptions returns the documented defaults.
func DefaultVelocityOptions() VelocityOptions {
	return VelocityOptions{Density: 1, Smooth: 0.5, Workers: runtime.GOMAXPROCS(0)}
}

// VelocityGrid is the result of VelocityOnGrid.
type VelocityGrid struct {
	// Points holds the retained nodes, one per row.
	Points *matrix.Dense
	// Velocities holds the weighted velocity average of each node.
	Velocities *matrix.Dense
	// Diffusion holds one d×d diffusion matrix per node.
	Diffusion []*matrix.Dense
	// Mass is the total Gaussian weight of each node.
	Mass []float64
}

const (
	velocityPad = 0.01
	smoothPad   = 0.025
)

func validate(X, V *matrix.Dense) error {
	if X == nil || X.Rows() == 0 || V == nil {
		return ErrEmptyCloud
	}
	if X.Rows() != V.Rows() || X.Cols() != V.Cols() {
		return ErrDimensionMismatch
	}
	return nil
}

// VelocityOnGrid estimates velocities and diffusion matrices on a mesh with
// nums[j]*Density nodes along dimension j.
// Implementation:
//   - Stage 1: Build the mesh over the padded bounding box of X.
//   - Stage 2: Query the Neighbors nearest points of every node.
//   - Stage 3: Gaussian weights N(0, σ) with σ = MeanStep*Smooth; V_node = Σ w V / max(1, Σ w).
//   - Stage 4: Diffusion matrix from the unweighted neighbour velocity covariance / 2.
//   - Stage 5: Optionally drop low-mass nodes.
func VelocityOnGrid(ctx context.Context, X, V *matrix.Dense, nums []int, o VelocityOptions) (*VelocityGrid, error) {
	if err := validate(X, V); err != nil {
		return nil, fmt.Errorf("VelocityOnGrid: %w", err)
	}
	if o.Density < 1 || !(o.Smooth > 0) {
		return nil, fmt.Errorf("VelocityOnGrid: density=%d smooth=%g: %w", o.Density, o.Smooth, ErrInvalidGrid)
	}
	scaled := make([]int, len(nums))
	for j, v := range nums {
		scaled[j] = v * o.Density
	}
	mesh, err := NewMesh(X, scaled, velocityPad)
	if err != nil {
		return nil, fmt.Errorf("VelocityOnGrid: %w", err)
	}
	n := X.Rows()
	k := o.Neighbors
	if k <= 0 {
		k = n / 50
		if k < 1 {
			k = 1
		}
	}
	if k > n {
		k = n
	}
	nodes := mesh.Points()
	g, err := queryNodes(ctx, X, nodes, k, o.Workers)
	if err != nil {
		return nil, fmt.Errorf("VelocityOnGrid: %w", err)
	}

	norm := distuv.Normal{Mu: 0, Sigma: mesh.MeanStep() * o.Smooth}
	m, d := nodes.Rows(), X.Cols()
	vel, _ := matrix.NewDense(m, d)
	mass := make([]float64, m)
	diff := make([]*matrix.Dense, m)
	for r := 0; r < m; r++ {
		row := vel.RawRow(r)
		for q, j := range g.Indices[r] {
			w := norm.Prob(g.Distances[r][q])
			mass[r] += w
			vj := V.RawRow(j)
			for c := 0; c < d; c++ {
				row[c] += w * vj[c]
			}
		}
		den := math.Max(1, mass[r])
		for c := 0; c < d; c++ {
			row[c] /= den
		}
		if diff[r], err = diffusionMatrix(V, g.Indices[r]); err != nil {
			return nil, fmt.Errorf("VelocityOnGrid: %w", err)
		}
	}

	out := &VelocityGrid{Points: nodes, Velocities: vel, Diffusion: diff, Mass: mass}
	if !o.FilterMass {
		return out, nil
	}
	cut := o.MinMass
	if cut <= 0 {
		sorted := append([]float64(nil), mass...)
		sort.Float64s(sorted)
		cut = stat.Quantile(0.99, stat.LinInterp, sorted, nil) / 100
		cut = math.Min(math.Max(cut, 1e-2), 1)
	}
	return filterMass(out, cut)
}

func filterMass(v *VelocityGrid, cut float64) (*VelocityGrid, error) {
	var keep []int
	for r, m := range v.Mass {
		if m > cut {
			keep = append(keep, r)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("VelocityOnGrid: no node above mass %g: %w", cut, ErrInvalidGrid)
	}
	pts, err := v.Points.Induced(keep)
	if err != nil {
		return nil, err
	}
	vel, err := v.Velocities.Induced(keep)
	if err != nil {
		return nil, err
	}
	out := &VelocityGrid{Points: pts, Velocities: vel}
	for _, r := range keep {
		out.Diffusion = append(out.Diffusion, v.Diffusion[r])
		out.Mass = append(out.Mass, v.Mass[r])
	}
	return out, nil
}

// diffusionMatrix returns Cov(V[idx]) / 2 with the biased (1/k) normalization.
func diffusionMatrix(V *matrix.Dense, idx []int) (*matrix.Dense, error) {
	sub, err := V.Induced(idx)
	if err != nil {
		return nil, err
	}
	cov, _, err := matrix.Covariance(sub, false)
	if err != nil {
		return nil, err
	}
	if err = cov.Apply(func(_, _ int, v float64) float64 { return v / 2 }); err != nil {
		return nil, err
	}
	return cov, nil
}

// DiffusionMatrices returns the diffusion matrix of every neighbourhood in g.
func DiffusionMatrices(V *matrix.Dense, g *neighbors.Graph) ([]*matrix.Dense, error) {
	if V == nil || g == nil {
		return nil, ErrEmptyCloud
	}
	out := make([]*matrix.Dense, g.Len())
	var err error
	for i, idx := range g.Indices {
		if out[i], err = diffusionMatrix(V, idx); err != nil {
			return nil, fmt.Errorf("DiffusionMatrices: row %d: %w", i, err)
		}
	}
	return out, nil
}

func queryNodes(ctx context.Context, X, nodes *matrix.Dense, k, workers int) (*neighbors.Graph, error) {
	idx, err := neighbors.NewIndex(X, neighbors.StrategyKDTree)
	if err != nil {
		return nil, err
	}
	return neighbors.QueryAll(ctx, idx, nodes, k, workers)
}

// SmoothOptions tunes SmoothDrift.
type SmoothOptions struct {
	// K is the per-node neighbourhood size; 0 means min(100, n).
	K int
	// Smoothness scales the Gaussian width relative to the mean node spacing.
	Smoothness float64
	// Workers bounds query parallelism.
	Workers int
}

// DefaultSmoothOptions returns the documented defaults.
func DefaultSmoothOptions() SmoothOptions {
	return SmoothOptions{K: 100, Smoothness: 1, Workers: runtime.GOMAXPROCS(0)}
}

// SmoothDrift averages V onto an nGrid^d mesh with an isotropic Gaussian and
// returns (velocities, nodes).
func SmoothDrift(ctx context.Context, X, V *matrix.Dense, nGrid int, o SmoothOptions) (*matrix.Dense, *matrix.Dense, error) {
	if err := validate(X, V); err != nil {
		return nil, nil, fmt.Errorf("SmoothDrift: %w", err)
	}
	if !(o.Smoothness > 0) {
		return nil, nil, fmt.Errorf("SmoothDrift: smoothness=%g: %w", o.Smoothness, ErrInvalidGrid)
	}
	nums := make([]int, X.Cols())
	for j := range nums {
		nums[j] = nGrid
	}
	mesh, err := NewMesh(X, nums, smoothPad)
	if err != nil {
		return nil, nil, fmt.Errorf("SmoothDrift: %w", err)
	}
	k := o.K
	if k <= 0 {
		k = 100
	}
	if k > X.Rows() {
		k = X.Rows()
	}
	nodes := mesh.Points()
	g, err := queryNodes(ctx, X, nodes, k, o.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("SmoothDrift: %w", err)
	}
	norm := distuv.Normal{Mu: 0, Sigma: o.Smoothness * mesh.MeanStep()}
	m, d := nodes.Rows(), X.Cols()
	U, _ := matrix.NewDense(m, d)
	for r := 0; r < m; r++ {
		row := U.RawRow(r)
		var total float64
		for q, j := range g.Indices[r] {
			w := norm.Prob(g.Distances[r][q])
			total += w
			vj := V.RawRow(j)
			for c := 0; c < d; c++ {
				row[c] += w * vj[c]
			}
		}
		den := math.Max(1, total)
		for c := 0; c < d; c++ {
			row[c] /= den
		}
	}
	return U, nodes, nil
}
