package markov

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/cellflow/kernel"
	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
	"github.com/katalvlaran/cellflow/sampling"
)

const (
	// spdTol is the asymmetry tolerance of the diffusion check and the
	// smallest eigenvalue accepted relative to the largest.
	spdTol = 1e-10
	// spdRotations bounds the Jacobi rotations per entry of the diffusion matrix.
	spdRotations = 50
)

// FitReport summarizes a transition-matrix fit.
type FitReport struct {
	// States is n.
	States int
	// NNZ is the number of stored transition probabilities.
	NNZ int
	// Graph is the neighbour graph the columns were built on (after down-sampling).
	Graph *neighbors.Graph
	// Degenerate lists states handled by DegenerateSelfLoop, ascending.
	Degenerate []int
	// Taus holds the per-state time scale of the adaptive kernel (nil otherwise).
	Taus []float64
	// Components is the number of connected components of Graph; above 1 the chain is reducible.
	Components int
}

// col is the sparse column of one state.
type col struct {
	rows []int
	vals []float64
}

// FitTransitionMatrix builds the column-stochastic kernel transition matrix.
func FitTransitionMatrix(X, V, diffusion *matrix.Dense, opts ...Option) (*matrix.CSC, *FitReport, error) {
	return FitTransitionMatrixContext(context.Background(), X, V, diffusion, opts...)
}

// FitTransitionMatrixContext builds the column-stochastic kernel transition matrix.
// Implementation:
//   - Stage 1: Validate shapes; invert the diffusion matrix; obtain the k-NN graph.
//   - Stage 2: Optionally thin every neighbourhood (WithSampleFraction).
//   - Stage 3: Optionally accumulate density-kernel column sums (WithDensityCorrection).
//   - Stage 4: Per state in parallel: drift kernel, density division, normalize,
//     zero entries <= tol, renormalize.
//   - Stage 5: Scatter columns into a COO builder and compress once.
//
// Errors:
//   - ErrEmptyCloud, ErrDimensionMismatch, wrapped matrix.ErrSingular for the diffusion matrix.
//   - neighbors.ErrEmptyNeighborhood when k exceeds the cloud.
//   - *StateError wrapping ErrDegenerateKernel (lowest failing state) under DegenerateAbort.
//   - ctx.Err() on cancellation.
func FitTransitionMatrixContext(ctx context.Context, X, V, diffusion *matrix.Dense, opts ...Option) (*matrix.CSC, *FitReport, error) {
	o := gather(opts...)
	cols, rep, err := kernelColumns(ctx, X, V, diffusion, o)
	if err != nil {
		return nil, nil, err
	}
	n := X.Rows()
	b, err := matrix.NewBuilder(n, n)
	if err != nil {
		return nil, nil, fmt.Errorf("FitTransitionMatrix: %w", err)
	}
	total := 0
	for _, c := range cols {
		total += len(c.rows)
	}
	b.Reserve(total)
	for i, c := range cols {
		if err = b.AddColumn(i, c.rows, c.vals); err != nil {
			return nil, nil, fmt.Errorf("FitTransitionMatrix: %w", err)
		}
	}
	P, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("FitTransitionMatrix: %w", err)
	}
	rep.NNZ = P.NNZ()
	rep.Components = len(neighbors.Components(rep.Graph))
	o.logger.Debug("transition matrix fit",
		slog.Int("states", n), slog.Int("nnz", rep.NNZ),
		slog.Int("degenerate", len(rep.Degenerate)), slog.Int("components", rep.Components))

	return P, rep, nil
}

func validateCloud(X, V *matrix.Dense) error {
	if X == nil || X.Rows() == 0 || V == nil {
		return ErrEmptyCloud
	}
	if X.Rows() != V.Rows() || X.Cols() != V.Cols() {
		return fmt.Errorf("points %dx%d, velocities %dx%d: %w",
			X.Rows(), X.Cols(), V.Rows(), V.Cols(), ErrDimensionMismatch)
	}
	return nil
}

// graphFor returns the supplied graph or builds one.
func graphFor(ctx context.Context, X *matrix.Dense, o options) (*neighbors.Graph, error) {
	if o.graph != nil {
		if o.graph.Len() != X.Rows() || o.graph.K() == 0 {
			return nil, fmt.Errorf("graph has %d rows for %d points: %w", o.graph.Len(), X.Rows(), ErrDimensionMismatch)
		}
		return o.graph, nil
	}
	return neighbors.BuildContext(ctx, X, o.k, neighbors.WithStrategy(o.strategy), neighbors.WithWorkers(o.workers))
}

// downsample keeps rank 0, the outermost rank and a weighted draw of the
// interior ranks biased toward the far end (linear ramp 0.5 → 1).
func downsample(g *neighbors.Graph, frac float64, seed uint64) (*neighbors.Graph, error) {
	k := g.K()
	if k < 3 {
		return g, nil
	}
	ramp := sampling.LinearRamp(k, 0.5, 1)
	interior := ramp[1 : k-1]
	m := int(frac * float64(k-2))
	ranks := make([][]int, g.Len())
	for i := range ranks {
		picked, err := sampling.ChooseWeighted(sampling.NewSource(sampling.DeriveSeed(seed, uint64(i))), interior, m)
		if err != nil {
			return nil, err
		}
		row := make([]int, 0, m+2)
		row = append(row, 0)
		for _, p := range picked {
			row = append(row, p+1)
		}
		ranks[i] = append(row, k-1)
	}
	return g.Subset(ranks)
}

// densityNormalizer returns D[j] = Σ_i Kd[i, j] where Kd[i, idx_i] is the
// density kernel of point i over its neighbourhood.
func densityNormalizer(ctx context.Context, X *matrix.Dense, g *neighbors.Graph, eps float64, workers int) ([]float64, error) {
	n := X.Rows()
	rowsK := make([][]float64, n)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			Y, err := X.Induced(g.Indices[i])
			if err != nil {
				return err
			}
			rowsK[i], err = kernel.Density(X.RawRow(i), Y, 1/eps)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	D := make([]float64, n)
	for i, kd := range rowsK {
		for r, j := range g.Indices[i] {
			D[j] += kd[r]
		}
	}
	return D, nil
}

// checkDiffusion requires a symmetric positive definite diffusion matrix,
// which is what the unpivoted LU behind matrix.Inverse can factor stably.
func checkDiffusion(m *matrix.Dense) error {
	d := m.Rows()
	vals, _, err := matrix.EigenSym(m, spdTol, spdRotations*d*d)
	if err != nil {
		return err
	}
	top := 0.0
	for _, v := range vals {
		top = math.Max(top, math.Abs(v))
	}
	for _, v := range vals {
		if !(v > spdTol*top) {
			return ErrIndefiniteDiffusion
		}
	}
	return nil
}

// kernelColumns runs stages 1-4 of the kernel fit and returns one column per state.
func kernelColumns(ctx context.Context, X, V, diffusion *matrix.Dense, o options) ([]col, *FitReport, error) {
	const op = "FitTransitionMatrix"
	if err := validateCloud(X, V); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	d := X.Cols()
	if diffusion == nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrMissingDiffusion)
	}
	if diffusion.Rows() != d || diffusion.Cols() != d {
		return nil, nil, fmt.Errorf("%s: diffusion %dx%d for d=%d: %w", op, diffusion.Rows(), diffusion.Cols(), d, ErrDimensionMismatch)
	}
	if err := checkDiffusion(diffusion); err != nil {
		return nil, nil, fmt.Errorf("%s: diffusion matrix: %w", op, err)
	}
	invS, err := matrix.Inverse(diffusion)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: diffusion matrix: %w", op, err)
	}
	g, err := graphFor(ctx, X, o)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if o.sampleFraction > 0 {
		if g, err = downsample(g, o.sampleFraction, o.seed); err != nil {
			return nil, nil, fmt.Errorf("%s: down-sampling: %w", op, err)
		}
	}
	var density []float64
	if o.epsilon > 0 {
		if density, err = densityNormalizer(ctx, X, g, o.epsilon, o.workers); err != nil {
			return nil, nil, fmt.Errorf("%s: density kernel: %w", op, err)
		}
	}

	n := X.Rows()
	o.logger.Debug("fitting kernel chain",
		slog.Int("states", n), slog.Int("k", g.K()),
		slog.Bool("adaptive", o.adaptive), slog.Bool("density", density != nil))

	cols := make([]col, n)
	failed := make([]error, n)
	var taus []float64
	if o.adaptive {
		taus = make([]float64, n)
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			idx := g.Indices[i]
			Y, err := X.Induced(idx)
			if err != nil {
				return fmt.Errorf("state %d: %w", i, err)
			}
			var w []float64
			if o.adaptive {
				loc, err := kernel.LocalDrift(X.RawRow(i), V.RawRow(i), Y, invS)
				if err != nil {
					return fmt.Errorf("state %d: %w", i, err)
				}
				w, taus[i] = loc.Weights, loc.Tau
			} else if w, err = kernel.Drift(X.RawRow(i), V.RawRow(i), Y, invS); err != nil {
				return fmt.Errorf("state %d: %w", i, err)
			}
			if density != nil {
				for r, j := range idx {
					w[r] /= density[j]
				}
			}
			if !normalizeColumn(w, o.tol) {
				failed[i] = &StateError{State: i, Err: ErrDegenerateKernel}
				return nil
			}
			cols[i] = col{rows: idx, vals: w}
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	rep := &FitReport{States: n, Graph: g, Taus: taus}
	for i, ferr := range failed {
		if ferr == nil {
			continue
		}
		if o.degenerate == DegenerateAbort {
			o.logger.Debug("degenerate kernel", slog.Int("state", i))
			return nil, nil, fmt.Errorf("%s: %w", op, ferr)
		}
		cols[i] = col{rows: []int{i}, vals: []float64{1}}
		rep.Degenerate = append(rep.Degenerate, i)
	}
	if len(rep.Degenerate) > 0 {
		o.logger.Debug("degenerate states kept as self loops", slog.Int("count", len(rep.Degenerate)))
	}
	return cols, rep, nil
}

// normalizeColumn turns w into a distribution in place: divide by the sum,
// zero entries <= tol, divide by the remaining mass. It reports false when
// no finite positive mass survives.
func normalizeColumn(w []float64, tol float64) bool {
	var sum float64
	for _, v := range w {
		sum += v
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return false
	}
	var kept float64
	for r := range w {
		w[r] /= sum
		if w[r] <= tol {
			w[r] = 0
		}
		kept += w[r]
	}
	if !(kept > 0) {
		return false
	}
	for r := range w {
		w[r] /= kept
	}
	return true
}
