package markov

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
)

// DiscreteChain is a discrete-time chain with a dense transition matrix.
type DiscreteChain struct {
	Chain
	graph *neighbors.Graph
}

// NewDiscreteChain returns an Unfit discrete-time chain.
func NewDiscreteChain() *DiscreteChain { return &DiscreteChain{} }

// Fit estimates P from points X and velocities V.
//
// MethodQP (default) solves, for each state i, the capped QP over its
// neighbours other than i, zeroes probabilities <= tol and puts the remaining
// mass on the diagonal: P[i,i] = 1 − Σp. MethodKernel uses the kernel path of
// FitTransitionMatrix and needs WithDiffusionMatrix.
func (c *DiscreteChain) Fit(X, V *matrix.Dense, opts ...Option) error {
	return c.FitContext(context.Background(), X, V, opts...)
}

// FitContext is Fit with cancellation.
func (c *DiscreteChain) FitContext(ctx context.Context, X, V *matrix.Dense, opts ...Option) error {
	c.Reset()
	o := gather(opts...)
	if o.method == MethodKernel {
		cols, rep, err := kernelColumns(ctx, X, V, o.diffusion, o)
		if err != nil {
			return err
		}
		n := X.Rows()
		P, _ := matrix.NewDense(n, n)
		for i, cl := range cols {
			for r, j := range cl.rows {
				_ = P.Set(j, i, cl.vals[r])
			}
		}
		c.set(P)
		c.graph = rep.Graph
		return nil
	}
	P, g, err := qpFit(ctx, X, V, o, true)
	if err != nil {
		return err
	}
	c.set(P)
	c.graph = g
	return nil
}

// Graph returns the neighbour graph of the last successful fit.
func (c *DiscreteChain) Graph() *neighbors.Graph { return c.graph }

// DensityCorrectedDrift is Chain.DensityCorrectedDrift over the chain's own graph.
func (c *DiscreteChain) DensityCorrectedDrift(X *matrix.Dense, o DriftOptions) (*matrix.Dense, error) {
	return c.Chain.DensityCorrectedDrift(X, c.graph, o)
}

// qpFit fits every column with transitionQP. capped selects the
// discrete-time constraint Σp ≤ 1 and the 1 − Σp diagonal; otherwise the
// diagonal is −Σp (rate generator).
func qpFit(ctx context.Context, X, V *matrix.Dense, o options, capped bool) (*matrix.Dense, *neighbors.Graph, error) {
	const op = "Fit"
	if err := validateCloud(X, V); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	d := X.Cols()
	if o.diffusionVec != nil && len(o.diffusionVec) != d {
		return nil, nil, fmt.Errorf("%s: diffusion vector len %d for d=%d: %w", op, len(o.diffusionVec), d, ErrDimensionMismatch)
	}
	g, err := graphFor(ctx, X, o)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	n := X.Rows()
	o.logger.Debug("fitting qp chain", slog.Int("states", n), slog.Int("k", g.K()), slog.Bool("capped", capped))

	others := make([][]int, n)
	probs := make([][]float64, n)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			idx := make([]int, 0, len(g.Indices[i]))
			for _, j := range g.Indices[i] {
				if j != i {
					idx = append(idx, j)
				}
			}
			if len(idx) == 0 {
				return nil
			}
			Y, err := X.Induced(idx)
			if err != nil {
				return fmt.Errorf("state %d: %w", i, err)
			}
			p := transitionQP(X.RawRow(i), V.RawRow(i), Y, o.diffusionVec, capped, o.qpMaxIter, o.qpTol)
			for r := range p {
				if p[r] <= o.tol {
					p[r] = 0
				}
			}
			others[i], probs[i] = idx, p
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	P, _ := matrix.NewDense(n, n)
	for i := 0; i < n; i++ {
		var sum float64
		for r, j := range others[i] {
			_ = P.Set(j, i, probs[i][r])
			sum += probs[i][r]
		}
		if capped {
			_ = P.Set(i, i, math.Max(0, 1-sum))
		} else {
			_ = P.Set(i, i, -sum)
		}
	}
	return P, g, nil
}
