package markov

import (
	"context"
	"fmt"
	"math/cmplx"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
)

// ContinuousChain is a continuous-time chain. Its matrix Q is a rate
// generator: off-diagonal entries are non-negative rates and every column
// sums to zero.
type ContinuousChain struct {
	Chain
	graph *neighbors.Graph
}

// NewContinuousChain returns an Unfit continuous-time chain.
func NewContinuousChain() *ContinuousChain {
	return &ContinuousChain{Chain: Chain{generator: true}}
}

// Fit estimates Q by the uncapped QP over each state's neighbours other
// than itself, with Q[i,i] = −Σp.
func (c *ContinuousChain) Fit(X, V *matrix.Dense, opts ...Option) error {
	return c.FitContext(context.Background(), X, V, opts...)
}

// FitContext is Fit with cancellation.
func (c *ContinuousChain) FitContext(ctx context.Context, X, V *matrix.Dense, opts ...Option) error {
	c.Reset()
	c.generator = true
	Q, g, err := qpFit(ctx, X, V, gather(opts...), false)
	if err != nil {
		return err
	}
	c.set(Q)
	c.graph = g
	return nil
}

// Graph returns the neighbour graph of the last successful fit.
func (c *ContinuousChain) Graph() *neighbors.Graph { return c.graph }

// DensityCorrectedDrift is Chain.DensityCorrectedDrift over the chain's own
// graph; o.Steps must be 0 or 1.
func (c *ContinuousChain) DensityCorrectedDrift(X *matrix.Dense, o DriftOptions) (*matrix.Dense, error) {
	return c.Chain.DensityCorrectedDrift(X, c.graph, o)
}

// StationaryDistribution returns p with Q p = 0, normalized to Σp = 1.
func (c *ContinuousChain) StationaryDistribution() ([]float64, error) {
	if c.p == nil {
		return nil, ErrNotFit
	}
	a, err := denseOf(c.p)
	if err != nil {
		return nil, fmt.Errorf("StationaryDistribution: %w", err)
	}
	p, err := nullVector(a)
	if err != nil {
		return nil, fmt.Errorf("StationaryDistribution: %w", err)
	}
	return normalize(p)
}

// SolveDistribution returns exp(Qt) p0 through the eigendecomposition of Q.
func (c *ContinuousChain) SolveDistribution(p0 []float64, t float64) ([]float64, error) {
	if err := c.checkVector(p0); err != nil {
		return nil, fmt.Errorf("SolveDistribution: %w", err)
	}
	ct := complex(t, 0)
	p, err := c.spectralApply(p0, func(l complex128) complex128 { return cmplx.Exp(l * ct) })
	if err != nil {
		return nil, fmt.Errorf("SolveDistribution: %w", err)
	}
	return p, nil
}
