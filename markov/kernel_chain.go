package markov

import (
	"context"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
)

// KernelChain is a chain whose sparse transition matrix comes from drift
// kernels over a neighbour graph.
type KernelChain struct {
	Chain
	report *FitReport
}

// NewKernelChain returns an Unfit kernel chain.
func NewKernelChain() *KernelChain { return &KernelChain{} }

// Fit builds P with FitTransitionMatrix and drops any spectral cache.
func (c *KernelChain) Fit(X, V, diffusion *matrix.Dense, opts ...Option) error {
	return c.FitContext(context.Background(), X, V, diffusion, opts...)
}

// FitContext is Fit with cancellation. On error the chain keeps its previous
// matrix but the spectral cache is dropped.
func (c *KernelChain) FitContext(ctx context.Context, X, V, diffusion *matrix.Dense, opts ...Option) error {
	c.Reset()
	P, rep, err := FitTransitionMatrixContext(ctx, X, V, diffusion, opts...)
	if err != nil {
		return err
	}
	c.set(P)
	c.report = rep
	return nil
}

// Sparse returns P as CSC (nil when Unfit).
func (c *KernelChain) Sparse() *matrix.CSC {
	s, _ := c.p.(*matrix.CSC)
	return s
}

// Graph returns the neighbour graph of the last successful fit.
func (c *KernelChain) Graph() *neighbors.Graph {
	if c.report == nil {
		return nil
	}
	return c.report.Graph
}

// Report returns the summary of the last successful fit.
func (c *KernelChain) Report() *FitReport { return c.report }
