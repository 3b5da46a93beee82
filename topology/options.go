package topology

import (
	"log/slog"
	"runtime"

	"github.com/katalvlaran/cellflow/ode"
	"github.com/katalvlaran/cellflow/rootfind"
	"github.com/katalvlaran/cellflow/sampling"
)

// Options configures fixed-point location and the VectorField2D model.
type Options struct {
	// Tolerance merges fixed points closer than this distance. Negative disables merging.
	Tolerance float64
	// Domain drops roots outside it; empty means unbounded.
	Domain Domain
	// Workers bounds per-seed parallelism.
	Workers int
	// Solver configures the per-seed Newton iteration.
	Solver rootfind.Options
	// Seed drives the random initial tangents of nullcline tracing and seed sampling.
	Seed uint64
	// Separatrix configures TraceSeparatrices.
	Separatrix SeparatrixOptions
	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns the package defaults.
func DefaultOptions() Options {
	return Options{
		Tolerance:  DefaultTolerance,
		Workers:    runtime.GOMAXPROCS(0),
		Solver:     rootfind.DefaultOptions(),
		Seed:       sampling.DefaultSeed,
		Separatrix: DefaultSeparatrixOptions(),
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}

// Defaults for SeparatrixOptions.
const (
	DefaultHorizon  = 50
	DefaultSamples  = 500
	DefaultEpsilon  = 1e-6
	minCurveSamples = 2
)

// SeparatrixOptions configures TraceSeparatrices.
type SeparatrixOptions struct {
	// Horizon is the integration time of each branch.
	Horizon float64
	// Samples is the number of output times per branch.
	Samples int
	// Epsilon is the offset from the saddle along the stable direction.
	Epsilon float64
	// ODE configures the integrator.
	ODE ode.Options
}

// DefaultSeparatrixOptions returns the package defaults.
func DefaultSeparatrixOptions() SeparatrixOptions {
	return SeparatrixOptions{
		Horizon: DefaultHorizon,
		Samples: DefaultSamples,
		Epsilon: DefaultEpsilon,
		ODE:     ode.DefaultOptions(),
	}
}
