package markov

import (
	"log/slog"
	"math"
	"runtime"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultNeighbors is the neighbourhood size when no graph is supplied.
	DefaultNeighbors = 200

	// DefaultTolerance zeroes normalized transition probabilities at or below it.
	DefaultTolerance = 1e-4

	// DefaultQPMaxIter bounds the projected-gradient iterations per state.
	DefaultQPMaxIter = 5000

	// DefaultQPTolerance stops the QP when no coordinate moves more than this.
	DefaultQPTolerance = 1e-10

	// DefaultSeed drives neighbour down-sampling.
	DefaultSeed uint64 = 1
)

// DegeneratePolicy decides what happens to a state whose kernel weights vanish.
type DegeneratePolicy int

const (
	// DegenerateAbort fails the fit with a *StateError wrapping ErrDegenerateKernel.
	DegenerateAbort DegeneratePolicy = iota
	// DegenerateSelfLoop keeps all of the state's mass on itself and records it in FitReport.Degenerate.
	DegenerateSelfLoop
)

// Method selects how DiscreteChain estimates transition probabilities.
type Method int

const (
	// MethodQP solves a per-state quadratic programme over neighbour displacements.
	MethodQP Method = iota
	// MethodKernel uses the drift kernel with a diffusion matrix.
	MethodKernel
)

// String implements fmt.Stringer.
func (m Method) String() string {
	switch m {
	case MethodQP:
		return "qp"
	case MethodKernel:
		return "kernel"
	default:
		return "unknown"
	}
}

// Option configures fitting. Options are applied in order (last writer wins).
type Option func(*options)

type options struct {
	k              int
	graph          *neighbors.Graph
	strategy       neighbors.Strategy
	epsilon        float64
	adaptive       bool
	tol            float64
	sampleFraction float64
	seed           uint64
	workers        int
	logger         *slog.Logger
	degenerate     DegeneratePolicy
	method         Method
	diffusion      *matrix.Dense
	diffusionVec   []float64
	qpMaxIter      int
	qpTol          float64
}

func gather(opts ...Option) options {
	o := options{
		k:         DefaultNeighbors,
		strategy:  neighbors.DefaultStrategy,
		tol:       DefaultTolerance,
		seed:      DefaultSeed,
		workers:   runtime.GOMAXPROCS(0),
		logger:    slog.New(slog.DiscardHandler),
		qpMaxIter: DefaultQPMaxIter,
		qpTol:     DefaultQPTolerance,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func finiteNonNeg(v float64) bool { return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }

// WithNeighbors sets k for the neighbour search. Panics when k < 1.
func WithNeighbors(k int) Option {
	if k < 1 {
		panic("markov: WithNeighbors: k must be >= 1")
	}
	return func(o *options) { o.k = k }
}

// WithGraph supplies a precomputed neighbour graph; k and the search strategy are ignored.
func WithGraph(g *neighbors.Graph) Option { return func(o *options) { o.graph = g } }

// WithStrategy selects the neighbour search structure.
func WithStrategy(s neighbors.Strategy) Option { return func(o *options) { o.strategy = s } }

// WithDensityCorrection divides drift weights by the density kernel column sums
// with bandwidth epsilon. Panics unless epsilon > 0 and finite.
func WithDensityCorrection(epsilon float64) Option {
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		panic("markov: WithDensityCorrection: epsilon must be finite and > 0")
	}
	return func(o *options) { o.epsilon = epsilon }
}

// WithAdaptiveKernel switches to the locally adaptive drift kernel.
func WithAdaptiveKernel() Option { return func(o *options) { o.adaptive = true } }

// WithTolerance sets the zeroing tolerance. Panics when tol is negative or non-finite.
func WithTolerance(tol float64) Option {
	if !finiteNonNeg(tol) {
		panic("markov: WithTolerance: tol must be finite and >= 0")
	}
	return func(o *options) { o.tol = tol }
}

// WithSampleFraction thins every neighbourhood to the given fraction of its
// interior ranks before kernel evaluation. Panics unless 0 < f <= 1.
func WithSampleFraction(f float64) Option {
	if !(f > 0 && f <= 1) {
		panic("markov: WithSampleFraction: fraction must be in (0, 1]")
	}
	return func(o *options) { o.sampleFraction = f }
}

// WithSeed sets the down-sampling seed.
func WithSeed(seed uint64) Option { return func(o *options) { o.seed = seed } }

// WithWorkers bounds per-state parallelism. Panics when n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("markov: WithWorkers: n must be >= 1")
	}
	return func(o *options) { o.workers = n }
}

// WithLogger routes debug output to l. A nil logger keeps the discard default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDegeneratePolicy selects the handling of states with vanishing weights.
func WithDegeneratePolicy(p DegeneratePolicy) Option { return func(o *options) { o.degenerate = p } }

// WithMethod selects the DiscreteChain estimator.
func WithMethod(m Method) Option { return func(o *options) { o.method = m } }

// WithDiffusionMatrix sets the d×d diffusion matrix of the kernel method.
func WithDiffusionMatrix(m *matrix.Dense) Option { return func(o *options) { o.diffusion = m } }

// WithDiffusionVector sets per-dimension diffusion coefficients for the QP,
// adding second-order moment constraints.
func WithDiffusionVector(s []float64) Option {
	return func(o *options) { o.diffusionVec = append([]float64(nil), s...) }
}

// WithQPLimits bounds the QP solver. Panics on non-positive values.
func WithQPLimits(maxIter int, tol float64) Option {
	if maxIter < 1 || !(tol > 0) {
		panic("markov: WithQPLimits: maxIter and tol must be positive")
	}
	return func(o *options) { o.qpMaxIter, o.qpTol = maxIter, tol }
}
