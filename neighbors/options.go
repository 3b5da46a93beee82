package neighbors

import "runtime"

// Strategy selects the search structure used by Build.
type Strategy int

const (
	// StrategyKDTree uses a gonum k-d tree.
	StrategyKDTree Strategy = iota
	// StrategyBruteForce scans every point per query.
	StrategyBruteForce
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case StrategyKDTree:
		return "kdtree"
	case StrategyBruteForce:
		return "bruteforce"
	default:
		return "unknown"
	}
}

const (
	// DefaultStrategy is the search structure used when none is given.
	DefaultStrategy = StrategyKDTree
	// DefaultIncludeSelf keeps the query point at rank 0.
	DefaultIncludeSelf = true
)

// Option configures Build.
type Option func(*options)

type options struct {
	strategy    Strategy
	includeSelf bool
	workers     int
}

// WithStrategy selects the search structure.
func WithStrategy(s Strategy) Option { return func(o *options) { o.strategy = s } }

// WithIncludeSelf controls whether point i appears in its own neighbour row.
func WithIncludeSelf(include bool) Option { return func(o *options) { o.includeSelf = include } }

// WithWorkers bounds query parallelism. Panics when n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("neighbors: WithWorkers: n must be >= 1")
	}
	return func(o *options) { o.workers = n }
}

func gather(opts ...Option) options {
	o := options{
		strategy:    DefaultStrategy,
		includeSelf: DefaultIncludeSelf,
		workers:     runtime.GOMAXPROCS(0),
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
