package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/cellflow/markov"
	"github.com/katalvlaran/cellflow/neighbors"
	"github.com/katalvlaran/cellflow/rootfind"
	"github.com/katalvlaran/cellflow/topology"
)

// ErrInvalid wraps every decoding or validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

var validate = validator.New()

// Config is the root document.
type Config struct {
	Markov   MarkovConfig   `yaml:"markov"`
	Topology TopologyConfig `yaml:"topology"`
}

// MarkovConfig mirrors the markov fitting options.
type MarkovConfig struct {
	Method         string  `yaml:"method" validate:"oneof=qp kernel"`
	Neighbors      int     `yaml:"neighbors" validate:"gte=1"`
	Strategy       string  `yaml:"strategy" validate:"oneof=kdtree bruteforce"`
	DensityEpsilon float64 `yaml:"density_epsilon" validate:"gte=0"`
	Adaptive       bool    `yaml:"adaptive"`
	Tolerance      float64 `yaml:"tolerance" validate:"gte=0"`
	SampleFraction float64 `yaml:"sample_fraction" validate:"omitempty,gt=0,lte=1"`
	Seed           uint64  `yaml:"seed"`
	Workers        int     `yaml:"workers" validate:"gte=0"`
	Degenerate     string  `yaml:"degenerate" validate:"oneof=abort self_loop"`
	QPMaxIter      int     `yaml:"qp_max_iter" validate:"gte=1"`
	QPTolerance    float64 `yaml:"qp_tolerance" validate:"gt=0"`
}

// IntervalConfig is one axis of a domain.
type IntervalConfig struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi" validate:"gtefield=Lo"`
}

// SeparatrixConfig mirrors topology.SeparatrixOptions.
type SeparatrixConfig struct {
	Horizon float64 `yaml:"horizon" validate:"gt=0"`
	Samples int     `yaml:"samples" validate:"gte=2"`
	Epsilon float64 `yaml:"epsilon" validate:"gt=0"`
}

// TopologyConfig mirrors topology.Options.
type TopologyConfig struct {
	Tolerance     float64          `yaml:"tolerance" validate:"gte=0"`
	Domain        []IntervalConfig `yaml:"domain" validate:"omitempty,dive"`
	Workers       int              `yaml:"workers" validate:"gte=0"`
	Seed          uint64           `yaml:"seed"`
	SolverMaxIter int              `yaml:"solver_max_iter" validate:"gte=1"`
	SolverFTol    float64          `yaml:"solver_ftol" validate:"gt=0"`
	Separatrix    SeparatrixConfig `yaml:"separatrix"`
}

// Default returns a configuration equal to the package defaults.
func Default() *Config {
	so := topology.DefaultSeparatrixOptions()
	return &Config{
		Markov: MarkovConfig{
			Method:      markov.MethodQP.String(),
			Neighbors:   markov.DefaultNeighbors,
			Strategy:    neighbors.DefaultStrategy.String(),
			Tolerance:   markov.DefaultTolerance,
			Seed:        markov.DefaultSeed,
			Degenerate:  "abort",
			QPMaxIter:   markov.DefaultQPMaxIter,
			QPTolerance: markov.DefaultQPTolerance,
		},
		Topology: TopologyConfig{
			Tolerance:     topology.DefaultTolerance,
			Seed:          topology.DefaultOptions().Seed,
			SolverMaxIter: rootfind.DefaultMaxIter,
			SolverFTol:    rootfind.DefaultFTol,
			Separatrix: SeparatrixConfig{
				Horizon: so.Horizon,
				Samples: so.Samples,
				Epsilon: so.Epsilon,
			},
		},
	}
}

// Parse decodes data over Default and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalid, ve[0].Namespace(), ve[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// MarkovOptions converts the markov section. logger may be nil.
func (c *Config) MarkovOptions(logger *slog.Logger) []markov.Option {
	m := c.Markov
	method := markov.MethodQP
	if m.Method == markov.MethodKernel.String() {
		method = markov.MethodKernel
	}
	strategy := neighbors.StrategyKDTree
	if m.Strategy == neighbors.StrategyBruteForce.String() {
		strategy = neighbors.StrategyBruteForce
	}
	policy := markov.DegenerateAbort
	if m.Degenerate == "self_loop" {
		policy = markov.DegenerateSelfLoop
	}
	opts := []markov.Option{
		markov.WithMethod(method),
		markov.WithNeighbors(m.Neighbors),
		markov.WithStrategy(strategy),
		markov.WithTolerance(m.Tolerance),
		markov.WithSeed(m.Seed),
		markov.WithDegeneratePolicy(policy),
		markov.WithQPLimits(m.QPMaxIter, m.QPTolerance),
		markov.WithLogger(logger),
	}
	if m.SampleFraction > 0 {
		opts = append(opts, markov.WithSampleFraction(m.SampleFraction))
	}
	if m.DensityEpsilon > 0 {
		opts = append(opts, markov.WithDensityCorrection(m.DensityEpsilon))
	}
	if m.Adaptive {
		opts = append(opts, markov.WithAdaptiveKernel())
	}
	if m.Workers > 0 {
		opts = append(opts, markov.WithWorkers(m.Workers))
	}
	return opts
}

// TopologyOptions converts the topology section. logger may be nil.
func (c *Config) TopologyOptions(logger *slog.Logger) topology.Options {
	t := c.Topology
	o := topology.DefaultOptions()
	o.Tolerance = t.Tolerance
	o.Seed = t.Seed
	o.Logger = logger
	if t.Workers > 0 {
		o.Workers = t.Workers
	}
	o.Solver.MaxIter = t.SolverMaxIter
	o.Solver.FTol = t.SolverFTol
	o.Separatrix.Horizon = t.Separatrix.Horizon
	o.Separatrix.Samples = t.Separatrix.Samples
	o.Separatrix.Epsilon = t.Separatrix.Epsilon
	for _, iv := range t.Domain {
		o.Domain = append(o.Domain, topology.Interval{Lo: iv.Lo, Hi: iv.Hi})
	}
	return o
}
