// SPDX-License-Identifier: MIT

// Package matrix: functional configuration of the numeric policy.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that resolves the effective policy.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon defines the non-negative tolerance used by structural checks
	// (symmetry, column sums, imaginary-part cut-off in spectral kernels).
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation on Set.
	DefaultValidateNaNInf = true
)

const panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	eps            float64 // >= 0; DefaultEpsilon
	validateNaNInf bool    // DefaultValidateNaNInf
}

// WithEpsilon sets the numeric tolerance eps used by structural checks.
// Panics when eps is NaN, Inf or negative (programmer error).
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithValidateNaNInf enables strict finite-value validation (default).
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf disables NaN/Inf validation on newly created matrices.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// Epsilon reports the resolved tolerance.
func (o Options) Epsilon() float64 { return o.eps }

// ValidateNaNInf reports whether finite-value validation is on.
func (o Options) ValidateNaNInf() bool { return o.validateNaNInf }

// NewOptions resolves user options over the documented defaults.
func NewOptions(opts ...Option) Options {
	return gatherOptions(opts...)
}

// gatherOptions applies setters in order (last writer wins).
func gatherOptions(user ...Option) Options {
	o := Options{eps: DefaultEpsilon, validateNaNInf: DefaultValidateNaNInf}
	for _, fn := range user {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}

// NewDenseWithOptions is NewDense with an explicit numeric policy.
func NewDenseWithOptions(rows, cols int, opts ...Option) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	m.validateNaNInf = gatherOptions(opts...).validateNaNInf

	return m, nil
}
