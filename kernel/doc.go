// Package kernel evaluates the pointwise transition kernels of the Markov
// engine over a neighbourhood of a query point.
//
// Three evaluators are provided:
//
//   - Drift:      k_i = exp(-0.25 (d_i - v)ᵀ S⁻¹ (d_i - v)), d_i = X_i - x.
//   - Density:    k_i = exp(-0.25 ε⁻¹ d_i·d_i).
//   - LocalDrift: Drift with v and S⁻¹ rescaled by a per-point time scale τ.
//
// Weights are never normalized here; normalization belongs to the caller.
// Neighbourhoods are k×d matrix.Dense values, one neighbour per row.
package kernel
