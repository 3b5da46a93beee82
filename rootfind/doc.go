// Package rootfind solves square nonlinear systems f(x) = 0 by damped Newton
// iteration. Each step factors the Jacobian with Householder QR (J ≈ QᵀR) and
// backtracks along the Newton direction until ‖f‖ decreases. The factors of
// the last Jacobian are returned with the solution so callers can recover J
// without re-evaluating it.
//
// Iterations are bounded; a seed that does not converge yields
// ErrNonConvergent together with the best iterate found.
package rootfind
