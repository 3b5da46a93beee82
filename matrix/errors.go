// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. Kernels return these sentinels (optionally wrapped with an operation
// tag) and tests match them via errors.Is. No kernel panics on user-triggered
// error conditions.

package matrix

import "errors"

// Every message is prefixed with "matrix: ..." for grep-ability. Kernels wrap
// with matrixErrorf(op, ErrX) at the facade; callers still match with errors.Is.

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., Mul where a.Cols != b.Rows, or a ragged row set.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated symmetry
	// within the configured tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrMatrixEigenFailed indicates that an eigen routine failed to converge.
	ErrMatrixEigenFailed = errors.New("matrix: eigen decomposition failed")

	// ErrSingular is returned when a zero pivot is encountered during LU/Inverse
	// or a zero diagonal of R is met in a triangular solve.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrNotStochastic is returned when a column of a transition matrix does not
	// sum to one within tolerance or holds a negative entry.
	ErrNotStochastic = errors.New("matrix: matrix is not column-stochastic")

	// ErrReadOnly is returned by mutators of immutable storage (compressed sparse).
	ErrReadOnly = errors.New("matrix: matrix is read-only")
)
