// Package matrix provides the numeric storage and linear-algebra kernels the
// Markov and topology engines are built on.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set and
//     conversions to and from gonum's *mat.Dense.
//   - CSC, an immutable compressed sparse column matrix assembled through a
//     COO Builder; column j of a transition matrix is the outgoing
//     distribution of state j.
//   - Kernels: Mul, MatVec, Transpose, Doolittle LU, Inverse, Householder QR
//     (A ≈ Qᵀ R) with SolveQR, Jacobi EigenSym for symmetric input, general
//     Eigen sorted by descending real part, and NullSpace via SVD.
//   - Column statistics (ColumnMeans, Covariance).
//
// All routines validate shapes up front and return sentinel errors wrapped
// with the operation name; match them with errors.Is.
package matrix
