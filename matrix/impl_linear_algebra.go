// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on any Matrix implementation:
// multiplication, matrix-vector products, transpose, Doolittle LU, inversion,
// Householder QR and Jacobi eigen sweeps for symmetric input. All functions
// perform strict fail-fast validation and return clear errors on dimension
// mismatches.
//
// Notes:
//   - Dense fast-paths operate on the flat buffer; other implementations go through At/Set.
//   - All kernels use central validators and wrap sentinels via matrixErrorf at the facade.

package matrix

import (
	"fmt"
	"math"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// ZeroSum is the initial sum value for forward/backward substitution and similar.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting a zero pivot in LU/Inverse routines.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opMul       = "Mul"
	opTranspose = "Transpose"
	opMatVec    = "MatVec"
	opEigenSym  = "EigenSym"
	opInverse   = "Inverse"
	opLU        = "LU"
	opQR        = "QR"
	opSolveQR   = "SolveQR"
	opColSums   = "ColSums"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// asDense returns m as *Dense, copying through At when m is another implementation.
func asDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}
	if s, ok := m.(*CSC); ok {
		return s.ToDense(), nil
	}
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	var i, j int
	var v float64
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			out.data[i*out.c+j] = v
		}
	}

	return out, nil
}

// Mul computes the matrix product a*b into a fresh Dense.
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b). Materialise both operands as *Dense.
//   - Stage 2: i→k→j loop order so the inner loop walks both rows contiguously.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	ad, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	bd, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	out, err := NewDense(ad.r, bd.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var i, k, j, baseA, baseB, baseO int
	var aik float64
	for i = 0; i < ad.r; i++ {
		baseA = i * ad.c
		baseO = i * bd.c
		for k = 0; k < ad.c; k++ {
			aik = ad.data[baseA+k]
			if aik == 0 {
				continue
			}
			baseB = k * bd.c
			for j = 0; j < bd.c; j++ {
				out.data[baseO+j] += aik * bd.data[baseB+j]
			}
		}
	}

	return out, nil
}

// MatVec computes y = m*x.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (len(x) != Cols).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if s, ok := m.(*CSC); ok {
		return s.MatVec(x)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, d.r)
	var i, j, base int
	var acc float64
	for i = 0; i < d.r; i++ {
		acc = ZeroSum
		base = i * d.c
		for j = 0; j < d.c; j++ {
			acc += d.data[base+j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// Transpose returns mᵀ as a fresh Dense.
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	out, err := NewDense(d.c, d.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			out.data[j*d.r+i] = d.data[i*d.c+j]
		}
	}

	return out, nil
}

// ColSums returns the per-column sums of m (sparse fast-path walks stored entries only).
func ColSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opColSums, err)
	}
	out := make([]float64, m.Cols())
	if s, ok := m.(*CSC); ok {
		s.Do(func(_, j int, v float64) { out[j] += v })
		return out, nil
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opColSums, err)
	}
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			out[j] += d.data[i*d.c+j]
		}
	}

	return out, nil
}

// EigenSym computes eigenvalues and eigenvectors of a symmetric matrix via Jacobi sweeps.
// Implementation:
//   - Stage 1: Validate symmetric square input within tol.
//   - Stage 2: Repeatedly pick (p,q) with the largest |A[p,q]| in i→j order and apply a Jacobi rotation.
//
// Returns:
//   - []float64: eigenvalues (diagonal of the rotated matrix), unsorted.
//   - *Dense: Q whose columns are eigenvectors.
//
// Errors:
//   - ErrNonSquare, ErrAsymmetry, ErrMatrixEigenFailed (max off-diagonal ≥ tol after maxIter).
//
// Complexity:
//   - Time O(maxIter * n^2) per pivot scan + O(n) per rotation, Space O(n^2).
func EigenSym(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigenSym, err)
	}
	src, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigenSym, err)
	}
	n := src.r
	a := src.clone()
	q, _ := NewIdentity(n)

	var (
		iter, i, j, p, q0    int
		maxOff, off          float64
		app, aqq, apq        float64
		aip, aiq, qip, qiq   float64
		theta, t, c, s, newI float64
	)
	for iter = 0; iter < maxIter; iter++ {
		maxOff = NormZero
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				if off = math.Abs(a.data[i*n+j]); off > maxOff {
					maxOff, p, q0 = off, i, j
				}
			}
		}
		if maxOff < tol {
			break
		}
		app, aqq, apq = a.data[p*n+p], a.data[q0*n+q0], a.data[p*n+q0]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c
		for i = 0; i < n; i++ {
			if i == p || i == q0 {
				continue
			}
			aip, aiq = a.data[i*n+p], a.data[i*n+q0]
			newI = c*aip - s*aiq
			a.data[i*n+p], a.data[p*n+i] = newI, newI
			newI = s*aip + c*aiq
			a.data[i*n+q0], a.data[q0*n+i] = newI, newI
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		a.data[q0*n+q0] = s*s*app + 2*c*s*apq + c*c*aqq
		a.data[p*n+q0], a.data[q0*n+p] = 0, 0
		for i = 0; i < n; i++ {
			qip, qiq = q.data[i*n+p], q.data[i*n+q0]
			q.data[i*n+p] = c*qip - s*qiq
			q.data[i*n+q0] = s*qip + c*qiq
		}
	}
	maxOff = NormZero
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			maxOff = math.Max(maxOff, math.Abs(a.data[i*n+j]))
		}
	}
	if maxOff >= tol {
		return nil, nil, matrixErrorf(opEigenSym, ErrMatrixEigenFailed)
	}
	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}

	return eigs, q, nil
}

// LU computes the Doolittle factorization A = L*U with unit diagonal on L (no pivoting).
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrSingular (if U[i,i]==0 during factorization).
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
//
// Notes:
//   - Deterministic by construction; inputs are bandwidth/covariance matrices that
//     are symmetric positive definite, for which Doolittle without pivoting is stable.
func LU(m Matrix) (*Dense, *Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	a, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opLU, err)
	}
	n := a.r
	l, _ := NewIdentity(n)
	u, _ := NewDense(n, n)
	var i, j, k int
	var sum float64
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			sum = ZeroSum
			for k = 0; k < i; k++ {
				sum += l.data[i*n+k] * u.data[k*n+j]
			}
			u.data[i*n+j] = a.data[i*n+j] - sum
		}
		if u.data[i*n+i] == ZeroPivot {
			return nil, nil, matrixErrorf(opLU, ErrSingular)
		}
		for j = i + 1; j < n; j++ {
			sum = ZeroSum
			for k = 0; k < i; k++ {
				sum += l.data[j*n+k] * u.data[k*n+i]
			}
			l.data[j*n+i] = (a.data[j*n+i] - sum) / u.data[i*n+i]
		}
	}

	return l, u, nil
}

// Inverse computes A^{-1} from the Doolittle LU factors by solving L*U*x = e_col
// for every canonical basis column.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrSingular.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Inverse(m Matrix) (*Dense, error) {
	l, u, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := l.r
	inv, _ := NewDense(n, n)
	y := make([]float64, n)
	x := make([]float64, n)
	var col, i, k int
	var sum float64
	for col = 0; col < n; col++ {
		for i = 0; i < n; i++ {
			sum = ZeroSum
			for k = 0; k < i; k++ {
				sum += l.data[i*n+k] * y[k]
			}
			if i == col {
				y[i] = 1.0 - sum
			} else {
				y[i] = -sum
			}
		}
		for i = n - 1; i >= 0; i-- {
			sum = ZeroSum
			for k = i + 1; k < n; k++ {
				sum += u.data[i*n+k] * x[k]
			}
			x[i] = (y[i] - sum) / u.data[i*n+i]
		}
		for i = 0; i < n; i++ {
			inv.data[i*n+col] = x[i]
		}
	}

	return inv, nil
}

// QR computes a Householder-based factorization such that A ≈ Qᵀ * R.
// Implementation:
//   - Stage 1: Validate m (not nil, square); clone A; init Q to identity.
//   - Stage 2: For k=0..n-1, build a column reflector and apply it to A (forming R) and to Q.
//
// Returns:
//   - *Dense: Q (accumulated reflectors; note that A ≈ Qᵀ * R, not Q*R).
//   - *Dense: R (upper triangular after reflections).
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func QR(m Matrix) (*Dense, *Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	src, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	n := src.r
	a := src.clone()
	q, _ := NewIdentity(n)
	v := make([]float64, n)
	var (
		i, j, k                int
		norm, beta, alpha, tau float64
		sum                    float64
	)
	for k = 0; k < n; k++ {
		norm = NormZero
		for i = k; i < n; i++ {
			norm += a.data[i*n+k] * a.data[i*n+k]
		}
		norm = math.Sqrt(norm)
		if norm == NormZero {
			continue
		}
		alpha = -math.Copysign(norm, a.data[k*n+k])
		for i = 0; i < n; i++ {
			v[i] = 0
		}
		for i = k; i < n; i++ {
			v[i] = a.data[i*n+k]
		}
		v[k] -= alpha
		beta = NormZero
		for i = k; i < n; i++ {
			beta += v[i] * v[i]
		}
		if beta == NormZero {
			continue
		}
		tau = 2.0 / beta
		for j = k; j < n; j++ {
			sum = ZeroSum
			for i = k; i < n; i++ {
				sum += v[i] * a.data[i*n+j]
			}
			for i = k; i < n; i++ {
				a.data[i*n+j] -= tau * v[i] * sum
			}
		}
		for j = 0; j < n; j++ {
			sum = ZeroSum
			for i = k; i < n; i++ {
				sum += v[i] * q.data[i*n+j]
			}
			for i = k; i < n; i++ {
				q.data[i*n+j] -= tau * v[i] * sum
			}
		}
	}
	// Entries below the diagonal are round-off after the reflections.
	for i = 1; i < n; i++ {
		for j = 0; j < i; j++ {
			a.data[i*n+j] = 0
		}
	}

	return q, a, nil
}

// SolveQR solves A*x = b given the factors of QR (A ≈ Qᵀ R): x = R⁻¹ (Q b).
// A diagonal entry of R with magnitude <= rcond*max|diag(R)| is treated as singular.
//
// Errors:
//   - ErrDimensionMismatch, ErrSingular.
func SolveQR(q, r *Dense, b []float64, rcond float64) ([]float64, error) {
	if q == nil || r == nil {
		return nil, matrixErrorf(opSolveQR, ErrNilMatrix)
	}
	n := r.r
	if err := ValidateVecLen(b, n); err != nil {
		return nil, matrixErrorf(opSolveQR, err)
	}
	qb, err := MatVec(q, b)
	if err != nil {
		return nil, matrixErrorf(opSolveQR, err)
	}
	var i, k int
	var dmax float64
	for i = 0; i < n; i++ {
		dmax = math.Max(dmax, math.Abs(r.data[i*n+i]))
	}
	if dmax == 0 {
		return nil, matrixErrorf(opSolveQR, ErrSingular)
	}
	x := make([]float64, n)
	var sum, piv float64
	for i = n - 1; i >= 0; i-- {
		piv = r.data[i*n+i]
		if math.Abs(piv) <= rcond*dmax {
			return nil, matrixErrorf(opSolveQR, ErrSingular)
		}
		sum = ZeroSum
		for k = i + 1; k < n; k++ {
			sum += r.data[i*n+k] * x[k]
		}
		x[i] = (qb[i] - sum) / piv
	}

	return x, nil
}
