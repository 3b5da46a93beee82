// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - General (non-symmetric) eigen decomposition for transition matrices.
//   - Null-space extraction via SVD for stationary-state problems.
//
// Determinism & Performance:
//   - Eigenpairs are returned sorted by descending real part, ties by descending imaginary part.
//   - Dense only: both routines materialise the input as a gonum *mat.Dense.

package matrix

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	opEigen     = "Eigen"
	opNullSpace = "NullSpace"
)

// EigenSystem holds sorted eigenvalues with matching right (and optionally left) eigenvectors.
// Column j of Right/Left belongs to Values[j].
type EigenSystem struct {
	Values []complex128
	Right  *mat.CDense
	Left   *mat.CDense
}

// Len returns the number of eigenpairs.
func (e *EigenSystem) Len() int { return len(e.Values) }

// RealRight returns the real part of the j-th right eigenvector.
func (e *EigenSystem) RealRight(j int) []float64 { return realColumn(e.Right, j) }

// RealLeft returns the real part of the j-th left eigenvector; nil when Left was not computed.
func (e *EigenSystem) RealLeft(j int) []float64 {
	if e.Left == nil {
		return nil
	}
	return realColumn(e.Left, j)
}

func realColumn(m *mat.CDense, j int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = real(m.At(i, j))
	}
	return out
}

// Eigen decomposes a square matrix and sorts eigenpairs by descending real part.
// Implementation:
//   - Stage 1: ValidateSquare; convert to gonum.
//   - Stage 2: mat.Eigen with EigenRight (or EigenBoth when left is requested).
//   - Stage 3: Stable-sort indices by -Re(λ) and permute vector columns accordingly.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrMatrixEigenFailed (factorization did not converge).
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Eigen(m Matrix, left bool) (*EigenSystem, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opEigen, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opEigen, err)
	}
	kind := mat.EigenRight
	if left {
		kind = mat.EigenBoth
	}
	var eig mat.Eigen
	if ok := eig.Factorize(d.ToGonum(), kind); !ok {
		return nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}
	vals := eig.Values(nil)
	var right mat.CDense
	eig.VectorsTo(&right)

	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := vals[order[a]], vals[order[b]]
		if real(va) != real(vb) {
			return real(va) > real(vb)
		}
		return imag(va) > imag(vb)
	})

	sys := &EigenSystem{
		Values: make([]complex128, len(vals)),
		Right:  permuteColumns(&right, order),
	}
	for i, o := range order {
		sys.Values[i] = vals[o]
	}
	if left {
		var lv mat.CDense
		eig.LeftVectorsTo(&lv)
		sys.Left = permuteColumns(&lv, order)
	}

	return sys, nil
}

func permuteColumns(src *mat.CDense, order []int) *mat.CDense {
	r, c := src.Dims()
	out := mat.NewCDense(r, c, nil)
	for j, o := range order {
		for i := 0; i < r; i++ {
			out.Set(i, j, src.At(i, o))
		}
	}
	return out
}

// NullSpace returns an orthonormal basis of ker(m) as columns of a Dense.
// A right singular vector belongs to the kernel when its singular value is
// <= tol * max(σ). A 0-column result is reported as (nil, nil).
//
// Errors:
//   - ErrNilMatrix, ErrMatrixEigenFailed (SVD did not converge).
func NullSpace(m Matrix, tol float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opNullSpace, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opNullSpace, err)
	}
	var svd mat.SVD
	if ok := svd.Factorize(d.ToGonum(), mat.SVDFull); !ok {
		return nil, matrixErrorf(opNullSpace, ErrMatrixEigenFailed)
	}
	sv := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	n := d.c
	smax := 0.0
	for _, s := range sv {
		smax = math.Max(smax, s)
	}
	var keep []int
	for j := 0; j < n; j++ {
		// Columns beyond len(sv) have an implicit zero singular value.
		if j >= len(sv) || sv[j] <= tol*smax {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return nil, nil
	}
	out, err := NewDense(n, len(keep))
	if err != nil {
		return nil, matrixErrorf(opNullSpace, err)
	}
	for k, j := range keep {
		for i := 0; i < n; i++ {
			out.data[i*len(keep)+k] = v.At(i, j)
		}
	}

	return out, nil
}
