// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels/facades minimal by delegating shape/nil/symmetry checks here.
//  - Return tagged sentinel errors so call sites can wrap uniformly.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.
//  - Symmetry check runs O(n²) on the upper triangle only.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// A typed nil pointer stored in the interface is also rejected.
func ValidateNotNil(m Matrix) error {
	switch t := m.(type) {
	case nil:
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	case *Dense:
		if t == nil {
			return validatorErrorf("ValidateNotNil", ErrNilMatrix)
		}
	case *CSC:
		if t == nil {
			return validatorErrorf("ValidateNotNil", ErrNilMatrix)
		}
	}

	return nil
}

// ValidateSquare ensures m is non-nil and square.
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateMulCompatible ensures a.Cols == b.Rows for a*b.
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen ensures len(x) == n.
func ValidateVecLen(x []float64, n int) error {
	if x == nil || len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric ensures m is square and |m[i,j]-m[j,i]| <= eps on the upper triangle.
func ValidateSymmetric(m Matrix, eps float64) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	n := m.Rows()
	var i, j int
	var aij, aji float64
	var err error
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			if aij, err = m.At(i, j); err != nil {
				return err
			}
			if aji, err = m.At(j, i); err != nil {
				return err
			}
			if math.Abs(aij-aji) > eps {
				return validatorErrorf("ValidateSymmetric", ErrAsymmetry)
			}
		}
	}

	return nil
}

// ValidateFinite ensures every element of m is finite.
func ValidateFinite(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if d, ok := m.(*Dense); ok {
		for _, v := range d.data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validatorErrorf("ValidateFinite", ErrNaNInf)
			}
		}

		return nil
	}
	if s, ok := m.(*CSC); ok {
		for _, v := range s.val {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validatorErrorf("ValidateFinite", ErrNaNInf)
			}
		}

		return nil
	}
	var i, j int
	var v float64
	var err error
	for i = 0; i < m.Rows(); i++ {
		for j = 0; j < m.Cols(); j++ {
			if v, err = m.At(i, j); err != nil {
				return err
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validatorErrorf("ValidateFinite", ErrNaNInf)
			}
		}
	}

	return nil
}

// ValidateColumnStochastic ensures every column of m is non-negative and sums
// to one within the configured epsilon (WithEpsilon).
func ValidateColumnStochastic(m Matrix, opts ...Option) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	eps := gatherOptions(opts...).eps
	sums, err := ColSums(m)
	if err != nil {
		return err
	}
	if neg := minEntry(m); neg < 0 {
		return validatorErrorf("ValidateColumnStochastic", ErrNotStochastic)
	}
	for _, s := range sums {
		if math.Abs(s-1) > eps {
			return validatorErrorf("ValidateColumnStochastic", ErrNotStochastic)
		}
	}

	return nil
}

// minEntry returns the smallest stored entry of m (0 for an all-empty sparse matrix).
func minEntry(m Matrix) float64 {
	lo := math.Inf(1)
	switch t := m.(type) {
	case *Dense:
		for _, v := range t.data {
			lo = math.Min(lo, v)
		}
	case *CSC:
		for _, v := range t.val {
			lo = math.Min(lo, v)
		}
	default:
		for i := 0; i < m.Rows(); i++ {
			for j := 0; j < m.Cols(); j++ {
				v, _ := m.At(i, j)
				lo = math.Min(lo, v)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0
	}

	return lo
}
