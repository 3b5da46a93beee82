// SPDX-License-Identifier: MIT

// Package matrix - compressed sparse column (CSC) storage.
//
// Purpose:
//   - Hold transition matrices whose column i is the outgoing distribution of state i.
//   - Immutable after construction: Set returns ErrReadOnly; rebuild through Builder.
//   - Column access is O(nnz(col)); At is O(log nnz(col)) by binary search.
//
// Layout:
//   - colPtr has c+1 entries; column j occupies rowIdx/val[colPtr[j]:colPtr[j+1]].
//   - Row indices within a column are strictly increasing (no duplicates).

package matrix

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	opSparseMul    = "MulSparse"
	opSparseMatVec = "CSC.MatVec"
)

// CSC is a read-only compressed sparse column matrix.
type CSC struct {
	r, c   int
	colPtr []int
	rowIdx []int
	val    []float64
}

var _ Matrix = (*CSC)(nil)

// Rows returns the row count.
func (s *CSC) Rows() int { return s.r }

// Cols returns the column count.
func (s *CSC) Cols() int { return s.c }

// NNZ returns the number of stored entries.
func (s *CSC) NNZ() int { return len(s.val) }

// At returns s[i,j] (zero when not stored) or ErrOutOfRange.
func (s *CSC) At(i, j int) (float64, error) {
	if i < 0 || i >= s.r || j < 0 || j >= s.c {
		return 0, fmt.Errorf("CSC.At(%d,%d): %w", i, j, ErrOutOfRange)
	}
	lo, hi := s.colPtr[j], s.colPtr[j+1]
	k := lo + sort.SearchInts(s.rowIdx[lo:hi], i)
	if k < hi && s.rowIdx[k] == i {
		return s.val[k], nil
	}

	return 0, nil
}

// Set always fails: CSC storage is immutable.
func (s *CSC) Set(i, j int, _ float64) error {
	return fmt.Errorf("CSC.Set(%d,%d): %w", i, j, ErrReadOnly)
}

// Clone returns a deep copy.
func (s *CSC) Clone() Matrix { return s.clone() }

func (s *CSC) clone() *CSC {
	return &CSC{
		r:      s.r,
		c:      s.c,
		colPtr: append([]int(nil), s.colPtr...),
		rowIdx: append([]int(nil), s.rowIdx...),
		val:    append([]float64(nil), s.val...),
	}
}

// Column returns the stored rows and values of column j.
// The slices share storage with s and must not be modified.
func (s *CSC) Column(j int) (rows []int, vals []float64) {
	lo, hi := s.colPtr[j], s.colPtr[j+1]

	return s.rowIdx[lo:hi:hi], s.val[lo:hi:hi]
}

// ColumnDense returns column j expanded to a length-Rows vector.
func (s *CSC) ColumnDense(j int) []float64 {
	out := make([]float64, s.r)
	rows, vals := s.Column(j)
	for k, i := range rows {
		out[i] = vals[k]
	}

	return out
}

// Do calls f for every stored entry in column-major order.
func (s *CSC) Do(f func(i, j int, v float64)) {
	var j, k int
	for j = 0; j < s.c; j++ {
		for k = s.colPtr[j]; k < s.colPtr[j+1]; k++ {
			f(s.rowIdx[k], j, s.val[k])
		}
	}
}

// MatVec computes y = s*x.
func (s *CSC) MatVec(x []float64) ([]float64, error) {
	if err := ValidateVecLen(x, s.c); err != nil {
		return nil, matrixErrorf(opSparseMatVec, err)
	}
	y := make([]float64, s.r)
	var j, k int
	for j = 0; j < s.c; j++ {
		if x[j] == 0 {
			continue
		}
		for k = s.colPtr[j]; k < s.colPtr[j+1]; k++ {
			y[s.rowIdx[k]] += s.val[k] * x[j]
		}
	}

	return y, nil
}

// ToDense expands s into a Dense matrix.
func (s *CSC) ToDense() *Dense {
	d := &Dense{r: s.r, c: s.c, data: make([]float64, s.r*s.c), validateNaNInf: DefaultValidateNaNInf}
	s.Do(func(i, j int, v float64) { d.data[i*s.c+j] = v })

	return d
}

// ToGonum expands s into a gonum dense matrix.
func (s *CSC) ToGonum() *mat.Dense {
	g := mat.NewDense(s.r, s.c, nil)
	s.Do(func(i, j int, v float64) { g.Set(i, j, v) })

	return g
}

// Transpose returns sᵀ as a new CSC.
func (s *CSC) Transpose() *CSC {
	b := &Builder{r: s.c, c: s.r, entries: make([]Entry, 0, len(s.val))}
	s.Do(func(i, j int, v float64) { b.entries = append(b.entries, Entry{Row: j, Col: i, Val: v}) })
	out, _ := b.Build()

	return out
}

// DenseToCSC compresses d, dropping exact zeros.
func DenseToCSC(d *Dense) *CSC {
	b := &Builder{r: d.r, c: d.c}
	var i, j int
	var v float64
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			if v = d.data[i*d.c+j]; v != 0 {
				b.entries = append(b.entries, Entry{Row: i, Col: j, Val: v})
			}
		}
	}
	out, _ := b.Build()

	return out
}

// MulSparse computes a*b column by column (Gustavson). Exact zeros produced by
// cancellation are kept out of the result.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(Σ_j Σ_{k∈b[:,j]} nnz(a[:,k])), Space O(a.r) scratch + result.
func MulSparse(a, b *CSC) (*CSC, error) {
	if a == nil || b == nil {
		return nil, matrixErrorf(opSparseMul, ErrNilMatrix)
	}
	if a.c != b.r {
		return nil, matrixErrorf(opSparseMul, ErrDimensionMismatch)
	}
	out := &CSC{r: a.r, c: b.c, colPtr: make([]int, b.c+1)}
	acc := make([]float64, a.r)
	mark := make([]int, a.r)
	for i := range mark {
		mark[i] = -1
	}
	touched := make([]int, 0, a.r)
	var j, kb, ka, row int
	var bv float64
	for j = 0; j < b.c; j++ {
		touched = touched[:0]
		for kb = b.colPtr[j]; kb < b.colPtr[j+1]; kb++ {
			bv = b.val[kb]
			col := b.rowIdx[kb]
			for ka = a.colPtr[col]; ka < a.colPtr[col+1]; ka++ {
				row = a.rowIdx[ka]
				if mark[row] != j {
					mark[row] = j
					acc[row] = 0
					touched = append(touched, row)
				}
				acc[row] += a.val[ka] * bv
			}
		}
		sort.Ints(touched)
		for _, row = range touched {
			if acc[row] != 0 {
				out.rowIdx = append(out.rowIdx, row)
				out.val = append(out.val, acc[row])
			}
		}
		out.colPtr[j+1] = len(out.val)
	}

	return out, nil
}
