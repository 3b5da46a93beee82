// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Serve as the point-cloud container (n×d, one point per row) for the kernel engine.
//   - Bridge to gonum/mat for the spectral kernels that need LAPACK-grade routines.
//
// AI-Hints:
//   - Hot loops (kernels, transition assembly) read rows through RawRow to avoid At overhead.
//   - Use Induced(rows) to gather a neighbourhood X[idx] as an independent copy.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); RawRow: O(1); Induced: O(k*c).

package matrix

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ---------- error context tags ----------

const (
	ctxAt      = "At"      // method tag used in error wrappers
	ctxSet     = "Set"     // method tag used in error wrappers
	ctxInduce  = "Induced" // tag for Dense.Induced
	ctxFromRow = "FromRows"
)

// ---------- Formatting literals ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Keep tags in constants for grep-ability.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - validateNaNInf enables NaN/Inf rejection in Set.
type Dense struct {
	r, c           int       // row and column counts
	data           []float64 // contiguous row-major storage (len == r*c)
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Errors:
//   - ErrInvalidDimensions when rows<=0 or cols<=0.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{
		r:              rows,
		c:              cols,
		data:           make([]float64, rows*cols),
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// NewDenseFromRows copies a rectangular [][]float64 into a fresh Dense.
// Every row must have the same non-zero length and hold finite values.
//
// Errors:
//   - ErrInvalidDimensions for an empty input or empty rows.
//   - ErrDimensionMismatch for ragged rows.
//   - ErrNaNInf for non-finite entries.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDenseFromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	r, c := len(rows), len(rows[0])
	m, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	var i, j int
	var v float64
	for i = 0; i < r; i++ {
		if len(rows[i]) != c {
			return nil, denseErrorf(ctxFromRow, i, len(rows[i]), ErrDimensionMismatch)
		}
		for j = 0; j < c; j++ {
			v = rows[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, denseErrorf(ctxFromRow, i, j, ErrNaNInf)
			}
			m.data[i*c+j] = v
		}
	}

	return m, nil
}

// NewIdentity returns the n×n identity matrix.
func NewIdentity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}

	return m, nil
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Public methods (At/Set) wrap the sentinel with coordinates and method name.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite v when the policy is on.
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy (new buffer, same numeric policy).
func (m *Dense) Clone() Matrix {
	return m.clone()
}

// clone is the typed variant of Clone used by internal kernels.
func (m *Dense) clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp, validateNaNInf: m.validateNaNInf}
}

// RawRow returns row i as a slice sharing storage with m.
// Mutations through the slice bypass the numeric policy. Panics on an invalid
// row index; this is the hot-path accessor for internal kernels.
func (m *Dense) RawRow(i int) []float64 {
	return m.data[i*m.c : (i+1)*m.c : (i+1)*m.c]
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxAt, i, 0, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.RawRow(i))

	return out, nil
}

// RawData exposes the flat row-major buffer (shared, not copied).
func (m *Dense) RawData() []float64 { return m.data }

// Induced gathers the given rows into a new Dense (len(rowsIdx)×Cols).
// Row indices may repeat; order is preserved.
//
// Errors:
//   - ErrInvalidDimensions for an empty index set.
//   - ErrOutOfRange when any index is invalid.
//
// Complexity:
//   - Time O(k*c), Space O(k*c).
func (m *Dense) Induced(rowsIdx []int) (*Dense, error) {
	if len(rowsIdx) == 0 {
		return nil, ErrInvalidDimensions
	}
	out, err := NewDense(len(rowsIdx), m.c)
	if err != nil {
		return nil, err
	}
	var k, i int
	for k, i = range rowsIdx {
		if i < 0 || i >= m.r {
			return nil, denseErrorf(ctxInduce, i, 0, ErrOutOfRange)
		}
		copy(out.data[k*m.c:(k+1)*m.c], m.data[i*m.c:(i+1)*m.c])
	}

	return out, nil
}

// ToGonum returns an independent gonum copy of m.
func (m *Dense) ToGonum() *mat.Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return mat.NewDense(m.r, m.c, cp)
}

// FromGonum copies any gonum matrix into a fresh Dense.
func FromGonum(g mat.Matrix) (*Dense, error) {
	r, c := g.Dims()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	var i, j int
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			out.data[i*c+j] = g.At(i, j)
		}
	}

	return out, nil
}

// String renders rows as lines with comma-separated values. Not for hot paths.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// Apply replaces every element with f(i, j, v), honoring the numeric policy.
// Iteration is i→j (row-major). Stops at the first policy violation.
func (m *Dense) Apply(f func(i, j int, v float64) float64) error {
	var i, j, base int
	var nv float64
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			nv = f(i, j, m.data[base+j])
			if m.validateNaNInf && (math.IsNaN(nv) || math.IsInf(nv, 0)) {
				return denseErrorf(ctxSet, i, j, ErrNaNInf)
			}
			m.data[base+j] = nv
		}
	}

	return nil
}
