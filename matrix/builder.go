// SPDX-License-Identifier: MIT

// Package matrix - coordinate-list (COO) accumulation for sparse assembly.
//
// A Builder collects (row, col, value) triples and compresses them once into a
// CSC matrix. Duplicate coordinates are summed; exact zeros are dropped.
// Builders are not safe for concurrent use: parallel producers compute their
// columns into private slices and hand them over with AddColumn.

package matrix

import (
	"fmt"
	"sort"
)

const opBuild = "Builder.Build"

// Builder accumulates entries for a rows×cols sparse matrix.
type Builder struct {
	r, c    int
	entries []Entry
}

// NewBuilder starts an empty rows×cols assembly.
//
// Errors:
//   - ErrInvalidDimensions when rows<=0 or cols<=0.
func NewBuilder(rows, cols int) (*Builder, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Builder{r: rows, c: cols}, nil
}

// Reserve grows the internal capacity for n more entries.
func (b *Builder) Reserve(n int) {
	if cap(b.entries)-len(b.entries) < n {
		grown := make([]Entry, len(b.entries), len(b.entries)+n)
		copy(grown, b.entries)
		b.entries = grown
	}
}

// Add appends v at (i, j). Zero values are accepted and dropped at Build.
func (b *Builder) Add(i, j int, v float64) error {
	if i < 0 || i >= b.r || j < 0 || j >= b.c {
		return fmt.Errorf("Builder.Add(%d,%d): %w", i, j, ErrOutOfRange)
	}
	b.entries = append(b.entries, Entry{Row: i, Col: j, Val: v})

	return nil
}

// AddColumn scatters vals into column j at the given rows.
func (b *Builder) AddColumn(j int, rows []int, vals []float64) error {
	if len(rows) != len(vals) {
		return fmt.Errorf("Builder.AddColumn(%d): %w", j, ErrDimensionMismatch)
	}
	b.Reserve(len(rows))
	for k, i := range rows {
		if err := b.Add(i, j, vals[k]); err != nil {
			return err
		}
	}

	return nil
}

// Len reports the number of accumulated (uncompressed) entries.
func (b *Builder) Len() int { return len(b.entries) }

// Build sorts the triples by (col,row), sums duplicates and compresses into CSC.
// The builder can keep accumulating afterwards; Build does not consume it.
//
// Complexity:
//   - Time O(m log m) for m accumulated entries, Space O(m).
func (b *Builder) Build() (*CSC, error) {
	if b.r <= 0 || b.c <= 0 {
		return nil, matrixErrorf(opBuild, ErrInvalidDimensions)
	}
	es := make([]Entry, len(b.entries))
	copy(es, b.entries)
	sort.Slice(es, func(x, y int) bool {
		if es[x].Col != es[y].Col {
			return es[x].Col < es[y].Col
		}
		return es[x].Row < es[y].Row
	})

	out := &CSC{r: b.r, c: b.c, colPtr: make([]int, b.c+1)}
	out.rowIdx = make([]int, 0, len(es))
	out.val = make([]float64, 0, len(es))
	var k, col, last int
	for k = 0; k < len(es); {
		e := es[k]
		sum := e.Val
		for last = k + 1; last < len(es) && es[last].Row == e.Row && es[last].Col == e.Col; last++ {
			sum += es[last].Val
		}
		if sum != 0 {
			out.rowIdx = append(out.rowIdx, e.Row)
			out.val = append(out.val, sum)
			out.colPtr[e.Col+1]++
		}
		k = last
	}
	for col = 0; col < b.c; col++ {
		out.colPtr[col+1] += out.colPtr[col]
	}

	return out, nil
}
