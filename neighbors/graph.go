package neighbors

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/cellflow/matrix"
)

// Graph is a k-nearest-neighbour graph: Indices[i] and Distances[i] list the
// neighbours of point i in ascending distance. All rows have the same length.
type Graph struct {
	Indices   [][]int
	Distances [][]float64
}

// Len returns the number of points.
func (g *Graph) Len() int { return len(g.Indices) }

// K returns the row length (0 for an empty graph).
func (g *Graph) K() int {
	if len(g.Indices) == 0 {
		return 0
	}
	return len(g.Indices[0])
}

// Subset returns a graph keeping only the given ranks of every row.
func (g *Graph) Subset(rows [][]int) (*Graph, error) {
	if len(rows) != g.Len() {
		return nil, fmt.Errorf("Graph.Subset: %w", ErrDimensionMismatch)
	}
	out := &Graph{Indices: make([][]int, len(rows)), Distances: make([][]float64, len(rows))}
	for i, ranks := range rows {
		out.Indices[i] = make([]int, len(ranks))
		out.Distances[i] = make([]float64, len(ranks))
		for k, r := range ranks {
			if r < 0 || r >= len(g.Indices[i]) {
				return nil, fmt.Errorf("Graph.Subset: row %d rank %d: %w", i, r, ErrDimensionMismatch)
			}
			out.Indices[i][k] = g.Indices[i][r]
			out.Distances[i][k] = g.Distances[i][r]
		}
	}
	return out, nil
}

// Build computes the k-NN graph of the rows of X.
func Build(X *matrix.Dense, k int, opts ...Option) (*Graph, error) {
	return BuildContext(context.Background(), X, k, opts...)
}

// BuildContext is Build with cancellation. Queries run on an errgroup bounded
// by WithWorkers; each goroutine writes only its own row.
//
// Errors:
//   - ErrEmptyCloud; ErrEmptyNeighborhood when k < 1 or k exceeds the usable points.
func BuildContext(ctx context.Context, X *matrix.Dense, k int, opts ...Option) (*Graph, error) {
	if X == nil || X.Rows() == 0 {
		return nil, ErrEmptyCloud
	}
	o := gather(opts...)
	n := X.Rows()
	q := k
	if !o.includeSelf {
		q = k + 1
	}
	if k < 1 || q > n {
		return nil, fmt.Errorf("Build: k=%d of %d points: %w", k, n, ErrEmptyNeighborhood)
	}
	idx, err := NewIndex(X, o.strategy)
	if err != nil {
		return nil, err
	}

	g := &Graph{Indices: make([][]int, n), Distances: make([][]float64, n)}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nb, dist, err := idx.Query(X.RawRow(i), q)
			if err != nil {
				return fmt.Errorf("Build: point %d: %w", i, err)
			}
			nb, dist = placeSelf(i, nb, dist, o.includeSelf)
			g.Indices[i], g.Distances[i] = nb[:k], dist[:k]
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g, nil
}

// placeSelf moves i to rank 0 (includeSelf) or removes it. Duplicate points
// can tie with i at distance 0, so the sort order alone does not guarantee it.
func placeSelf(i int, nb []int, dist []float64, includeSelf bool) ([]int, []float64) {
	pos := -1
	for r, j := range nb {
		if j == i {
			pos = r
			break
		}
	}
	if includeSelf {
		if pos < 0 {
			nb = append([]int{i}, nb[:len(nb)-1]...)
			dist = append([]float64{0}, dist[:len(dist)-1]...)
			return nb, dist
		}
		if pos > 0 {
			copy(nb[1:pos+1], nb[:pos])
			copy(dist[1:pos+1], dist[:pos])
			nb[0], dist[0] = i, 0
		}
		return nb, dist
	}
	if pos >= 0 {
		nb = append(nb[:pos:pos], nb[pos+1:]...)
		dist = append(dist[:pos:pos], dist[pos+1:]...)
	}
	return nb, dist
}

// QueryAll runs idx.Query for every row of Q (points need not be indexed).
func QueryAll(ctx context.Context, idx Index, Q *matrix.Dense, k int, workers int) (*Graph, error) {
	if Q == nil || Q.Rows() == 0 {
		return nil, ErrEmptyCloud
	}
	if workers < 1 {
		workers = 1
	}
	n := Q.Rows()
	g := &Graph{Indices: make([][]int, n), Distances: make([][]float64, n)}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nb, dist, err := idx.Query(Q.RawRow(i), k)
			if err != nil {
				return fmt.Errorf("QueryAll: row %d: %w", i, err)
			}
			g.Indices[i], g.Distances[i] = nb, dist
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g, nil
}

// FromIndices wraps precomputed neighbour indices, computing the Euclidean
// distances from X. Rows must share one length and reference valid points.
func FromIndices(X *matrix.Dense, indices [][]int) (*Graph, error) {
	if X == nil || X.Rows() == 0 {
		return nil, ErrEmptyCloud
	}
	n := X.Rows()
	if len(indices) != n {
		return nil, fmt.Errorf("FromIndices: %d rows for %d points: %w", len(indices), n, ErrDimensionMismatch)
	}
	if len(indices[0]) == 0 {
		return nil, fmt.Errorf("FromIndices: %w", ErrEmptyNeighborhood)
	}
	k := len(indices[0])
	g := &Graph{Indices: make([][]int, n), Distances: make([][]float64, n)}
	for i, row := range indices {
		if len(row) != k {
			return nil, fmt.Errorf("FromIndices: row %d has %d of %d: %w", i, len(row), k, ErrDimensionMismatch)
		}
		g.Indices[i] = append([]int(nil), row...)
		g.Distances[i] = make([]float64, k)
		xi := X.RawRow(i)
		for r, j := range row {
			if j < 0 || j >= n {
				return nil, fmt.Errorf("FromIndices: row %d index %d: %w", i, j, ErrDimensionMismatch)
			}
			g.Distances[i][r] = euclid(xi, X.RawRow(j))
		}
	}
	return g, nil
}

func euclid(a, b []float64) float64 {
	var acc, d float64
	for j := range a {
		d = a[j] - b[j]
		acc += d * d
	}
	return math.Sqrt(acc)
}
