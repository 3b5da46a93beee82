package neighbors

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/katalvlaran/cellflow/matrix"
)

// Index answers k-nearest-neighbour queries over a fixed point cloud.
// Implementations are safe for concurrent queries.
type Index interface {
	// Query returns the indices and Euclidean distances of the k points
	// closest to q, ascending by distance, ties by index.
	Query(q []float64, k int) ([]int, []float64, error)
	// Len returns the number of indexed points.
	Len() int
	// Dims returns the point dimensionality.
	Dims() int
}

// NewIndex builds the Index selected by s over the rows of X.
func NewIndex(X *matrix.Dense, s Strategy) (Index, error) {
	switch s {
	case StrategyBruteForce:
		return NewBruteForce(X)
	default:
		return NewKDTree(X)
	}
}

// hit is one candidate neighbour.
type hit struct {
	idx  int
	dist float64
}

func sortHits(h []hit) {
	sort.Slice(h, func(a, b int) bool {
		if h[a].dist != h[b].dist {
			return h[a].dist < h[b].dist
		}
		return h[a].idx < h[b].idx
	})
}

func splitHits(h []hit) ([]int, []float64) {
	idx := make([]int, len(h))
	dist := make([]float64, len(h))
	for i, x := range h {
		idx[i], dist[i] = x.idx, x.dist
	}
	return idx, dist
}

func validateQuery(q []float64, k, n, d int) error {
	if len(q) != d {
		return fmt.Errorf("query dim %d want %d: %w", len(q), d, ErrDimensionMismatch)
	}
	if k < 1 || k > n {
		return fmt.Errorf("k=%d of %d points: %w", k, n, ErrEmptyNeighborhood)
	}
	return nil
}

// ---------- brute force ----------

// BruteForce is an exact linear-scan index.
type BruteForce struct {
	x *matrix.Dense
}

// NewBruteForce indexes the rows of X (shared, not copied).
func NewBruteForce(X *matrix.Dense) (*BruteForce, error) {
	if X == nil || X.Rows() == 0 {
		return nil, ErrEmptyCloud
	}
	return &BruteForce{x: X}, nil
}

// Len implements Index.
func (b *BruteForce) Len() int { return b.x.Rows() }

// Dims implements Index.
func (b *BruteForce) Dims() int { return b.x.Cols() }

// Query implements Index.
func (b *BruteForce) Query(q []float64, k int) ([]int, []float64, error) {
	n, d := b.x.Rows(), b.x.Cols()
	if err := validateQuery(q, k, n, d); err != nil {
		return nil, nil, fmt.Errorf("BruteForce.Query: %w", err)
	}
	hits := make([]hit, n)
	var i, j int
	var acc, dj float64
	var row []float64
	for i = 0; i < n; i++ {
		row = b.x.RawRow(i)
		acc = 0
		for j = 0; j < d; j++ {
			dj = row[j] - q[j]
			acc += dj * dj
		}
		hits[i] = hit{idx: i, dist: acc}
	}
	sortHits(hits)
	hits = hits[:k]
	for i = range hits {
		hits[i].dist = math.Sqrt(hits[i].dist)
	}
	idx, dist := splitHits(hits)
	return idx, dist, nil
}

// ---------- k-d tree ----------

// point is a kdtree.Comparable that remembers its row in the cloud.
type point struct {
	coords []float64
	idx    int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coords[d] - c.(point).coords[d]
}

func (p point) Dims() int { return len(p.coords) }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	var acc, dj float64
	for j := range p.coords {
		dj = p.coords[j] - q.coords[j]
		acc += dj * dj
	}
	return acc
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p points) Pivot(d kdtree.Dim) int {
	return plane{points: p, Dim: d}.pivot()
}

// plane sorts points along one dimension for median selection.
type plane struct {
	points
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.points[i].coords[p.Dim] < p.points[j].coords[p.Dim]
}
func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{points: p.points[start:end], Dim: p.Dim}
}
func (p plane) pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

// KDTree is an exact k-d tree index.
type KDTree struct {
	tree *kdtree.Tree
	n, d int
}

// NewKDTree indexes the rows of X. Coordinates are referenced, not copied.
func NewKDTree(X *matrix.Dense) (*KDTree, error) {
	if X == nil || X.Rows() == 0 {
		return nil, ErrEmptyCloud
	}
	n := X.Rows()
	pts := make(points, n)
	for i := 0; i < n; i++ {
		pts[i] = point{coords: X.RawRow(i), idx: i}
	}
	return &KDTree{tree: kdtree.New(pts, false), n: n, d: X.Cols()}, nil
}

// Len implements Index.
func (t *KDTree) Len() int { return t.n }

// Dims implements Index.
func (t *KDTree) Dims() int { return t.d }

// Query implements Index.
func (t *KDTree) Query(q []float64, k int) ([]int, []float64, error) {
	if err := validateQuery(q, k, t.n, t.d); err != nil {
		return nil, nil, fmt.Errorf("KDTree.Query: %w", err)
	}
	keep := kdtree.NewNKeeper(k)
	t.tree.NearestSet(keep, point{coords: q, idx: -1})

	hits := make([]hit, 0, k)
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		hits = append(hits, hit{idx: c.Comparable.(point).idx, dist: c.Dist})
	}
	if len(hits) < k {
		return nil, nil, fmt.Errorf("KDTree.Query: got %d of %d: %w", len(hits), k, ErrEmptyNeighborhood)
	}
	sortHits(hits)
	for i := range hits {
		hits[i].dist = math.Sqrt(hits[i].dist)
	}
	idx, dist := splitHits(hits)
	return idx, dist, nil
}
