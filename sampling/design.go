package sampling

import (
	"fmt"
	"math/rand/v2"
)

func checkBounds(lo, hi []float64) error {
	if len(lo) == 0 || len(lo) != len(hi) {
		return ErrDimensionMismatch
	}
	for i := range lo {
		if lo[i] > hi[i] {
			return fmt.Errorf("bound %d: [%g, %g]: %w", i, lo[i], hi[i], ErrDimensionMismatch)
		}
	}
	return nil
}

// LatinHypercube returns n points in the box [lo, hi] such that every
// dimension's n strata each hold exactly one point. Each point is placed
// uniformly at random inside its stratum.
//
// Errors:
//   - ErrSampleSize for n <= 0; ErrDimensionMismatch for malformed bounds.
//
// Complexity:
//   - Time O(n*d), Space O(n*d).
func LatinHypercube(rng *rand.Rand, n int, lo, hi []float64) ([][]float64, error) {
	if n <= 0 {
		return nil, ErrSampleSize
	}
	if err := checkBounds(lo, hi); err != nil {
		return nil, fmt.Errorf("LatinHypercube: %w", err)
	}
	if rng == nil {
		rng = NewRand(0)
	}
	d := len(lo)
	pts := make([][]float64, n)
	for i := range pts {
		pts[i] = make([]float64, d)
	}
	perm := make([]int, n)
	for j := 0; j < d; j++ {
		for i := range perm {
			perm[i] = i
		}
		Shuffle(perm, rng)
		width := (hi[j] - lo[j]) / float64(n)
		for i := 0; i < n; i++ {
			pts[i][j] = lo[j] + (float64(perm[i])+rng.Float64())*width
		}
	}

	return pts, nil
}

// Uniform returns n points drawn independently and uniformly from [lo, hi].
func Uniform(rng *rand.Rand, n int, lo, hi []float64) ([][]float64, error) {
	if n <= 0 {
		return nil, ErrSampleSize
	}
	if err := checkBounds(lo, hi); err != nil {
		return nil, fmt.Errorf("Uniform: %w", err)
	}
	if rng == nil {
		rng = NewRand(0)
	}
	pts := make([][]float64, n)
	for i := range pts {
		pts[i] = make([]float64, len(lo))
		for j := range lo {
			pts[i][j] = lo[j] + rng.Float64()*(hi[j]-lo[j])
		}
	}

	return pts, nil
}
