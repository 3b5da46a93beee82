package sampling

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// ChooseWeighted draws n distinct indices from [0, len(weights)) without
// replacement, each draw proportional to the remaining weights. The result is
// sorted ascending so callers can keep rank order.
//
// Errors:
//   - ErrInvalidWeights for empty, negative or non-finite weights.
//   - ErrSampleSize when n < 0 or n exceeds the number of positive weights.
func ChooseWeighted(src rand.Source, weights []float64, n int) ([]int, error) {
	if len(weights) == 0 {
		return nil, ErrInvalidWeights
	}
	positive := 0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("ChooseWeighted: weight %d: %w", i, ErrInvalidWeights)
		}
		if w > 0 {
			positive++
		}
	}
	if n < 0 || n > positive {
		return nil, fmt.Errorf("ChooseWeighted: n=%d of %d: %w", n, positive, ErrSampleSize)
	}
	if src == nil {
		src = NewSource(0)
	}

	wc := make([]float64, len(weights))
	copy(wc, weights)
	sampler := sampleuv.NewWeighted(wc, src)
	out := make([]int, 0, n)
	for len(out) < n {
		idx, ok := sampler.Take()
		if !ok {
			break
		}
		out = append(out, idx)
	}
	sort.Ints(out)

	return out, nil
}

// LinearRamp returns n weights rising linearly from lo to hi (inclusive),
// normalized to sum to one. n==1 yields {1}.
func LinearRamp(n int, lo, hi float64) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = 1
		return out
	}
	var sum float64
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}

	return out
}
