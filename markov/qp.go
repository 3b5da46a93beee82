package markov

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/matrix"
)

// transitionQP estimates the transition probabilities from x to the rows of Y
// that best reproduce the velocity v:
//
//	minimize ½‖Aᵀp − b‖²  subject to  p ≥ 0  (and Σp ≤ 1 when capped)
//
// Row r of A is the displacement Y_r − x divided per dimension by the
// displacement range; b is v scaled the same way. With a diffusion vector s,
// A gains the second-order columns ½(Y_r − x)² and b gains ½s².
// The problem is solved by accelerated projected gradient (FISTA).
func transitionQP(x, v []float64, Y *matrix.Dense, s []float64, capped bool, maxIter int, tol float64) []float64 {
	k, d := Y.Rows(), len(x)
	width := d
	if s != nil {
		width = 2 * d
	}

	lo := make([]float64, d)
	hi := make([]float64, d)
	for j := range lo {
		lo[j], hi[j] = math.Inf(1), math.Inf(-1)
	}
	R := make([][]float64, k)
	for r := 0; r < k; r++ {
		R[r] = make([]float64, d)
		floats.SubTo(R[r], Y.RawRow(r), x)
		for j, rv := range R[r] {
			lo[j] = math.Min(lo[j], rv)
			hi[j] = math.Max(hi[j], rv)
		}
	}
	scale := make([]float64, d)
	for j := range scale {
		scale[j] = math.Abs(hi[j] - lo[j])
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	A := make([][]float64, k)
	for r := 0; r < k; r++ {
		A[r] = make([]float64, width)
		for j := 0; j < d; j++ {
			A[r][j] = R[r][j] / scale[j]
			if s != nil {
				A[r][d+j] = 0.5 * A[r][j] * A[r][j]
			}
		}
	}
	b := make([]float64, width)
	for j := 0; j < d; j++ {
		b[j] = v[j] / scale[j]
		if s != nil {
			sn := s[j] / scale[j]
			b[d+j] = 0.5 * sn * sn
		}
	}

	// H = A Aᵀ, f = A b.
	H := make([][]float64, k)
	f := make([]float64, k)
	for r := 0; r < k; r++ {
		H[r] = make([]float64, k)
		f[r] = floats.Dot(A[r], b)
	}
	for r := 0; r < k; r++ {
		for q := r; q < k; q++ {
			h := floats.Dot(A[r], A[q])
			H[r][q], H[q][r] = h, h
		}
	}

	// Both the trace and the largest absolute row sum bound λmax(H) for PSD H.
	var trace, rowMax float64
	for r := 0; r < k; r++ {
		trace += H[r][r]
		var rs float64
		for q := 0; q < k; q++ {
			rs += math.Abs(H[r][q])
		}
		rowMax = math.Max(rowMax, rs)
	}
	L := math.Min(trace, rowMax)
	p := make([]float64, k)
	if L == 0 {
		return p
	}

	y := make([]float64, k)
	prev := make([]float64, k)
	grad := make([]float64, k)
	t := 1.0
	for it := 0; it < maxIter; it++ {
		for r := 0; r < k; r++ {
			grad[r] = floats.Dot(H[r], y) - f[r]
		}
		copy(prev, p)
		for r := 0; r < k; r++ {
			p[r] = y[r] - grad[r]/L
		}
		project(p, capped)

		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		beta := (t - 1) / tNext
		var move float64
		for r := 0; r < k; r++ {
			y[r] = p[r] + beta*(p[r]-prev[r])
			move = math.Max(move, math.Abs(p[r]-prev[r]))
		}
		t = tNext
		if move < tol {
			break
		}
	}
	return p
}

// project maps p onto {p ≥ 0} or, when capped, onto {p ≥ 0, Σp ≤ 1}.
func project(p []float64, capped bool) {
	var sum float64
	for r := range p {
		if p[r] < 0 {
			p[r] = 0
		}
		sum += p[r]
	}
	if !capped || sum <= 1 {
		return
	}
	// Σp = 1 is active, so θ > 0 and clipping first leaves the simplex projection unchanged.
	u := append([]float64(nil), p...)
	sort.Sort(sort.Reverse(sort.Float64Slice(u)))
	var cum, theta float64
	for i, ui := range u {
		cum += ui
		if t := (cum - 1) / float64(i+1); ui-t > 0 {
			theta = t
		}
	}
	for r := range p {
		p[r] = math.Max(p[r]-theta, 0)
	}
}
