package kernel

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/cellflow/matrix"
)

const (
	// ProjectionQuantile selects the neighbours used to estimate τ: those whose
	// unit-direction projection onto v is at or above this quantile.
	ProjectionQuantile = 0.7

	// FallbackTau is used when no neighbour lies ahead of v.
	FallbackTau = 1.0

	// MaxTau caps the estimated time scale.
	MaxTau = 100.0
)

// Local is the result of LocalDrift.
type Local struct {
	// Weights holds one unnormalized kernel weight per neighbour.
	Weights []float64
	// Tau is the time scale actually used.
	Tau float64
	// InvS is S⁻¹ / (τ‖v‖), the rescaled inverse bandwidth. Nil when ‖v‖ == 0.
	InvS *matrix.Dense
}

// LocalDrift evaluates the locally adaptive drift kernel.
// Implementation:
//   - Stage 1: For each neighbour compute its distance r_i and the projection
//     p_i = v·d_i / r_i (0 for the query point itself).
//   - Stage 2: Neighbours with p_i >= Quantile(0.7) and p_i > 0 give τ = mean(r_i/p_i),
//     capped at MaxTau; with no qualifying neighbour τ = FallbackTau.
//   - Stage 3: Evaluate the drift kernel with τv and S⁻¹/(τ‖v‖).
//
// Behavior highlights:
//   - ‖v‖ == 0 yields all-zero weights (no direction to follow), Tau = FallbackTau, InvS = nil.
//
// Errors:
//   - ErrEmptyNeighborhood, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(k*d² + k log k), Space O(k+d²).
func LocalDrift(x, v []float64, X, invS *matrix.Dense) (Local, error) {
	if err := check(opLocalDrift, x, X); err != nil {
		return Local{}, err
	}
	d := len(x)
	if len(v) != d || invS == nil || invS.Rows() != d || invS.Cols() != d {
		return Local{}, fmt.Errorf("%s: %w", opLocalDrift, ErrDimensionMismatch)
	}
	k := X.Rows()
	speed := floats.Norm(v, 2)
	if speed == 0 {
		return Local{Weights: make([]float64, k), Tau: FallbackTau}, nil
	}

	dists := make([]float64, k)
	proj := make([]float64, k)
	disp := make([]float64, d)
	var i int
	for i = 0; i < k; i++ {
		floats.SubTo(disp, X.RawRow(i), x)
		dists[i] = floats.Norm(disp, 2)
		if dists[i] > 0 {
			proj[i] = floats.Dot(v, disp) / dists[i]
		}
	}
	sorted := make([]float64, k)
	copy(sorted, proj)
	sort.Float64s(sorted)
	cut := stat.Quantile(ProjectionQuantile, stat.LinInterp, sorted, nil)

	tau := FallbackTau
	var sum float64
	var cnt int
	for i = 0; i < k; i++ {
		if proj[i] >= cut && proj[i] > 0 {
			sum += dists[i] / proj[i]
			cnt++
		}
	}
	if cnt > 0 {
		tau = sum / float64(cnt)
		if tau > MaxTau {
			tau = MaxTau
		}
	}

	tauV := make([]float64, d)
	floats.ScaleTo(tauV, tau, v)
	scale := 1.0 / (tau * speed)
	rescaled := invS.ToGonum()
	rescaled.Scale(scale, rescaled)
	tauInvS, err := matrix.FromGonum(rescaled)
	if err != nil {
		return Local{}, fmt.Errorf("%s: %w", opLocalDrift, err)
	}

	return Local{
		Weights: drift(x, tauV, X, tauInvS.RawData(), 1),
		Tau:     tau,
		InvS:    tauInvS,
	}, nil
}
