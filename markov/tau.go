package markov

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
)

// DefaultTauNeighbors is the neighbourhood size ComputeTau builds when no graph is given.
const DefaultTauNeighbors = 100

// ComputeTau estimates a per-state time scale τ_i = r̄_i / ‖V_i‖, r̄_i being
// the mean distance from i to its neighbours other than rank 0. It also
// returns the speeds ‖V_i‖. Zero speed yields τ_i = +Inf.
// A nil graph builds one with min(DefaultTauNeighbors, n) neighbours, self included.
func ComputeTau(X, V *matrix.Dense, g *neighbors.Graph) ([]float64, []float64, error) {
	if err := validateCloud(X, V); err != nil {
		return nil, nil, fmt.Errorf("ComputeTau: %w", err)
	}
	n := X.Rows()
	if g == nil {
		var err error
		k := DefaultTauNeighbors
		if k > n {
			k = n
		}
		if g, err = neighbors.Build(X, k); err != nil {
			return nil, nil, fmt.Errorf("ComputeTau: %w", err)
		}
	}
	if g.Len() != n || g.K() < 2 {
		return nil, nil, fmt.Errorf("ComputeTau: graph %d×%d: %w", g.Len(), g.K(), ErrDimensionMismatch)
	}
	tau := make([]float64, n)
	speed := make([]float64, n)
	for i := 0; i < n; i++ {
		mean := floats.Sum(g.Distances[i][1:]) / float64(g.K()-1)
		speed[i] = floats.Norm(V.RawRow(i), 2)
		if speed[i] == 0 {
			tau[i] = math.Inf(1)
			continue
		}
		tau[i] = mean / speed[i]
	}
	return tau, speed, nil
}
