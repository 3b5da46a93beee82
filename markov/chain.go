package markov

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/neighbors"
)

// State is the lifecycle stage of a chain.
type State int

const (
	// Unfit: no transition matrix.
	Unfit State = iota
	// Fit: transition matrix populated, spectral cache empty.
	Fit
	// Decomposed: spectral cache populated.
	Decomposed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Unfit:
		return "unfit"
	case Fit:
		return "fit"
	case Decomposed:
		return "decomposed"
	default:
		return "unknown"
	}
}

// StationaryMethod selects the stationary-distribution algorithm.
type StationaryMethod int

const (
	// StationaryEigen takes the leading right eigenvector in absolute value.
	StationaryEigen StationaryMethod = iota
	// StationaryNullSpace solves (P - I)p = 0.
	StationaryNullSpace
	// StationaryPower iterates p ← P p from the uniform distribution.
	StationaryPower
)

// DistributionMethod selects how transient distributions are computed.
type DistributionMethod int

const (
	// DistributionNaive applies P repeatedly.
	DistributionNaive DistributionMethod = iota
	// DistributionSpectral uses the eigendecomposition W Λⁿ W⁻¹ p0.
	DistributionSpectral
)

const (
	// nullSpaceTol is the relative singular-value cut-off for null spaces.
	nullSpaceTol = 1e-10
	// powerMaxIter bounds StationaryPower.
	powerMaxIter = 10000
	// powerTol stops StationaryPower when the L1 change drops below it.
	powerTol = 1e-12
	// basisTol is the smallest |u_jᴴ w_j| accepted for the spectral expansion.
	basisTol = 1e-12
)

// Chain holds a transition matrix and its lazily computed spectral cache.
// The zero value is an Unfit chain. Chains are not safe for concurrent mutation.
type Chain struct {
	p         matrix.Matrix
	eig       *matrix.EigenSystem
	generator bool
}

// NewChain wraps an existing column-stochastic matrix (Fit state).
func NewChain(p matrix.Matrix) (*Chain, error) {
	if err := matrix.ValidateSquare(p); err != nil {
		return nil, fmt.Errorf("NewChain: %w", err)
	}
	return &Chain{p: p}, nil
}

// State reports the lifecycle stage.
func (c *Chain) State() State {
	switch {
	case c.p == nil:
		return Unfit
	case c.eig == nil:
		return Fit
	default:
		return Decomposed
	}
}

// Reset drops the spectral cache. Re-fits call it before replacing the matrix.
func (c *Chain) Reset() { c.eig = nil }

// NumStates returns n (0 when Unfit).
func (c *Chain) NumStates() int {
	if c.p == nil {
		return 0
	}
	return c.p.Rows()
}

// Matrix returns the transition matrix (nil when Unfit). It must not be mutated.
func (c *Chain) Matrix() matrix.Matrix { return c.p }

func (c *Chain) set(p matrix.Matrix) {
	c.Reset()
	c.p = p
}

// EigenSystem returns the eigendecomposition of P sorted by descending real
// part, with left and right vectors, computing it on first use.
func (c *Chain) EigenSystem() (*matrix.EigenSystem, error) {
	if c.p == nil {
		return nil, ErrNotFit
	}
	if c.eig == nil {
		sys, err := matrix.Eigen(c.p, true)
		if err != nil {
			return nil, fmt.Errorf("EigenSystem: %w", err)
		}
		c.eig = sys
	}
	return c.eig, nil
}

// Propagate returns Pᵐ. m == 1 returns P itself (same value, no copy).
//
// Errors:
//   - ErrNotFit; ErrInvalidPower for m < 1 (or m > 1 on a rate generator).
func (c *Chain) Propagate(m int) (matrix.Matrix, error) {
	if c.p == nil {
		return nil, ErrNotFit
	}
	if m < 1 || (c.generator && m > 1) {
		return nil, fmt.Errorf("Propagate(%d): %w", m, ErrInvalidPower)
	}
	if m == 1 {
		return c.p, nil
	}
	if s, ok := c.p.(*matrix.CSC); ok {
		ret := s
		var err error
		for i := 1; i < m; i++ {
			if ret, err = matrix.MulSparse(s, ret); err != nil {
				return nil, fmt.Errorf("Propagate(%d): %w", m, err)
			}
		}
		return ret, nil
	}
	var ret matrix.Matrix = c.p
	for i := 1; i < m; i++ {
		next, err := matrix.Mul(c.p, ret)
		if err != nil {
			return nil, fmt.Errorf("Propagate(%d): %w", m, err)
		}
		ret = next
	}
	return ret, nil
}

// column returns the non-zero entries of column j.
func column(p matrix.Matrix, j int) ([]int, []float64) {
	if s, ok := p.(*matrix.CSC); ok {
		return s.Column(j)
	}
	var rows []int
	var vals []float64
	for i := 0; i < p.Rows(); i++ {
		v, _ := p.At(i, j)
		if v != 0 {
			rows = append(rows, i)
			vals = append(vals, v)
		}
	}
	return rows, vals
}

func checkCloud(X *matrix.Dense, n int) error {
	if X == nil || X.Rows() == 0 {
		return ErrEmptyCloud
	}
	if X.Rows() != n {
		return fmt.Errorf("%d points for %d states: %w", X.Rows(), n, ErrDimensionMismatch)
	}
	return nil
}

// Drift reconstructs V[i] = Σ_j Pᵐ[j,i] (X_j − X_i).
func (c *Chain) Drift(X *matrix.Dense, m int) (*matrix.Dense, error) {
	P, err := c.Propagate(m)
	if err != nil {
		return nil, fmt.Errorf("Drift: %w", err)
	}
	if err = checkCloud(X, P.Cols()); err != nil {
		return nil, fmt.Errorf("Drift: %w", err)
	}
	n, d := X.Rows(), X.Cols()
	V, _ := matrix.NewDense(n, d)
	var i, r, j int
	for i = 0; i < n; i++ {
		rows, vals := column(P, i)
		xi, vi := X.RawRow(i), V.RawRow(i)
		for r = range rows {
			xj := X.RawRow(rows[r])
			for j = 0; j < d; j++ {
				vi[j] += vals[r] * (xj[j] - xi[j])
			}
		}
	}
	return V, nil
}

// DriftOptions tunes DensityCorrectedDrift.
type DriftOptions struct {
	// Steps is the propagation power m (0 means 1).
	Steps int
	// K is the uniform reference size; 0 means the graph row length.
	K int
	// Normalize scales every displacement to unit length first.
	Normalize bool
}

// DensityCorrectedDrift reconstructs V[i] = Σ_r (Pᵐ[j_r,i] − 1/k)(X_{j_r} − X_i)
// over the neighbours j_r of state i in g, isolating the non-uniform part of
// the transition mass. g must be the graph the matrix was built on.
func (c *Chain) DensityCorrectedDrift(X *matrix.Dense, g *neighbors.Graph, o DriftOptions) (*matrix.Dense, error) {
	if o.Steps == 0 {
		o.Steps = 1
	}
	P, err := c.Propagate(o.Steps)
	if err != nil {
		return nil, fmt.Errorf("DensityCorrectedDrift: %w", err)
	}
	if err = checkCloud(X, P.Cols()); err != nil {
		return nil, fmt.Errorf("DensityCorrectedDrift: %w", err)
	}
	if g == nil || g.Len() != X.Rows() {
		return nil, fmt.Errorf("DensityCorrectedDrift: graph: %w", ErrDimensionMismatch)
	}
	k := o.K
	if k <= 0 {
		k = g.K()
	}
	uniform := 1.0 / float64(k)
	n, d := X.Rows(), X.Cols()
	V, _ := matrix.NewDense(n, d)
	disp := make([]float64, d)
	var i, j int
	var pji, norm float64
	for i = 0; i < n; i++ {
		xi, vi := X.RawRow(i), V.RawRow(i)
		for _, nb := range g.Indices[i] {
			xj := X.RawRow(nb)
			norm = 0
			for j = 0; j < d; j++ {
				disp[j] = xj[j] - xi[j]
				norm += disp[j] * disp[j]
			}
			if o.Normalize && norm > 0 {
				norm = 1 / math.Sqrt(norm)
				for j = 0; j < d; j++ {
					disp[j] *= norm
				}
			}
			pji, _ = P.At(nb, i)
			pji -= uniform
			for j = 0; j < d; j++ {
				vi[j] += pji * disp[j]
			}
		}
	}
	return V, nil
}

// StationaryDistribution returns p with P p = p, p ≥ 0 and Σp = 1.
func (c *Chain) StationaryDistribution(method StationaryMethod) ([]float64, error) {
	if c.p == nil {
		return nil, ErrNotFit
	}
	var p []float64
	switch method {
	case StationaryNullSpace:
		a, err := denseOf(c.p)
		if err != nil {
			return nil, fmt.Errorf("StationaryDistribution: %w", err)
		}
		for i := 0; i < a.Rows(); i++ {
			v, _ := a.At(i, i)
			_ = a.Set(i, i, v-1)
		}
		if p, err = nullVector(a); err != nil {
			return nil, fmt.Errorf("StationaryDistribution: %w", err)
		}
	case StationaryPower:
		var err error
		if p, err = c.power(); err != nil {
			return nil, fmt.Errorf("StationaryDistribution: %w", err)
		}
	default:
		// Only right vectors are needed; an existing cache is reused but never filled.
		sys := c.eig
		if sys == nil {
			var err error
			if sys, err = matrix.Eigen(c.p, false); err != nil {
				return nil, fmt.Errorf("StationaryDistribution: %w", err)
			}
		}
		p = sys.RealRight(0)
		for i := range p {
			p[i] = math.Abs(p[i])
		}
	}
	return normalize(p)
}

func (c *Chain) power() ([]float64, error) {
	n := c.p.Rows()
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}
	for it := 0; it < powerMaxIter; it++ {
		next, err := matrix.MatVec(c.p, p)
		if err != nil {
			return nil, err
		}
		var sum, delta float64
		for _, v := range next {
			sum += v
		}
		if sum == 0 {
			return nil, ErrNoStationary
		}
		for i := range next {
			next[i] /= sum
			delta += math.Abs(next[i] - p[i])
		}
		p = next
		if delta < powerTol {
			break
		}
	}
	return p, nil
}

// nullVector returns the null-space basis vector of a with the largest |Σ|,
// so a reducible chain still yields a normalizable vector.
func nullVector(a *matrix.Dense) ([]float64, error) {
	ns, err := matrix.NullSpace(a, nullSpaceTol)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		return nil, ErrNoStationary
	}
	best, bestSum := 0, -1.0
	for j := 0; j < ns.Cols(); j++ {
		var s float64
		for i := 0; i < ns.Rows(); i++ {
			v, _ := ns.At(i, j)
			s += v
		}
		if math.Abs(s) > bestSum {
			best, bestSum = j, math.Abs(s)
		}
	}
	p := make([]float64, ns.Rows())
	for i := range p {
		p[i], _ = ns.At(i, best)
	}
	return p, nil
}

func normalize(p []float64) ([]float64, error) {
	var sum float64
	for _, v := range p {
		sum += v
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, ErrNoStationary
	}
	for i := range p {
		p[i] /= sum
	}
	return p, nil
}

func denseOf(p matrix.Matrix) (*matrix.Dense, error) {
	switch t := p.(type) {
	case *matrix.CSC:
		return t.ToDense(), nil
	case *matrix.Dense:
		return t.Clone().(*matrix.Dense), nil
	}
	out, err := matrix.NewDense(p.Rows(), p.Cols())
	if err != nil {
		return nil, err
	}
	for i := 0; i < p.Rows(); i++ {
		for j := 0; j < p.Cols(); j++ {
			v, _ := p.At(i, j)
			_ = out.Set(i, j, v)
		}
	}
	return out, nil
}

// DiffusionEmbedding returns the n×dims coordinates Re(λ_j^t)·Re(u_j) for the
// dims non-trivial eigenpairs following the stationary one, u_j being the
// left eigenvectors of P.
func (c *Chain) DiffusionEmbedding(dims int, t float64) (*matrix.Dense, error) {
	if c.p == nil {
		return nil, ErrNotFit
	}
	n := c.p.Rows()
	if dims < 1 || dims+1 > n {
		return nil, fmt.Errorf("DiffusionEmbedding(%d): %d states: %w", dims, n, ErrInvalidEmbedding)
	}
	sys, err := c.EigenSystem()
	if err != nil {
		return nil, fmt.Errorf("DiffusionEmbedding: %w", err)
	}
	Y, _ := matrix.NewDense(n, dims)
	for j := 0; j < dims; j++ {
		scale := real(cmplx.Pow(sys.Values[j+1], complex(t, 0)))
		u := sys.RealLeft(j + 1)
		for i := 0; i < n; i++ {
			_ = Y.Set(i, j, scale*u[i])
		}
	}
	return Y, nil
}

// spectralApply returns Re(Σ_j g(λ_j) w_j (u_jᴴ p0)/(u_jᴴ w_j)).
func (c *Chain) spectralApply(p0 []float64, g func(complex128) complex128) ([]float64, error) {
	sys, err := c.EigenSystem()
	if err != nil {
		return nil, err
	}
	n := len(p0)
	acc := make([]complex128, n)
	for j := 0; j < sys.Len(); j++ {
		var up, uw complex128
		for i := 0; i < n; i++ {
			uc := cmplx.Conj(sys.Left.At(i, j))
			up += uc * complex(p0[i], 0)
			uw += uc * sys.Right.At(i, j)
		}
		if cmplx.Abs(uw) < basisTol {
			return nil, ErrSingularBasis
		}
		coef := g(sys.Values[j]) * up / uw
		for i := 0; i < n; i++ {
			acc[i] += coef * sys.Right.At(i, j)
		}
	}
	out := make([]float64, n)
	for i, v := range acc {
		out[i] = real(v)
	}
	return out, nil
}

func (c *Chain) checkVector(p0 []float64) error {
	if c.p == nil {
		return ErrNotFit
	}
	if len(p0) != c.p.Rows() {
		return fmt.Errorf("len(p0)=%d for %d states: %w", len(p0), c.p.Rows(), ErrDimensionMismatch)
	}
	return nil
}

// SolveDistribution returns Pⁿ p0.
func (c *Chain) SolveDistribution(p0 []float64, n int, method DistributionMethod) ([]float64, error) {
	if err := c.checkVector(p0); err != nil {
		return nil, fmt.Errorf("SolveDistribution: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("SolveDistribution(%d): %w", n, ErrInvalidPower)
	}
	if method == DistributionSpectral {
		fn := complex(float64(n), 0)
		p, err := c.spectralApply(p0, func(l complex128) complex128 {
			if l == 0 {
				if n == 0 {
					return 1
				}
				return 0
			}
			return cmplx.Pow(l, fn)
		})
		if err != nil {
			return nil, fmt.Errorf("SolveDistribution: %w", err)
		}
		return p, nil
	}
	p := append([]float64(nil), p0...)
	var err error
	for i := 0; i < n; i++ {
		if p, err = matrix.MatVec(c.p, p); err != nil {
			return nil, fmt.Errorf("SolveDistribution: %w", err)
		}
	}
	return p, nil
}
