package topology

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/sampling"
	"github.com/katalvlaran/cellflow/vectorfield"
)

// VectorField2D holds the phase-portrait state of a planar field: the fixed
// points found so far and the last traced nullclines.
// Note: methods are not safe for concurrent use.
type VectorField2D struct {
	f      vectorfield.Field
	fx, fy vectorfield.Scalar
	opts   Options
	rng    *rand.Rand
	set    *FixedPointSet
	ncx    []Curve
	ncy    []Curve
}

// NewVectorField2D wraps a planar field. fx and fy default to its components.
func NewVectorField2D(f vectorfield.Field, fx, fy vectorfield.Scalar, o Options) (*VectorField2D, error) {
	if f == nil || f.Dim() != 2 {
		return nil, fmt.Errorf("NewVectorField2D: %w", ErrDimensionMismatch)
	}
	if fx == nil {
		fx = vectorfield.Component(f, 0)
	}
	if fy == nil {
		fy = vectorfield.Component(f, 1)
	}
	return &VectorField2D{
		f: f, fx: fx, fy: fy,
		opts: o,
		rng:  sampling.NewRand(o.Seed),
		set:  NewFixedPointSet(o.Tolerance),
	}, nil
}

// FixedPoints returns the accumulated set.
func (v *VectorField2D) FixedPoints() *FixedPointSet { return v.set }

// Nullclines returns the curves from the last ComputeNullclines call.
func (v *VectorField2D) Nullclines() (ncx, ncy []Curve) { return v.ncx, v.ncy }

func (v *VectorField2D) locate(ctx context.Context, seeds [][]float64, domain Domain) (*LocateResult, error) {
	o := v.opts
	o.Domain = domain
	res, err := FindFixedPointsContext(ctx, seeds, v.f, o)
	if err != nil {
		return nil, err
	}
	v.set.Add(res.Points...)
	return res, nil
}

// FindFixedPointsBySampling seeds n Newton runs inside domain, Latin-hypercube
// when lhs is true and uniform otherwise, and adds the in-domain roots.
func (v *VectorField2D) FindFixedPointsBySampling(ctx context.Context, n int, domain Domain, lhs bool) (*LocateResult, error) {
	if err := domain.validate(2); err != nil || len(domain) != 2 {
		return nil, fmt.Errorf("FindFixedPointsBySampling: %w", ErrInvalidDomain)
	}
	lo, hi := domain.bounds()
	var seeds [][]float64
	var err error
	if lhs {
		seeds, err = sampling.LatinHypercube(v.rng, n, lo, hi)
	} else {
		seeds, err = sampling.Uniform(v.rng, n, lo, hi)
	}
	if err != nil {
		return nil, fmt.Errorf("FindFixedPointsBySampling: %w", err)
	}
	return v.locate(ctx, seeds, domain)
}

// FindNearestFixedPoint runs Newton from x and adds the root when it lies
// inside domain. It reports whether a root was found in the domain.
func (v *VectorField2D) FindNearestFixedPoint(ctx context.Context, x []float64, domain Domain) (FixedPoint, bool, error) {
	res, err := v.locate(ctx, [][]float64{x}, domain)
	if err != nil {
		return FixedPoint{}, false, err
	}
	if len(res.Points) == 0 {
		return FixedPoint{}, false, nil
	}
	return res.Points[0], true, nil
}

// ComputeNullclines traces the nullclines through the current fixed points.
// With findNew it intersects them, refines the intersections into fixed
// points and, if any new point was added, traces once more from the enlarged
// set. There is no further feedback.
func (v *VectorField2D) ComputeNullclines(ctx context.Context, domain Domain, findNew bool) error {
	if len(domain) != 2 {
		return fmt.Errorf("ComputeNullclines: %w", ErrDimensionMismatch)
	}
	no := NullclineOptions{Rand: v.rng, Solver: v.opts.Solver, Logger: v.opts.Logger}
	sMax, ds := no.steps(domain)
	no.SMax, no.Ds = sMax, ds

	ncx, ncy, err := TraceNullclines(ctx, v.set.X(), v.fx, v.fy, domain, no)
	if err != nil {
		return err
	}
	v.ncx, v.ncy = ncx, ncy
	if !findNew {
		return nil
	}
	o := v.opts
	o.Domain = domain
	res, err := FindFixedPointsFromNullclines(ctx, v.f, ncx, ncy, 10*ds, o)
	if err != nil {
		return err
	}
	if v.set.Add(res.Points...) == 0 {
		return nil
	}
	v.opts.logger().Debug("refining nullclines", slog.Int("points", v.set.Len()))
	ncx, ncy, err = TraceNullclines(ctx, v.set.X(), v.fx, v.fy, domain, no)
	if err != nil {
		return err
	}
	v.ncx, v.ncy = ncx, ncy
	return nil
}

// FixedPointsWithTypes returns every fixed point with its Kind.
func (v *VectorField2D) FixedPointsWithTypes() ([][]float64, []Kind) {
	return v.set.X(), v.set.Kinds()
}

// Separatrices traces the stable manifolds of every saddle in the set.
func (v *VectorField2D) Separatrices(ctx context.Context, domain Domain) ([]Curve, error) {
	saddles := v.set.Filter(Saddle)
	xs := make([][]float64, len(saddles))
	js := make([]*matrix.Dense, len(saddles))
	for i, p := range saddles {
		xs[i], js[i] = p.X, p.J
	}
	return TraceSeparatrices(ctx, xs, js, v.f, domain, v.opts.Separatrix, v.opts.Logger)
}

// Summary is a plain snapshot of a VectorField2D.
type Summary struct {
	NCx   []Curve       `yaml:"ncx"`
	NCy   []Curve       `yaml:"ncy"`
	Xss   [][]float64   `yaml:"xss"`
	J     [][][]float64 `yaml:"jacobians"`
	Types []int         `yaml:"types"`
}

// Summary exports the nullclines, fixed points, their Jacobians (row-major
// nested slices, nil when unknown) and stability codes.
func (v *VectorField2D) Summary() Summary {
	s := Summary{NCx: v.ncx, NCy: v.ncy, Xss: v.set.X()}
	for _, p := range v.set.points {
		s.Types = append(s.Types, p.Kind.Code())
		if p.J == nil {
			s.J = append(s.J, nil)
			continue
		}
		rows := make([][]float64, p.J.Rows())
		for r := range rows {
			rows[r] = append([]float64(nil), p.J.RawRow(r)...)
		}
		s.J = append(s.J, rows)
	}
	return s
}
