package topology

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/rootfind"
	"github.com/katalvlaran/cellflow/sampling"
	"github.com/katalvlaran/cellflow/vectorfield"
)

// Curve is a polyline, one point per element.
type Curve [][]float64

// Continuation traces the planar curve g(x) = 0 through x0 by
// pseudo-arclength continuation with tangent v0, step ds and total arclength
// sMax. A nil v0 means the unit vector along the first axis.
//
// Each step predicts x0 + v·ds and corrects by solving
// {g(x) = 0, (x − xc)·v − ds = 0}; the next tangent is the normalised secant.
// When a corrector fails the points traced so far are returned with the error.
func Continuation(x0 []float64, g vectorfield.Scalar, v0 []float64, sMax, ds float64, so rootfind.Options) (Curve, error) {
	if len(x0) != 2 || (v0 != nil && len(v0) != 2) {
		return nil, fmt.Errorf("Continuation: %w", ErrDimensionMismatch)
	}
	if !(sMax > 0) || !(ds > 0) {
		return nil, fmt.Errorf("Continuation: sMax=%g ds=%g: %w", sMax, ds, ErrInvalidStep)
	}
	v := []float64{1, 0}
	if v0 != nil {
		v = append([]float64(nil), v0...)
		n := floats.Norm(v, 2)
		if n == 0 {
			return nil, fmt.Errorf("Continuation: zero tangent: %w", ErrInvalidStep)
		}
		floats.Scale(1/n, v)
	}

	xc := append([]float64(nil), x0...)
	corrector := vectorfield.Func{N: 2, F: func(dst, x []float64) {
		dst[0] = g(x)
		dst[1] = (x[0]-xc[0])*v[0] + (x[1]-xc[1])*v[1] - ds
	}}
	curve := Curve{append([]float64(nil), x0...)}
	pred := make([]float64, 2)
	for s := 0.0; s <= sMax; s += ds {
		floats.AddScaledTo(pred, xc, ds, v)
		res, err := rootfind.Solve(corrector, pred, so)
		if err != nil {
			return curve, fmt.Errorf("Continuation: arclength %g: %w", s, err)
		}
		x := res.X
		curve = append(curve, x)

		floats.SubTo(v, x, xc)
		n := floats.Norm(v, 2)
		if n == 0 || math.IsNaN(n) {
			return curve, fmt.Errorf("Continuation: degenerate secant: %w", ErrInvalidStep)
		}
		floats.Scale(1/n, v)
		copy(xc, x)
	}
	return curve, nil
}

// ClipCurves splits every curve into runs that stay inside domain and have no
// jump longer than tolDiscont (tolDiscont ≤ 0 disables the jump test). A
// point outside the domain, or one reached by a long jump, ends the current
// run. Runs with fewer than two points are dropped; the final in-domain
// point of each run is kept.
func ClipCurves(curves []Curve, domain Domain, tolDiscont float64) []Curve {
	var out []Curve
	for _, c := range curves {
		var run Curve
		for i, p := range c {
			away := !domain.Contains(p)
			if !away && tolDiscont > 0 && i > 0 && floats.Distance(p, c[i-1], 2) > tolDiscont {
				away = true
			}
			if away {
				if len(run) >= minCurveSamples {
					out = append(out, run)
				}
				run = nil
				continue
			}
			run = append(run, p)
		}
		if len(run) >= minCurveSamples {
			out = append(out, run)
		}
	}
	return out
}

// NullclineOptions configures TraceNullclines.
type NullclineOptions struct {
	// SMax is the arclength of each branch; 0 means 5 × domain.Extent().
	SMax float64
	// Ds is the step; 0 means SMax/1000.
	Ds float64
	// Rand draws the initial tangent angle per seed; nil uses sampling.DefaultSeed.
	Rand *rand.Rand
	// Solver configures the corrector.
	Solver rootfind.Options
	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
}

func (o NullclineOptions) steps(domain Domain) (sMax, ds float64) {
	sMax, ds = o.SMax, o.Ds
	if sMax <= 0 {
		sMax = 5 * domain.Extent()
	}
	if ds <= 0 {
		ds = sMax / 1e3
	}
	return sMax, ds
}

// TraceNullclines traces both branches of the fx = 0 and fy = 0 curves
// through every seed, with a random initial tangent per seed, and clips them
// to domain with a jump tolerance of 10·ds. Component functions are called
// sequentially.
func TraceNullclines(ctx context.Context, seeds [][]float64, fx, fy vectorfield.Scalar, domain Domain, o NullclineOptions) (ncx, ncy []Curve, err error) {
	if len(domain) != 2 {
		return nil, nil, fmt.Errorf("TraceNullclines: domain has %d intervals: %w", len(domain), ErrDimensionMismatch)
	}
	if err := domain.validate(2); err != nil {
		return nil, nil, fmt.Errorf("TraceNullclines: %w", err)
	}
	sMax, ds := o.steps(domain)
	if !(sMax > 0) {
		return nil, nil, fmt.Errorf("TraceNullclines: empty domain: %w", ErrInvalidStep)
	}
	rng := o.Rand
	if rng == nil {
		rng = sampling.NewRand(sampling.DefaultSeed)
	}
	log := o.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	trace := func(x0 []float64, g vectorfield.Scalar, v []float64) Curve {
		c, err := Continuation(x0, g, v, sMax, ds, o.Solver)
		if err != nil {
			log.Debug("continuation stopped early", slog.Int("points", len(c)), slog.String("err", err.Error()))
		}
		return c
	}
	var rawX, rawY []Curve
	for i, x0 := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if len(x0) != 2 {
			return nil, nil, fmt.Errorf("TraceNullclines: seed %d: %w", i, ErrDimensionMismatch)
		}
		theta := rng.Float64() * 2 * math.Pi
		v := []float64{math.Cos(theta), math.Sin(theta)}
		w := []float64{-v[0], -v[1]}
		rawX = append(rawX, trace(x0, fx, v), trace(x0, fx, w))
		rawY = append(rawY, trace(x0, fy, v), trace(x0, fy, w))
	}
	ncx = ClipCurves(rawX, domain, 10*ds)
	ncy = ClipCurves(rawY, domain, 10*ds)
	log.Debug("nullclines traced", slog.Int("seeds", len(seeds)), slog.Int("x", len(ncx)), slog.Int("y", len(ncy)))
	return ncx, ncy, nil
}
