package topology

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/matrix"
	"github.com/katalvlaran/cellflow/ode"
	"github.com/katalvlaran/cellflow/vectorfield"
)

// TraceSeparatrices traces the stable manifold of every saddle. For each
// eigenvector column u of J with Re(λ) < 0 it integrates −f from x ± ε·u
// over [0, Horizon] and joins the time-reversed minus branch with the plus
// branch into one curve; the curves are then clipped to domain.
//
// Saddles whose Jacobian cannot be decomposed are skipped and logged.
// Integration errors keep the partial branch.
func TraceSeparatrices(ctx context.Context, saddles [][]float64, jacobians []*matrix.Dense, f vectorfield.Field, domain Domain, o SeparatrixOptions, log *slog.Logger) ([]Curve, error) {
	if len(saddles) != len(jacobians) {
		return nil, fmt.Errorf("TraceSeparatrices: %d saddles, %d jacobians: %w", len(saddles), len(jacobians), ErrDimensionMismatch)
	}
	d := f.Dim()
	if err := domain.validate(d); err != nil {
		return nil, fmt.Errorf("TraceSeparatrices: %w", err)
	}
	if !(o.Horizon > 0) || o.Samples < minCurveSamples || !(o.Epsilon > 0) {
		return nil, fmt.Errorf("TraceSeparatrices: horizon=%g samples=%d eps=%g: %w", o.Horizon, o.Samples, o.Epsilon, ErrInvalidStep)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	times := make([]float64, o.Samples)
	floats.Span(times, 0, o.Horizon)
	back := vectorfield.Negate(f)

	var raw []Curve
	for i, x := range saddles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(x) != d || jacobians[i] == nil || jacobians[i].Rows() != d || jacobians[i].Cols() != d {
			return nil, fmt.Errorf("TraceSeparatrices: saddle %d: %w", i, ErrDimensionMismatch)
		}
		eig, err := matrix.Eigen(jacobians[i], false)
		if err != nil {
			log.Debug("saddle skipped", slog.Int("saddle", i), slog.String("err", err.Error()))
			continue
		}
		for j, w := range eig.Values {
			if real(w) >= 0 {
				continue
			}
			u := eig.RealRight(j)
			n := floats.Norm(u, 2)
			if n == 0 {
				continue
			}
			floats.Scale(o.Epsilon/n, u)
			plus := make([]float64, d)
			minus := make([]float64, d)
			floats.AddTo(plus, x, u)
			floats.SubTo(minus, x, u)

			lower := branch(back, minus, times, o.ODE, log)
			upper := branch(back, plus, times, o.ODE, log)
			sep := make(Curve, 0, len(lower)+len(upper))
			for k := len(lower) - 1; k >= 0; k-- {
				sep = append(sep, lower[k])
			}
			raw = append(raw, append(sep, upper...))
		}
	}
	return ClipCurves(raw, domain, 0), nil
}

func branch(f vectorfield.Field, x0, times []float64, o ode.Options, log *slog.Logger) Curve {
	out, err := ode.Integrate(f, x0, times, o)
	if err != nil {
		log.Debug("separatrix branch truncated", slog.String("err", err.Error()))
	}
	if out == nil {
		return nil
	}
	c := make(Curve, out.Rows())
	for r := range c {
		c[r] = append([]float64(nil), out.RawRow(r)...)
	}
	return c
}
