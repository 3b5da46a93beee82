package topology

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/cellflow/rootfind"
	"github.com/katalvlaran/cellflow/vectorfield"
)

// LocateResult aggregates a batch of root findings.
type LocateResult struct {
	// Points holds the distinct in-domain fixed points in seed order.
	Points []FixedPoint
	// Failures lists seeds whose root finding failed.
	Failures []SeedFailure
	// OutOfDomain counts converged roots outside the domain.
	OutOfDomain int
	// Redundant counts converged in-domain roots merged into an earlier one.
	Redundant int
}

// FindFixedPoints is FindFixedPointsContext without cancellation.
func FindFixedPoints(seeds [][]float64, f vectorfield.Field, o Options) (*LocateResult, error) {
	return FindFixedPointsContext(context.Background(), seeds, f, o)
}

// FindFixedPointsContext runs Newton from every seed and merges the roots.
// Implementation:
//   - Stage 1: Validate seed dimensions and the domain (fatal on mismatch).
//   - Stage 2: Solve each seed on an errgroup; each goroutine writes its own slot.
//   - Stage 3: Sequentially drop failures and out-of-domain roots, then merge
//     roots closer than o.Tolerance keeping the first seen.
func FindFixedPointsContext(ctx context.Context, seeds [][]float64, f vectorfield.Field, o Options) (*LocateResult, error) {
	d := f.Dim()
	for i, s := range seeds {
		if len(s) != d {
			return nil, fmt.Errorf("FindFixedPoints: seed %d has dim %d, field %d: %w", i, len(s), d, ErrDimensionMismatch)
		}
	}
	if err := o.Domain.validate(d); err != nil {
		return nil, fmt.Errorf("FindFixedPoints: %w", err)
	}
	log := o.logger()

	type slot struct {
		fp  FixedPoint
		err error
	}
	slots := make([]slot, len(seeds))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers())
	for i := range seeds {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := rootfind.Solve(f, seeds[i], o.Solver)
			if err != nil {
				slots[i].err = err
				return nil
			}
			slots[i].fp = newFixedPoint(res.X, res.F, res.Jacobian())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &LocateResult{}
	var cand [][]float64
	var pts []FixedPoint
	for i, s := range slots {
		if s.err != nil {
			out.Failures = append(out.Failures, SeedFailure{Index: i, Seed: seeds[i], Err: s.err})
			continue
		}
		if !o.Domain.Contains(s.fp.X) {
			out.OutOfDomain++
			continue
		}
		cand = append(cand, s.fp.X)
		pts = append(pts, s.fp)
	}
	if o.Tolerance >= 0 {
		_, discard := RemoveRedundantPoints(cand, o.Tolerance)
		for i, p := range pts {
			if discard[i] {
				out.Redundant++
				continue
			}
			out.Points = append(out.Points, p)
		}
	} else {
		out.Points = pts
	}
	log.Debug("fixed points located",
		slog.Int("seeds", len(seeds)),
		slog.Int("points", len(out.Points)),
		slog.Int("failed", len(out.Failures)),
		slog.Int("out_of_domain", out.OutOfDomain))
	return out, nil
}

// LocateFixedPoints finds the fixed points reachable from seeds inside domain
// and returns them as a set merged with tolerance tol.
func LocateFixedPoints(ctx context.Context, seeds [][]float64, f vectorfield.Field, domain Domain, tol float64) (*FixedPointSet, *LocateResult, error) {
	o := DefaultOptions()
	o.Domain, o.Tolerance = domain, tol
	res, err := FindFixedPointsContext(ctx, seeds, f, o)
	if err != nil {
		return nil, nil, err
	}
	set := NewFixedPointSet(tol)
	set.Add(res.Points...)
	return set, res, nil
}
