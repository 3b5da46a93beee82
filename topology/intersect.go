package topology

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cellflow/vectorfield"
)

// SamplePointsOnCurve keeps the first point and then every point at which the
// arclength since the last kept point reaches interval.
func SamplePointsOnCurve(c Curve, interval float64) Curve {
	if len(c) == 0 {
		return nil
	}
	out := Curve{c[0]}
	var acc float64
	for i := 1; i < len(c); i++ {
		acc += floats.Distance(c[i], c[i-1], 2)
		if acc >= interval {
			out = append(out, c[i])
			acc = 0
		}
	}
	return out
}

func det2(a0, a1, b0, b1 float64) float64 { return a0*b1 - a1*b0 }

// Intersect2D returns the crossings of the planar polylines c1 and c2, merged
// with RemoveRedundantPoints(tol). Parallel segments never intersect.
func Intersect2D(c1, c2 Curve, tol float64) [][]float64 {
	var pts [][]float64
	for i := 0; i+1 < len(c1); i++ {
		p1, p2 := c1[i], c1[i+1]
		for j := 0; j+1 < len(c2); j++ {
			p3, p4 := c2[j], c2[j+1]
			denom := det2(p1[0]-p2[0], p1[1]-p2[1], p3[0]-p4[0], p3[1]-p4[1])
			if denom == 0 {
				continue
			}
			t := det2(p1[0]-p3[0], p1[1]-p3[1], p3[0]-p4[0], p3[1]-p4[1]) / denom
			u := -det2(p1[0]-p2[0], p1[1]-p2[1], p1[0]-p3[0], p1[1]-p3[1]) / denom
			if t >= 0 && t <= 1 && u >= 0 && u <= 1 {
				pts = append(pts, []float64{p1[0] + t*(p2[0]-p1[0]), p1[1] + t*(p2[1]-p1[1])})
			}
		}
	}
	if tol >= 0 {
		pts, _ = RemoveRedundantPoints(pts, tol)
	}
	return pts
}

// FindFixedPointsFromNullclines subsamples every nullcline at interval,
// intersects each x-nullcline with each y-nullcline and refines the merged
// intersections with FindFixedPointsContext.
func FindFixedPointsFromNullclines(ctx context.Context, f vectorfield.Field, ncx, ncy []Curve, interval float64, o Options) (*LocateResult, error) {
	if f.Dim() != 2 {
		return nil, fmt.Errorf("FindFixedPointsFromNullclines: dim %d: %w", f.Dim(), ErrDimensionMismatch)
	}
	if !(interval > 0) {
		return nil, fmt.Errorf("FindFixedPointsFromNullclines: interval=%g: %w", interval, ErrInvalidStep)
	}
	sx := make([]Curve, len(ncx))
	for i, c := range ncx {
		sx[i] = SamplePointsOnCurve(c, interval)
	}
	sy := make([]Curve, len(ncy))
	for i, c := range ncy {
		sy[i] = SamplePointsOnCurve(c, interval)
	}
	var seeds [][]float64
	for _, a := range sx {
		for _, b := range sy {
			seeds = append(seeds, Intersect2D(a, b, o.Tolerance)...)
		}
	}
	if o.Tolerance >= 0 {
		seeds, _ = RemoveRedundantPoints(seeds, o.Tolerance)
	}
	return FindFixedPointsContext(ctx, seeds, f, o)
}
