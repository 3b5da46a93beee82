package topology

import (
	"fmt"
	"math"
)

// Interval is a closed range [Lo, Hi].
type Interval struct {
	Lo, Hi float64
}

// Width returns Hi − Lo.
func (iv Interval) Width() float64 { return iv.Hi - iv.Lo }

// Domain is an axis-aligned bounding box, one Interval per dimension.
// An empty Domain contains every point.
type Domain []Interval

// Box is shorthand for a planar domain.
func Box(x, y Interval) Domain { return Domain{x, y} }

// Contains reports whether every coordinate of x lies within its interval.
func (d Domain) Contains(x []float64) bool {
	for j, iv := range d {
		if x[j] < iv.Lo || x[j] > iv.Hi {
			return false
		}
	}
	return true
}

// Extent returns the sum of the interval widths (half the perimeter of a 2D box).
func (d Domain) Extent() float64 {
	var s float64
	for _, iv := range d {
		s += iv.Width()
	}
	return s
}

func (d Domain) bounds() (lo, hi []float64) {
	lo, hi = make([]float64, len(d)), make([]float64, len(d))
	for j, iv := range d {
		lo[j], hi[j] = iv.Lo, iv.Hi
	}
	return lo, hi
}

func (d Domain) validate(dim int) error {
	if len(d) == 0 {
		return nil
	}
	if len(d) != dim {
		return fmt.Errorf("domain has %d intervals for dim %d: %w", len(d), dim, ErrDimensionMismatch)
	}
	for j, iv := range d {
		if math.IsNaN(iv.Lo) || math.IsNaN(iv.Hi) || math.IsInf(iv.Lo, 0) || math.IsInf(iv.Hi, 0) || iv.Lo > iv.Hi {
			return fmt.Errorf("interval %d [%g, %g]: %w", j, iv.Lo, iv.Hi, ErrInvalidDomain)
		}
	}
	return nil
}
