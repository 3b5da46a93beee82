package ode

import (
	"math"

	"github.com/katalvlaran/cellflow/vectorfield"
)

// Dormand–Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	// dpE is the fifth-order weights minus the embedded fourth-order weights.
	dpE = [7]float64{
		71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40,
	}
)

const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 10.0
)

type dopri struct {
	f    vectorfield.Field
	o    Options
	k    [7][]float64
	tmp  []float64
	next []float64
}

func newDopri(f vectorfield.Field, o Options) *dopri {
	d := f.Dim()
	s := &dopri{f: f, o: o, tmp: make([]float64, d), next: make([]float64, d)}
	for i := range s.k {
		s.k[i] = make([]float64, d)
	}
	return s
}

// step attempts x → x + h, writing the candidate into s.next and returning the
// scaled error norm. s.k[0] must hold f(x).
func (s *dopri) step(x []float64, h float64) float64 {
	for st := 1; st < 7; st++ {
		copy(s.tmp, x)
		for j := 0; j < st; j++ {
			if a := dpA[st][j]; a != 0 {
				for c := range s.tmp {
					s.tmp[c] += h * a * s.k[j][c]
				}
			}
		}
		if st == 6 {
			copy(s.next, s.tmp)
		}
		s.f.Eval(s.k[st], s.tmp)
	}
	var acc float64
	for c := range x {
		var e float64
		for st := 0; st < 7; st++ {
			e += dpE[st] * s.k[st][c]
		}
		e *= h
		sc := s.o.ATol + s.o.RTol*math.Max(math.Abs(x[c]), math.Abs(s.next[c]))
		acc += (e / sc) * (e / sc)
	}
	return math.Sqrt(acc / float64(len(x)))
}

// initialStep follows the Hairer–Nørsett–Wanner starting heuristic.
func (s *dopri) initialStep(x []float64, span float64) float64 {
	if s.o.InitialStep > 0 {
		return math.Min(s.o.InitialStep, span)
	}
	var d0, d1 float64
	for c := range x {
		sc := s.o.ATol + s.o.RTol*math.Abs(x[c])
		d0 += (x[c] / sc) * (x[c] / sc)
		d1 += (s.k[0][c] / sc) * (s.k[0][c] / sc)
	}
	d0, d1 = math.Sqrt(d0/float64(len(x))), math.Sqrt(d1/float64(len(x)))
	h := 1e-6
	if d0 > 1e-5 && d1 > 1e-5 {
		h = 0.01 * d0 / d1
	}
	return math.Min(h, span)
}

func integrateDopri(f vectorfield.Field, rows [][]float64, times []float64, o Options) ([][]float64, error) {
	if len(times) == 1 {
		return rows, nil
	}
	s := newDopri(f, o)
	x := append([]float64(nil), rows[0]...)
	t := times[0]
	dir := math.Copysign(1, times[1]-times[0])
	span := math.Abs(times[len(times)-1] - times[0])
	hmin := o.MinStep * span

	f.Eval(s.k[0], x)
	h := s.initialStep(x, span)
	steps := 0
	for i := 1; i < len(times); i++ {
		target := times[i]
		for (target-t)*dir > 0 {
			if steps >= o.MaxSteps {
				return rows, ErrStepLimit
			}
			steps++
			last, free := false, h
			if rem := math.Abs(target - t); h >= rem {
				h, last = rem, true
			}
			errNorm := s.step(x, dir*h)
			if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
				if h <= hmin {
					return rows, ErrNonFinite
				}
				h *= minFactor
				continue
			}
			fac := maxFactor
			if errNorm > 0 {
				fac = math.Min(maxFactor, math.Max(minFactor, safety*math.Pow(errNorm, -0.2)))
			}
			if errNorm > 1 {
				if h <= hmin {
					return rows, ErrStepUnderflow
				}
				h *= math.Min(1, fac)
				continue
			}
			copy(x, s.next)
			if !allFinite(x) {
				return rows, ErrNonFinite
			}
			s.k[0], s.k[6] = s.k[6], s.k[0]
			if last {
				t, h = target, free
			} else {
				t += dir * h
				h *= fac
			}
		}
		rows = append(rows, append([]float64(nil), x...))
	}
	return rows, nil
}
