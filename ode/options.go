package ode

import "fmt"

// Method selects the integration scheme.
type Method int

const (
	// DormandPrince is the adaptive 5(4) embedded pair.
	DormandPrince Method = iota
	// RK4 is the classic fixed-step fourth-order scheme.
	RK4
)

// String implements fmt.Stringer.
func (m Method) String() string {
	switch m {
	case DormandPrince:
		return "dopri5"
	case RK4:
		return "rk4"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Defaults used by DefaultOptions.
const (
	DefaultRTol     = 1e-6
	DefaultATol     = 1e-9
	DefaultMaxSteps = 100000
	DefaultMinStep  = 1e-12
	// DefaultSubsteps is the RK4 step count per unit span when Step is zero.
	DefaultSubsteps = 1000
)

// Options configures Integrate.
type Options struct {
	Method Method
	// RTol and ATol control the Dormand–Prince error estimate.
	RTol, ATol float64
	// InitialStep seeds the adaptive controller; 0 picks one from f(x0).
	InitialStep float64
	// Step is the RK4 step; 0 means span/DefaultSubsteps.
	Step float64
	// MinStep is the smallest adaptive step relative to the span.
	MinStep float64
	// MaxSteps bounds the total number of accepted plus rejected steps.
	MaxSteps int
}

// DefaultOptions returns the package defaults.
func DefaultOptions() Options {
	return Options{
		Method:   DormandPrince,
		RTol:     DefaultRTol,
		ATol:     DefaultATol,
		MinStep:  DefaultMinStep,
		MaxSteps: DefaultMaxSteps,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.RTol <= 0 {
		o.RTol = d.RTol
	}
	if o.ATol <= 0 {
		o.ATol = d.ATol
	}
	if o.MinStep <= 0 {
		o.MinStep = d.MinStep
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = d.MaxSteps
	}
	return o
}
