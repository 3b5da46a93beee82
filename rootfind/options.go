package rootfind

// Defaults used by DefaultOptions.
const (
	DefaultMaxIter    = 100
	DefaultFTol       = 1e-10
	DefaultXTol       = 1.49012e-08
	DefaultAcceptTol  = 1e-6
	DefaultRCond      = 1e-13
	DefaultMinDamping = 1.0 / 1024
)

// Options configures Solve.
type Options struct {
	// MaxIter bounds the number of Newton steps.
	MaxIter int
	// FTol declares convergence once ‖f(x)‖₂ ≤ FTol.
	FTol float64
	// XTol stops when the step is below XTol*(‖x‖+XTol); the result is accepted if ‖f‖ ≤ AcceptTol.
	XTol float64
	// AcceptTol is the residual accepted when the step stalls.
	AcceptTol float64
	// RCond is the relative pivot threshold for a singular R.
	RCond float64
	// MinDamping is the smallest backtracking factor tried per step.
	MinDamping float64
}

// DefaultOptions returns the package defaults.
func DefaultOptions() Options {
	return Options{
		MaxIter:    DefaultMaxIter,
		FTol:       DefaultFTol,
		XTol:       DefaultXTol,
		AcceptTol:  DefaultAcceptTol,
		RCond:      DefaultRCond,
		MinDamping: DefaultMinDamping,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.FTol <= 0 {
		o.FTol = d.FTol
	}
	if o.XTol <= 0 {
		o.XTol = d.XTol
	}
	if o.AcceptTol <= 0 {
		o.AcceptTol = d.AcceptTol
	}
	if o.RCond <= 0 {
		o.RCond = d.RCond
	}
	if o.MinDamping <= 0 || o.MinDamping > 1 {
		o.MinDamping = d.MinDamping
	}
	return o
}
