// Package ode integrates autonomous systems dx/dt = f(x) and reports the
// state at caller-chosen output times.
//
// Two methods are available: the adaptive Dormand–Prince 5(4) pair with
// FSAL reuse and a standard error controller, and classic fixed-step RK4.
// Both land exactly on every output time and stop after MaxSteps steps.
package ode
