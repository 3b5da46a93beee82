// Package topology analyses the phase portrait of a vector field: it locates
// and classifies fixed points, traces nullclines by pseudo-arclength
// continuation, intersects them to discover further fixed points, and traces
// separatrices from saddles.
//
// Per-seed root finding runs in parallel; the FixedPointSet is only mutated
// sequentially after all candidates are collected. Seeds that fail to
// converge are reported in LocateResult.Failures and never abort a batch.
// Points outside the configured Domain are counted and dropped.
//
// VectorField2D bundles these steps for planar fields.
package topology
