// Package sampling centralizes deterministic random generation for the
// engines: seeded streams, independent per-worker substreams, weighted
// sampling without replacement, and space-filling seed designs.
//
// Determinism: the same seed yields identical draws on every platform.
// A *rand.Rand is not goroutine-safe; derive one stream per worker with Derive.
package sampling
