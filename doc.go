// Package cellflow reconstructs cell-state dynamics from a point cloud
// annotated with velocities and analyses the resulting flow.
//
// The library is organized into focused subpackages:
//
//	matrix/       dense and column-compressed sparse storage, QR, LU, eigen and null-space routines
//	neighbors/    k-nearest-neighbour graphs (gonum kd-tree or brute force)
//	kernel/       drift, density and locally adaptive transition kernels
//	markov/       transition-matrix fitting and Markov chain analysis
//	grid/         velocity and diffusion estimates on a regular mesh
//	vectorfield/  the vector-field capability and a Gaussian kernel field
//	rootfind/     damped Newton with Householder QR factors
//	ode/          Dormand–Prince and RK4 integrators
//	topology/     fixed points, nullclines and separatrices of planar fields
//	sampling/     seeded RNG, Latin-hypercube and weighted sampling
//	config/       YAML configuration with declarative validation
//
// A typical pipeline fits a chain with markov.NewKernelChain, reads its
// stationary distribution and diffusion embedding, and separately studies a
// learned vector field with topology.VectorField2D.
package cellflow
