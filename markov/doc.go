// Package markov estimates and analyzes Markov chains over annotated point
// clouds: n points in d dimensions, each carrying a velocity vector.
//
// Transition matrices are column-stochastic: column i is the outgoing
// distribution of state i. Three chains share the Chain state machine
// (Unfit → Fit → Decomposed, with the spectral cache dropped on every re-fit):
//
//   - KernelChain: sparse transition matrix from drift kernels over a k-NN
//     graph (FitTransitionMatrix), optionally density-corrected, locally
//     adaptive and neighbour down-sampled.
//   - DiscreteChain: dense matrix fit either with the same kernels
//     (MethodKernel) or by a per-state quadratic programme (MethodQP).
//   - ContinuousChain: a transition-rate generator fit by the QP without
//     the mass cap; columns sum to zero.
//
// Analyses: m-step propagation, drift reconstruction (plain and density
// corrected), stationary distributions (eigen, null space, power
// iteration), transient distributions and diffusion-map embeddings.
//
// Per-state kernel evaluation runs on an errgroup bounded by WithWorkers.
// A state whose kernel weights vanish surfaces as a *StateError wrapping
// ErrDegenerateKernel unless WithDegeneratePolicy(DegenerateSelfLoop) is set.
package markov
