// Package vectorfield defines the vector-field capability consumed by the
// topology package: evaluation at an arbitrary point and, when available, an
// analytic Jacobian. Fields without one are differentiated by central finite
// differences (gonum diff/fd).
//
// KernelField reconstructs a smooth field from kernel centres X, coefficient
// rows C and a bandwidth β:
//
//	f(x) = Σ_j exp(−β‖x − X_j‖²) C_j
package vectorfield
