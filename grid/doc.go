// Package grid projects a velocity-annotated point cloud onto a regular mesh.
//
// VelocityOnGrid averages the velocities of each node's nearest points with
// Gaussian weights and estimates a per-node diffusion matrix from the spread
// of those velocities; SmoothDrift is the lighter variant used to smooth a
// drift field. Mesh nodes are enumerated with dimension 0 varying fastest.
package grid
