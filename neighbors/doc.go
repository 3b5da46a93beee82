// Package neighbors builds k-nearest-neighbour graphs over point clouds.
//
// Two exact strategies implement Index: KDTree (gonum spatial/kdtree) and
// BruteForce (linear scan). Build queries every point of the cloud in
// parallel and returns a Graph whose row i lists the k nearest points of i in
// ascending distance, ties broken by index. By default the query point itself
// is included at rank 0.
package neighbors
