// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Column statistics over sample matrices (rows = samples, columns = features).
//   - Used by the kernel layer to estimate per-cell drift covariance.
//
// Exposed API:
//   - ColumnMeans(X)           -> means            // Σ_i X[i,j] / r
//   - Covariance(X, unbiased)  -> (Cov, means)     // (Xcᵀ Xc)/(r-1) or /r
//
// Determinism & Performance:
//   - Fixed i→j traversal for all explicit loops.
//   - Dense fast-paths operate on row-major flat buffers.

package matrix

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opColumnMeans = "ColumnMeans"
	opCovariance  = "Covariance"
)

// ColumnMeans returns the per-column mean of X.
//
// Errors:
//   - ErrNilMatrix; ErrInvalidDimensions for a 0-row matrix.
func ColumnMeans(X Matrix) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opColumnMeans, err)
	}
	r, c := X.Rows(), X.Cols()
	if r == 0 {
		return nil, matrixErrorf(opColumnMeans, ErrInvalidDimensions)
	}
	d, err := asDense(X)
	if err != nil {
		return nil, matrixErrorf(opColumnMeans, err)
	}
	means := make([]float64, c)
	var i, j, base int
	for i = 0; i < r; i++ {
		base = i * c
		for j = 0; j < c; j++ {
			means[j] += d.data[base+j]
		}
	}
	invR := 1.0 / float64(r)
	for j = 0; j < c; j++ {
		means[j] *= invR
	}

	return means, nil
}

// Covariance computes the column covariance of X.
// Implementation:
//   - Stage 1: ColumnMeans(X).
//   - Stage 2: Accumulate the upper triangle of Xcᵀ Xc and mirror it.
//
// Behavior highlights:
//   - unbiased=true divides by r-1 (requires r ≥ 2); otherwise divides by r.
//   - A single sample with unbiased=false yields the zero matrix.
//
// Errors:
//   - ErrNilMatrix, ErrInvalidDimensions (r == 0, or r < 2 when unbiased).
//
// Complexity:
//   - Time O(r*c²), Space O(c²).
func Covariance(X Matrix, unbiased bool) (*Dense, []float64, error) {
	means, err := ColumnMeans(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	r, c := X.Rows(), X.Cols()
	denom := float64(r)
	if unbiased {
		if r < 2 {
			return nil, nil, matrixErrorf(opCovariance, ErrInvalidDimensions)
		}
		denom = float64(r - 1)
	}
	d, err := asDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	cov, err := NewDense(c, c)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	centered := make([]float64, c)
	var i, j, k, base int
	for i = 0; i < r; i++ {
		base = i * c
		for j = 0; j < c; j++ {
			centered[j] = d.data[base+j] - means[j]
		}
		for j = 0; j < c; j++ {
			for k = j; k < c; k++ {
				cov.data[j*c+k] += centered[j] * centered[k]
			}
		}
	}
	for j = 0; j < c; j++ {
		for k = j; k < c; k++ {
			cov.data[j*c+k] /= denom
			cov.data[k*c+j] = cov.data[j*c+k]
		}
	}

	return cov, means, nil
}
