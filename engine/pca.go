// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point is a position in the reduced 2-D opinion space.
type Point [2]float64

// Projection maps every included participant and comment into 2-D space.
// Slices are index-aligned with Pids and Tids.
type Projection struct {
	Pids         []string
	Tids         []string
	Participants []Point
	Comments     []Point
}

// project reduces the imputed matrix to two dimensions via PCA.
//
// Columns are centered on their mean, the top two principal components are
// extracted with a thin SVD, and both participant rows and comment columns
// are projected onto that basis. Comment positions are the component
// loadings scaled by the singular values.
//
// Degenerate inputs never fail: a matrix with fewer than two independent
// dimensions gets the unresolved axis fixed at 0, and an empty matrix
// yields all-zero coordinates.
func project(d dense) Projection {
	proj := Projection{
		Pids:         d.pids,
		Tids:         d.tids,
		Participants: make([]Point, len(d.pids)),
		Comments:     make([]Point, len(d.tids)),
	}

	if d.data == nil {
		return proj
	}

	rows, cols := d.data.Dims()

	centered := mat.DenseCopyOf(d.data)
	centerColumns(centered, rows, cols)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		// Factorization failure leaves everything at the origin.
		return proj
	}

	var v mat.Dense
	svd.VTo(&v)
	sigma := svd.Values(nil)

	components := min(2, min(rows, cols))
	scale := math.Sqrt(float64(max(rows-1, 1)))

	for axis := 0; axis < components; axis++ {
		// A vanishing singular value means this axis carries no
		// variance; leave it at 0 rather than amplifying noise.
		if sigma[axis] < 1e-12 {
			continue
		}

		loading := fixSign(mat.Col(nil, axis, &v))

		for i := 0; i < rows; i++ {
			coord := 0.0
			for j := 0; j < cols; j++ {
				coord += centered.At(i, j) * loading[j]
			}
			proj.Participants[i][axis] = coord
		}
		for j := 0; j < cols; j++ {
			proj.Comments[j][axis] = loading[j] * sigma[axis] / scale
		}
	}

	return proj
}

// centerColumns subtracts the per-comment mean so the projection measures
// disagreement between participants, not absolute vote levels.
func centerColumns(m *mat.Dense, rows, cols int) {
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, m)
		mean := stat.Mean(col, nil)
		for i := 0; i < rows; i++ {
			m.Set(i, j, m.At(i, j)-mean)
		}
	}
}

// fixSign flips a component so its largest-magnitude entry is positive.
// SVD is sign-ambiguous; pinning the sign keeps repeated runs identical.
// Ties resolve to the lowest column index.
func fixSign(loading []float64) []float64 {
	best := 0
	for j := 1; j < len(loading); j++ {
		if math.Abs(loading[j]) > math.Abs(loading[best]) {
			best = j
		}
	}
	if loading[best] < 0 {
		for j := range loading {
			loading[j] = -loading[j]
		}
	}
	return loading
}
