// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/civicmesh/opinionmap/votematrix"
)

// correlationMatrix computes pairwise Pearson correlation between comment
// columns, using only participants who voted on both comments of each pair
// (pairwise-complete). The result is symmetric with 1.0 on the diagonal
// for any comment with at least one vote. Pairs with fewer than two
// complete observations, or with zero variance on either side, are 0.
func correlationMatrix(snap votematrix.Snapshot, tids []string) [][]float64 {
	n := len(tids)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		if snap.ColCount(tids[i]) >= 1 {
			matrix[i][i] = 1.0
		}
		for j := i + 1; j < n; j++ {
			r := pairwiseCorrelation(snap, tids[i], tids[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return matrix
}

func pairwiseCorrelation(snap votematrix.Snapshot, a, b string) float64 {
	var xs, ys []float64
	for _, pid := range snap.Pids {
		va, okA := snap.Value(pid, a)
		vb, okB := snap.Value(pid, b)
		if !okA || !okB {
			continue
		}
		xs = append(xs, float64(va))
		ys = append(ys, float64(vb))
	}

	if len(xs) < 2 {
		return 0
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0
	}
	return stat.Correlation(xs, ys, nil)
}
