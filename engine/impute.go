// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"gonum.org/v1/gonum/mat"

	"github.com/civicmesh/opinionmap/votematrix"
)

// dense is the imputed matrix handed to PCA: one row per included
// participant, one column per included comment, unset cells filled with 0.
type dense struct {
	pids []string
	tids []string
	data *mat.Dense // nil when either dimension is empty
}

// impute builds the dense matrix from a snapshot. Comments outside the
// eligible set (moderated out) are dropped. Participants and comments with
// fewer than minVotes votes are excluded entirely - the engagement floor
// keeps drive-by voters from smearing the projection. Missing cells become
// 0 (no opinion). Deterministic: id order comes from the sorted snapshot.
func impute(snap votematrix.Snapshot, eligible map[string]bool, minVotes int) dense {
	var d dense

	for _, tid := range snap.Tids {
		if !eligible[tid] {
			continue
		}
		if snap.ColCount(tid) < minVotes {
			continue
		}
		d.tids = append(d.tids, tid)
	}

	for _, pid := range snap.Pids {
		votes := 0
		for _, tid := range d.tids {
			if _, ok := snap.Value(pid, tid); ok {
				votes++
			}
		}
		if votes < minVotes {
			continue
		}
		d.pids = append(d.pids, pid)
	}

	if len(d.pids) == 0 || len(d.tids) == 0 {
		return d
	}

	d.data = mat.NewDense(len(d.pids), len(d.tids), nil)
	for i, pid := range d.pids {
		for j, tid := range d.tids {
			if v, ok := snap.Value(pid, tid); ok {
				d.data.Set(i, j, float64(v))
			}
		}
	}
	return d
}
