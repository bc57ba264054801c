// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"sort"

	"github.com/civicmesh/opinionmap/models"
	"github.com/civicmesh/opinionmap/votematrix"
)

// repScore holds the consensus score for one comment within one cluster.
type repScore struct {
	tid   string
	score float64
}

// representatives ranks, for each cluster, the comments that characterize
// it: comments where the cluster's agree (or disagree) rate stands far
// above the rest of the participants. A comment that splits two clusters
// along opposite values shows up as representative for both.
//
// Rates are computed over pairwise-complete voters only: a participant who
// never voted on a comment contributes to neither side. Only comments with
// a positive score are listed, ranked descending, ties broken by comment
// id ascending.
func representatives(snap votematrix.Snapshot, tids []string, clusters [][]string) [][]string {
	members := make([]map[string]bool, len(clusters))
	all := make(map[string]bool)
	for g, pids := range clusters {
		members[g] = make(map[string]bool, len(pids))
		for _, pid := range pids {
			members[g][pid] = true
			all[pid] = true
		}
	}

	reps := make([][]string, len(clusters))
	if len(clusters) < 2 {
		// No other group to stand out against.
		for g := range reps {
			reps[g] = []string{}
		}
		return reps
	}

	for g := range clusters {
		var scored []repScore
		for _, tid := range tids {
			score, ok := clusterRepness(snap, tid, members[g], all)
			if ok && score > 0 {
				scored = append(scored, repScore{tid: tid, score: score})
			}
		}

		sort.Slice(scored, func(i, j int) bool {
			if scored[i].score != scored[j].score {
				return scored[i].score > scored[j].score
			}
			return scored[i].tid < scored[j].tid
		})

		reps[g] = make([]string, len(scored))
		for i, s := range scored {
			reps[g][i] = s.tid
		}
	}
	return reps
}

// clusterRepness returns the best in-group vs out-group rate gap across
// the agree and disagree directions.
func clusterRepness(snap votematrix.Snapshot, tid string, in map[string]bool, all map[string]bool) (float64, bool) {
	var inAgree, inDisagree, inVoters int
	var outAgree, outDisagree, outVoters int

	for pid := range all {
		v, ok := snap.Value(pid, tid)
		if !ok {
			continue
		}
		if in[pid] {
			inVoters++
			switch v {
			case models.VoteAgree:
				inAgree++
			case models.VoteDisagree:
				inDisagree++
			}
		} else {
			outVoters++
			switch v {
			case models.VoteAgree:
				outAgree++
			case models.VoteDisagree:
				outDisagree++
			}
		}
	}

	if inVoters == 0 {
		return 0, false
	}

	agreeGap := rate(inAgree, inVoters) - rate(outAgree, outVoters)
	disagreeGap := rate(inDisagree, inVoters) - rate(outDisagree, outVoters)
	return max(agreeGap, disagreeGap), true
}

func rate(count, voters int) float64 {
	if voters == 0 {
		return 0
	}
	return float64(count) / float64(voters)
}
