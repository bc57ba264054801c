// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"sync"

	"github.com/civicmesh/opinionmap/models"
	"github.com/civicmesh/opinionmap/votematrix"
)

// Config carries the math thresholds. An explicit struct, not package
// globals: tests and operators tune these per engine instance.
type Config struct {
	MinVotes      int // engagement floor for matrix inclusion
	KMin, KMax    int // cluster count range to evaluate
	KMeansMaxIter int // iteration cap for k-means refinement
}

func DefaultConfig() Config {
	return Config{
		MinVotes:      7,
		KMin:          2,
		KMax:          5,
		KMeansMaxIter: 64,
	}
}

// CommentLister supplies comment metadata (for moderation filtering).
// store.Store satisfies this.
type CommentLister interface {
	ListComments(conversationID string, mod *int) ([]models.Comment, error)
}

// Cluster is one opinion group: its members, its centroid in projection
// space, and the comments that characterize it, best first.
type Cluster struct {
	ID          int
	Members     []string
	Center      Point
	RepComments []string
}

// Result is the cached outcome of one full computation pass.
type Result struct {
	Fingerprint uint64
	Projection  Projection
	Clusters    []Cluster
}

// Engine memoizes the projection/clustering result per conversation,
// keyed by the vote matrix fingerprint, and recomputes lazily when a
// request finds the cache stale.
type Engine struct {
	cfg      Config
	matrix   *votematrix.Store
	comments CommentLister

	mu    sync.Mutex
	convs map[string]*convCache
}

type convCache struct {
	mu     sync.Mutex
	result *Result
}

func New(cfg Config, matrix *votematrix.Store, comments CommentLister) *Engine {
	return &Engine{
		cfg:      cfg,
		matrix:   matrix,
		comments: comments,
		convs:    make(map[string]*convCache),
	}
}

func (e *Engine) conv(conversationID string) *convCache {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.convs[conversationID]
	if !ok {
		c = &convCache{}
		e.convs[conversationID] = c
	}
	return c
}

// GetOrCompute returns the current projection and clustering for a
// conversation, recomputing only when the fingerprint moved since the
// cached result. The per-conversation lock serializes concurrent
// recomputes - two requests racing on a stale cache run one computation,
// not two - while other conversations proceed independently.
func (e *Engine) GetOrCompute(conversationID string) (*Result, error) {
	c := e.conv(conversationID)
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := e.matrix.Snapshot(conversationID)
	if err != nil {
		return nil, err
	}

	if c.result != nil && c.result.Fingerprint == snap.Fingerprint {
		return c.result, nil
	}

	result, err := e.compute(snap)
	if err != nil {
		// Math failures leave the previous cache entry intact; only a
		// successful pass overwrites it.
		return nil, err
	}

	c.result = result
	return result, nil
}

// CorrelationMatrix computes the pairwise comment correlation matrix for
// a conversation from a fresh snapshot. Purely derived and deterministic,
// so it is not cached separately.
func (e *Engine) CorrelationMatrix(conversationID string) ([][]float64, []string, uint64, error) {
	snap, err := e.matrix.Snapshot(conversationID)
	if err != nil {
		return nil, nil, 0, err
	}

	tids, err := e.eligibleTids(snap)
	if err != nil {
		return nil, nil, 0, err
	}

	return correlationMatrix(snap, tids), tids, snap.Fingerprint, nil
}

// compute runs the full imputation -> projection -> clustering pipeline
// on one snapshot. It never mutates the vote matrix; a failure is
// isolated to this read path.
func (e *Engine) compute(snap votematrix.Snapshot) (*Result, error) {
	tids, err := e.eligibleTids(snap)
	if err != nil {
		return nil, err
	}

	eligible := make(map[string]bool, len(tids))
	for _, tid := range tids {
		eligible[tid] = true
	}

	d := impute(snap, eligible, e.cfg.MinVotes)
	proj := project(d)

	result := &Result{
		Fingerprint: snap.Fingerprint,
		Projection:  proj,
	}

	if len(proj.Pids) < 2 {
		// Too few participants with sufficient votes: one cluster
		// holding everyone in the conversation, nothing representative.
		result.Clusters = []Cluster{{
			ID:          0,
			Members:     append([]string{}, snap.Pids...),
			RepComments: []string{},
		}}
		return result, nil
	}

	km := clusterPoints(proj.Participants, e.cfg.KMin, e.cfg.KMax, e.cfg.KMeansMaxIter)

	memberLists := make([][]string, km.k)
	for i := range memberLists {
		memberLists[i] = []string{}
	}
	for i, c := range km.assignment {
		memberLists[c] = append(memberLists[c], proj.Pids[i])
	}

	reps := representatives(snap, proj.Tids, memberLists)

	result.Clusters = make([]Cluster, km.k)
	for c := 0; c < km.k; c++ {
		result.Clusters[c] = Cluster{
			ID:          c,
			Members:     memberLists[c],
			Center:      km.centroids[c],
			RepComments: reps[c],
		}
	}
	return result, nil
}

// eligibleTids returns the ids of comments that may enter the math:
// everything not moderated out, in sorted snapshot order. Comments without
// votes are absent from the snapshot and therefore excluded.
func (e *Engine) eligibleTids(snap votematrix.Snapshot) ([]string, error) {
	comments, err := e.comments.ListComments(snap.ConversationID, nil)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(comments))
	for _, c := range comments {
		if c.Mod != models.ModRejected {
			allowed[c.Tid] = true
		}
	}

	tids := make([]string, 0, len(snap.Tids))
	for _, tid := range snap.Tids {
		if allowed[tid] {
			tids = append(tids, tid)
		}
	}
	return tids, nil
}
