// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votematrix

import (
	"sort"
	"sync"

	"github.com/civicmesh/opinionmap/models"
)

// Loader supplies the persisted votes for a conversation on cold start.
// store.Store satisfies this; it returns store.ErrNotFound for an unknown
// conversation id.
type Loader interface {
	ListVotes(conversationID string) ([]models.Vote, error)
}

// Store maintains one sparse participant x comment matrix per conversation,
// updated incrementally as votes arrive. Conversations are independent:
// each carries its own lock and fingerprint, and never serializes against
// another.
type Store struct {
	mu     sync.Mutex
	loader Loader
	convs  map[string]*matrix
}

type matrix struct {
	mu          sync.Mutex
	loaded      bool
	cells       map[string]map[string]int // pid -> tid -> value
	fingerprint uint64
}

func New(loader Loader) *Store {
	return &Store{
		loader: loader,
		convs:  make(map[string]*matrix),
	}
}

func (s *Store) conv(conversationID string) *matrix {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.convs[conversationID]
	if !ok {
		m = &matrix{cells: make(map[string]map[string]int)}
		s.convs[conversationID] = m
	}
	return m
}

// ensureLoaded replays persisted votes into an empty matrix. Caller holds m.mu.
func (s *Store) ensureLoaded(conversationID string, m *matrix) error {
	if m.loaded {
		return nil
	}

	votes, err := s.loader.ListVotes(conversationID)
	if err != nil {
		return err
	}

	for _, v := range votes {
		row, ok := m.cells[v.Pid]
		if !ok {
			row = make(map[string]int)
			m.cells[v.Pid] = row
		}
		row[v.Tid] = v.Value
	}
	m.fingerprint = uint64(len(votes))
	m.loaded = true
	return nil
}

// apply sets a cell and advances the fingerprint when the value actually
// changes. Caller holds m.mu.
func (m *matrix) apply(pid, tid string, value int) uint64 {
	row, ok := m.cells[pid]
	if !ok {
		row = make(map[string]int)
		m.cells[pid] = row
	}
	if cur, ok := row[tid]; !ok || cur != value {
		row[tid] = value
		m.fingerprint++
	}
	return m.fingerprint
}

// RecordVote applies a vote to the in-memory matrix. The fingerprint
// advances only when the cell value actually changes; an identical repeat
// vote leaves it untouched. Returns the fingerprint after application.
func (s *Store) RecordVote(conversationID, pid, tid string, value int) (uint64, error) {
	m := s.conv(conversationID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.ensureLoaded(conversationID, m); err != nil {
		return 0, err
	}
	return m.apply(pid, tid, value), nil
}

// RecordVotePersisted runs persist and then applies the vote while the
// conversation lock is held, so concurrent casts on the same cell commit
// to the database and land in the matrix in the same order. A persist
// error leaves the matrix and the fingerprint untouched. persist reports
// whether the stored value changed; tick is the fingerprint after
// application.
func (s *Store) RecordVotePersisted(conversationID, pid, tid string, value int, persist func() (bool, error)) (changed bool, tick uint64, err error) {
	m := s.conv(conversationID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.ensureLoaded(conversationID, m); err != nil {
		return false, 0, err
	}

	changed, err = persist()
	if err != nil {
		return false, 0, err
	}
	return changed, m.apply(pid, tid, value), nil
}

// Fingerprint returns the conversation's current staleness counter,
// loading persisted votes on first access.
func (s *Store) Fingerprint(conversationID string) (uint64, error) {
	m := s.conv(conversationID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.ensureLoaded(conversationID, m); err != nil {
		return 0, err
	}
	return m.fingerprint, nil
}

// Snapshot captures an immutable copy of the matrix plus the fingerprint
// at capture time. The engine computes from snapshots only, so a slow
// recompute never blocks vote recording beyond the copy.
func (s *Store) Snapshot(conversationID string) (Snapshot, error) {
	m := s.conv(conversationID)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := s.ensureLoaded(conversationID, m); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ConversationID: conversationID,
		Fingerprint:    m.fingerprint,
		cells:          make(map[string]map[string]int, len(m.cells)),
	}

	tidSet := make(map[string]bool)
	for pid, row := range m.cells {
		cp := make(map[string]int, len(row))
		for tid, v := range row {
			cp[tid] = v
			tidSet[tid] = true
		}
		snap.cells[pid] = cp
		snap.Pids = append(snap.Pids, pid)
	}
	for tid := range tidSet {
		snap.Tids = append(snap.Tids, tid)
	}

	// Sorted id order keeps every downstream computation deterministic.
	sort.Strings(snap.Pids)
	sort.Strings(snap.Tids)
	return snap, nil
}

// Snapshot is an immutable sparse view of one conversation's votes.
type Snapshot struct {
	ConversationID string
	Fingerprint    uint64
	Pids           []string // sorted
	Tids           []string // sorted, only comments with at least one vote
	cells          map[string]map[string]int
}

// Value returns the vote in a cell, with ok reporting whether it is set.
func (sn Snapshot) Value(pid, tid string) (int, bool) {
	row, ok := sn.cells[pid]
	if !ok {
		return 0, false
	}
	v, ok := row[tid]
	return v, ok
}

// VoteCount returns the number of set cells in the snapshot.
func (sn Snapshot) VoteCount() int {
	n := 0
	for _, row := range sn.cells {
		n += len(row)
	}
	return n
}

// RowCount returns the number of votes cast by a participant.
func (sn Snapshot) RowCount(pid string) int {
	return len(sn.cells[pid])
}

// ColCount returns the number of votes cast on a comment.
func (sn Snapshot) ColCount(tid string) int {
	n := 0
	for _, row := range sn.cells {
		if _, ok := row[tid]; ok {
			n++
		}
	}
	return n
}
