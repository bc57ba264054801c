// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votematrix

import (
	"errors"
	"sync"
	"testing"

	"github.com/civicmesh/opinionmap/models"
)

var errUnknownConversation = errors.New("not found")

// fakeLoader serves canned votes for known conversations and fails for
// anything else, like the SQL store does.
type fakeLoader struct {
	votes map[string][]models.Vote
	calls int
}

func (f *fakeLoader) ListVotes(conversationID string) ([]models.Vote, error) {
	f.calls++
	votes, ok := f.votes[conversationID]
	if !ok {
		return nil, errUnknownConversation
	}
	return votes, nil
}

func newTestStore(votes map[string][]models.Vote) (*Store, *fakeLoader) {
	loader := &fakeLoader{votes: votes}
	return New(loader), loader
}

func TestRecordVoteAdvancesFingerprint(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})

	fp1, err := s.RecordVote("c1", "p1", "t1", models.VoteAgree)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if fp1 != 1 {
		t.Errorf("Expected fingerprint 1 after first vote, got %d", fp1)
	}

	fp2, err := s.RecordVote("c1", "p1", "t2", models.VoteDisagree)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if fp2 != 2 {
		t.Errorf("Expected fingerprint 2 after second vote, got %d", fp2)
	}
}

func TestRecordVoteIdempotent(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})

	fp1, _ := s.RecordVote("c1", "p1", "t1", models.VoteAgree)
	fp2, err := s.RecordVote("c1", "p1", "t1", models.VoteAgree)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if fp2 != fp1 {
		t.Errorf("Identical repeat vote moved fingerprint %d -> %d", fp1, fp2)
	}

	snap, err := s.Snapshot("c1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if v, ok := snap.Value("p1", "t1"); !ok || v != models.VoteAgree {
		t.Errorf("Expected cell (p1, t1) = 1, got %d (set=%v)", v, ok)
	}
	if snap.VoteCount() != 1 {
		t.Errorf("Expected 1 cell, got %d", snap.VoteCount())
	}
}

func TestRecordVoteOverwrite(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})

	s.RecordVote("c1", "p1", "t1", models.VoteAgree)
	fp, err := s.RecordVote("c1", "p1", "t1", models.VoteDisagree)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if fp != 2 {
		t.Errorf("Expected overwrite to advance fingerprint to 2, got %d", fp)
	}

	snap, _ := s.Snapshot("c1")
	if v, _ := snap.Value("p1", "t1"); v != models.VoteDisagree {
		t.Errorf("Expected last vote to win, got %d", v)
	}
	if snap.VoteCount() != 1 {
		t.Errorf("Overwrite duplicated the cell: %d cells", snap.VoteCount())
	}
}

func TestRecordVoteUnknownConversation(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})

	if _, err := s.RecordVote("nope", "p1", "t1", models.VoteAgree); !errors.Is(err, errUnknownConversation) {
		t.Fatalf("Expected loader error for unknown conversation, got %v", err)
	}

	// The failed record must not have minted state for the known conversation.
	fp, err := s.Fingerprint("c1")
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp != 0 {
		t.Errorf("Expected fingerprint 0, got %d", fp)
	}
}

func TestColdStartLoadsPersistedVotes(t *testing.T) {
	s, loader := newTestStore(map[string][]models.Vote{
		"c1": {
			{ConversationID: "c1", Pid: "p2", Tid: "t1", Value: models.VoteAgree},
			{ConversationID: "c1", Pid: "p1", Tid: "t2", Value: models.VoteDisagree},
			{ConversationID: "c1", Pid: "p1", Tid: "t1", Value: models.VotePass},
		},
	})

	snap, err := s.Snapshot("c1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Fingerprint != 3 {
		t.Errorf("Expected cold-start fingerprint 3, got %d", snap.Fingerprint)
	}
	if len(snap.Pids) != 2 || snap.Pids[0] != "p1" || snap.Pids[1] != "p2" {
		t.Errorf("Expected sorted pids [p1 p2], got %v", snap.Pids)
	}
	if len(snap.Tids) != 2 || snap.Tids[0] != "t1" || snap.Tids[1] != "t2" {
		t.Errorf("Expected sorted tids [t1 t2], got %v", snap.Tids)
	}

	// Second access must hit the already-loaded matrix, not the loader.
	if _, err := s.Snapshot("c1"); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if loader.calls != 1 {
		t.Errorf("Expected a single loader call, got %d", loader.calls)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})
	s.RecordVote("c1", "p1", "t1", models.VoteAgree)

	snap, _ := s.Snapshot("c1")
	s.RecordVote("c1", "p1", "t1", models.VoteDisagree)

	if v, _ := snap.Value("p1", "t1"); v != models.VoteAgree {
		t.Errorf("Snapshot mutated by later vote: got %d", v)
	}
}

func TestSnapshotCounts(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})
	s.RecordVote("c1", "p1", "t1", models.VoteAgree)
	s.RecordVote("c1", "p1", "t2", models.VoteAgree)
	s.RecordVote("c1", "p2", "t1", models.VoteDisagree)

	snap, _ := s.Snapshot("c1")
	if got := snap.RowCount("p1"); got != 2 {
		t.Errorf("Expected p1 row count 2, got %d", got)
	}
	if got := snap.ColCount("t1"); got != 2 {
		t.Errorf("Expected t1 col count 2, got %d", got)
	}
	if got := snap.ColCount("t2"); got != 1 {
		t.Errorf("Expected t2 col count 1, got %d", got)
	}
}

func TestRecordVotePersistedOrdering(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})

	var orderMu sync.Mutex
	var committed []int

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		value := models.VoteAgree
		if i%2 == 0 {
			value = models.VoteDisagree
		}
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, _, err := s.RecordVotePersisted("c1", "p1", "t1", v, func() (bool, error) {
				orderMu.Lock()
				committed = append(committed, v)
				orderMu.Unlock()
				return true, nil
			})
			if err != nil {
				t.Errorf("RecordVotePersisted failed: %v", err)
			}
		}(value)
	}
	wg.Wait()

	snap, err := s.Snapshot("c1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	got, ok := snap.Value("p1", "t1")
	if !ok {
		t.Fatal("Expected cell to be set")
	}
	if want := committed[len(committed)-1]; got != want {
		t.Errorf("Matrix cell %d diverged from last committed value %d", got, want)
	}
}

func TestRecordVotePersistedFailureLeavesMatrixUntouched(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})

	errBoom := errors.New("constraint violation")
	changed, _, err := s.RecordVotePersisted("c1", "p1", "t1", models.VoteAgree, func() (bool, error) {
		return false, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected persist error, got %v", err)
	}
	if changed {
		t.Error("Expected changed false on persist failure")
	}

	fp, err := s.Fingerprint("c1")
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp != 0 {
		t.Errorf("Expected fingerprint 0 after failed persist, got %d", fp)
	}
	snap, _ := s.Snapshot("c1")
	if _, ok := snap.Value("p1", "t1"); ok {
		t.Error("Expected cell unset after failed persist")
	}
}

func TestRecordVotePersistedReportsChange(t *testing.T) {
	s, _ := newTestStore(map[string][]models.Vote{"c1": {}})

	changed, tick, err := s.RecordVotePersisted("c1", "p1", "t1", models.VoteAgree, func() (bool, error) {
		return true, nil
	})
	if err != nil {
		t.Fatalf("RecordVotePersisted failed: %v", err)
	}
	if !changed || tick != 1 {
		t.Errorf("Expected changed=true tick=1, got changed=%v tick=%d", changed, tick)
	}
}
