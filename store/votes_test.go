// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"testing"

	"github.com/civicmesh/opinionmap/models"
)

// voteFixture seeds a conversation with one participant and one comment.
func voteFixture(t *testing.T, st *Store) (conversationID, pid, tid string) {
	t.Helper()

	conv, err := st.CreateConversation("Topic", "", true)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	p, err := st.GetOrCreateParticipant(conv.ID, "device-abc")
	if err != nil {
		t.Fatalf("GetOrCreateParticipant failed: %v", err)
	}
	c, err := st.CreateComment(conv.ID, "", "A statement", false)
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	return conv.ID, p.Pid, c.Tid
}

func TestRecordVoteNewAndOverwrite(t *testing.T) {
	st := newTestStore(t)
	convID, pid, tid := voteFixture(t, st)

	changed, err := st.RecordVote(convID, pid, tid, models.VoteAgree)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if !changed {
		t.Error("Expected first vote to count as changed")
	}

	// Same value again: stored state does not change
	changed, err = st.RecordVote(convID, pid, tid, models.VoteAgree)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if changed {
		t.Error("Expected identical revote to be unchanged")
	}

	// Flip to disagree: last vote wins
	changed, err = st.RecordVote(convID, pid, tid, models.VoteDisagree)
	if err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if !changed {
		t.Error("Expected flipped vote to count as changed")
	}

	votes, err := st.ListVotes(convID)
	if err != nil {
		t.Fatalf("ListVotes failed: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("Expected a single vote row, got %d", len(votes))
	}
	if votes[0].Value != models.VoteDisagree {
		t.Errorf("Expected stored value %d, got %d", models.VoteDisagree, votes[0].Value)
	}
}

func TestRecordVoteValidation(t *testing.T) {
	st := newTestStore(t)
	convID, pid, tid := voteFixture(t, st)

	tests := []struct {
		name    string
		convID  string
		pid     string
		tid     string
		value   int
		wantErr error
	}{
		{"unknown conversation", "nope", pid, tid, models.VoteAgree, ErrNotFound},
		{"unknown participant", convID, "nope", tid, models.VoteAgree, ErrNotFound},
		{"unknown comment", convID, pid, "nope", models.VoteAgree, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := st.RecordVote(tt.convID, tt.pid, tt.tid, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := st.RecordVote(convID, pid, tid, 5); err == nil {
		t.Error("Expected error for out-of-range vote value")
	}

	count, err := st.CountVotes(convID)
	if err != nil {
		t.Fatalf("CountVotes failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no votes written by failed calls, got %d", count)
	}
}

func TestListVotesByParticipant(t *testing.T) {
	st := newTestStore(t)
	convID, pid, tid := voteFixture(t, st)

	other, err := st.GetOrCreateParticipant(convID, "device-xyz")
	if err != nil {
		t.Fatalf("GetOrCreateParticipant failed: %v", err)
	}

	if _, err := st.RecordVote(convID, pid, tid, models.VoteAgree); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if _, err := st.RecordVote(convID, other.Pid, tid, models.VoteDisagree); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}

	votes, err := st.ListVotesByParticipant(convID, pid)
	if err != nil {
		t.Fatalf("ListVotesByParticipant failed: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("Expected 1 vote for participant, got %d", len(votes))
	}
	if votes[0].Pid != pid || votes[0].Value != models.VoteAgree {
		t.Errorf("Unexpected vote row: %+v", votes[0])
	}

	if _, err := st.ListVotesByParticipant(convID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown participant, got %v", err)
	}
}

func TestReports(t *testing.T) {
	st := newTestStore(t)

	conv, err := st.CreateConversation("Topic", "", true)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	report, err := st.CreateReport(conv.ID)
	if err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}
	if report.ID == "" {
		t.Error("Expected non-empty report id")
	}

	got, err := st.GetReport(report.ID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.ConversationID != conv.ID {
		t.Errorf("Expected report bound to %s, got %s", conv.ID, got.ConversationID)
	}

	reports, err := st.ListReports(conv.ID)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("Expected 1 report, got %d", len(reports))
	}

	if _, err := st.GetReport("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := st.CreateReport("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
