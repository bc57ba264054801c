// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/civicmesh/opinionmap/invite"
	"github.com/civicmesh/opinionmap/models"
)

// RecordVote inserts or overwrites the (participant, comment) cell.
// Last vote wins. Returns whether the stored value changed; recording the
// identical value is a no-op apart from the updated timestamp.
//
// Unknown conversation, participant, or comment ids yield ErrNotFound
// before anything is written.
func (s *Store) RecordVote(conversationID, pid, tid string, value int) (changed bool, err error) {
	if value != models.VoteDisagree && value != models.VotePass && value != models.VoteAgree {
		return false, fmt.Errorf("vote value %d outside {-1, 0, 1}", value)
	}

	if _, err := s.GetConversation(conversationID); err != nil {
		return false, err
	}
	if _, err := s.GetParticipant(conversationID, pid); err != nil {
		return false, err
	}
	if _, err := s.GetComment(conversationID, tid); err != nil {
		return false, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var current int
	err = tx.QueryRow(`
		SELECT value FROM vote
		WHERE conversation_id = $1 AND participant_id = $2 AND comment_id = $3
	`, conversationID, pid, tid).Scan(&current)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO vote (conversation_id, participant_id, comment_id, value, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, conversationID, pid, tid, value, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert vote: %w", err)
		}
		changed = true
	case err != nil:
		return false, fmt.Errorf("failed to query vote: %w", err)
	default:
		_, err = tx.Exec(`
			UPDATE vote SET value = $1, updated_at = $2
			WHERE conversation_id = $3 AND participant_id = $4 AND comment_id = $5
		`, value, now, conversationID, pid, tid)
		if err != nil {
			return false, fmt.Errorf("failed to update vote: %w", err)
		}
		changed = current != value
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit vote: %w", err)
	}
	return changed, nil
}

// ListVotes returns all votes in a conversation.
func (s *Store) ListVotes(conversationID string) ([]models.Vote, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT conversation_id, participant_id, comment_id, value, updated_at
		FROM vote
		WHERE conversation_id = $1
		ORDER BY participant_id, comment_id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	return scanVotes(rows)
}

// ListVotesByParticipant returns one participant's votes.
func (s *Store) ListVotesByParticipant(conversationID, pid string) ([]models.Vote, error) {
	if _, err := s.GetParticipant(conversationID, pid); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT conversation_id, participant_id, comment_id, value, updated_at
		FROM vote
		WHERE conversation_id = $1 AND participant_id = $2
		ORDER BY comment_id
	`, conversationID, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	return scanVotes(rows)
}

func (s *Store) CountVotes(conversationID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE conversation_id = $1
	`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func scanVotes(rows *sql.Rows) ([]models.Vote, error) {
	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ConversationID, &v.Pid, &v.Tid, &v.Value, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// Reports

func (s *Store) CreateReport(conversationID string) (models.Report, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return models.Report{}, err
	}

	r := models.Report{
		ID:             invite.NewID(),
		ConversationID: conversationID,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO report (id, conversation_id, created_at)
		VALUES ($1, $2, $3)
	`, r.ID, r.ConversationID, r.CreatedAt)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to insert report: %w", err)
	}
	return r, nil
}

func (s *Store) GetReport(id string) (models.Report, error) {
	var r models.Report
	err := s.db.QueryRow(`
		SELECT id, conversation_id, created_at FROM report WHERE id = $1
	`, id).Scan(&r.ID, &r.ConversationID, &r.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Report{}, ErrNotFound
	}
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to query report: %w", err)
	}
	return r, nil
}

func (s *Store) ListReports(conversationID string) ([]models.Report, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, conversation_id, created_at
		FROM report
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
