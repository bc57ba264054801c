// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/civicmesh/opinionmap/invite"
	"github.com/civicmesh/opinionmap/models"
)

// ErrNotFound is returned for unknown conversation/comment/participant/report ids.
var ErrNotFound = errors.New("not found")

// Store wraps all SQL access. Handlers and the math engine consume it
// through plain create/read/list methods.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Conversations

func (s *Store) CreateConversation(topic, description string, isActive bool) (models.Conversation, error) {
	code, err := invite.NewCode()
	if err != nil {
		return models.Conversation{}, err
	}

	conv := models.Conversation{
		ID:          invite.NewID(),
		Topic:       topic,
		Description: description,
		InviteCode:  code,
		IsActive:    isActive,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.db.Exec(`
		INSERT INTO conversation (id, topic, description, invite_code, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, conv.ID, conv.Topic, conv.Description, conv.InviteCode, boolToInt(conv.IsActive), conv.CreatedAt)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to insert conversation: %w", err)
	}

	return conv, nil
}

func (s *Store) GetConversation(id string) (models.Conversation, error) {
	var conv models.Conversation
	var active int
	err := s.db.QueryRow(`
		SELECT id, topic, description, invite_code, is_active, created_at
		FROM conversation
		WHERE id = $1
	`, id).Scan(&conv.ID, &conv.Topic, &conv.Description, &conv.InviteCode, &active, &conv.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Conversation{}, ErrNotFound
	}
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to query conversation: %w", err)
	}

	conv.IsActive = active != 0
	return conv, nil
}

func (s *Store) ListConversations() ([]models.Conversation, error) {
	rows, err := s.db.Query(`
		SELECT id, topic, description, invite_code, is_active, created_at
		FROM conversation
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	convs := []models.Conversation{}
	for rows.Next() {
		var conv models.Conversation
		var active int
		if err := rows.Scan(&conv.ID, &conv.Topic, &conv.Description, &conv.InviteCode, &active, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.IsActive = active != 0
		convs = append(convs, conv)
	}

	return convs, rows.Err()
}

// UpdateConversation applies the non-nil fields of the request.
func (s *Store) UpdateConversation(req models.UpdateConversationRequest) (models.Conversation, error) {
	conv, err := s.GetConversation(req.ConversationID)
	if err != nil {
		return models.Conversation{}, err
	}

	if req.Topic != nil {
		conv.Topic = *req.Topic
	}
	if req.Description != nil {
		conv.Description = *req.Description
	}
	if req.IsActive != nil {
		conv.IsActive = *req.IsActive
	}

	_, err = s.db.Exec(`
		UPDATE conversation SET topic = $1, description = $2, is_active = $3 WHERE id = $4
	`, conv.Topic, conv.Description, boolToInt(conv.IsActive), conv.ID)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to update conversation: %w", err)
	}

	return conv, nil
}

// Comments

func (s *Store) CreateComment(conversationID, pid, txt string, isSeed bool) (models.Comment, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return models.Comment{}, err
	}

	c := models.Comment{
		Tid:            invite.NewID(),
		ConversationID: conversationID,
		Pid:            pid,
		Txt:            txt,
		Mod:            models.ModUnmoderated,
		IsSeed:         isSeed,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO comment (id, conversation_id, participant_id, txt, mod, is_seed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.Tid, c.ConversationID, c.Pid, c.Txt, c.Mod, boolToInt(c.IsSeed), c.CreatedAt)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to insert comment: %w", err)
	}

	return c, nil
}

// ListComments returns comments in a conversation, oldest first.
// mod filters by moderation status when non-nil.
func (s *Store) ListComments(conversationID string, mod *int) ([]models.Comment, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, conversation_id, participant_id, txt, mod, is_seed, created_at
		FROM comment
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`
	args := []any{conversationID}
	if mod != nil {
		query = `
			SELECT id, conversation_id, participant_id, txt, mod, is_seed, created_at
			FROM comment
			WHERE conversation_id = $1 AND mod = $2
			ORDER BY created_at, id
		`
		args = append(args, *mod)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		var pid sql.NullString
		var seed int
		if err := rows.Scan(&c.Tid, &c.ConversationID, &pid, &c.Txt, &c.Mod, &seed, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Pid = pid.String
		c.IsSeed = seed != 0
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (s *Store) GetComment(conversationID, tid string) (models.Comment, error) {
	var c models.Comment
	var pid sql.NullString
	var seed int
	err := s.db.QueryRow(`
		SELECT id, conversation_id, participant_id, txt, mod, is_seed, created_at
		FROM comment
		WHERE conversation_id = $1 AND id = $2
	`, conversationID, tid).Scan(&c.Tid, &c.ConversationID, &pid, &c.Txt, &c.Mod, &seed, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Comment{}, ErrNotFound
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to query comment: %w", err)
	}

	c.Pid = pid.String
	c.IsSeed = seed != 0
	return c, nil
}

// SetCommentMod updates a comment's moderation status.
func (s *Store) SetCommentMod(conversationID, tid string, mod int) error {
	res, err := s.db.Exec(`
		UPDATE comment SET mod = $1 WHERE conversation_id = $2 AND id = $3
	`, mod, conversationID, tid)
	if err != nil {
		return fmt.Errorf("failed to moderate comment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountComments(conversationID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM comment WHERE conversation_id = $1
	`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

// Participants

// GetOrCreateParticipant returns the participant bound to externalToken,
// creating one on first join.
func (s *Store) GetOrCreateParticipant(conversationID, externalToken string) (models.Participant, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return models.Participant{}, err
	}

	var p models.Participant
	err := s.db.QueryRow(`
		SELECT id, conversation_id, external_token, created_at
		FROM participant
		WHERE conversation_id = $1 AND external_token = $2
	`, conversationID, externalToken).Scan(&p.Pid, &p.ConversationID, &p.ExternalToken, &p.CreatedAt)

	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return models.Participant{}, fmt.Errorf("failed to query participant: %w", err)
	}

	p = models.Participant{
		Pid:            invite.NewID(),
		ConversationID: conversationID,
		ExternalToken:  externalToken,
		CreatedAt:      time.Now().UTC(),
	}
	_, err = s.db.Exec(`
		INSERT INTO participant (id, conversation_id, external_token, created_at)
		VALUES ($1, $2, $3, $4)
	`, p.Pid, p.ConversationID, p.ExternalToken, p.CreatedAt)
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed to insert participant: %w", err)
	}

	return p, nil
}

func (s *Store) GetParticipant(conversationID, pid string) (models.Participant, error) {
	var p models.Participant
	err := s.db.QueryRow(`
		SELECT id, conversation_id, external_token, created_at
		FROM participant
		WHERE conversation_id = $1 AND id = $2
	`, conversationID, pid).Scan(&p.Pid, &p.ConversationID, &p.ExternalToken, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed to query participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns a conversation's participants in join order.
func (s *Store) ListParticipants(conversationID string) ([]models.Participant, error) {
	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, conversation_id, external_token, created_at
		FROM participant
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.Pid, &p.ConversationID, &p.ExternalToken, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

func (s *Store) CountParticipants(conversationID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM participant WHERE conversation_id = $1
	`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}
