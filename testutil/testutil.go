// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civicmesh/opinionmap/cliparse"
	"github.com/civicmesh/opinionmap/db"
	"github.com/civicmesh/opinionmap/invite"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3340,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		MinVotes:      1,
		KMin:          2,
		KMax:          5,
		KMeansMaxIter: 64,
	}
}

// CreateTestConversation inserts a conversation and returns its ID.
func CreateTestConversation(t *testing.T, conn *sql.DB, active bool) string {
	t.Helper()

	id := invite.NewID()
	code, err := invite.NewCode()
	if err != nil {
		t.Fatalf("Failed to generate invite code: %v", err)
	}

	isActive := 0
	if active {
		isActive = 1
	}
	_, err = conn.Exec(`
		INSERT INTO conversation (id, topic, description, invite_code, is_active, created_at)
		VALUES ($1, 'Test Conversation', 'A test conversation', $2, $3, $4)
	`, id, code, isActive, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test conversation: %v", err)
	}

	return id
}

// AddTestComment inserts a comment and returns its ID.
func AddTestComment(t *testing.T, conn *sql.DB, conversationID, txt string, mod int) string {
	t.Helper()

	tid := invite.NewID()
	_, err := conn.Exec(`
		INSERT INTO comment (id, conversation_id, participant_id, txt, mod, is_seed, created_at)
		VALUES ($1, $2, NULL, $3, $4, 0, $5)
	`, tid, conversationID, txt, mod, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return tid
}

// CreateTestParticipant inserts a participant and returns its ID.
func CreateTestParticipant(t *testing.T, conn *sql.DB, conversationID, externalToken string) string {
	t.Helper()

	pid := invite.NewID()
	_, err := conn.Exec(`
		INSERT INTO participant (id, conversation_id, external_token, created_at)
		VALUES ($1, $2, $3, $4)
	`, pid, conversationID, externalToken, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return pid
}

// CastTestVote inserts or replaces a vote row directly.
func CastTestVote(t *testing.T, conn *sql.DB, conversationID, pid, tid string, value int) {
	t.Helper()

	_, err := conn.Exec(`
		DELETE FROM vote WHERE conversation_id = $1 AND participant_id = $2 AND comment_id = $3
	`, conversationID, pid, tid)
	if err != nil {
		t.Fatalf("Failed to clear test vote: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO vote (conversation_id, participant_id, comment_id, value, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, conversationID, pid, tid, value, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
