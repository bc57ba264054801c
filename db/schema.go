// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects using the driver matching the configured database type.
// "sqlite" uses the pure-Go modernc driver, "postgres" uses lib/pq.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	driver := "sqlite"
	if databaseType == "postgres" {
		driver = "postgres"
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// Types and defaults are restricted to what sqlite and postgres share:
// TEXT ids generated in Go, timestamps set in Go, integer check constraints.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Conversations
CREATE TABLE IF NOT EXISTS conversation (
    id TEXT PRIMARY KEY,
    topic TEXT NOT NULL,
    description TEXT,
    invite_code TEXT NOT NULL UNIQUE,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_invite_code ON conversation(invite_code);

-- Comments (the statements participants vote on)
CREATE TABLE IF NOT EXISTS comment (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversation(id) ON DELETE CASCADE,
    participant_id TEXT,
    txt TEXT NOT NULL,
    mod INTEGER NOT NULL DEFAULT 0 CHECK (mod IN (-1, 0, 1)),
    is_seed INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comment_conversation_id ON comment(conversation_id);

-- Participants (anonymous voting identities, scoped to one conversation)
CREATE TABLE IF NOT EXISTS participant (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversation(id) ON DELETE CASCADE,
    external_token TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (conversation_id, external_token)
);

CREATE INDEX IF NOT EXISTS idx_participant_conversation_id ON participant(conversation_id);

-- Votes: one active row per (participant, comment), last vote wins
CREATE TABLE IF NOT EXISTS vote (
    conversation_id TEXT NOT NULL REFERENCES conversation(id) ON DELETE CASCADE,
    participant_id TEXT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    comment_id TEXT NOT NULL REFERENCES comment(id) ON DELETE CASCADE,
    value INTEGER NOT NULL CHECK (value IN (-1, 0, 1)),
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (conversation_id, participant_id, comment_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_conversation_id ON vote(conversation_id);
CREATE INDEX IF NOT EXISTS idx_vote_comment_id ON vote(comment_id);

-- Reports (handles for correlation-matrix exports)
CREATE TABLE IF NOT EXISTS report (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversation(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_conversation_id ON report(conversation_id);
`
