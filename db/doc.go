// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"sqlite" uses modernc.org/sqlite (pure Go, also used in-memory by tests);
"postgres" uses lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - conversation: topic, invite code, active flag
  - comment: votable statements with moderation status
  - participant: anonymous voting identities per conversation
  - vote: latest value per (participant, comment) cell
  - report: handles for correlation-matrix exports

# Relationships

	conversation 1──* comment
	conversation 1──* participant
	conversation 1──* vote
	conversation 1──* report
	(participant, comment) 1──1 vote

All foreign keys use ON DELETE CASCADE. The vote primary key
(conversation_id, participant_id, comment_id) enforces the at-most-one
active vote per cell invariant.

# Portability

Queries use $N placeholders in first-occurrence order, which both lib/pq
and modernc.org/sqlite bind positionally. Timestamps are always written
from Go so no NOW()-style default is needed.
*/
package db
