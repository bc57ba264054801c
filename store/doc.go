// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store wraps all SQL persistence behind plain create/read/list methods.

# Usage

	st := store.New(conn)
	conv, err := st.CreateConversation("Topic", "Description", true)

Every method that takes an entity id returns store.ErrNotFound for an
unknown id; handlers translate that to a 404.

# Vote Semantics

RecordVote enforces last-write-wins on the (participant, comment) cell
inside a transaction and reports whether the stored value actually changed.
The caller uses that signal to decide whether the in-memory vote matrix
fingerprint advances; re-recording an identical vote only refreshes the
timestamp.

# Consumers

The HTTP handlers use the full surface. The math engine consumes only
ListVotes, ListComments, and CountParticipants (via the votematrix loader),
so an alternative persistence backend needs to cover just those.
*/
package store
