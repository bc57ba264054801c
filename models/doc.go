// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Envelope

Every /api/v3 endpoint wraps its payload in PolisResponse:

	{"status": "ok", "data": {...}}
	{"status": "error", "error": "Conversation not found"}

# Request Types

Types for parsing incoming JSON:

  - CreateConversationRequest: topic, description, is_active
  - UpdateConversationRequest: partial conversation update
  - CreateCommentRequest: conversation_id, txt, pid, is_seed
  - ModerateCommentRequest: conversation_id, tid, mod
  - JoinConversationRequest: conversation_id, external_token
  - CastVoteRequest: conversation_id, pid, tid, vote
  - CreateReportRequest: conversation_id

# Math Payloads

PCAPayload, PCA2Payload, and CorrelationMatrixPayload carry the legacy
Polis field names (commentProjection, ptptotProjection, baseCluster) that
the frontend expects. The engine package uses its own neutral types; the
handlers translate at the boundary.

# Domain Types

Internal data structures:

  - Conversation: topic, invite code, active flag
  - Comment: statement participants vote on, with moderation status
  - Participant: anonymous voting identity within one conversation
  - Vote: latest agree/disagree/pass value for one (pid, tid) cell
  - Report: named handle for correlation-matrix exports

# Constants

Vote values:

	VoteDisagree = -1
	VotePass     = 0
	VoteAgree    = 1

Moderation status:

	ModRejected    = -1
	ModUnmoderated = 0
	ModAccepted    = 1
*/
package models
