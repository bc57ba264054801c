// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Opinionmap API.

# Handler Types

Each handler is a struct with store and engine dependencies:

  - ConversationHandler: Conversation lifecycle and stats
  - CommentHandler: Comment submission and moderation
  - VoteHandler: Participant joins and vote casting
  - ReportHandler: Named report handles for exports
  - MathHandler: Clustering and correlation results

Handlers are created via constructor functions that accept their
dependencies:

	mathHandler := handlers.NewMathHandler(st, eng)

# Conversation Flow

Conversations collect comments and votes, then expose math results:

	POST /api/v3/conversations          → CreateConversation
	POST /api/v3/comments               → CreateComment
	POST /api/v3/participants           → JoinConversation
	GET  /api/v3/nextComment            → GetNextComment
	POST /api/v3/votes                  → CastVote
	GET  /api/v3/math/pca               → GetPCA
	GET  /api/v3/math/correlationMatrix → GetCorrelationMatrix

Voting loops on nextComment until it returns data null, meaning the
participant has seen every non-rejected comment. Close and reopen flip
the conversation's active flag without touching its data.

# Math Results

The clustering pipeline lives in the engine package:

	result, err := eng.GetOrCompute(conversationID)

Results carry a fingerprint (math_tick) so clients can detect staleness.
Every math response for the same vote state is byte-identical.

# Response Envelope

All endpoints reply with the shared envelope:

	{"status": "ok", "data": ...}
	{"status": "error", "error": "..."}
*/
package handlers
