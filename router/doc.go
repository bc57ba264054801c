// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Opinionmap API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, matrix, eng)

# Endpoints

Liveness:

	GET /health
	GET /api/v3/testConnection

Conversation management:

	POST /api/v3/conversations      - Create conversation
	GET  /api/v3/conversations      - List conversations
	GET  /api/v3/conversations/{id} - Conversation details
	PUT  /api/v3/conversations        - Update topic/description/is_active
	POST /api/v3/conversations/close  - Stop new comments and votes
	POST /api/v3/conversations/reopen - Resume a closed conversation
	GET  /api/v3/conversationStats    - Participant/comment/vote counts

Comments:

	POST /api/v3/comments          - Submit comment
	GET  /api/v3/comments          - List comments (optional mod filter)
	PUT  /api/v3/comments/moderate - Set moderation status
	GET  /api/v3/nextComment       - Next unvoted comment for a participant

Participants and votes:

	POST /api/v3/participants - Join conversation (idempotent by token)
	GET  /api/v3/participants - List a conversation's participants
	POST /api/v3/votes        - Cast or update a vote
	GET  /api/v3/votes        - List votes (optional pid filter)

Reports:

	POST /api/v3/reports - Create report handle
	GET  /api/v3/reports - List reports for a conversation

Math results:

	GET /api/v3/math/pca               - Full clustering payload
	GET /api/v3/math/pca2              - Projection-only payload
	GET /api/v3/math/correlationMatrix - Comment correlation matrix

# Handler Initialization

The router creates handler instances with dependency injection:

	conversationHandler := handlers.NewConversationHandler(st)
	voteHandler := handlers.NewVoteHandler(st, matrix)
	mathHandler := handlers.NewMathHandler(st, eng)

Handlers receive the store, the in-memory vote matrix, and the math
engine as needed.
*/
package router
