// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/civicmesh/opinionmap/middleware"
	"github.com/civicmesh/opinionmap/models"
	"github.com/civicmesh/opinionmap/store"
	"github.com/civicmesh/opinionmap/votematrix"
)

type VoteHandler struct {
	st     *store.Store
	matrix *votematrix.Store
}

func NewVoteHandler(st *store.Store, matrix *votematrix.Store) *VoteHandler {
	return &VoteHandler{st: st, matrix: matrix}
}

// JoinConversation handles POST /api/v3/participants
// Returns the participant bound to the caller's external token, creating
// one on first join. Idempotent per (conversation, token).
func (h *VoteHandler) JoinConversation(w http.ResponseWriter, r *http.Request) {
	var req models.JoinConversationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}
	if req.ExternalToken == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "external_token is required")
		return
	}

	p, err := h.st.GetOrCreateParticipant(req.ConversationID, req.ExternalToken)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to join conversation", "error", err, "conversation_id", req.ConversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join conversation")
		return
	}

	middleware.OKResponse(w, models.JoinConversationResponse{Pid: p.Pid})
}

// CastVote handles POST /api/v3/votes
// Records the vote in the store (last vote wins) and applies it to the
// in-memory matrix; the returned math_tick is the fingerprint after the
// vote, so a following math request is guaranteed at least that fresh.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConversationID == "" || req.Pid == "" || req.Tid == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id, pid, and tid are required")
		return
	}
	if req.Vote != models.VoteDisagree && req.Vote != models.VotePass && req.Vote != models.VoteAgree {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote must be -1, 0, or 1")
		return
	}

	conv, err := h.st.GetConversation(req.ConversationID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to query conversation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !conv.IsActive {
		middleware.ErrorResponse(w, http.StatusConflict, "Conversation is closed")
		return
	}

	// The store write runs under the conversation's matrix lock so
	// database commit order and matrix order cannot diverge for
	// concurrent casts on the same cell.
	changed, tick, err := h.matrix.RecordVotePersisted(req.ConversationID, req.Pid, req.Tid, req.Vote, func() (bool, error) {
		return h.st.RecordVote(req.ConversationID, req.Pid, req.Tid, req.Vote)
	})
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Participant or comment not found")
		return
	}
	if err != nil {
		slog.Error("failed to record vote", "error", err, "conversation_id", req.ConversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote recorded",
		"conversation_id", req.ConversationID,
		"pid", req.Pid,
		"tid", req.Tid,
		"changed", changed,
	)

	middleware.OKResponse(w, models.CastVoteResponse{
		Pid:      req.Pid,
		Tid:      req.Tid,
		Vote:     req.Vote,
		Changed:  changed,
		MathTick: tick,
	})
}

// GetVotes handles GET /api/v3/votes
// Lists a conversation's votes, optionally narrowed to one participant.
func (h *VoteHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	var votes []models.Vote
	var err error
	if pid := r.URL.Query().Get("pid"); pid != "" {
		votes, err = h.st.ListVotesByParticipant(conversationID, pid)
	} else {
		votes, err = h.st.ListVotes(conversationID)
	}

	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation or participant not found")
		return
	}
	if err != nil {
		slog.Error("failed to list votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.OKResponse(w, votes)
}

// GetParticipants handles GET /api/v3/participants
func (h *VoteHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	participants, err := h.st.ListParticipants(conversationID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to list participants", "error", err, "conversation_id", conversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.OKResponse(w, participants)
}
