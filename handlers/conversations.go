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
)

type ConversationHandler struct {
	st *store.Store
}

func NewConversationHandler(st *store.Store) *ConversationHandler {
	return &ConversationHandler{st: st}
}

// CreateConversation handles POST /api/v3/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConversationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Topic == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "topic is required")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	conv, err := h.st.CreateConversation(req.Topic, req.Description, isActive)
	if err != nil {
		slog.Error("failed to create conversation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}

	slog.Info("conversation created", "conversation_id", conv.ID)

	middleware.OKResponse(w, models.CreateConversationResponse{
		ConversationID: conv.ID,
		InviteCode:     conv.InviteCode,
	})
}

// GetConversation handles GET /api/v3/conversations/{id}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	conv, err := h.st.GetConversation(id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to query conversation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.OKResponse(w, conv)
}

// ListConversations handles GET /api/v3/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.st.ListConversations()
	if err != nil {
		slog.Error("failed to list conversations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.OKResponse(w, convs)
}

// UpdateConversation handles PUT /api/v3/conversations
// Accepts partial updates; closing and reopening go through is_active.
func (h *ConversationHandler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateConversationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	conv, err := h.st.UpdateConversation(req)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to update conversation", "error", err, "conversation_id", req.ConversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update conversation")
		return
	}

	middleware.OKResponse(w, conv)
}

// GetStats handles GET /api/v3/conversationStats
func (h *ConversationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	if _, err := h.st.GetConversation(conversationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
			return
		}
		slog.Error("failed to query conversation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	participants, err := h.st.CountParticipants(conversationID)
	if err != nil {
		slog.Error("failed to count participants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	comments, err := h.st.CountComments(conversationID)
	if err != nil {
		slog.Error("failed to count comments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	votes, err := h.st.CountVotes(conversationID)
	if err != nil {
		slog.Error("failed to count votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.OKResponse(w, models.ConversationStatsResponse{
		ParticipantCount: participants,
		CommentCount:     comments,
		VoteCount:        votes,
	})
}

// CloseConversation handles POST /api/v3/conversations/close
// Closing stops new comments and votes; existing math stays readable.
func (h *ConversationHandler) CloseConversation(w http.ResponseWriter, r *http.Request) {
	var req models.CloseConversationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ConversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	if err := h.setActive(w, req.ConversationID, false); err != nil {
		return
	}

	slog.Info("conversation closed", "conversation_id", req.ConversationID)
	middleware.OKResponse(w, models.CloseConversationResponse{Closed: true})
}

// ReopenConversation handles POST /api/v3/conversations/reopen
func (h *ConversationHandler) ReopenConversation(w http.ResponseWriter, r *http.Request) {
	var req models.ReopenConversationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ConversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	if err := h.setActive(w, req.ConversationID, true); err != nil {
		return
	}

	slog.Info("conversation reopened", "conversation_id", req.ConversationID)
	middleware.OKResponse(w, models.ReopenConversationResponse{Reopened: true})
}

// setActive flips the active flag, writing the error response itself so
// the close and reopen handlers share one failure path.
func (h *ConversationHandler) setActive(w http.ResponseWriter, conversationID string, active bool) error {
	_, err := h.st.UpdateConversation(models.UpdateConversationRequest{
		ConversationID: conversationID,
		IsActive:       &active,
	})
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return err
	}
	if err != nil {
		slog.Error("failed to update conversation", "error", err, "conversation_id", conversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update conversation")
		return err
	}
	return nil
}
