// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/civicmesh/opinionmap/middleware"
	"github.com/civicmesh/opinionmap/models"
	"github.com/civicmesh/opinionmap/store"
)

type CommentHandler struct {
	st *store.Store
}

func NewCommentHandler(st *store.Store) *CommentHandler {
	return &CommentHandler{st: st}
}

// CreateComment handles POST /api/v3/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}
	if req.Txt == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "txt is required")
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

	c, err := h.st.CreateComment(req.ConversationID, req.Pid, req.Txt, req.IsSeed)
	if err != nil {
		slog.Error("failed to create comment", "error", err, "conversation_id", req.ConversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	slog.Info("comment created", "conversation_id", req.ConversationID, "tid", c.Tid)

	middleware.OKResponse(w, models.CreateCommentResponse{Tid: c.Tid})
}

// GetComments handles GET /api/v3/comments
// Optional mod query filters by moderation status.
func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	var mod *int
	if modStr := r.URL.Query().Get("mod"); modStr != "" {
		m, err := strconv.Atoi(modStr)
		if err != nil || m < models.ModRejected || m > models.ModAccepted {
			middleware.ErrorResponse(w, http.StatusBadRequest, "mod must be -1, 0, or 1")
			return
		}
		mod = &m
	}

	comments, err := h.st.ListComments(conversationID, mod)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to list comments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.OKResponse(w, comments)
}

// ModerateComment handles PUT /api/v3/comments/moderate
func (h *CommentHandler) ModerateComment(w http.ResponseWriter, r *http.Request) {
	var req models.ModerateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConversationID == "" || req.Tid == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id and tid are required")
		return
	}
	if req.Mod < models.ModRejected || req.Mod > models.ModAccepted {
		middleware.ErrorResponse(w, http.StatusBadRequest, "mod must be -1, 0, or 1")
		return
	}

	err := h.st.SetCommentMod(req.ConversationID, req.Tid, req.Mod)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Comment not found")
		return
	}
	if err != nil {
		slog.Error("failed to moderate comment", "error", err, "tid", req.Tid)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to moderate comment")
		return
	}

	slog.Info("comment moderated", "conversation_id", req.ConversationID, "tid", req.Tid, "mod", req.Mod)

	middleware.OKResponse(w, map[string]string{"tid": req.Tid})
}

// GetNextComment handles GET /api/v3/nextComment
// Returns the oldest non-rejected comment the participant has not voted
// on yet, or data null once every comment is voted.
func (h *CommentHandler) GetNextComment(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	pid := r.URL.Query().Get("pid")
	if conversationID == "" || pid == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id and pid are required")
		return
	}

	votes, err := h.st.ListVotesByParticipant(conversationID, pid)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation or participant not found")
		return
	}
	if err != nil {
		slog.Error("failed to list votes", "error", err, "conversation_id", conversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	voted := make(map[string]bool, len(votes))
	for _, v := range votes {
		voted[v.Tid] = true
	}

	comments, err := h.st.ListComments(conversationID, nil)
	if err != nil {
		slog.Error("failed to list comments", "error", err, "conversation_id", conversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for _, c := range comments {
		if c.Mod == models.ModRejected || voted[c.Tid] {
			continue
		}
		middleware.OKResponse(w, c)
		return
	}

	middleware.OKResponse(w, nil)
}
