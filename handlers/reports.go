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

type ReportHandler struct {
	st *store.Store
}

func NewReportHandler(st *store.Store) *ReportHandler {
	return &ReportHandler{st: st}
}

// CreateReport handles POST /api/v3/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReportRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	report, err := h.st.CreateReport(req.ConversationID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to create report", "error", err, "conversation_id", req.ConversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create report")
		return
	}

	middleware.OKResponse(w, models.CreateReportResponse{ReportID: report.ID})
}

// GetReports handles GET /api/v3/reports
func (h *ReportHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	reports, err := h.st.ListReports(conversationID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		slog.Error("failed to list reports", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.OKResponse(w, reports)
}
