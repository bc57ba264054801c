// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/civicmesh/opinionmap/engine"
	"github.com/civicmesh/opinionmap/middleware"
	"github.com/civicmesh/opinionmap/models"
	"github.com/civicmesh/opinionmap/store"
)

type MathHandler struct {
	st  *store.Store
	eng *engine.Engine
}

func NewMathHandler(st *store.Store, eng *engine.Engine) *MathHandler {
	return &MathHandler{st: st, eng: eng}
}

// GetPCA handles GET /api/v3/math/pca
// Returns the cached (or freshly computed) opinion-space projection and
// clustering in the legacy frontend format.
func (h *MathHandler) GetPCA(w http.ResponseWriter, r *http.Request) {
	result, ok := h.computeForConversation(w, r)
	if !ok {
		return
	}

	middleware.OKResponse(w, models.PCAPayload{
		CommentProjection: pointsToPairs(result.Projection.Comments),
		PtptProjection:    pointsToPairs(result.Projection.Participants),
		Tids:              stringsOrEmpty(result.Projection.Tids),
		Pids:              stringsOrEmpty(result.Projection.Pids),
		BaseCluster:       clusterPayloads(result.Clusters),
		GroupAware:        len(result.Clusters) > 1,
	})
}

// GetPCA2 handles GET /api/v3/math/pca2
// Same computation as GetPCA, nested under a "pca" key for v2 clients.
func (h *MathHandler) GetPCA2(w http.ResponseWriter, r *http.Request) {
	result, ok := h.computeForConversation(w, r)
	if !ok {
		return
	}

	middleware.OKResponse(w, models.PCA2Payload{
		PCA: models.PCA2Inner{
			CommentProjection: pointsToPairs(result.Projection.Comments),
			PtptProjection:    pointsToPairs(result.Projection.Participants),
			BaseClusters:      clusterPayloads(result.Clusters),
		},
	})
}

// GetCorrelationMatrix handles GET /api/v3/math/correlationMatrix
// The report id names the conversation; math_tick is accepted for legacy
// clients and echoed back as the current fingerprint.
func (h *MathHandler) GetCorrelationMatrix(w http.ResponseWriter, r *http.Request) {
	reportID := r.URL.Query().Get("report_id")
	if reportID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "report_id is required")
		return
	}

	report, err := h.st.GetReport(reportID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		slog.Error("failed to query report", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	matrix, tids, tick, err := h.eng.CorrelationMatrix(report.ConversationID)
	if err != nil {
		slog.Error("failed to compute correlation matrix", "error", err, "report_id", reportID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute correlation matrix")
		return
	}

	if matrix == nil {
		matrix = [][]float64{}
	}

	middleware.OKResponse(w, models.CorrelationMatrixPayload{
		Matrix:   matrix,
		Comments: stringsOrEmpty(tids),
		MathTick: tick,
	})
}

// computeForConversation validates the conversation_id query and runs the
// engine, writing the error response itself when something fails.
func (h *MathHandler) computeForConversation(w http.ResponseWriter, r *http.Request) (*engine.Result, bool) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversation_id is required")
		return nil, false
	}

	result, err := h.eng.GetOrCompute(conversationID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Conversation not found")
		return nil, false
	}
	if err != nil {
		slog.Error("failed to compute math", "error", err, "conversation_id", conversationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute projection")
		return nil, false
	}

	return result, true
}

// pointsToPairs flattens engine points into the [[x,y],...] wire shape.
func pointsToPairs(points []engine.Point) [][]float64 {
	pairs := make([][]float64, len(points))
	for i, p := range points {
		pairs[i] = []float64{p[0], p[1]}
	}
	return pairs
}

func clusterPayloads(clusters []engine.Cluster) []models.ClusterPayload {
	payloads := make([]models.ClusterPayload, len(clusters))
	for i, c := range clusters {
		payloads[i] = models.ClusterPayload{
			ID:          c.ID,
			Members:     stringsOrEmpty(c.Members),
			Center:      []float64{c.Center[0], c.Center[1]},
			RepComments: stringsOrEmpty(c.RepComments),
		}
	}
	return payloads
}

// stringsOrEmpty keeps nil slices out of the JSON: the frontend expects
// [] rather than null.
func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
