// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/civicmesh/opinionmap/engine"
	"github.com/civicmesh/opinionmap/handlers"
	"github.com/civicmesh/opinionmap/middleware"
	"github.com/civicmesh/opinionmap/store"
	"github.com/civicmesh/opinionmap/votematrix"
)

func NewRouter(st *store.Store, matrix *votematrix.Store, eng *engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	conversationHandler := handlers.NewConversationHandler(st)
	commentHandler := handlers.NewCommentHandler(st)
	voteHandler := handlers.NewVoteHandler(st, matrix)
	reportHandler := handlers.NewReportHandler(st)
	mathHandler := handlers.NewMathHandler(st, eng)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/v3/testConnection", func(w http.ResponseWriter, r *http.Request) {
		middleware.OKResponse(w, map[string]bool{"connected": true})
	})

	// Conversation management
	mux.HandleFunc("POST /api/v3/conversations", middleware.WithLogging(conversationHandler.CreateConversation))
	mux.HandleFunc("GET /api/v3/conversations", middleware.WithLogging(conversationHandler.ListConversations))
	mux.HandleFunc("GET /api/v3/conversations/{id}", middleware.WithLogging(conversationHandler.GetConversation))
	mux.HandleFunc("PUT /api/v3/conversations", middleware.WithLogging(conversationHandler.UpdateConversation))
	mux.HandleFunc("POST /api/v3/conversations/close", middleware.WithLogging(conversationHandler.CloseConversation))
	mux.HandleFunc("POST /api/v3/conversations/reopen", middleware.WithLogging(conversationHandler.ReopenConversation))
	mux.HandleFunc("GET /api/v3/conversationStats", middleware.WithLogging(conversationHandler.GetStats))

	// Comments
	mux.HandleFunc("POST /api/v3/comments", middleware.WithLogging(commentHandler.CreateComment))
	mux.HandleFunc("GET /api/v3/comments", middleware.WithLogging(commentHandler.GetComments))
	mux.HandleFunc("PUT /api/v3/comments/moderate", middleware.WithLogging(commentHandler.ModerateComment))
	mux.HandleFunc("GET /api/v3/nextComment", middleware.WithLogging(commentHandler.GetNextComment))

	// Participants and votes
	mux.HandleFunc("POST /api/v3/participants", middleware.WithLogging(voteHandler.JoinConversation))
	mux.HandleFunc("GET /api/v3/participants", middleware.WithLogging(voteHandler.GetParticipants))
	mux.HandleFunc("POST /api/v3/votes", middleware.WithLogging(voteHandler.CastVote))
	mux.HandleFunc("GET /api/v3/votes", middleware.WithLogging(voteHandler.GetVotes))

	// Reports
	mux.HandleFunc("POST /api/v3/reports", middleware.WithLogging(reportHandler.CreateReport))
	mux.HandleFunc("GET /api/v3/reports", middleware.WithLogging(reportHandler.GetReports))

	// Math results
	mux.HandleFunc("GET /api/v3/math/pca", middleware.WithLogging(mathHandler.GetPCA))
	mux.HandleFunc("GET /api/v3/math/pca2", middleware.WithLogging(mathHandler.GetPCA2))
	mux.HandleFunc("GET /api/v3/math/correlationMatrix", middleware.WithLogging(mathHandler.GetCorrelationMatrix))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("opinionmap API v3"))
	})

	return mux
}
