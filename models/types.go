// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Vote value constants (agree/disagree/pass)
const (
	VoteDisagree = -1
	VotePass     = 0
	VoteAgree    = 1
)

// Comment moderation constants
const (
	ModRejected    = -1
	ModUnmoderated = 0
	ModAccepted    = 1
)

// PolisResponse is the envelope every /api/v3 endpoint returns.
// Legacy clients expect {"status": "ok", "data": ..., "error": null};
// both keys are always present, null when unused.
type PolisResponse struct {
	Status string  `json:"status"`
	Data   any     `json:"data"`
	Error  *string `json:"error"`
}

// Request types

type CreateConversationRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

type UpdateConversationRequest struct {
	ConversationID string  `json:"conversation_id"`
	Topic          *string `json:"topic,omitempty"`
	Description    *string `json:"description,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

type CreateCommentRequest struct {
	ConversationID string `json:"conversation_id"`
	Txt            string `json:"txt"`
	Pid            string `json:"pid,omitempty"`
	IsSeed         bool   `json:"is_seed,omitempty"`
}

type ModerateCommentRequest struct {
	ConversationID string `json:"conversation_id"`
	Tid            string `json:"tid"`
	Mod            int    `json:"mod"`
}

type JoinConversationRequest struct {
	ConversationID string `json:"conversation_id"`
	ExternalToken  string `json:"external_token,omitempty"`
}

type CastVoteRequest struct {
	ConversationID string `json:"conversation_id"`
	Pid            string `json:"pid"`
	Tid            string `json:"tid"`
	Vote           int    `json:"vote"`
}

type CreateReportRequest struct {
	ConversationID string `json:"conversation_id"`
}

type CloseConversationRequest struct {
	ConversationID string `json:"conversation_id"`
}

type ReopenConversationRequest struct {
	ConversationID string `json:"conversation_id"`
}

// Response types

type CreateConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	InviteCode     string `json:"invite_code"`
}

type CreateCommentResponse struct {
	Tid string `json:"tid"`
}

type JoinConversationResponse struct {
	Pid string `json:"pid"`
}

type CastVoteResponse struct {
	Pid      string `json:"pid"`
	Tid      string `json:"tid"`
	Vote     int    `json:"vote"`
	Changed  bool   `json:"changed"`
	MathTick uint64 `json:"math_tick"`
}

type CreateReportResponse struct {
	ReportID string `json:"report_id"`
}

type CloseConversationResponse struct {
	Closed bool `json:"closed"`
}

type ReopenConversationResponse struct {
	Reopened bool `json:"reopened"`
}

type ConversationStatsResponse struct {
	ParticipantCount int `json:"participant_count"`
	CommentCount     int `json:"comment_count"`
	VoteCount        int `json:"vote_count"`
}

// Math payloads. Field names mirror the legacy Polis frontend contract;
// the engine's internal types stay free of this naming.

type ClusterPayload struct {
	ID          int       `json:"id"`
	Members     []string  `json:"members"`
	Center      []float64 `json:"center"`
	RepComments []string  `json:"repComments"`
}

type PCAPayload struct {
	CommentProjection [][]float64      `json:"commentProjection"`
	PtptProjection    [][]float64      `json:"ptptotProjection"`
	Tids              []string         `json:"tids"`
	Pids              []string         `json:"pids"`
	BaseCluster       []ClusterPayload `json:"baseCluster"`
	GroupAware        bool             `json:"groupAware"`
}

type PCA2Inner struct {
	CommentProjection [][]float64      `json:"commentProjection"`
	PtptProjection    [][]float64      `json:"ptptotProjection"`
	BaseClusters      []ClusterPayload `json:"baseClusters"`
}

type PCA2Payload struct {
	PCA PCA2Inner `json:"pca"`
}

type CorrelationMatrixPayload struct {
	Matrix   [][]float64 `json:"matrix"`
	Comments []string    `json:"comments"`
	MathTick uint64      `json:"math_tick"`
}

// Domain types

type Conversation struct {
	ID          string    `json:"conversation_id"`
	Topic       string    `json:"topic"`
	Description string    `json:"description"`
	InviteCode  string    `json:"invite_code"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created"`
}

type Comment struct {
	Tid            string    `json:"tid"`
	ConversationID string    `json:"conversation_id"`
	Pid            string    `json:"pid"`
	Txt            string    `json:"txt"`
	Mod            int       `json:"mod"`
	IsSeed         bool      `json:"is_seed"`
	CreatedAt      time.Time `json:"created"`
}

type Participant struct {
	Pid            string    `json:"pid"`
	ConversationID string    `json:"conversation_id"`
	ExternalToken  string    `json:"-"` // Never expose in JSON
	CreatedAt      time.Time `json:"created"`
}

type Vote struct {
	ConversationID string    `json:"conversation_id"`
	Pid            string    `json:"pid"`
	Tid            string    `json:"tid"`
	Value          int       `json:"vote"`
	UpdatedAt      time.Time `json:"created"`
}

type Report struct {
	ID             string    `json:"report_id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created"`
}
