// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civicmesh/opinionmap/models"
	"github.com/civicmesh/opinionmap/testutil"
)

func TestCreateComment(t *testing.T) {
	st, _, _ := newTestBackend(t)
	handler := NewCommentHandler(st)

	open, err := st.CreateConversation("Open", "", true)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	closed, err := st.CreateConversation("Closed", "", false)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	tests := []struct {
		name           string
		requestBody    models.CreateCommentRequest
		expectedStatus int
	}{
		{
			name: "valid comment",
			requestBody: models.CreateCommentRequest{
				ConversationID: open.ID,
				Txt:            "We should add bike lanes",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing txt",
			requestBody: models.CreateCommentRequest{
				ConversationID: open.ID,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown conversation",
			requestBody: models.CreateCommentRequest{
				ConversationID: "nope",
				Txt:            "hello",
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "closed conversation",
			requestBody: models.CreateCommentRequest{
				ConversationID: closed.ID,
				Txt:            "too late",
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, "POST", "/api/v3/comments", tt.requestBody)
			w := httptest.NewRecorder()

			handler.CreateComment(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.CreateCommentResponse
				decodeData(t, w, &resp)
				if resp.Tid == "" {
					t.Error("Expected non-empty tid")
				}
			}
		})
	}
}

func TestGetCommentsModFilter(t *testing.T) {
	st, _, _ := newTestBackend(t)
	handler := NewCommentHandler(st)

	conv, err := st.CreateConversation("Topic", "", true)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if _, err := st.CreateComment(conv.ID, "", "kept", false); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	rejected, err := st.CreateComment(conv.ID, "", "rejected", false)
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if err := st.SetCommentMod(conv.ID, rejected.Tid, models.ModRejected); err != nil {
		t.Fatalf("SetCommentMod failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v3/comments?conversation_id="+conv.ID, nil)
	w := httptest.NewRecorder()
	handler.GetComments(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var all []models.Comment
	decodeData(t, w, &all)
	if len(all) != 2 {
		t.Errorf("Expected 2 comments, got %d", len(all))
	}

	req = httptest.NewRequest("GET", "/api/v3/comments?conversation_id="+conv.ID+"&mod=-1", nil)
	w = httptest.NewRecorder()
	handler.GetComments(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var filtered []models.Comment
	decodeData(t, w, &filtered)
	if len(filtered) != 1 || filtered[0].Tid != rejected.Tid {
		t.Errorf("Expected only the rejected comment, got %d", len(filtered))
	}

	// Garbage mod value
	req = httptest.NewRequest("GET", "/api/v3/comments?conversation_id="+conv.ID+"&mod=9", nil)
	w = httptest.NewRecorder()
	handler.GetComments(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestModerateComment(t *testing.T) {
	st, _, _ := newTestBackend(t)
	handler := NewCommentHandler(st)

	conv, err := st.CreateConversation("Topic", "", true)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	c, err := st.CreateComment(conv.ID, "", "A statement", false)
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	tests := []struct {
		name           string
		requestBody    models.ModerateCommentRequest
		expectedStatus int
	}{
		{
			name: "reject comment",
			requestBody: models.ModerateCommentRequest{
				ConversationID: conv.ID,
				Tid:            c.Tid,
				Mod:            models.ModRejected,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "out-of-range mod",
			requestBody: models.ModerateCommentRequest{
				ConversationID: conv.ID,
				Tid:            c.Tid,
				Mod:            3,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown comment",
			requestBody: models.ModerateCommentRequest{
				ConversationID: conv.ID,
				Tid:            "nope",
				Mod:            models.ModAccepted,
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, "PUT", "/api/v3/comments/moderate", tt.requestBody)
			w := httptest.NewRecorder()

			handler.ModerateComment(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	got, err := st.GetComment(conv.ID, c.Tid)
	if err != nil {
		t.Fatalf("GetComment failed: %v", err)
	}
	if got.Mod != models.ModRejected {
		t.Errorf("Expected mod %d, got %d", models.ModRejected, got.Mod)
	}
}

func TestNextComment(t *testing.T) {
	st, _, _ := newTestBackend(t)
	handler := NewCommentHandler(st)

	conv, err := st.CreateConversation("Topic", "", true)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	p, err := st.GetOrCreateParticipant(conv.ID, "device-abc")
	if err != nil {
		t.Fatalf("GetOrCreateParticipant failed: %v", err)
	}
	first, err := st.CreateComment(conv.ID, "", "First statement", false)
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	second, err := st.CreateComment(conv.ID, "", "Second statement", false)
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	third, err := st.CreateComment(conv.ID, "", "Third statement", false)
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	next := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/api/v3/nextComment?conversation_id="+conv.ID+"&pid="+p.Pid, nil)
		w := httptest.NewRecorder()
		handler.GetNextComment(w, req)
		return w
	}

	w := next()
	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.Comment
	decodeData(t, w, &got)
	if got.Tid != first.Tid {
		t.Errorf("Expected first comment %s, got %s", first.Tid, got.Tid)
	}

	if _, err := st.RecordVote(conv.ID, p.Pid, first.Tid, models.VoteAgree); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	w = next()
	decodeData(t, w, &got)
	if got.Tid != second.Tid {
		t.Errorf("Expected second comment %s after voting first, got %s", second.Tid, got.Tid)
	}

	// A rejected comment drops out of the queue without a vote.
	if err := st.SetCommentMod(conv.ID, second.Tid, models.ModRejected); err != nil {
		t.Fatalf("SetCommentMod failed: %v", err)
	}
	w = next()
	decodeData(t, w, &got)
	if got.Tid != third.Tid {
		t.Errorf("Expected third comment %s after rejection, got %s", third.Tid, got.Tid)
	}

	if _, err := st.RecordVote(conv.ID, p.Pid, third.Tid, models.VoteDisagree); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	w = next()
	testutil.AssertStatus(t, w, http.StatusOK)
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response envelope: %v", err)
	}
	if env.Status != "ok" || string(env.Data) != "null" {
		t.Errorf("Expected data null once every comment is voted, got %s", env.Data)
	}
}

func TestNextCommentErrors(t *testing.T) {
	st, _, _ := newTestBackend(t)
	handler := NewCommentHandler(st)

	conv, err := st.CreateConversation("Topic", "", true)
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	p, err := st.GetOrCreateParticipant(conv.ID, "device-abc")
	if err != nil {
		t.Fatalf("GetOrCreateParticipant failed: %v", err)
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{"missing conversation_id", "pid=" + p.Pid, http.StatusBadRequest},
		{"missing pid", "conversation_id=" + conv.ID, http.StatusBadRequest},
		{"unknown conversation", "conversation_id=nope&pid=" + p.Pid, http.StatusNotFound},
		{"unknown participant", "conversation_id=" + conv.ID + "&pid=nope", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v3/nextComment?"+tc.query, nil)
			w := httptest.NewRecorder()
			handler.GetNextComment(w, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}
