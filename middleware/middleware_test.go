// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civicmesh/opinionmap/models"
)

func TestOKResponseEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	OKResponse(w, map[string]int{"answer": 42})

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var resp models.PolisResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %q", resp.Status)
	}
	if resp.Error != nil {
		t.Errorf("Expected null error, got %q", *resp.Error)
	}
}

func TestOKResponseAlwaysCarriesErrorKey(t *testing.T) {
	w := httptest.NewRecorder()
	OKResponse(w, map[string]int{"answer": 42})

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got, ok := raw["error"]; !ok || string(got) != "null" {
		t.Errorf("Expected \"error\": null in success envelope, got %s", got)
	}
	if _, ok := raw["data"]; !ok {
		t.Error("Expected data key in success envelope")
	}
}

func TestErrorResponseEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusNotFound, "Conversation not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	var resp models.PolisResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("Expected status error, got %q", resp.Status)
	}
	if resp.Error == nil || *resp.Error != "Conversation not found" {
		t.Errorf("Unexpected error message %v", resp.Error)
	}
}

func TestParseJSONBody(t *testing.T) {
	body := bytes.NewReader([]byte(`{"topic": "Transit"}`))
	req := httptest.NewRequest("POST", "/api/v3/conversations", body)

	var parsed models.CreateConversationRequest
	if err := ParseJSONBody(req, &parsed); err != nil {
		t.Fatalf("ParseJSONBody failed: %v", err)
	}
	if parsed.Topic != "Transit" {
		t.Errorf("Expected topic Transit, got %q", parsed.Topic)
	}
}

func TestParseJSONBodyInvalid(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v3/conversations", bytes.NewReader([]byte("{nope")))

	var parsed models.CreateConversationRequest
	if err := ParseJSONBody(req, &parsed); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestWithLoggingPassesThrough(t *testing.T) {
	called := false
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/", nil))

	if !called {
		t.Error("Wrapped handler was not called")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status passthrough, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Preflight must not reach the inner handler")
	}))

	req := httptest.NewRequest("OPTIONS", "/api/v3/votes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected origin reflected, got %q", got)
	}
}
