package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/store"
	"github.com/benvon/daily-agent/internal/validation"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return envelope
}

func TestRespondJSON_Envelope(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusCreated, map[string]string{"title": "Standup"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	envelope := decodeEnvelope(t, w)
	if envelope["success"] != true {
		t.Errorf("Expected success true, got %v", envelope["success"])
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok || data["title"] != "Standup" {
		t.Errorf("Expected data.title Standup, got %v", envelope["data"])
	}
	if _, ok := envelope["timestamp"].(string); !ok {
		t.Error("Expected timestamp string")
	}
}

func TestRespondJSONError_TruncatesMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		message     string
		expectedLen int
	}{
		{name: "short message kept", message: "Invalid task ID", expectedLen: len("Invalid task ID")},
		{name: "long message truncated", message: strings.Repeat("x", 500), expectedLen: maxErrorMessageLength + 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSONError(w, http.StatusBadRequest, "Bad Request", tt.message)

			envelope := decodeEnvelope(t, w)
			if envelope["success"] != false {
				t.Errorf("Expected success false, got %v", envelope["success"])
			}
			if envelope["error"] != "Bad Request" {
				t.Errorf("Expected error 'Bad Request', got %v", envelope["error"])
			}
			msg, _ := envelope["message"].(string)
			if len(msg) != tt.expectedLen {
				t.Errorf("Expected message length %d, got %d", tt.expectedLen, len(msg))
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		limit          int64
		expectedOK     bool
		expectedStatus int
	}{
		{name: "valid body", body: `{"message":"hi"}`, expectedOK: true, expectedStatus: http.StatusOK},
		{name: "malformed body", body: `{"message":`, expectedStatus: http.StatusBadRequest},
		{name: "body over limit", body: `{"message":"` + strings.Repeat("a", 100) + `"}`, limit: 16, expectedStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(tt.body))
			if tt.limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, tt.limit)
			}

			var req SendMessageRequest
			ok := decodeJSON(w, r, &req)
			if ok != tt.expectedOK {
				t.Errorf("Expected ok %v, got %v", tt.expectedOK, ok)
			}
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestRespondValidationError(t *testing.T) {
	t.Parallel()

	err := validation.Validate.Struct(SendMessageRequest{})
	w := httptest.NewRecorder()
	respondValidationError(w, err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	msg, _ := decodeEnvelope(t, w)["message"].(string)
	if !strings.Contains(msg, "Message") {
		t.Errorf("Expected message to name the failing field, got %q", msg)
	}
}

func TestRespondAgentError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "invalid task", err: fmt.Errorf("%w: missing title", agent.ErrInvalidTask), expectedStatus: http.StatusBadRequest},
		{name: "invalid settings", err: agent.ErrInvalidSettings, expectedStatus: http.StatusBadRequest},
		{name: "task not found", err: store.ErrTaskNotFound, expectedStatus: http.StatusNotFound},
		{name: "pattern not found", err: agent.ErrPatternNotFound, expectedStatus: http.StatusNotFound},
		{name: "no draft", err: agent.ErrNoDraft, expectedStatus: http.StatusConflict},
		{name: "unexpected", err: errors.New("disk full"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondAgentError(w, tt.err)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusInternalServerError {
				msg, _ := decodeEnvelope(t, w)["message"].(string)
				if strings.Contains(msg, "disk full") {
					t.Errorf("Expected internal error to be hidden, got %q", msg)
				}
			}
		})
	}
}

// newTestRequest builds a request with body encoded as JSON; a nil body sends no content
func newTestRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	data, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	return r
}
