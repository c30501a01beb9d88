package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenAPIHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.yaml")
	if err := os.WriteFile(path, []byte("openapi: 3.0.3\ninfo:\n  title: Test\n"), 0o600); err != nil {
		t.Fatalf("Failed to write spec: %v", err)
	}

	tests := []struct {
		name           string
		path           string
		serve          func(*OpenAPIHandler) http.HandlerFunc
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "yaml",
			path:           path,
			serve:          func(h *OpenAPIHandler) http.HandlerFunc { return h.ServeYAML },
			expectedStatus: http.StatusOK,
			expectedType:   "application/x-yaml",
		},
		{
			name:           "json",
			path:           path,
			serve:          func(h *OpenAPIHandler) http.HandlerFunc { return h.ServeJSON },
			expectedStatus: http.StatusOK,
			expectedType:   "application/json",
		},
		{
			name:           "missing file",
			path:           filepath.Join(dir, "missing.yaml"),
			serve:          func(h *OpenAPIHandler) http.HandlerFunc { return h.ServeYAML },
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewOpenAPIHandler(tt.path)
			w := httptest.NewRecorder()
			tt.serve(h)(w, httptest.NewRequest(http.MethodGet, "/api/v1/openapi", nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedType != "" && w.Header().Get("Content-Type") != tt.expectedType {
				t.Errorf("Expected Content-Type '%s', got '%s'", tt.expectedType, w.Header().Get("Content-Type"))
			}
			if tt.expectedType == "application/json" {
				var doc map[string]any
				if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
					t.Fatalf("Failed to decode JSON: %v", err)
				}
				if doc["openapi"] != "3.0.3" {
					t.Errorf("Expected openapi '3.0.3', got '%v'", doc["openapi"])
				}
			}
		})
	}
}
