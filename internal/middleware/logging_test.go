package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		expectedLevel zapcore.Level
	}{
		{name: "GET request", method: "GET", path: "/api/v1/tasks", handlerStatus: http.StatusOK, expectedLevel: zapcore.InfoLevel},
		{name: "POST request", method: "POST", path: "/api/v1/tasks", handlerStatus: http.StatusCreated, expectedLevel: zapcore.InfoLevel},
		{name: "404 request", method: "GET", path: "/notfound", handlerStatus: http.StatusNotFound, expectedLevel: zapcore.WarnLevel},
		{name: "500 request", method: "GET", path: "/api/v1/chat", handlerStatus: http.StatusInternalServerError, expectedLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
				_, _ = w.Write([]byte("body"))
			})

			w := httptest.NewRecorder()
			Logging(zap.New(core))(handler).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}
			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected 1 log entry, got %d", len(entries))
			}
			entry := entries[0]
			if entry.Level != tt.expectedLevel {
				t.Errorf("Expected level %s, got %s", tt.expectedLevel, entry.Level)
			}
			fields := entry.ContextMap()
			if fields["status_code"] != int64(tt.handlerStatus) {
				t.Errorf("Expected status_code %d, got %v", tt.handlerStatus, fields["status_code"])
			}
			if fields["path"] != tt.path {
				t.Errorf("Expected path %s, got %v", tt.path, fields["path"])
			}
			if fields["bytes"] != int64(4) {
				t.Errorf("Expected bytes 4, got %v", fields["bytes"])
			}
		})
	}
}

func TestStatusRecorder_ImplicitOK(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	rec := newStatusRecorder(w)
	_, _ = rec.Write([]byte("ok"))
	rec.WriteHeader(http.StatusTeapot)

	if rec.statusCode != http.StatusOK {
		t.Errorf("Expected status 200 after implicit write, got %d", rec.statusCode)
	}
}
