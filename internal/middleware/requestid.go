package middleware

import (
	"net/http"

	"github.com/benvon/daily-agent/internal/request"
)

// RequestID attaches a correlation ID to the request context and echoes it in the response
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := request.ID(r)
		w.Header().Set(request.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(request.WithID(r.Context(), id)))
	})
}
