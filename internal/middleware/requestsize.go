package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize is the default maximum request body size (64KB).
// The largest legitimate body is a settings document or a 2000 character chat message.
const DefaultMaxRequestSize int64 = 64 << 10

// MaxRequestSize limits request bodies. Declared oversize bodies are rejected up front;
// undeclared ones fail while the handler decodes them.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body is too large", nil)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
