package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIToken requires "Authorization: Bearer <token>" on every request.
// An empty token disables the check.
func APIToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			got, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="daily-agent"`)
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "A valid API token is required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
