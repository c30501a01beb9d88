package middleware

import (
	"net/http"

	logpkg "github.com/benvon/daily-agent/internal/logger"
	"github.com/benvon/daily-agent/internal/request"
	"go.uber.org/zap"
)

// auditEvents maps the statuses worth a security log line to their event names
var auditEvents = map[int]string{
	http.StatusUnauthorized:          "unauthorized_request",
	http.StatusRequestEntityTooLarge: "oversized_request",
	http.StatusTooManyRequests:       "rate_limit_violation",
}

// Audit logs rejected requests that may indicate abuse
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			event, ok := auditEvents[wrapped.statusCode]
			if !ok {
				return
			}
			logger.Warn(event,
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			)
		})
	}
}
