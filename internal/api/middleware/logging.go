package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// LoggingMiddleware logs every HTTP request as one structured slog line.
// application_id is read from the query string only (not the ingest
// request body, which LoggingMiddleware never consumes) so log lines for
// /logs/query and /logs/clear can be correlated back to a tenant without
// peeking at /logs/ingest's JSON payload twice.
//
// Logs include:
//   - Request ID
//   - Method
//   - Route (mux template, not the raw path, to keep log lines low
//     cardinality)
//   - Status code
//   - Duration
//   - Response size
//   - Client IP
//   - User agent
//   - application_id, when present as a query parameter
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status and size
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Get request ID from context
			requestID := GetRequestID(r.Context())

			// Get client IP
			clientIP := r.Header.Get("X-Forwarded-For")
			if clientIP == "" {
				clientIP = r.Header.Get("X-Real-IP")
			}
			if clientIP == "" {
				clientIP = r.RemoteAddr
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			route := r.URL.Path
			if m := mux.CurrentRoute(r); m != nil {
				if tmpl, err := m.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}

			logger.Info("HTTP request",
				"request_id", requestID,
				"method", r.Method,
				"route", route,
				"application_id", r.URL.Query().Get("application_id"),
				"status", rw.statusCode,
				"duration_ms", duration.Milliseconds(),
				"size_bytes", rw.size,
				"client_ip", clientIP,
				"user_agent", r.UserAgent(),
			)
		})
	}
}
