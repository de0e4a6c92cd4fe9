package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/thushan/redis-watcher/internal/logger"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	LoggerKey    contextKey = "logger"

	HeaderRequestID = "X-Request-ID"
	HeaderWatcherID = "X-Redis-Watcher-Request-ID"
)

// scrape paths are polled by monitoring every few seconds, logging them at
// info would drown everything else
var quietPaths = map[string]struct{}{
	"/internal/health": {},
	"/metrics":         {},
}

// responseWriter wraps http.ResponseWriter to capture response size and status
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int64
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += int64(size)
	return size, err
}

func (rw *responseWriter) WriteHeader(s int) {
	rw.status = s
	rw.ResponseWriter.WriteHeader(s)
}

// GetLogger retrieves a logger with request ID from context
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// LoggingMiddleware tags every request with an id and logs its completion,
// full request detail goes to the log file only
func LoggingMiddleware(styledLogger logger.StyledLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			requestLogger := styledLogger.GetUnderlying().With("request_id", requestID)
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = context.WithValue(ctx, LoggerKey, requestLogger)

			w.Header().Set(HeaderWatcherID, requestID)
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", duration.String(),
				"response_size", units.HumanSize(float64(wrapped.size)),
			}

			if _, quiet := quietPaths[r.URL.Path]; quiet {
				requestLogger.Debug("Request completed", fields...)
			} else {
				requestLogger.Info("Request completed", fields...)
			}

			detailedCtx := context.WithValue(ctx, logger.DefaultDetailedCookie, true)
			requestLogger.InfoContext(detailedCtx, "Access log",
				"remote_addr", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", wrapped.status,
				"response_bytes", wrapped.size,
				"duration_ms", duration.Milliseconds(),
				"user_agent", r.UserAgent())
		})
	}
}
