package middleware

import (
	"net/http"
	"time"

	"github.com/yuzvak/eventsales-service/internal/pkg/generator"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

func NewLoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	ids := generator.NewUUIDGenerator()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = ids.NewID()
			}
			w.Header().Set(RequestIDHeader, requestID)

			wrw := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrw, r)

			reqLog := log.WithCorrelationID(requestID)
			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
				"remote_addr", r.RemoteAddr,
			}
			if wrw.statusCode >= http.StatusInternalServerError {
				reqLog.Warn("HTTP Request", fields...)
				return
			}
			reqLog.Info("HTTP Request", fields...)
		})
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
