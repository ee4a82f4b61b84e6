package monitoring

import (
	"net/http"
	"strconv"
	"strings"
)

type HTTPMetricsMiddleware struct {
	next http.Handler
}

func NewHTTPMetricsMiddleware(next http.Handler) *HTTPMetricsMiddleware {
	return &HTTPMetricsMiddleware{
		next: next,
	}
}

func (m *HTTPMetricsMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	done := TimeHTTPRequest(extractHandlerName(r.URL.Path), r.Method)

	wrapped := &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}

	m.next.ServeHTTP(wrapped, r)

	done(strconv.Itoa(wrapped.statusCode))
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// extractHandlerName collapses ids out of the path to keep label cardinality flat.
func extractHandlerName(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) >= 2 && parts[0] == "sales" && parts[1] == "events":
		if len(parts) > 2 {
			return "event"
		}
		return "events"
	case parts[0] == "events":
		if len(parts) > 1 {
			return "event"
		}
		return "events"
	case parts[0] == "sales":
		if len(parts) > 1 {
			return "sale"
		}
		return "sales"
	case parts[0] == "metrics", parts[0] == "health":
		return parts[0]
	default:
		return "unknown"
	}
}
