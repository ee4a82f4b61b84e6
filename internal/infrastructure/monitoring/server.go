package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func WrapHandler(handler http.Handler) http.Handler {
	return NewHTTPMetricsMiddleware(handler)
}

func RegisterMetricsEndpoint(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
