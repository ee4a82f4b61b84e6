package server

import (
	"net/http"

	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/middleware"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	monitoring.RegisterMetricsEndpoint(mux)

	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)

	// The event catalog is also reachable under /sales/events for older clients.
	for _, prefix := range []string{"/events", "/sales/events"} {
		mux.HandleFunc("GET "+prefix, s.eventHandler.HandleList)
		mux.HandleFunc("POST "+prefix, s.eventHandler.HandleCreate)
		mux.HandleFunc("GET "+prefix+"/{id}", s.eventHandler.HandleGet)
		mux.HandleFunc("PUT "+prefix+"/{id}", s.eventHandler.HandleReplace)
		mux.HandleFunc("PATCH "+prefix+"/{id}", s.eventHandler.HandlePatch)
		mux.HandleFunc("DELETE "+prefix+"/{id}", s.eventHandler.HandleDelete)
	}

	mux.HandleFunc("GET /sales", s.saleHandler.HandleList)
	mux.HandleFunc("POST /sales", s.saleHandler.HandleCreate)
	mux.HandleFunc("GET /sales/{id}", s.saleHandler.HandleGet)
	mux.HandleFunc("PUT /sales/{id}", s.saleHandler.HandleUpdateStatus)
	mux.HandleFunc("PATCH /sales/{id}", s.saleHandler.HandleUpdateStatus)
	mux.HandleFunc("DELETE /sales/{id}", s.saleHandler.HandleDelete)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)
	handler = s.corsMiddleware(handler)
	handler = s.timeoutMiddleware(handler)

	return handler
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "Location, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, s.requestTimeout, `{"error":{"kind":"Internal","message":"Request timeout"}}`)
}
