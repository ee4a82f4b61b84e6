package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/response"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// Pinger is a dependency the health endpoint can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps      map[string]Pinger
	log       *logger.Logger
	timeout   time.Duration
	startTime time.Time
}

// NewHealthHandler pings each named dependency on every request. Nil pingers are skipped.
func NewHealthHandler(deps map[string]Pinger, log *logger.Logger) *HealthHandler {
	active := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{
		deps:      active,
		log:       log,
		timeout:   2 * time.Second,
		startTime: time.Now().UTC(),
	}
}

type MemoryMetrics struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"numGC"`
}

type HealthData struct {
	Status     string            `json:"status"`
	Services   map[string]string `json:"services"`
	Uptime     string            `json:"uptime"`
	Memory     MemoryMetrics     `json:"memory"`
	Goroutines int               `json:"goroutines"`
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	overall := statusUp
	services := map[string]string{"app": statusUp}
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("Health check failed", "dependency", name, "error", err)
			services[name] = statusDown
			overall = statusDown
			continue
		}
		services[name] = statusUp
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	data := HealthData{
		Status:   overall,
		Services: services,
		Uptime:   time.Since(h.startTime).String(),
		Memory: MemoryMetrics{
			Alloc:      mem.Alloc,
			TotalAlloc: mem.TotalAlloc,
			Sys:        mem.Sys,
			NumGC:      mem.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
	}

	code := http.StatusOK
	if overall == statusDown {
		code = http.StatusServiceUnavailable
	}
	response.WriteJSON(w, code, data)
}
