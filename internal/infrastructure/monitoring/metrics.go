package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	SalesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_created_total",
			Help: "Total number of sales admitted in status EM_ABERTO",
		},
	)

	SaleAdmissionRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_admission_rejections_total",
			Help: "Total number of rejected sale creations",
		},
		[]string{"reason"},
	)

	SaleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_status_transitions_total",
			Help: "Total number of sale status transition attempts",
		},
		[]string{"to", "result"},
	)

	EventsOnSale = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_on_sale",
			Help: "Number of events whose sales window contains the current time",
		},
	)

	EventsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_total",
			Help: "Number of events in the catalog",
		},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var (
	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)

	EventCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_cache_requests_total",
			Help: "Event cache lookups by result",
		},
		[]string{"result"},
	)
)

func TimeHTTPRequest(handler, method string) func(statusCode string) {
	start := time.Now()
	return func(statusCode string) {
		duration := time.Since(start).Seconds()
		HTTPRequestDuration.WithLabelValues(handler, method, statusCode).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(handler, method, statusCode).Inc()
	}
}

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		DBQueryDuration.WithLabelValues(queryType, table).Observe(duration)
	}
}

func RecordEventCacheHit() {
	EventCacheRequestsTotal.WithLabelValues("hit").Inc()
}

func RecordEventCacheMiss() {
	EventCacheRequestsTotal.WithLabelValues("miss").Inc()
}

func RecordEventCacheError() {
	EventCacheRequestsTotal.WithLabelValues("error").Inc()
}

func UpdateEventActivity(total, onSale int) {
	EventsTotal.Set(float64(total))
	EventsOnSale.Set(float64(onSale))
}
