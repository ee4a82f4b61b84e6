package monitoring

// BusinessMetrics feeds the sale commands' counters into Prometheus.
type BusinessMetrics struct{}

func NewBusinessMetrics() *BusinessMetrics {
	return &BusinessMetrics{}
}

func (m *BusinessMetrics) SaleCreated() {
	SalesCreatedTotal.Inc()
}

func (m *BusinessMetrics) AdmissionRejected(reason string) {
	SaleAdmissionRejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *BusinessMetrics) TransitionAttempted(to, result string) {
	SaleTransitionsTotal.WithLabelValues(to, result).Inc()
}
