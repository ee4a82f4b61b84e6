package ports

// LifecycleMetrics receives business counters from the sale commands.
type LifecycleMetrics interface {
	SaleCreated()
	AdmissionRejected(reason string)
	TransitionAttempted(to string, result string)
}

type NopLifecycleMetrics struct{}

func (NopLifecycleMetrics) SaleCreated() {}

func (NopLifecycleMetrics) AdmissionRejected(string) {}

func (NopLifecycleMetrics) TransitionAttempted(string, string) {}
