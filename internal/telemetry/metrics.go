// internal/telemetry/metrics.go
package telemetry

// Metrics receives counters from both endpoints.
// Outcome names are the poll outcome strings ("timeout", "data_ready", ...).
type Metrics interface {
	ObservePoll(outcome string, bytes int)
	ObserveHeartbeat(err error)
	SetDegraded(degraded bool)
}

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObservePoll(_ string, _ int) {}

func (n *NoopMetrics) ObserveHeartbeat(_ error) {}

func (n *NoopMetrics) SetDegraded(_ bool) {}

var _ Metrics = (*NoopMetrics)(nil)
