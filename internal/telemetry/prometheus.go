// internal/telemetry/prometheus.go
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	pollOutcomes *prometheus.CounterVec
	bytesRead    prometheus.Counter
	heartbeats   *prometheus.CounterVec
	degraded     prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		pollOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fifowatch_poll_outcomes_total",
				Help: "Watchdog poll attempts by outcome",
			},
			[]string{"outcome"},
		),
		bytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fifowatch_heartbeat_bytes_read_total",
				Help: "Heartbeat bytes drained from the channel by the watchdog",
			},
		),
		heartbeats: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fifowatch_heartbeats_total",
				Help: "Heartbeat write attempts by the worker",
			},
			[]string{"result"},
		),
		degraded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fifowatch_degraded",
				Help: "1 while the watchdog sees persistent poll errors",
			},
		),
	}
}

func (p *PrometheusMetrics) ObservePoll(outcome string, bytes int) {
	p.pollOutcomes.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		p.bytesRead.Add(float64(bytes))
	}
}

func (p *PrometheusMetrics) ObserveHeartbeat(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	p.heartbeats.WithLabelValues(result).Inc()
}

func (p *PrometheusMetrics) SetDegraded(degraded bool) {
	if degraded {
		p.degraded.Set(1)
		return
	}
	p.degraded.Set(0)
}

var _ Metrics = (*PrometheusMetrics)(nil)
