// internal/telemetry/health.go
package telemetry

import "sync"

// HealthReport is the /healthz body. Only Status "ok" is served as 200.
type HealthReport struct {
	Status                string `json:"status"`
	LastOutcome           string `json:"lastOutcome,omitempty"`
	SecondsSinceHeartbeat int    `json:"secondsSinceHeartbeat"`
	Heartbeats            int    `json:"heartbeats"`
}

// HealthTracker holds the latest report pushed by the status orchestrator.
type HealthTracker struct {
	mu     sync.RWMutex
	report HealthReport
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{report: HealthReport{Status: "starting"}}
}

func (h *HealthTracker) Update(r HealthReport) {
	h.mu.Lock()
	h.report = r
	h.mu.Unlock()
}

func (h *HealthTracker) Report() HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report
}
