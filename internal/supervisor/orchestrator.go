// internal/supervisor/orchestrator.go
package supervisor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/fifo-watchdog/internal/poller"
	"github.com/tamzrod/fifo-watchdog/internal/status"
	"github.com/tamzrod/fifo-watchdog/internal/telemetry"
)

// orchestrator owns the health snapshot for one watchdog.
// Results arrive from the poller; seconds advance on a 1Hz ticker.
type orchestrator struct {
	log     *zap.Logger
	tracker *status.Tracker
	writer  status.Writer // nil when the Modbus export is disabled
	health  *telemetry.HealthTracker
	tick    time.Duration
}

func (o *orchestrator) run(ctx context.Context, in <-chan poller.Result) {
	secTicker := time.NewTicker(o.tick)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert).
	o.publish("start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			if o.tracker.Apply(res) {
				o.publish("result")
			}

		case <-secTicker.C:
			if o.tracker.Tick() {
				o.publish("tick")
			}
		}
	}
}

func (o *orchestrator) publish(cause string) {
	snap := o.tracker.Snapshot()

	if o.health != nil {
		o.health.Update(healthReport(snap))
	}
	if o.writer == nil {
		return
	}
	if err := o.writer.WriteStatus(snap); err != nil {
		o.log.Warn("status write failed", zap.String("cause", cause), zap.Error(err))
	}
}

func healthReport(s status.Snapshot) telemetry.HealthReport {
	r := telemetry.HealthReport{
		Status:                status.HealthName(s.Health),
		SecondsSinceHeartbeat: int(s.SecondsSinceHeartbeat),
		Heartbeats:            int(s.Heartbeats),
	}
	if s.LastOutcome != status.OutcomeNone {
		r.LastOutcome = outcomeName(s.LastOutcome)
	}
	return r
}

func outcomeName(code uint16) string {
	switch code {
	case status.OutcomeTimeout:
		return poller.OutcomeTimeout.String()
	case status.OutcomeDataReady:
		return poller.OutcomeDataReady.String()
	case status.OutcomeError:
		return poller.OutcomeError.String()
	case status.OutcomePeerClosed:
		return poller.OutcomePeerClosed.String()
	default:
		return ""
	}
}
