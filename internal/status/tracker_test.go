// internal/status/tracker_test.go
package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tamzrod/fifo-watchdog/internal/poller"
)

func TestTracker_HeartbeatTimeoutCycle(t *testing.T) {
	tr := NewTracker(3)
	assert.Equal(t, HealthUnknown, tr.Snapshot().Health)
	assert.False(t, tr.Tick(), "nothing ticks before the first result")

	assert.True(t, tr.Apply(poller.Result{Outcome: poller.OutcomeDataReady, Bytes: 2}))
	s := tr.Snapshot()
	assert.Equal(t, HealthOK, s.Health)
	assert.Equal(t, OutcomeDataReady, s.LastOutcome)
	assert.Equal(t, uint16(2), s.Heartbeats)

	assert.True(t, tr.Tick())
	assert.True(t, tr.Tick())
	assert.Equal(t, uint16(2), tr.Snapshot().SecondsSinceHeartbeat)

	assert.True(t, tr.Apply(poller.Result{Outcome: poller.OutcomeTimeout}))
	assert.Equal(t, HealthStale, tr.Snapshot().Health)
	assert.Equal(t, uint16(2), tr.Snapshot().SecondsSinceHeartbeat)

	assert.True(t, tr.Apply(poller.Result{Outcome: poller.OutcomeDataReady, Bytes: 1}))
	s = tr.Snapshot()
	assert.Equal(t, HealthOK, s.Health)
	assert.Zero(t, s.SecondsSinceHeartbeat)
	assert.Equal(t, uint16(3), s.Heartbeats)
}

func TestTracker_PeerClosedAndEmptyReadKeepHealth(t *testing.T) {
	tr := NewTracker(3)
	tr.Apply(poller.Result{Outcome: poller.OutcomeDataReady, Bytes: 1})

	assert.True(t, tr.Apply(poller.Result{Outcome: poller.OutcomePeerClosed}))
	assert.Equal(t, HealthOK, tr.Snapshot().Health)
	assert.Equal(t, OutcomePeerClosed, tr.Snapshot().LastOutcome)

	tr.Apply(poller.Result{Outcome: poller.OutcomeDataReady, Bytes: 0})
	assert.Equal(t, HealthOK, tr.Snapshot().Health)
	assert.Equal(t, uint16(1), tr.Snapshot().Heartbeats)
}

func TestTracker_ErrorsBecomeDegraded(t *testing.T) {
	tr := NewTracker(2)
	fail := poller.Result{Outcome: poller.OutcomeError, Err: errors.New("boom")}

	tr.Apply(fail)
	assert.Equal(t, HealthError, tr.Snapshot().Health)

	tr.Apply(fail)
	assert.Equal(t, HealthDegraded, tr.Snapshot().Health)

	assert.False(t, tr.Apply(fail), "steady degraded state is not a change")

	tr.Apply(poller.Result{Outcome: poller.OutcomeTimeout})
	assert.Equal(t, HealthStale, tr.Snapshot().Health)

	tr.Apply(fail)
	assert.Equal(t, HealthError, tr.Snapshot().Health, "streak restarts after a non-error")
}

func TestTracker_SecondsSaturate(t *testing.T) {
	tr := NewTracker(1)
	tr.Apply(poller.Result{Outcome: poller.OutcomeTimeout})
	tr.snap.SecondsSinceHeartbeat = MaxSeconds - 1

	assert.True(t, tr.Tick())
	assert.False(t, tr.Tick())
	assert.Equal(t, uint16(MaxSeconds), tr.Snapshot().SecondsSinceHeartbeat)
}

func TestHealthName(t *testing.T) {
	assert.Equal(t, "ok", HealthName(HealthOK))
	assert.Equal(t, "stale", HealthName(HealthStale))
	assert.Equal(t, "degraded", HealthName(HealthDegraded))
	assert.Equal(t, "error", HealthName(HealthError))
	assert.Equal(t, "starting", HealthName(HealthUnknown))
}
