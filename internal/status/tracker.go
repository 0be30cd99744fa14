// internal/status/tracker.go
package status

import "github.com/tamzrod/fifo-watchdog/internal/poller"

// Tracker folds watchdog poll results into a Snapshot.
// It is owned by a single goroutine and is not safe for concurrent use.
type Tracker struct {
	snap Snapshot

	degradedAfter int
	errStreak     int
}

func NewTracker(degradedAfter int) *Tracker {
	if degradedAfter <= 0 {
		degradedAfter = 1
	}
	return &Tracker{
		snap:          Snapshot{Health: HealthUnknown, LastOutcome: OutcomeNone},
		degradedAfter: degradedAfter,
	}
}

func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Apply updates the snapshot from one poll result and reports whether it changed.
func (t *Tracker) Apply(res poller.Result) bool {
	prev := t.snap

	t.snap.LastOutcome = OutcomeCode(res.Outcome)

	if res.Outcome == poller.OutcomeError {
		t.errStreak++
		if t.errStreak >= t.degradedAfter {
			t.snap.Health = HealthDegraded
		} else {
			t.snap.Health = HealthError
		}
		return t.snap != prev
	}
	t.errStreak = 0

	switch res.Outcome {
	case poller.OutcomeDataReady:
		// Zero bytes is a close with nothing pending, not a heartbeat.
		if res.Bytes > 0 {
			t.snap.Health = HealthOK
			t.snap.SecondsSinceHeartbeat = 0
			t.snap.Heartbeats += uint16(res.Bytes)
		}
	case poller.OutcomeTimeout:
		t.snap.Health = HealthStale
	case poller.OutcomePeerClosed:
		// Writer detached; health stands until the next timeout or heartbeat.
	}

	return t.snap != prev
}

// Tick advances the seconds-since-heartbeat counter by one, saturating.
// Nothing ticks before the first poll result.
func (t *Tracker) Tick() bool {
	if t.snap.LastOutcome == OutcomeNone {
		return false
	}
	if t.snap.SecondsSinceHeartbeat >= MaxSeconds {
		return false
	}
	t.snap.SecondsSinceHeartbeat++
	return true
}

// OutcomeCode maps a poll outcome to its register code.
func OutcomeCode(o poller.Outcome) uint16 {
	switch o {
	case poller.OutcomeTimeout:
		return OutcomeTimeout
	case poller.OutcomeDataReady:
		return OutcomeDataReady
	case poller.OutcomeError:
		return OutcomeError
	case poller.OutcomePeerClosed:
		return OutcomePeerClosed
	default:
		return OutcomeNone
	}
}
