// internal/poller/types.go
package poller

import "time"

// Outcome classifies one poll attempt on the read handle.
type Outcome uint8

const (
	OutcomeTimeout Outcome = iota
	OutcomeDataReady
	OutcomeError
	OutcomePeerClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTimeout:
		return "timeout"
	case OutcomeDataReady:
		return "data_ready"
	case OutcomeError:
		return "error"
	case OutcomePeerClosed:
		return "peer_closed"
	default:
		return "unknown"
	}
}

// Result is produced by one poll cycle.
type Result struct {
	Outcome Outcome
	At      time.Time

	// Bytes drained by the read on DataReady. Zero is valid: the writer
	// closed with nothing pending.
	Bytes int

	Err error // set only for OutcomeError
}

// Summary describes one finished Run.
type Summary struct {
	Started  time.Time
	Finished time.Time

	Counts map[Outcome]int

	// Degraded latches once DegradedAfter consecutive errors were seen.
	Degraded bool
}

func (s *Summary) record(res Result) {
	if s.Counts == nil {
		s.Counts = make(map[Outcome]int)
	}
	s.Counts[res.Outcome]++
}
