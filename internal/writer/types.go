// internal/writer/types.go
package writer

import "time"

// Marker is the heartbeat byte. Only its arrival matters, not its value.
const Marker byte = 'a'

// Config is the minimal runtime config the heartbeat writer needs.
type Config struct {
	Path string

	// Startup wait for the watchdog to create the channel.
	WaitInterval time.Duration
	WaitAttempts int

	// Upper bound on waiting for a reader when opening.
	OpenTimeout time.Duration

	Cadence time.Duration
	Runtime time.Duration
}

// Summary describes one finished Run.
type Summary struct {
	Started  time.Time
	Finished time.Time

	Attempts int // heartbeat writes tried
	Written  int // writes that transferred the marker
	Failures int
}
