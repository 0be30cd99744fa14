// internal/supervisor/report.go
package supervisor

import (
	"errors"
	"fmt"

	"github.com/tamzrod/fifo-watchdog/internal/channel"
	"github.com/tamzrod/fifo-watchdog/internal/poller"
	"github.com/tamzrod/fifo-watchdog/internal/writer"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitUnexpected = 1
	ExitSetup      = 2
	ExitDegraded   = 3
)

// PanicError reports an endpoint goroutine that panicked.
type PanicError struct {
	Endpoint string
	Value    any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: unexpected termination: %v", e.Endpoint, e.Value)
}

// Report is the joined outcome of one supervised run.
// A nil summary means that endpoint was not started.
type Report struct {
	RunID string
	Mode  Mode

	Watchdog    *poller.Summary
	WatchdogErr error

	Worker    *writer.Summary
	WorkerErr error

	// Err is set when the run could not start at all.
	Err error
}

// ExitCode maps the report to a process exit status.
// Setup failures win over degradation; anything unclassified is unexpected.
func (r Report) ExitCode() int {
	code := ExitOK
	for _, err := range []error{r.Err, r.WatchdogErr, r.WorkerErr} {
		if err == nil {
			continue
		}
		if !isSetupFailure(err) {
			return ExitUnexpected
		}
		code = ExitSetup
	}
	if code != ExitOK {
		return code
	}
	if r.Watchdog != nil && r.Watchdog.Degraded {
		return ExitDegraded
	}
	return ExitOK
}

// Error joins every endpoint error, or returns nil for a clean run.
func (r Report) Error() error {
	var errs []error
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	if r.WatchdogErr != nil {
		errs = append(errs, fmt.Errorf("watchdog: %w", r.WatchdogErr))
	}
	if r.WorkerErr != nil {
		errs = append(errs, fmt.Errorf("worker: %w", r.WorkerErr))
	}
	return errors.Join(errs...)
}

func isSetupFailure(err error) bool {
	switch channel.KindOf(err) {
	case channel.KindCreateFailed, channel.KindOpenFailed, channel.KindNotReady:
		return true
	default:
		return false
	}
}
