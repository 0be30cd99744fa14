// internal/writer/runner.go
package writer

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Run waits for the channel, opens it and writes one heartbeat per cadence
// until the runtime budget (measured from the start of Run) is spent or ctx
// ends. Write failures are logged and counted; they do not stop the loop.
//
// A channel that never appears (KindNotReady) or cannot be opened
// (KindOpenFailed) abandons the run and is returned. Cancellation is a clean stop.
func (w *Writer) Run(ctx context.Context) (sum Summary, err error) {
	start := w.now()
	sum.Started = start
	defer func() { sum.Finished = w.now() }()

	w.log.Info("worker started",
		zap.Duration("runtime", w.cfg.Runtime),
		zap.Duration("cadence", w.cfg.Cadence),
	)

	if err := w.WaitForChannel(ctx); err != nil {
		if isCancel(err) {
			w.log.Info("worker stopping while waiting for channel", zap.NamedError("cause", err))
			return sum, nil
		}
		w.log.Error("channel never became ready, abandoning", zap.Error(err))
		return sum, err
	}

	w.log.Info("opening channel write-only")
	cw, err := w.Open(ctx)
	if err != nil {
		if isCancel(err) {
			w.log.Info("worker stopping while opening channel", zap.NamedError("cause", err))
			return sum, nil
		}
		w.log.Error("channel open failed", zap.Error(err))
		return sum, err
	}
	defer func() {
		if err := cw.Close(); err != nil {
			w.log.Error("channel close failed", zap.Error(err))
		}
	}()
	w.log.Info("channel opened")

	for w.now().Sub(start) < w.cfg.Runtime {
		sum.Attempts++

		n, err := w.EmitHeartbeat(cw)
		w.metrics.ObserveHeartbeat(err)
		switch {
		case err != nil:
			sum.Failures++
			w.log.Error("heartbeat write failed", zap.Error(err))
		case n > 0:
			sum.Written++
			w.log.Debug("heartbeat written")
		}

		if err := w.sleep(ctx, w.cfg.Cadence); err != nil {
			w.log.Info("worker stopping", zap.NamedError("cause", err))
			break
		}
	}

	w.log.Info("worker finished",
		zap.Int("attempts", sum.Attempts),
		zap.Int("written", sum.Written),
		zap.Int("failures", sum.Failures),
	)
	return sum, nil
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
