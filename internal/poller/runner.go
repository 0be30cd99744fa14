// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/fifo-watchdog/internal/channel"
)

// Run ensures and opens the channel, then polls until the runtime budget is
// spent or ctx ends. Every result is logged, counted and, if out is non-nil,
// forwarded on out. No single poll or read failure stops the loop.
//
// Only channel setup failures are returned.
func (p *Poller) Run(ctx context.Context, out chan<- Result) (sum Summary, err error) {
	start := p.now()
	sum = Summary{Started: start, Counts: make(map[Outcome]int)}
	defer func() { sum.Finished = p.now() }()

	p.log.Info("watchdog started",
		zap.Duration("runtime", p.cfg.Runtime),
		zap.Duration("poll_timeout", p.cfg.PollTimeout),
	)

	if err := p.EnsureChannel(); err != nil {
		p.log.Error("channel setup failed", zap.Error(err))
		return sum, err
	}

	r, err := p.Open()
	if err != nil {
		p.log.Error("channel open failed", zap.Error(err))
		return sum, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			p.log.Error("channel close failed", zap.Error(err))
		}
	}()

	errs := errorStreak{threshold: p.cfg.DegradedAfter}
	observe := func(res Result) {
		sum.record(res)
		p.report(res)

		degraded := errs.observe(res.Outcome)
		if degraded && !sum.Degraded {
			sum.Degraded = true
			p.log.Error("watchdog degraded: persistent poll errors", zap.Int("consecutive", errs.n))
		}
		p.metrics.SetDegraded(degraded)

		if out != nil {
			select {
			case out <- res:
			case <-ctx.Done():
			}
		}
	}

	for {
		elapsed := p.now().Sub(start)
		if elapsed >= p.cfg.Runtime {
			break
		}

		res, err := p.PollOnce(ctx, r, min(p.cfg.PollTimeout, p.cfg.Runtime-elapsed))
		if err != nil {
			p.log.Info("watchdog stopping", zap.NamedError("cause", err))
			break
		}
		observe(res)

		// POLLHUP stays raised on this handle until it is reopened.
		if res.Outcome == OutcomePeerClosed {
			r, err = p.reopen(ctx, r, start, observe)
			if err != nil {
				break
			}
		}
	}

	p.log.Info("watchdog finished",
		zap.Int("data_ready", sum.Counts[OutcomeDataReady]),
		zap.Int("timeouts", sum.Counts[OutcomeTimeout]),
		zap.Int("errors", sum.Counts[OutcomeError]),
		zap.Int("peer_closed", sum.Counts[OutcomePeerClosed]),
		zap.Bool("degraded", sum.Degraded),
	)
	return sum, nil
}

// reopen swaps r for a fresh read handle so a later writer can attach.
// Each failed open is an OutcomeError passed to observe, then retried once
// per poll timeout until the budget or ctx ends. The returned error is only
// ever a ctx or budget stop.
func (p *Poller) reopen(ctx context.Context, r *channel.Reader, start time.Time, observe func(Result)) (*channel.Reader, error) {
	if err := r.Close(); err != nil {
		p.log.Warn("closing hung-up handle failed", zap.Error(err))
	}

	for {
		nr, err := p.Open()
		if err == nil {
			p.log.Debug("read handle reopened")
			return nr, nil
		}
		observe(p.result(OutcomeError, 0, err))

		remaining := p.cfg.Runtime - p.now().Sub(start)
		if remaining <= 0 {
			return r, context.DeadlineExceeded
		}
		t := time.NewTimer(min(p.cfg.PollTimeout, remaining))
		select {
		case <-ctx.Done():
			t.Stop()
			return r, ctx.Err()
		case <-t.C:
		}
	}
}

func (p *Poller) report(res Result) {
	p.metrics.ObservePoll(res.Outcome.String(), res.Bytes)

	switch res.Outcome {
	case OutcomeTimeout:
		p.log.Warn("no heartbeat within poll timeout")
	case OutcomeDataReady:
		p.log.Info("heartbeat received", zap.Int("bytes", res.Bytes))
	case OutcomePeerClosed:
		p.log.Info("writer closed its end")
	case OutcomeError:
		p.log.Error("poll failed",
			zap.Stringer("kind", channel.KindOf(res.Err)),
			zap.Error(res.Err),
		)
	}
}

// errorStreak counts consecutive OutcomeError results.
type errorStreak struct {
	threshold int
	n         int
}

// observe folds in one outcome and reports whether the streak has reached the threshold.
func (s *errorStreak) observe(o Outcome) bool {
	if o == OutcomeError {
		s.n++
	} else {
		s.n = 0
	}
	return s.n >= s.threshold
}
