// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/fifo-watchdog/internal/channel"
	"github.com/tamzrod/fifo-watchdog/internal/telemetry"
)

const openRetryInterval = 10 * time.Millisecond

// Writer is the worker side of the channel: it waits for the watchdog's
// channel and emits heartbeats at a fixed cadence for a bounded time.
type Writer struct {
	cfg     Config
	log     *zap.Logger
	metrics telemetry.Metrics

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	exists func(path string) bool
}

func New(cfg Config, log *zap.Logger, metrics telemetry.Metrics) (*Writer, error) {
	if cfg.Path == "" {
		return nil, errors.New("writer: channel path required")
	}
	if cfg.WaitInterval <= 0 {
		return nil, errors.New("writer: wait interval must be > 0")
	}
	if cfg.WaitAttempts <= 0 {
		return nil, errors.New("writer: wait attempts must be > 0")
	}
	if cfg.OpenTimeout < 0 {
		return nil, errors.New("writer: open timeout must be >= 0")
	}
	if cfg.Cadence <= 0 {
		return nil, errors.New("writer: cadence must be > 0")
	}
	if cfg.Runtime <= 0 {
		return nil, errors.New("writer: runtime must be > 0")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}

	return &Writer{
		cfg:     cfg,
		log:     log.With(zap.String("endpoint", "worker"), zap.String("path", cfg.Path)),
		metrics: metrics,
		now:     time.Now,
		sleep:   sleepCtx,
		exists:  channel.Exists,
	}, nil
}

// Open opens the channel for blocking writes, waiting at most OpenTimeout
// for the watchdog's reader to attach.
func (w *Writer) Open(ctx context.Context) (*channel.Writer, error) {
	return channel.OpenWriter(ctx, w.cfg.Path, w.cfg.OpenTimeout, openRetryInterval)
}

// EmitHeartbeat writes one marker byte and returns the bytes written.
func (w *Writer) EmitHeartbeat(cw *channel.Writer) (int, error) {
	n, err := cw.Write([]byte{Marker})
	if err != nil {
		return n, err
	}
	if n == 0 {
		w.log.Warn("heartbeat write transferred zero bytes")
	}
	return n, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
