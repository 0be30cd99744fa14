// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/fifo-watchdog/internal/channel"
	"github.com/tamzrod/fifo-watchdog/internal/telemetry"
)

// cancelCheckInterval bounds how long a single poll(2) call may block,
// which is also the worst-case latency for honoring ctx cancellation.
const cancelCheckInterval = 100 * time.Millisecond

var errPollCondition = errors.New("poll reported an error condition")

// Config is the minimal runtime config the watchdog needs.
type Config struct {
	Path          string
	Perm          os.FileMode // 0 means channel.DefaultPerm
	PollTimeout   time.Duration
	Runtime       time.Duration
	BufferSize    int
	DegradedAfter int
}

// Poller is the watchdog side of the channel: it owns channel creation and
// observes heartbeats through a non-blocking read handle.
type Poller struct {
	cfg     Config
	log     *zap.Logger
	metrics telemetry.Metrics
	buf     []byte

	now func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, log *zap.Logger, metrics telemetry.Metrics) (*Poller, error) {
	if cfg.Path == "" {
		return nil, errors.New("poller: channel path required")
	}
	if cfg.PollTimeout <= 0 {
		return nil, errors.New("poller: poll timeout must be > 0")
	}
	if cfg.Runtime <= 0 {
		return nil, errors.New("poller: runtime must be > 0")
	}
	if cfg.BufferSize <= 0 {
		return nil, errors.New("poller: buffer size must be > 0")
	}
	if cfg.DegradedAfter <= 0 {
		return nil, errors.New("poller: degraded threshold must be > 0")
	}
	if cfg.Perm == 0 {
		cfg.Perm = channel.DefaultPerm
	}
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}

	return &Poller{
		cfg:     cfg,
		log:     log.With(zap.String("endpoint", "watchdog"), zap.String("path", cfg.Path)),
		metrics: metrics,
		buf:     make([]byte, cfg.BufferSize),
		now:     time.Now,
	}, nil
}

// EnsureChannel creates the channel unless a FIFO already exists at the path.
func (p *Poller) EnsureChannel() error {
	created, err := channel.Ensure(p.cfg.Path, p.cfg.Perm)
	if err != nil {
		return err
	}
	if created {
		p.log.Info("channel created", zap.Stringer("perm", p.cfg.Perm))
	} else {
		p.log.Debug("channel already present")
	}
	return nil
}

// Open opens the channel for non-blocking reads.
func (p *Poller) Open() (*channel.Reader, error) {
	return channel.OpenReader(p.cfg.Path)
}

// PollOnce waits at most timeout for activity on r and classifies it.
// The returned error is non-nil only when ctx ended first; every channel
// failure is reported as OutcomeError inside the Result.
func (p *Poller) PollOnce(ctx context.Context, r *channel.Reader, timeout time.Duration) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	deadline := time.Now().Add(timeout)
	for {
		slice := min(time.Until(deadline), cancelCheckInterval)

		rd, err := r.Poll(slice)
		if err != nil {
			return p.result(OutcomeError, 0, err), nil
		}
		if rd.Ready {
			return p.classify(r, rd), nil
		}
		if !time.Now().Before(deadline) {
			return p.result(OutcomeTimeout, 0, nil), nil
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
	}
}

// classify inspects readiness in priority order: data, error, hang-up.
func (p *Poller) classify(r *channel.Reader, rd channel.Readiness) Result {
	switch {
	case rd.Readable():
		n, err := r.Read(p.buf)
		if err != nil {
			return p.result(OutcomeError, 0, err)
		}
		return p.result(OutcomeDataReady, n, nil)

	case rd.Errored():
		return p.result(OutcomeError, 0, &channel.Error{
			Kind: channel.KindReadFailed, Op: "poll", Path: r.Path(), Err: errPollCondition,
		})

	case rd.HungUp():
		return p.result(OutcomePeerClosed, 0, nil)

	default:
		return p.result(OutcomeError, 0, &channel.Error{
			Kind: channel.KindPollUnknown, Op: "poll", Path: r.Path(),
			Err: fmt.Errorf("unexpected revents %#x", uint16(rd.Events)),
		})
	}
}

func (p *Poller) result(o Outcome, n int, err error) Result {
	return Result{Outcome: o, At: p.now(), Bytes: n, Err: err}
}
