// internal/supervisor/supervisor.go
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	cfg "github.com/tamzrod/fifo-watchdog/internal/config"
	"github.com/tamzrod/fifo-watchdog/internal/poller"
	"github.com/tamzrod/fifo-watchdog/internal/status"
	"github.com/tamzrod/fifo-watchdog/internal/telemetry"
	"github.com/tamzrod/fifo-watchdog/internal/writer"
)

// Mode selects which endpoints a run starts.
type Mode string

const (
	ModeBoth     Mode = "both"
	ModeWatchdog Mode = "watchdog"
	ModeWorker   Mode = "worker"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBoth, ModeWatchdog, ModeWorker:
		return m, nil
	case "":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want both, watchdog or worker)", s)
	}
}

func (m Mode) watchdog() bool { return m == ModeBoth || m == ModeWatchdog }
func (m Mode) worker() bool   { return m == ModeBoth || m == ModeWorker }

// resultBuffer lets the watchdog keep polling while a status write is in flight.
const resultBuffer = 64

// Options carries the process-level collaborators of a run.
type Options struct {
	Mode   Mode
	Logger *zap.Logger

	// Registry receives the run's metrics and backs /metrics.
	// Nil uses a fresh registry.
	Registry *prometheus.Registry

	// StatusTick overrides the 1Hz seconds ticker (tests).
	StatusTick time.Duration

	// StatusWriter replaces the Modbus export built from cfg.Status.
	StatusWriter status.Writer
}

// Run starts the configured endpoints plus the status orchestrator and the
// observability server, waits for the endpoints and then stops the rest.
func Run(ctx context.Context, c cfg.Config, opts Options) Report {
	mode := opts.Mode
	if mode == "" {
		mode = ModeBoth
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	tick := opts.StatusTick
	if tick <= 0 {
		tick = time.Second
	}

	rep := Report{RunID: uuid.NewString(), Mode: mode}
	log = log.With(zap.String("run_id", rep.RunID))

	metrics := telemetry.NewPrometheusMetrics(reg)

	// --------------------
	// Build endpoints
	// --------------------

	var (
		p *poller.Poller
		w *writer.Writer
	)
	if mode.watchdog() {
		var err error
		if p, err = poller.Build(c, log, metrics); err != nil {
			rep.Err = fmt.Errorf("watchdog build failed: %w", err)
			return rep
		}
	}
	if mode.worker() {
		var err error
		if w, err = writer.Build(c, log, metrics); err != nil {
			rep.Err = fmt.Errorf("worker build failed: %w", err)
			return rep
		}
	}

	// --------------------
	// Auxiliaries: status + observability
	// --------------------

	auxCtx, stopAux := context.WithCancel(ctx)
	var aux sync.WaitGroup
	defer aux.Wait()
	defer stopAux()

	health := telemetry.NewHealthTracker()

	var results chan poller.Result
	if p != nil {
		statusWriter, closeStatus := opts.StatusWriter, func() error { return nil }
		if statusWriter == nil {
			var err error
			statusWriter, closeStatus, err = status.Build(c.Status)
			if err != nil {
				// Export is optional; the watchdog still runs.
				log.Error("status export unavailable", zap.String("endpoint", c.Status.Endpoint), zap.Error(err))
				statusWriter, closeStatus = nil, func() error { return nil }
			}
		}

		results = make(chan poller.Result, resultBuffer)
		o := &orchestrator{
			log:     log.With(zap.String("component", "status")),
			tracker: status.NewTracker(c.Watchdog.DegradedAfterErrors),
			writer:  statusWriter,
			health:  health,
			tick:    tick,
		}
		aux.Add(1)
		go func() {
			defer aux.Done()
			defer func() {
				if err := closeStatus(); err != nil {
					log.Warn("status export close failed", zap.Error(err))
				}
			}()
			o.run(auxCtx, results)
		}()
	}

	if addr := c.Observability.ListenAddress; addr != "" {
		aux.Add(1)
		go func() {
			defer aux.Done()
			err := telemetry.StartHTTPServer(auxCtx, telemetry.HTTPServerOptions{
				Addr:     addr,
				Health:   health,
				Registry: reg,
			}, log)
			if err != nil {
				log.Error("observability server error", zap.Error(err))
			}
		}()
	}

	// --------------------
	// Endpoints
	// --------------------

	log.Info("supervisor started", zap.String("mode", string(mode)), zap.String("path", c.Channel.Path))

	var endpoints sync.WaitGroup
	if p != nil {
		endpoints.Add(1)
		go func() {
			defer endpoints.Done()
			defer recoverInto("watchdog", &rep.WatchdogErr, log)

			sum, err := p.Run(ctx, results)
			rep.Watchdog, rep.WatchdogErr = &sum, err
		}()
	}
	if w != nil {
		endpoints.Add(1)
		go func() {
			defer endpoints.Done()
			defer recoverInto("worker", &rep.WorkerErr, log)

			sum, err := w.Run(ctx)
			rep.Worker, rep.WorkerErr = &sum, err
		}()
	}
	endpoints.Wait()

	log.Info("supervisor finished", zap.Int("exit_code", rep.ExitCode()), zap.NamedError("cause", rep.Error()))
	return rep
}

func recoverInto(endpoint string, dst *error, log *zap.Logger) {
	if v := recover(); v != nil {
		log.Error("endpoint panicked", zap.String("endpoint", endpoint), zap.Any("panic", v), zap.Stack("stack"))
		*dst = &PanicError{Endpoint: endpoint, Value: v}
	}
}
