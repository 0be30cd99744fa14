// internal/writer/builder.go
package writer

import (
	"go.uber.org/zap"

	cfg "github.com/tamzrod/fifo-watchdog/internal/config"
	"github.com/tamzrod/fifo-watchdog/internal/telemetry"
)

// Build constructs the heartbeat writer from validated configuration.
func Build(c cfg.Config, log *zap.Logger, metrics telemetry.Metrics) (*Writer, error) {
	return New(
		Config{
			Path:         c.Channel.Path,
			WaitInterval: c.Worker.WaitInterval(),
			WaitAttempts: c.Worker.WaitAttempts,
			OpenTimeout:  c.Worker.OpenTimeout(),
			Cadence:      c.Worker.Cadence(),
			Runtime:      c.Worker.Runtime(),
		},
		log,
		metrics,
	)
}
