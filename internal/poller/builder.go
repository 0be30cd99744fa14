// internal/poller/builder.go
package poller

import (
	"os"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/fifo-watchdog/internal/config"
	"github.com/tamzrod/fifo-watchdog/internal/telemetry"
)

// Build constructs the watchdog endpoint from validated configuration.
func Build(c cfg.Config, log *zap.Logger, metrics telemetry.Metrics) (*Poller, error) {
	return New(
		Config{
			Path:          c.Channel.Path,
			Perm:          os.FileMode(c.Channel.Permissions),
			PollTimeout:   c.Watchdog.PollTimeout(),
			Runtime:       c.Watchdog.Runtime(),
			BufferSize:    c.Watchdog.ReadBufferSize,
			DegradedAfter: c.Watchdog.DegradedAfterErrors,
		},
		log,
		metrics,
	)
}
