// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// statusBlockSize mirrors the fixed health block size (status.SlotsPerBlock).
const statusBlockSize = 20

// MaxStatusBaseSlot is the last base slot whose block still fits below register 65536.
const MaxStatusBaseSlot = (65536 - statusBlockSize) / statusBlockSize

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	var err error

	// ------------------------------------------------------------
	// CHANNEL
	// ------------------------------------------------------------

	if cfg.Channel.Path == "" {
		err = errors.Join(err, errors.New("channel.path is required"))
	} else if !filepath.IsAbs(cfg.Channel.Path) {
		err = errors.Join(err, fmt.Errorf("channel.path %q must be absolute", cfg.Channel.Path))
	}
	if cfg.Channel.Permissions == 0 {
		err = errors.Join(err, errors.New("channel.permissions must not be 0"))
	} else if cfg.Channel.Permissions > 0o777 {
		err = errors.Join(err, fmt.Errorf("channel.permissions %#o has bits outside 0777", cfg.Channel.Permissions))
	}

	// ------------------------------------------------------------
	// WATCHDOG
	// ------------------------------------------------------------

	if cfg.Watchdog.PollTimeoutMs <= 0 {
		err = errors.Join(err, errors.New("watchdog.poll_timeout_ms must be > 0"))
	}
	if cfg.Watchdog.RuntimeMs <= 0 {
		err = errors.Join(err, errors.New("watchdog.runtime_ms must be > 0"))
	}
	if cfg.Watchdog.ReadBufferSize <= 0 {
		err = errors.Join(err, errors.New("watchdog.read_buffer_size must be > 0"))
	}
	if cfg.Watchdog.DegradedAfterErrors <= 0 {
		err = errors.Join(err, errors.New("watchdog.degraded_after_errors must be > 0"))
	}

	// ------------------------------------------------------------
	// WORKER
	// ------------------------------------------------------------

	if cfg.Worker.WaitIntervalMs <= 0 {
		err = errors.Join(err, errors.New("worker.wait_interval_ms must be > 0"))
	}
	if cfg.Worker.WaitAttempts <= 0 {
		err = errors.Join(err, errors.New("worker.wait_attempts must be > 0"))
	}
	if cfg.Worker.OpenTimeoutMs < 0 {
		err = errors.Join(err, errors.New("worker.open_timeout_ms must be >= 0"))
	}
	if cfg.Worker.CadenceMs <= 0 {
		err = errors.Join(err, errors.New("worker.cadence_ms must be > 0"))
	}
	if cfg.Worker.RuntimeMs <= 0 {
		err = errors.Join(err, errors.New("worker.runtime_ms must be > 0"))
	}

	// ------------------------------------------------------------
	// STATUS EXPORT (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Status.Enabled() {
		if cfg.Status.TimeoutMs <= 0 {
			err = errors.Join(err, errors.New("status.timeout_ms must be > 0 when status.endpoint is set"))
		}
		if cfg.Status.BaseSlot > MaxStatusBaseSlot {
			err = errors.Join(err, fmt.Errorf("status.base_slot %d exceeds %d (block would pass register 65535)",
				cfg.Status.BaseSlot, MaxStatusBaseSlot))
		}
		for i := 0; i < len(cfg.Status.Name); i++ {
			if cfg.Status.Name[i] > 0x7F {
				err = errors.Join(err, errors.New("status.name must contain ASCII characters only"))
				break
			}
		}
	}

	return err
}
