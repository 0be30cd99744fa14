// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Channel       ChannelConfig       `yaml:"channel"`
	Watchdog      WatchdogConfig      `yaml:"watchdog"`
	Worker        WorkerConfig        `yaml:"worker"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
	Status        StatusConfig        `yaml:"status"`
}

// ---- CHANNEL ----

type ChannelConfig struct {
	Path        string `yaml:"path"`
	Permissions uint32 `yaml:"permissions"`
}

// ---- WATCHDOG (reader) ----

type WatchdogConfig struct {
	PollTimeoutMs       int `yaml:"poll_timeout_ms"`
	RuntimeMs           int `yaml:"runtime_ms"`
	ReadBufferSize      int `yaml:"read_buffer_size"`
	DegradedAfterErrors int `yaml:"degraded_after_errors"`
}

// ---- WORKER (heartbeat writer) ----

type WorkerConfig struct {
	WaitIntervalMs int `yaml:"wait_interval_ms"`
	WaitAttempts   int `yaml:"wait_attempts"`
	OpenTimeoutMs  int `yaml:"open_timeout_ms"`
	CadenceMs      int `yaml:"cadence_ms"`
	RuntimeMs      int `yaml:"runtime_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ---- OBSERVABILITY ----

type ObservabilityConfig struct {
	// Empty disables the /metrics and /healthz server.
	ListenAddress string `yaml:"listen_address"`
}

// ---- STATUS EXPORT (optional, opt-in) ----

type StatusConfig struct {
	// Modbus TCP endpoint receiving the health block. Empty disables export.
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	Name      string `yaml:"name"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Default returns the stock timings: a 10 s budget on both sides, a 10 s
// poll timeout, a heartbeat every 2 s, and a 10 x 5 ms wait for the channel.
func Default() Config {
	return Config{
		Channel: ChannelConfig{
			Path:        "/tmp/obsw-watchdog",
			Permissions: 0o666,
		},
		Watchdog: WatchdogConfig{
			PollTimeoutMs:       10000,
			RuntimeMs:           10000,
			ReadBufferSize:      128,
			DegradedAfterErrors: 3,
		},
		Worker: WorkerConfig{
			WaitIntervalMs: 5,
			WaitAttempts:   10,
			OpenTimeoutMs:  1000,
			CadenceMs:      2000,
			RuntimeMs:      10000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Status: StatusConfig{
			UnitID:    1,
			Name:      "obsw-watchdog",
			TimeoutMs: 1000,
		},
	}
}

// Load reads a YAML file over Default(). An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func (w WatchdogConfig) PollTimeout() time.Duration { return ms(w.PollTimeoutMs) }
func (w WatchdogConfig) Runtime() time.Duration     { return ms(w.RuntimeMs) }

func (w WorkerConfig) WaitInterval() time.Duration { return ms(w.WaitIntervalMs) }
func (w WorkerConfig) OpenTimeout() time.Duration  { return ms(w.OpenTimeoutMs) }
func (w WorkerConfig) Cadence() time.Duration      { return ms(w.CadenceMs) }
func (w WorkerConfig) Runtime() time.Duration      { return ms(w.RuntimeMs) }

func (s StatusConfig) Enabled() bool          { return s.Endpoint != "" }
func (s StatusConfig) Timeout() time.Duration { return ms(s.TimeoutMs) }
