// internal/status/builder.go
package status

import (
	cfg "github.com/tamzrod/fifo-watchdog/internal/config"
	smodbus "github.com/tamzrod/fifo-watchdog/internal/status/modbus"
)

// Build connects the Modbus status export if enabled.
// When status.endpoint is empty, it returns a nil Writer and a no-op closer.
func Build(c cfg.StatusConfig) (Writer, func() error, error) {
	if !c.Enabled() {
		return nil, func() error { return nil }, nil
	}

	cli, err := smodbus.NewEndpointClient(smodbus.Config{
		Endpoint: c.Endpoint,
		Timeout:  c.Timeout(),
	})
	if err != nil {
		return nil, nil, err
	}

	plan := Plan{
		Endpoint: c.Endpoint,
		UnitID:   c.UnitID,
		BaseSlot: c.BaseSlot,
		Name:     c.Name,
	}
	return NewBlockWriter(plan, cli), cli.Close, nil
}
