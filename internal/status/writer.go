// internal/status/writer.go
package status

import (
	"errors"
	"fmt"
	"strings"
)

// Writer is the delivery-only contract for health snapshots.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type Writer interface {
	WriteStatus(s Snapshot) error
}

// endpointClient is the exact register contract the block writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Plan locates one health block in remote holding-register memory.
type Plan struct {
	Endpoint string
	UnitID   uint8
	BaseSlot uint16
	Name     string
}

// blockWriter delivers snapshots into one health block.
type blockWriter struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     Snapshot
}

// NewBlockWriter builds a writer for plan over cli.
func NewBlockWriter(plan Plan, cli endpointClient) Writer {
	return &blockWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
	}
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (bw *blockWriter) WriteStatus(s Snapshot) error {
	if bw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", bw.plan.Endpoint)
	}

	base, err := bw.baseAddr()
	if err != nil {
		return err
	}

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if bw.needFull {
		if err := bw.cli.WriteRegisters(bw.plan.UnitID, base, Encode(s, bw.plan.Name)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		bw.needFull = false
		bw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: changed live slots only
	// ------------------------------------------------------------
	slots := []struct {
		name string
		slot uint16
		cur  *uint16
		want uint16
	}{
		{"health", SlotHealthCode, &bw.last.Health, s.Health},
		{"last_outcome", SlotLastOutcome, &bw.last.LastOutcome, s.LastOutcome},
		{"seconds_since_heartbeat", SlotSecondsSinceHeartbeat, &bw.last.SecondsSinceHeartbeat, s.SecondsSinceHeartbeat},
		{"heartbeats", SlotHeartbeats, &bw.last.Heartbeats, s.Heartbeats},
	}

	var errs []string
	for _, sl := range slots {
		if *sl.cur == sl.want {
			continue
		}
		if err := bw.cli.WriteRegisters(bw.plan.UnitID, base+sl.slot, []uint16{sl.want}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", sl.slot, sl.name, err))
			continue
		}
		*sl.cur = sl.want
	}

	if len(errs) > 0 {
		// Partial failure leaves remote memory unknown; re-assert next time.
		bw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

// baseAddr is the first register of the block. Each block owns a fixed
// SlotsPerBlock range, which must end at or below register 65535.
func (bw *blockWriter) baseAddr() (uint16, error) {
	base := int(bw.plan.BaseSlot) * SlotsPerBlock
	if base+SlotsPerBlock > 1<<16 {
		return 0, fmt.Errorf("status writer: base slot %d puts the block past register 65535", bw.plan.BaseSlot)
	}
	return uint16(base), nil
}
