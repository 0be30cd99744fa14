// internal/status/writer_test.go
package status

import (
	"errors"
	"testing"

	"github.com/tamzrod/fifo-watchdog/internal/config"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	lastUnit     uint8
	lastRegsAddr uint16
	lastRegs     []uint16
	writes       int
	failNext     bool
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.failNext {
		f.failNext = false
		return errors.New("link down")
	}
	f.writes++
	f.lastUnit = unitID
	f.lastRegsAddr = addr
	f.lastRegs = append([]uint16(nil), regs...)
	return nil
}

func testPlan() Plan {
	return Plan{
		Endpoint: "status-endpoint",
		UnitID:   7,
		BaseSlot: 2,
		Name:     "OBSW-01",
	}
}

// ---- tests ----

func TestNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()
	sw := NewBlockWriter(plan, cli)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(Snapshot{Health: HealthOK, LastOutcome: OutcomeDataReady, Heartbeats: 1}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != SlotsPerBlock {
		t.Fatalf("expected full block write (%d regs), got %d", SlotsPerBlock, len(cli.lastRegs))
	}
	if cli.lastRegsAddr != plan.BaseSlot*SlotsPerBlock {
		t.Fatalf("unexpected base addr: got=%d want=%d", cli.lastRegsAddr, plan.BaseSlot*SlotsPerBlock)
	}
	if cli.lastUnit != plan.UnitID {
		t.Fatalf("unexpected unit id: got=%d want=%d", cli.lastUnit, plan.UnitID)
	}

	expectedNameRegs := EncodeName(plan.Name)
	for i := 0; i < SlotNameSlots; i++ {
		slot := SlotNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf("name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(Snapshot{Health: HealthStale, LastOutcome: OutcomeTimeout, Heartbeats: 1}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.lastRegs) == SlotsPerBlock {
		t.Fatalf("name should not be rewritten on incremental update")
	}
	if cli.writes != 3 {
		t.Fatalf("expected full + 2 slot writes, got %d writes", cli.writes)
	}
}

func TestSecondsResetOnHeartbeat(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()
	sw := NewBlockWriter(plan, cli)

	if err := sw.WriteStatus(Snapshot{Health: HealthStale, LastOutcome: OutcomeTimeout, SecondsSinceHeartbeat: 12}); err != nil {
		t.Fatalf("stale snapshot write failed: %v", err)
	}
	if err := sw.WriteStatus(Snapshot{Health: HealthStale, LastOutcome: OutcomeTimeout, SecondsSinceHeartbeat: 0}); err != nil {
		t.Fatalf("reset snapshot write failed: %v", err)
	}

	expectedAddr := plan.BaseSlot*SlotsPerBlock + SlotSecondsSinceHeartbeat
	if cli.lastRegsAddr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastRegsAddr, expectedAddr)
	}
	if len(cli.lastRegs) != 1 || cli.lastRegs[0] != 0 {
		t.Fatalf("seconds_since_heartbeat not reset: got=%v", cli.lastRegs)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewBlockWriter(testPlan(), cli)

	if err := sw.WriteStatus(Snapshot{Health: HealthOK}); err != nil {
		t.Fatalf("initial write failed: %v", err)
	}

	cli.failNext = true
	if err := sw.WriteStatus(Snapshot{Health: HealthError, LastOutcome: OutcomeError}); err == nil {
		t.Fatalf("expected error, got nil")
	}

	if err := sw.WriteStatus(Snapshot{Health: HealthError, LastOutcome: OutcomeError}); err != nil {
		t.Fatalf("re-assert failed: %v", err)
	}
	if len(cli.lastRegs) != SlotsPerBlock {
		t.Fatalf("expected full block after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestMissingClient(t *testing.T) {
	sw := NewBlockWriter(testPlan(), nil)
	if err := sw.WriteStatus(Snapshot{}); err == nil {
		t.Fatalf("expected error for missing client")
	}
}

func TestBaseSlotOutOfRange(t *testing.T) {
	cli := &fakeEndpointClient{}

	plan := testPlan()
	plan.BaseSlot = 3277
	if err := NewBlockWriter(plan, cli).WriteStatus(Snapshot{}); err == nil {
		t.Fatalf("expected error for base slot past register space")
	}
	if cli.writes != 0 {
		t.Fatalf("nothing should be written, got %d writes", cli.writes)
	}

	plan.BaseSlot = 3275
	if err := NewBlockWriter(plan, cli).WriteStatus(Snapshot{}); err != nil {
		t.Fatalf("last fitting base slot failed: %v", err)
	}
	if cli.lastRegsAddr != 65500 {
		t.Fatalf("unexpected base addr: got=%d want=65500", cli.lastRegsAddr)
	}
}

func TestConfigBaseSlotBoundMatchesBlock(t *testing.T) {
	if config.MaxStatusBaseSlot != (1<<16-SlotsPerBlock)/SlotsPerBlock {
		t.Fatalf("config bound %d out of step with %d-slot blocks", config.MaxStatusBaseSlot, SlotsPerBlock)
	}
}

func TestEncodeName_TruncatesAndSanitizes(t *testing.T) {
	regs := EncodeName("ab\x01cdefghijklmnopqrstuvwxyz")
	if len(regs) != SlotNameSlots {
		t.Fatalf("expected %d regs, got %d", SlotNameSlots, len(regs))
	}
	if regs[0] != uint16('a')<<8|uint16('b') {
		t.Fatalf("first reg: got %#04x", regs[0])
	}
	if regs[1] != uint16('?')<<8|uint16('c') {
		t.Fatalf("control char not sanitized: got %#04x", regs[1])
	}
	if regs[7] != uint16('n')<<8|uint16('o') {
		t.Fatalf("last reg: got %#04x", regs[7])
	}
}
