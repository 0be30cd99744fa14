// internal/status/constants.go
package status

// Health block layout constants.
// These values define the exported register layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of registers in one health block.
const SlotsPerBlock = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the watchdog's view of worker health.
const SlotHealthCode = 0

// SlotLastOutcome holds the code of the most recent poll outcome.
const SlotLastOutcome = 1

// SlotSecondsSinceHeartbeat counts seconds since a heartbeat was last read.
const SlotSecondsSinceHeartbeat = 2

// SlotHeartbeats holds the number of heartbeat bytes read (wraps at 65536).
const SlotHeartbeats = 3

// ---- RESERVED RANGE ----

// Slots 4–10 are reserved for future use.
const SlotReservedStart = 4
const SlotReservedEnd = 10

// ---- NAME ----

// SlotNameStart is the first slot used for the block name.
// The name always sits at the END of the block.
const SlotNameStart = 11

// SlotNameSlots is the number of slots reserved for the name.
const SlotNameSlots = 8

// SlotNameEnd is the last slot used for the name (inclusive).
const SlotNameEnd = SlotNameStart + SlotNameSlots - 1

// ---- LIMITS ----

// NameMaxChars is the maximum number of ASCII characters stored for the name.
const NameMaxChars = 16

// MaxSeconds is where SlotSecondsSinceHeartbeat saturates.
const MaxSeconds = 65535

// ---- HEALTH CODES ----

// HealthUnknown: no poll has completed yet.
const HealthUnknown uint16 = 0

// HealthOK: the last heartbeat-bearing poll saw data.
const HealthOK uint16 = 1

// HealthError: the last poll failed.
const HealthError uint16 = 2

// HealthStale: the last poll timed out without a heartbeat.
const HealthStale uint16 = 3

// HealthDegraded: poll errors persisted past the configured threshold.
const HealthDegraded uint16 = 4

// ---- OUTCOME CODES ----

// OutcomeNone means no poll has completed yet; the rest mirror poll outcomes.
const (
	OutcomeNone       uint16 = 0
	OutcomeTimeout    uint16 = 1
	OutcomeDataReady  uint16 = 2
	OutcomeError      uint16 = 3
	OutcomePeerClosed uint16 = 4
)

// HealthName returns the lowercase name used in /healthz.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	case HealthDegraded:
		return "degraded"
	default:
		return "starting"
	}
}
