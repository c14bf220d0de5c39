package gate

import "math/big"

// RetryAfterSeconds is how long an outstanding request may stay unfulfilled
// before the gate issues a fresh one.
const RetryAfterSeconds int64 = 18 * 60 * 60

// StallDays is the number of consecutive day-indices without a recorded word
// after which the gate reports itself stalled.
const StallDays uint64 = 3

// MaxNudges bounds the offset applied to a delivered word so a paid nudge can
// never steer entropy by more than a small constant.
const MaxNudges uint64 = 32

// Request tracks the single outstanding entropy request. At most one exists
// at a time.
type Request struct {
	ID          uint64
	DayIndex    uint64
	RequestedAt int64
	Fulfilled   bool
	Word        [32]byte
}

// Clone returns a copy to protect internal references.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// Meta carries the gate bookkeeping that survives between requests.
type Meta struct {
	// Locked is set at issue and cleared at consumption. Direct re-requests
	// abort while it is set inside the retry window.
	Locked bool
	// NextID seeds request identifiers.
	NextID uint64
	// Provider is the oracle identity expected on fulfillment callbacks.
	Provider [20]byte
	// NudgeQueue counts paid perturbations queued against the next word.
	NudgeQueue uint64
	// LastWordDay is the most recent day-index with a recorded word.
	LastWordDay uint64
	// ConsumedDay is the last day-index whose word was handed out; unlock
	// happens exactly once per day-index.
	ConsumedDay uint64
}

// Clone returns a copy to protect internal references.
func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

// Config holds the tunables for the gate.
type Config struct {
	// BaseNudgeFee is the cost of the first queued nudge; each further queued
	// nudge doubles it. The fee resets after fulfillment.
	BaseNudgeFee *big.Int
	// EmergencyAuthority is the only identity allowed to rotate the provider,
	// and only while the gate is stalled.
	EmergencyAuthority [20]byte
}

// DefaultConfig returns a gate configuration with a 1-unit base nudge fee.
func DefaultConfig() Config {
	return Config{BaseNudgeFee: big.NewInt(1_000_000_000)}
}
