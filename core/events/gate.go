package events

const (
	// TypeGateRequested records a fresh entropy request being issued.
	TypeGateRequested = "gate.requested"
	// TypeGateFulfilled records a delivered entropy word.
	TypeGateFulfilled = "gate.fulfilled"
	// TypeGateNudged records a paid perturbation queued against the next word.
	TypeGateNudged = "gate.nudged"
	// TypeGateRotated records an emergency provider rotation.
	TypeGateRotated = "gate.providerRotated"
)

// GateRequested captures a new outstanding entropy request.
type GateRequested struct {
	RequestID uint64
	DayIndex  uint64
	Retry     bool
}

func (GateRequested) EventType() string { return TypeGateRequested }

// GateFulfilled captures the delivery of an entropy word, including how many
// queued nudges perturbed it.
type GateFulfilled struct {
	RequestID uint64
	DayIndex  uint64
	Word      [32]byte
	Nudges    uint64
}

func (GateFulfilled) EventType() string { return TypeGateFulfilled }

// GateNudged captures a paid nudge and the fee burned for it.
type GateNudged struct {
	Player [20]byte
	Queued uint64
	Fee    string
}

func (GateNudged) EventType() string { return TypeGateNudged }

// GateRotated captures an emergency oracle rotation performed during a stall.
type GateRotated struct {
	OldProvider [20]byte
	NewProvider [20]byte
	DayIndex    uint64
}

func (GateRotated) EventType() string { return TypeGateRotated }
