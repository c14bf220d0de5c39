package batch

// Status tracks the lifecycle of a resumable task instance.
type Status uint8

const (
	// StatusIdle marks a cursor that has not been armed yet.
	StatusIdle Status = iota
	// StatusArmed marks a cursor whose task performed one-time setup and is
	// processing windows.
	StatusArmed
	// StatusDone marks a cursor whose task ran teardown. Further steps are
	// no-ops until the cursor is reset for a new instance.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusArmed:
		return "armed"
	case StatusDone:
		return "done"
	}
	return "unknown"
}

// Cursor is the durable position of a resumable task. Everything a task
// instance needs to survive between invocations lives here; nothing is kept
// in memory across calls.
type Cursor struct {
	Status Status
	// Pos is the next unprocessed position in [0, Size).
	Pos uint64
	// Size is the population snapshot taken at arm time.
	Size uint64
	// Step is the window width chosen at arm time. Callers may override it
	// per invocation but the armed value is the default.
	Step uint64
	// Round stamps the owning round so a cursor armed for one round can
	// never be driven against another round's population.
	Round uint64
}

// Idle reports whether the cursor has not been armed.
func (c Cursor) Idle() bool { return c.Status == StatusIdle }

// Done reports whether the task instance completed teardown.
func (c Cursor) Done() bool { return c.Status == StatusDone }

// Reset returns the cursor to the idle sentinel so a fresh task instance can
// be armed. The round stamp is cleared with it.
func (c *Cursor) Reset() {
	*c = Cursor{}
}
