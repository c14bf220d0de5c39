package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrRoundMismatch is returned when a cursor armed for one round is
	// stepped against a task owned by another round. This indicates a logic
	// defect in the caller, not a liveness condition.
	ErrRoundMismatch = errors.New("batch: cursor round mismatch")
	// ErrZeroPopulation is reserved for tasks that must not arm empty.
	ErrZeroPopulation = errors.New("batch: task population is zero")
)

const (
	// StepWinners is the default window for payout-bearing passes. Winning
	// positions do more ledger work per entry, so the window stays small.
	StepWinners uint64 = 50
	// StepLosers is the default window for forfeiting passes, deliberately
	// larger so loss rounds clear backlog faster.
	StepLosers uint64 = 500
)

// Task is one resumable unit of settlement work over a fixed population.
// Arm runs exactly once per instance and returns the population size; Process
// handles positions [start, end); Finish runs exactly once after the cursor
// reaches the population size.
type Task interface {
	// Arm performs one-time setup: snapshot the population, derive any
	// randomized offsets from the round entropy word, and pay headline
	// amounts. It returns the population size.
	Arm(word [32]byte) (uint64, error)
	// Process settles positions [start, end). It must be safe under the
	// all-or-nothing invocation model: either every write in the window
	// lands or the whole invocation aborts.
	Process(start, end uint64) error
	// Finish performs one-time teardown (queue resets, completion signals).
	Finish() error
}

// Progress reports what a single Step invocation accomplished.
type Progress struct {
	// Worked is the number of positions processed in this invocation.
	Worked uint64
	// Done is true once teardown ran (or had already run).
	Done bool
}

// Step drives one bounded invocation of task against cursor. budget == 0
// uses the window width stamped on the cursor at arm time. The arming
// invocation also processes the first window, so a population of N at width W
// drains in ceil(N/W) invocations. The returned cursor must be persisted by
// the caller before any gated action proceeds; correctness is owned by the
// durable cursor, never by call scheduling.
func Step(cursor Cursor, task Task, round uint64, word [32]byte, budget uint64) (Cursor, Progress, error) {
	switch cursor.Status {
	case StatusDone:
		// Re-invocation after completion is a no-op.
		return cursor, Progress{Done: true}, nil
	case StatusIdle:
		size, err := task.Arm(word)
		if err != nil {
			return cursor, Progress{}, fmt.Errorf("batch arm: %w", err)
		}
		cursor.Status = StatusArmed
		cursor.Pos = 0
		cursor.Size = size
		cursor.Round = round
		if cursor.Step == 0 {
			cursor.Step = StepWinners
		}
		return processWindow(cursor, task, budget)
	case StatusArmed:
		if cursor.Round != round {
			return cursor, Progress{}, ErrRoundMismatch
		}
		return processWindow(cursor, task, budget)
	}
	return cursor, Progress{}, fmt.Errorf("batch: invalid cursor status %d", cursor.Status)
}

// processWindow settles one window starting at the cursor position and runs
// teardown once the population is exhausted.
func processWindow(cursor Cursor, task Task, budget uint64) (Cursor, Progress, error) {
	step := cursor.Step
	if budget > 0 {
		step = budget
	}
	end := cursor.Pos + step
	if end > cursor.Size || end < cursor.Pos {
		end = cursor.Size
	}
	if end > cursor.Pos {
		if err := task.Process(cursor.Pos, end); err != nil {
			return cursor, Progress{}, fmt.Errorf("batch process [%d,%d): %w", cursor.Pos, end, err)
		}
	}
	worked := end - cursor.Pos
	cursor.Pos = end
	if cursor.Pos >= cursor.Size {
		if err := task.Finish(); err != nil {
			return cursor, Progress{}, fmt.Errorf("batch finish: %w", err)
		}
		cursor.Status = StatusDone
		return cursor, Progress{Worked: worked, Done: true}, nil
	}
	return cursor, Progress{Worked: worked}, nil
}

// StartOffset derives a deterministic starting offset in [0, size) from the
// round entropy word so repeated populations are not always settled in the
// same order.
func StartOffset(word [32]byte, size uint64) uint64 {
	if size == 0 {
		return 0
	}
	var acc uint64
	for i := 0; i < 8; i++ {
		acc = acc<<8 | uint64(word[i])
	}
	return acc % size
}
