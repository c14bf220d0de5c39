package batch

import (
	"errors"
	"testing"
)

type recordingTask struct {
	size      uint64
	armed     int
	finished  int
	processed map[uint64]int
	armErr    error
}

func newRecordingTask(size uint64) *recordingTask {
	return &recordingTask{size: size, processed: make(map[uint64]int)}
}

func (t *recordingTask) Arm([32]byte) (uint64, error) {
	t.armed++
	if t.armErr != nil {
		return 0, t.armErr
	}
	return t.size, nil
}

func (t *recordingTask) Process(start, end uint64) error {
	for i := start; i < end; i++ {
		t.processed[i]++
	}
	return nil
}

func (t *recordingTask) Finish() error {
	t.finished++
	return nil
}

func drain(t *testing.T, task Task, budget uint64) (Cursor, int) {
	t.Helper()
	cursor := Cursor{Step: budget}
	calls := 0
	for {
		next, progress, err := Step(cursor, task, 7, [32]byte{}, 0)
		if err != nil {
			t.Fatalf("step %d: %v", calls, err)
		}
		cursor = next
		calls++
		if progress.Done {
			return cursor, calls
		}
		if calls > 10000 {
			t.Fatalf("task never completed")
		}
	}
}

func TestStepDrainsQueueInExactInvocations(t *testing.T) {
	task := newRecordingTask(4800)
	cursor, calls := drain(t, task, 500)

	// The arming call processes the first window, so 4800 positions at
	// width 500 drain in exactly ten invocations.
	if calls != 10 {
		t.Fatalf("expected 10 invocations, got %d", calls)
	}
	if !cursor.Done() {
		t.Fatalf("cursor not done: %v", cursor.Status)
	}
	if task.armed != 1 || task.finished != 1 {
		t.Fatalf("arm/finish ran %d/%d times", task.armed, task.finished)
	}
	for i := uint64(0); i < 4800; i++ {
		if task.processed[i] != 1 {
			t.Fatalf("position %d processed %d times", i, task.processed[i])
		}
	}

	// The invocation after completion is a no-op.
	next, progress, err := Step(cursor, task, 7, [32]byte{}, 0)
	if err != nil {
		t.Fatalf("post-drain step: %v", err)
	}
	if !progress.Done || progress.Worked != 0 || next != cursor {
		t.Fatalf("post-drain step did work: %+v", progress)
	}
}

func TestStepAfterDoneIsNoOp(t *testing.T) {
	task := newRecordingTask(10)
	cursor, _ := drain(t, task, 50)

	next, progress, err := Step(cursor, task, 7, [32]byte{}, 0)
	if err != nil {
		t.Fatalf("step after done: %v", err)
	}
	if !progress.Done || progress.Worked != 0 {
		t.Fatalf("expected silent no-op, got %+v", progress)
	}
	if next != cursor {
		t.Fatalf("cursor mutated by no-op step")
	}
	if task.finished != 1 {
		t.Fatalf("finish re-ran: %d", task.finished)
	}
}

func TestStepBudgetOverride(t *testing.T) {
	task := newRecordingTask(100)
	cursor := Cursor{Step: 10}
	cursor, progress, err := Step(cursor, task, 1, [32]byte{}, 0)
	if err != nil {
		t.Fatalf("arm: %v", err)
	}
	if progress.Worked != 10 || cursor.Pos != 10 {
		t.Fatalf("arming window worked %d at pos %d", progress.Worked, cursor.Pos)
	}
	cursor, progress, err = Step(cursor, task, 1, [32]byte{}, 64)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if progress.Worked != 64 {
		t.Fatalf("budget override ignored: worked %d", progress.Worked)
	}
	if cursor.Pos != 74 {
		t.Fatalf("cursor position %d", cursor.Pos)
	}
}

func TestStepEmptyPopulationCompletesImmediately(t *testing.T) {
	task := newRecordingTask(0)
	cursor, progress, err := Step(Cursor{}, task, 3, [32]byte{}, 0)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !progress.Done || !cursor.Done() {
		t.Fatalf("empty population should finish on arm")
	}
	if task.finished != 1 {
		t.Fatalf("finish ran %d times", task.finished)
	}
}

func TestStepRoundMismatch(t *testing.T) {
	task := newRecordingTask(120)
	cursor, _, err := Step(Cursor{}, task, 4, [32]byte{}, 0)
	if err != nil {
		t.Fatalf("arm: %v", err)
	}
	if _, _, err := Step(cursor, task, 5, [32]byte{}, 0); !errors.Is(err, ErrRoundMismatch) {
		t.Fatalf("expected round mismatch, got %v", err)
	}
}

func TestStepArmFailureLeavesCursorIdle(t *testing.T) {
	task := newRecordingTask(5)
	task.armErr = errors.New("boom")
	cursor, _, err := Step(Cursor{}, task, 1, [32]byte{}, 0)
	if err == nil {
		t.Fatalf("expected arm failure")
	}
	if !cursor.Idle() {
		t.Fatalf("cursor advanced despite arm failure")
	}
}

func TestStepMonotonicProgress(t *testing.T) {
	task := newRecordingTask(333)
	cursor := Cursor{Step: 50}
	prev := uint64(0)
	for {
		next, progress, err := Step(cursor, task, 9, [32]byte{0xaa}, 0)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if next.Status == StatusArmed && next.Pos < prev {
			t.Fatalf("cursor regressed: %d -> %d", prev, next.Pos)
		}
		prev = next.Pos
		cursor = next
		if progress.Done {
			break
		}
	}
}

func TestStartOffsetBounded(t *testing.T) {
	var word [32]byte
	for i := range word {
		word[i] = byte(i*37 + 1)
	}
	for _, size := range []uint64{1, 2, 17, 4800} {
		if off := StartOffset(word, size); off >= size {
			t.Fatalf("offset %d out of range for size %d", off, size)
		}
	}
	if StartOffset(word, 0) != 0 {
		t.Fatalf("zero population offset must be zero")
	}
}
