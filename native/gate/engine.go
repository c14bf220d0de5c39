package gate

import (
	"errors"
	"math/big"

	"degenerus/core/events"
)

var (
	errNilState = errors.New("gate engine: state not configured")
	errNilFees  = errors.New("gate engine: fee sink not configured")

	// ErrLocked is a fatal guard: requesting while the gate is locked, with
	// a fresh request outstanding or a delivered word not yet consumed,
	// indicates a sequencing defect in the caller.
	ErrLocked = errors.New("gate engine: request already pending")
	// ErrAwaitingWord is the liveness sentinel returned while the round is
	// blocked on entropy delivery. Callers retry later.
	ErrAwaitingWord = errors.New("gate engine: awaiting entropy word")
	// ErrWordConsumed signals the day's word was already handed out.
	ErrWordConsumed = errors.New("gate engine: word already consumed for day")
	// ErrNotStalled rejects provider rotation outside a stall window.
	ErrNotStalled = errors.New("gate engine: rotation only permitted while stalled")
	// ErrUnauthorized rejects rotation from anyone but the emergency authority.
	ErrUnauthorized = errors.New("gate engine: unauthorized")
	// ErrNudgeLimit bounds the nudge queue.
	ErrNudgeLimit = errors.New("gate engine: nudge queue full")
)

type engineState interface {
	GateRequest() (*Request, bool, error)
	PutGateRequest(*Request) error
	GateMeta() (*Meta, error)
	PutGateMeta(*Meta) error
}

// FeeSink destroys nudge fees. The coin module satisfies it.
type FeeSink interface {
	Burn(from [20]byte, amount *big.Int) error
}

// Oracle is the external randomness collaborator. Request failures propagate
// as aborts since entropy is a mandatory dependency.
type Oracle interface {
	RequestWord(requestID uint64, dayIndex uint64) error
}

// Engine sequences the one-word-per-day entropy protocol: request, fulfill,
// stall recovery and nudge accounting.
type Engine struct {
	state   engineState
	fees    FeeSink
	oracle  Oracle
	emitter events.Emitter
	cfg     Config
}

// NewEngine constructs a gate engine with the provided configuration.
func NewEngine(cfg Config) *Engine {
	if cfg.BaseNudgeFee == nil {
		cfg.BaseNudgeFee = DefaultConfig().BaseNudgeFee
	}
	return &Engine{cfg: cfg, emitter: events.NoopEmitter{}}
}

// SetState wires the engine to the durable ledger.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetFeeSink wires the module that burns nudge fees.
func (e *Engine) SetFeeSink(sink FeeSink) { e.fees = sink }

// SetOracle wires the external randomness provider transport.
func (e *Engine) SetOracle(oracle Oracle) { e.oracle = oracle }

// SetEmitter wires the event emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

func (e *Engine) meta() (*Meta, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.GateMeta()
}

// EnsureWord drives the request side of the protocol for the given
// day-index. If a usable word is already recorded it returns nil. Otherwise
// it issues (or re-issues, past the retry threshold) a request and returns
// ErrAwaitingWord so the caller can surface a retry-later condition.
func (e *Engine) EnsureWord(now int64, dayIndex uint64) error {
	meta, err := e.meta()
	if err != nil {
		return err
	}
	req, ok, err := e.state.GateRequest()
	if err != nil {
		return err
	}
	if ok && req.Fulfilled && req.DayIndex == dayIndex {
		return nil
	}
	if ok && !req.Fulfilled {
		if now-req.RequestedAt < RetryAfterSeconds {
			return ErrAwaitingWord
		}
		// Outstanding request went quiet; issue a fresh one.
		if err := e.issue(meta, now, dayIndex, true); err != nil {
			return err
		}
		return ErrAwaitingWord
	}
	if err := e.issue(meta, now, dayIndex, false); err != nil {
		return err
	}
	return ErrAwaitingWord
}

// Request issues a request directly. Requesting while the lock flag is set
// inside the retry window is a fatal guard violation; the lock holds from
// issue until the delivered word is consumed, so an unconsumed word cannot be
// clobbered by a re-request.
func (e *Engine) Request(now int64, dayIndex uint64) error {
	meta, err := e.meta()
	if err != nil {
		return err
	}
	req, ok, err := e.state.GateRequest()
	if err != nil {
		return err
	}
	if ok && meta.Locked && now-req.RequestedAt < RetryAfterSeconds {
		return ErrLocked
	}
	return e.issue(meta, now, dayIndex, ok && !req.Fulfilled)
}

func (e *Engine) issue(meta *Meta, now int64, dayIndex uint64, retry bool) error {
	if e.oracle == nil {
		return errors.New("gate engine: oracle not configured")
	}
	meta.NextID++
	meta.Locked = true
	if err := e.oracle.RequestWord(meta.NextID, dayIndex); err != nil {
		return err
	}
	req := &Request{ID: meta.NextID, DayIndex: dayIndex, RequestedAt: now}
	if err := e.state.PutGateRequest(req); err != nil {
		return err
	}
	if err := e.state.PutGateMeta(meta); err != nil {
		return err
	}
	e.emitter.Emit(events.GateRequested{RequestID: req.ID, DayIndex: dayIndex, Retry: retry})
	return nil
}

// Fulfill records a delivered word. A mismatched request id or an unexpected
// source is a silent no-op so a stale or hostile relay cannot disturb state.
func (e *Engine) Fulfill(requestID uint64, word [32]byte, source [20]byte) error {
	meta, err := e.meta()
	if err != nil {
		return err
	}
	req, ok, err := e.state.GateRequest()
	if err != nil {
		return err
	}
	if !ok || req.Fulfilled || req.ID != requestID || source != meta.Provider {
		return nil
	}
	nudges := meta.NudgeQueue
	if nudges > MaxNudges {
		nudges = MaxNudges
	}
	req.Word = applyNudge(word, nudges)
	req.Fulfilled = true
	meta.NudgeQueue = 0
	meta.LastWordDay = req.DayIndex
	if err := e.state.PutGateRequest(req); err != nil {
		return err
	}
	if err := e.state.PutGateMeta(meta); err != nil {
		return err
	}
	e.emitter.Emit(events.GateFulfilled{RequestID: req.ID, DayIndex: req.DayIndex, Word: req.Word, Nudges: nudges})
	return nil
}

// applyNudge perturbs the delivered word by a small bounded offset: a 256-bit
// big-endian increment of the queued nudge count.
func applyNudge(word [32]byte, nudges uint64) [32]byte {
	if nudges == 0 {
		return word
	}
	carry := nudges
	for i := len(word) - 1; i >= 0 && carry > 0; i-- {
		sum := uint64(word[i]) + (carry & 0xff)
		word[i] = byte(sum)
		carry = carry>>8 + sum>>8
	}
	return word
}

// Consume hands out the fulfilled word for the given day-index exactly once.
func (e *Engine) Consume(dayIndex uint64) ([32]byte, error) {
	meta, err := e.meta()
	if err != nil {
		return [32]byte{}, err
	}
	req, ok, err := e.state.GateRequest()
	if err != nil {
		return [32]byte{}, err
	}
	if !ok || !req.Fulfilled || req.DayIndex != dayIndex {
		return [32]byte{}, ErrAwaitingWord
	}
	if meta.ConsumedDay >= dayIndex && meta.ConsumedDay != 0 {
		return [32]byte{}, ErrWordConsumed
	}
	meta.ConsumedDay = dayIndex
	meta.Locked = false
	if err := e.state.PutGateMeta(meta); err != nil {
		return [32]byte{}, err
	}
	return req.Word, nil
}

// Nudge queues a paid perturbation of the next delivered word. The fee
// doubles per queued nudge and resets after fulfillment.
func (e *Engine) Nudge(player [20]byte) (*big.Int, error) {
	meta, err := e.meta()
	if err != nil {
		return nil, err
	}
	if e.fees == nil {
		return nil, errNilFees
	}
	if meta.NudgeQueue >= MaxNudges {
		return nil, ErrNudgeLimit
	}
	fee := new(big.Int).Lsh(e.cfg.BaseNudgeFee, uint(meta.NudgeQueue))
	if err := e.fees.Burn(player, fee); err != nil {
		return nil, err
	}
	meta.NudgeQueue++
	if err := e.state.PutGateMeta(meta); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.GateNudged{Player: player, Queued: meta.NudgeQueue, Fee: fee.String()})
	return fee, nil
}

// Bootstrap stamps the stall baseline on a fresh store so a new deployment
// does not start inside a rotation window.
func (e *Engine) Bootstrap(dayIndex uint64) error {
	meta, err := e.meta()
	if err != nil {
		return err
	}
	if meta.LastWordDay != 0 {
		return nil
	}
	meta.LastWordDay = dayIndex
	return e.state.PutGateMeta(meta)
}

// Stalled reports whether the configured number of consecutive day-indices
// passed without a recorded word.
func (e *Engine) Stalled(dayIndex uint64) (bool, error) {
	meta, err := e.meta()
	if err != nil {
		return false, err
	}
	return dayIndex >= meta.LastWordDay+StallDays, nil
}

// RotateProvider swaps the oracle identity. Rotation is tightly scoped: only
// the emergency authority may perform it, and only while the gate is stalled.
func (e *Engine) RotateProvider(caller [20]byte, newProvider [20]byte, dayIndex uint64) error {
	stalled, err := e.Stalled(dayIndex)
	if err != nil {
		return err
	}
	if !stalled {
		return ErrNotStalled
	}
	if caller != e.cfg.EmergencyAuthority {
		return ErrUnauthorized
	}
	meta, err := e.meta()
	if err != nil {
		return err
	}
	old := meta.Provider
	meta.Provider = newProvider
	if err := e.state.PutGateMeta(meta); err != nil {
		return err
	}
	e.emitter.Emit(events.GateRotated{OldProvider: old, NewProvider: newProvider, DayIndex: dayIndex})
	return nil
}

// Provider returns the currently trusted oracle identity.
func (e *Engine) Provider() ([20]byte, error) {
	meta, err := e.meta()
	if err != nil {
		return [20]byte{}, err
	}
	return meta.Provider, nil
}
