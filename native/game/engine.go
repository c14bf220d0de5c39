package game

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"degenerus/core/events"
	"degenerus/native/batch"
	"degenerus/native/gate"
	"degenerus/native/traits"
)

var (
	errNilState = errors.New("game engine: state not configured")

	// ErrShutdown rejects everything once the machine is terminally down.
	ErrShutdown = errors.New("game engine: shut down")
	// ErrNotParticipant rejects a standard advance from a caller who has
	// not burned this day-cycle.
	ErrNotParticipant = errors.New("game engine: caller has not participated today")
	// ErrAwaitingRandomness signals a retry-later condition while the gate
	// word is outstanding.
	ErrAwaitingRandomness = errors.New("game engine: awaiting randomness")
	// ErrNothingToAdvance signals a call with no pending work.
	ErrNothingToAdvance = errors.New("game engine: nothing to advance")
	// ErrWrongPhase rejects an operation outside its phase.
	ErrWrongPhase = errors.New("game engine: wrong phase")
	// ErrNoAssets rejects an empty burn.
	ErrNoAssets = errors.New("game engine: no assets given")
)

type engineState interface {
	Round() (*Round, error)
	PutRound(round *Round) error

	BatchCursor(name string) (batch.Cursor, error)
	PutBatchCursor(name string, cursor batch.Cursor) error

	MintQueue() ([]MintOrder, error)
	AppendMintQueue(order MintOrder) error
	ClearMintQueue() error

	Exterminator(round uint64) ([20]byte, bool, error)
	PutExterminator(round uint64, player [20]byte) error
}

// Ledger is the fungible credit collaborator; the coin engine satisfies it.
type Ledger interface {
	Burn(from [20]byte, amount *big.Int) error
	Credit(player [20]byte, amount *big.Int) error
	ParticipatedToday(player [20]byte, dayIndex uint64) (bool, error)
	TouchParticipation(player [20]byte, dayIndex uint64) error
	PayBounty(caller [20]byte) (*big.Int, error)
	SettleStakes(round uint64, player [20]byte, won bool) (*big.Int, error)
	SettleFlip(round uint64, player [20]byte, won bool) (*big.Int, error)
	StakeRoster(round uint64) ([][20]byte, error)
	FlipRoster(round uint64) ([][20]byte, error)
	ClearRound(round uint64) error
}

// Gate is the randomness collaborator; the gate engine satisfies it.
type Gate interface {
	EnsureWord(now int64, dayIndex uint64) error
	Consume(dayIndex uint64) ([32]byte, error)
}

// TraitLedger is the extinction ledger collaborator.
type TraitLedger interface {
	Rebuild(round uint64, supplies [traits.TraitCount]uint32, endFlag uint32) error
	RecordBurn(round uint64, player [20]byte, traitIDs []uint16) (traits.BurnResult, error)
	WinningTraits(round uint64, word [32]byte) ([4]uint16, error)
	Tickets(round uint64, trait uint16) ([][20]byte, error)
	ResetBurnCounts(round uint64) error
}

// AssetRegistry is the non-fungible collaborator. Mandatory calls propagate
// failure.
type AssetRegistry interface {
	BurnFromOwner(owner [20]byte, ids []uint64) ([]uint16, error)
	MintAirdrop(player [20]byte, count uint32, word [32]byte) error
	ProcessDormantCleanup(budget uint64) (uint64, error)
	AdvanceBaseID() error
	CurrentBaseID() (uint64, error)
	OwedCount(player [20]byte) (uint32, error)
	TraitSupplies() ([traits.TraitCount]uint32, error)
}

// AchievementIssuer is fire-and-forget; failures are swallowed.
type AchievementIssuer interface {
	MintAchievement(player [20]byte, round uint64, payload uint64) error
}

// Engine is the phase state machine orchestrating the ledgers, the gate and
// the batch processor. All durable writes go through the pluggable state;
// correctness lives in persisted cursors and phase tags, never in caller
// identity.
type Engine struct {
	state        engineState
	ledger       Ledger
	gate         Gate
	traits       TraitLedger
	registry     AssetRegistry
	achievements AchievementIssuer
	emitter      events.Emitter
	params       Params
}

// NewEngine constructs a game engine with the given schedule.
func NewEngine(params Params) *Engine {
	return &Engine{params: params, emitter: events.NoopEmitter{}}
}

// SetState wires the engine to the durable ledger.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger wires the fungible credit collaborator.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetGate wires the randomness gate.
func (e *Engine) SetGate(g Gate) { e.gate = g }

// SetTraits wires the trait extinction ledger.
func (e *Engine) SetTraits(t TraitLedger) { e.traits = t }

// SetRegistry wires the non-fungible asset registry.
func (e *Engine) SetRegistry(r AssetRegistry) { e.registry = r }

// SetAchievements wires the best-effort achievement issuer.
func (e *Engine) SetAchievements(a AchievementIssuer) { e.achievements = a }

// SetEmitter wires the event emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

// Params exposes the active schedule.
func (e *Engine) Params() Params { return e.params }

// Round exposes the current round for queries.
func (e *Engine) Round() (*Round, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.Round()
}

// Genesis seeds round 1 directly into the purchase phase so players can
// queue mints before the first active window.
func (e *Engine) Genesis(now int64) error {
	if e.state == nil {
		return errNilState
	}
	day := e.dayIndex(now)
	round := NewRound(1)
	round.Phase = PhasePurchase
	round.Delegate = DelegateEndgame
	round.DayIndex = day
	round.PurchaseDeadlineDay = day + e.params.PurchaseDays
	round.LastExterminatedTrait = traits.TimeoutTrait
	round.StartedAt = now
	round.LastProgressAt = now
	return e.state.PutRound(round)
}

func (e *Engine) dayIndex(now int64) uint64 {
	if now <= 0 {
		return 0
	}
	return uint64(now / e.params.DaySeconds)
}

// DayIndex converts a wall-clock timestamp to the schedule's day-index.
func (e *Engine) DayIndex(now int64) uint64 { return e.dayIndex(now) }

// Advance is the single entry point driving round progression. Anyone may
// call it; a standard advance requires the caller to have participated this
// day-cycle and pays them a bounty, capOverride bypasses both for liveness.
func (e *Engine) Advance(caller [20]byte, capOverride bool, now int64) error {
	if e.state == nil {
		return errNilState
	}
	round, err := e.state.Round()
	if err != nil {
		return err
	}
	if round.Phase == PhaseShutdown {
		return ErrShutdown
	}
	day := e.dayIndex(now)

	// Liveness: a machine nobody progresses goes terminally down.
	idle := e.params.IdleShutdownDays * uint64(e.params.DaySeconds)
	if round.LastProgressAt > 0 && now > round.LastProgressAt+int64(idle) {
		round.Phase = PhaseShutdown
		if err := e.state.PutRound(round); err != nil {
			return err
		}
		e.emitter.Emit(events.GameShutdown{Round: round.Number, Day: day})
		return nil
	}

	if !capOverride {
		participated, err := e.ledger.ParticipatedToday(caller, day)
		if err != nil {
			return err
		}
		if !participated {
			return ErrNotParticipant
		}
	}

	if err := e.step(round, day, now, 0); err != nil {
		return err
	}

	round.LastProgressAt = now
	if err := e.state.PutRound(round); err != nil {
		return err
	}
	if !capOverride {
		if _, err := e.ledger.PayBounty(caller); err != nil {
			return err
		}
	}
	return nil
}

// ProcessSettlementBatch drives one bounded window of whatever settlement
// work the current phase has pending, with a caller-chosen budget. No
// participation check: clearing backlog is always welcome.
func (e *Engine) ProcessSettlementBatch(budget uint64, now int64) error {
	if e.state == nil {
		return errNilState
	}
	round, err := e.state.Round()
	if err != nil {
		return err
	}
	if round.Phase == PhaseShutdown {
		return ErrShutdown
	}
	day := e.dayIndex(now)
	if err := e.step(round, day, now, budget); err != nil {
		return err
	}
	round.LastProgressAt = now
	return e.state.PutRound(round)
}

// step performs exactly one bounded unit of progress against the round.
func (e *Engine) step(round *Round, day uint64, now int64, budget uint64) error {
	switch round.Phase {
	case PhasePregame:
		return e.stepPregame(round, day, budget)
	case PhasePurchase:
		return e.stepPurchase(round, day, now, budget)
	case PhaseActive:
		return e.stepActive(round, day, now)
	}
	return ErrShutdown
}

// stepPregame runs the settlement delegates in order: endgame batch first,
// then bond upkeep, then the purchase window opens.
func (e *Engine) stepPregame(round *Round, day uint64, budget uint64) error {
	switch round.Delegate {
	case DelegateEndgame:
		// Timeout rounds forfeit every position, so the wider window applies.
		width := batch.StepWinners
		if round.LastExterminatedTrait == traits.TimeoutTrait {
			width = batch.StepLosers
		}
		done, err := e.stepTask(cursorSettlement, e.settlementTask(round), round, width, budget)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		round.Delegate = DelegateBondUpkeep
		return nil
	case DelegateBondUpkeep:
		if budget == 0 {
			budget = batch.StepLosers
		}
		worked, err := e.registry.ProcessDormantCleanup(budget)
		if err != nil {
			return err
		}
		if worked > 0 {
			return nil
		}
		return e.openPurchase(round, day)
	}
	return fmt.Errorf("game engine: delegate %d unreachable in pregame", round.Delegate)
}

// openPurchase anchors the purchase deadline to the day the window actually
// opens; a long pregame must not eat into the window.
func (e *Engine) openPurchase(round *Round, day uint64) error {
	round.Phase = PhasePurchase
	round.Delegate = DelegateEndgame
	round.JackpotCounter = 0
	round.PurchaseDeadlineDay = day + e.params.PurchaseDays
	e.emitter.Emit(events.PhaseChanged{Round: round.Number, From: uint8(PhasePregame), To: uint8(PhasePurchase)})
	return nil
}

// stepPurchase pays the recurring early jackpot while the window is open;
// on close it reallocates the pools, pays the close jackpot via the batch
// processor, drains pending mints and goes active.
func (e *Engine) stepPurchase(round *Round, day uint64, now int64, budget uint64) error {
	if day < round.PurchaseDeadlineDay {
		if day <= round.DayIndex {
			return ErrNothingToAdvance
		}
		word, err := e.consumeWord(now, day)
		if err != nil {
			return err
		}
		round.DayIndex = day
		round.EntropyWord = word
		return e.payEarlyJackpot(round, word)
	}

	// Window closed: one-time pool reallocation, marked by the delegate tag.
	if round.Delegate != DelegateMintPacking {
		if err := e.closePurchase(round); err != nil {
			return err
		}
		round.Delegate = DelegateMintPacking
		return nil
	}

	done, err := e.stepTask(cursorJackpot, e.jackpotTask(round), round, 0, budget)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}
	done, err = e.stepTask(cursorMintDrain, e.mintTask(round), round, 0, budget)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}
	return e.openActive(round)
}

// closePurchase rolls the accumulated mint revenue into the prize pool and
// reapportions it between the reward pool and the jackpot base.
func (e *Engine) closePurchase(round *Round) error {
	total := new(big.Int).Add(round.RewardPool, round.PrizePool)
	total.Add(total, round.NextPrizePool)
	round.NextPrizePool = big.NewInt(0)

	reward := new(big.Int).Mul(total, new(big.Int).SetUint64(rewardPoolNumerator(round.Number)))
	reward.Quo(reward, big.NewInt(200))
	jackpotBase := new(big.Int).Sub(total, reward)

	closeAmount := bpsOf(jackpotBase, mapJackpotBps(round.Number))
	round.PrizePool = new(big.Int).Sub(jackpotBase, closeAmount)
	if round.Number%CheckpointInterval == 0 {
		// Checkpoint rounds sweeten the close jackpot from the reward pool;
		// the prize pool share is already fixed above.
		extra := bpsOf(reward, 1000)
		reward.Sub(reward, extra)
		closeAmount.Add(closeAmount, extra)
	}
	round.RewardPool = reward
	round.CloseJackpot = closeAmount

	// Fix the per-mint share now; the queue is frozen once the window
	// closes, so the distribution stays stable across batch invocations.
	queue, err := e.state.MintQueue()
	if err != nil {
		return err
	}
	units := uint64(0)
	for _, order := range queue {
		units += uint64(order.Count)
	}
	round.ClosePerUnit = big.NewInt(0)
	if units > 0 {
		round.ClosePerUnit = new(big.Int).Quo(closeAmount, new(big.Int).SetUint64(units))
	}
	return nil
}

func (e *Engine) openActive(round *Round) error {
	supplies, err := e.registry.TraitSupplies()
	if err != nil {
		return err
	}
	if err := e.traits.Rebuild(round.Number, supplies, e.params.EndSupplyFlag); err != nil {
		return err
	}
	if err := e.registry.AdvanceBaseID(); err != nil {
		return err
	}
	round.Phase = PhaseActive
	round.JackpotCounter = 0
	e.emitter.Emit(events.PhaseChanged{Round: round.Number, From: uint8(PhasePurchase), To: uint8(PhaseActive)})
	return nil
}

// stepActive pays the daily jackpot per consumed word and forces a timeout
// round end once the counter cap is reached.
func (e *Engine) stepActive(round *Round, day uint64, now int64) error {
	if round.JackpotCounter >= MaxDailyJackpots {
		return e.endRound(round, traits.TimeoutTrait, [20]byte{}, now)
	}
	if day <= round.DayIndex {
		return ErrNothingToAdvance
	}
	word, err := e.consumeWord(now, day)
	if err != nil {
		return err
	}
	round.DayIndex = day
	round.EntropyWord = word
	if err := e.payDailyJackpot(round, word); err != nil {
		return err
	}
	if round.JackpotCounter >= MaxDailyJackpots {
		return e.endRound(round, traits.TimeoutTrait, [20]byte{}, now)
	}
	return nil
}

func (e *Engine) consumeWord(now int64, day uint64) ([32]byte, error) {
	if err := e.gate.EnsureWord(now, day); err != nil {
		if errors.Is(err, gate.ErrAwaitingWord) {
			return [32]byte{}, ErrAwaitingRandomness
		}
		return [32]byte{}, err
	}
	return e.gate.Consume(day)
}

// payEarlyJackpot pays the purchase-window recurring jackpot: a scaled
// reward pool slice drawn over the queued mint orders.
func (e *Engine) payEarlyJackpot(round *Round, word [32]byte) error {
	slice := bpsOf(round.RewardPool, burnRewardBps)
	slice = bpsOf(slice, burnScaleBps(round.Number))
	if slice.Sign() <= 0 {
		return nil
	}
	queue, err := e.state.MintQueue()
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		return nil
	}
	state := seedEntropy(word, round.Number)
	entropyStep(state)
	idx := new(uint256.Int).Mod(state, uint256.NewInt(uint64(len(queue)))).Uint64()
	winner := queue[idx].Player
	if err := e.ledger.Credit(winner, slice); err != nil {
		return err
	}
	round.RewardPool = new(big.Int).Sub(round.RewardPool, slice)
	e.emitter.Emit(events.JackpotWon{
		Round:  round.Number,
		Kind:   "early",
		Winner: winner,
		Amount: slice.String(),
	})
	return nil
}

// payDailyJackpot slices the prize pool per the daily schedule and splits it
// across the four winning-trait buckets; bucket shares with no tickets roll
// into the reward pool.
func (e *Engine) payDailyJackpot(round *Round, word [32]byte) error {
	amount := bpsOf(round.PrizePool, dailyJackpotBps[round.JackpotCounter])
	round.PrizePool = new(big.Int).Sub(round.PrizePool, amount)
	counter := round.JackpotCounter
	round.JackpotCounter++

	winners, err := e.traits.WinningTraits(round.Number, word)
	if err != nil {
		return err
	}
	leftover := new(big.Int).Set(amount)
	state := seedEntropy(word, round.Number)
	for i, trait := range winners {
		share := bpsOf(amount, TraitBucketShareBps)
		state = mixBucket(state, uint64(i), share)
		paid, err := e.payTraitBucket(round, trait, uint64(i), share, state, "daily")
		if err != nil {
			return err
		}
		leftover.Sub(leftover, paid)
	}
	round.RewardPool = new(big.Int).Add(round.RewardPool, leftover)
	if err := e.traits.ResetBurnCounts(round.Number); err != nil {
		return err
	}
	e.emitter.Emit(events.DailyJackpot{
		Round:   round.Number,
		Day:     round.DayIndex,
		Counter: counter,
		Amount:  amount.String(),
	})
	return nil
}

// payTraitBucket draws one ticket holder for a trait and credits the share.
// Returns the amount actually paid (zero when no tickets exist).
func (e *Engine) payTraitBucket(round *Round, trait uint16, bucket uint64, share *big.Int, state *uint256.Int, kind string) (*big.Int, error) {
	tickets, err := e.traits.Tickets(round.Number, trait)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 || share.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	idx := drawTicket(state, trait, 200+bucket, uint64(len(tickets)))
	winner := tickets[idx]
	if err := e.ledger.Credit(winner, share); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.JackpotWon{
		Round:  round.Number,
		Kind:   kind,
		Trait:  trait,
		Winner: winner,
		Amount: share.String(),
	})
	return share, nil
}

// endRound finalizes the current round and opens the next one in pregame.
// The heavy payouts run in the next round's settlement batch, seeded from
// this round's entropy word.
func (e *Engine) endRound(round *Round, exterminated uint16, exterminator [20]byte, now int64) error {
	timeout := exterminated == traits.TimeoutTrait
	if !timeout {
		if err := e.state.PutExterminator(round.Number, exterminator); err != nil {
			return err
		}
	}
	e.emitter.Emit(events.RoundEnded{
		Round:        round.Number,
		Exterminated: exterminated,
		Timeout:      timeout,
		Exterminator: exterminator,
	})

	next := NewRound(round.Number + 1)
	next.Phase = PhasePregame
	next.Delegate = DelegateEndgame
	next.PrizePool = round.PrizePool
	next.NextPrizePool = round.NextPrizePool
	next.RewardPool = round.RewardPool
	next.EntropyWord = round.EntropyWord
	next.LastExterminatedTrait = exterminated
	next.DayIndex = round.DayIndex
	next.StartedAt = now
	next.LastProgressAt = now
	*round = *next

	// Fresh cursors for the new round's settlement pipeline.
	for _, name := range []string{cursorSettlement, cursorMintDrain, cursorJackpot} {
		if err := e.state.PutBatchCursor(name, batch.Cursor{}); err != nil {
			return err
		}
	}
	return nil
}

// stepTask drives one window of a named batch task and persists the cursor.
// width stamps the window on a fresh cursor; zero keeps the runner default.
func (e *Engine) stepTask(name string, task batch.Task, round *Round, width, budget uint64) (bool, error) {
	cursor, err := e.state.BatchCursor(name)
	if err != nil {
		return false, err
	}
	if cursor.Idle() && width > 0 {
		cursor.Step = width
	}
	cursor, progress, err := batch.Step(cursor, task, round.Number, round.EntropyWord, budget)
	if err != nil {
		return false, err
	}
	if err := e.state.PutBatchCursor(name, cursor); err != nil {
		return false, err
	}
	e.emitter.Emit(events.BatchProgress{
		Round:  round.Number,
		Task:   name,
		Worked: progress.Worked,
		Done:   progress.Done,
	})
	return progress.Done, nil
}

func bpsOf(amount *big.Int, bps uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return out.Quo(out, big.NewInt(BpsDenominator))
}
