package core

import (
	"encoding/hex"
	"errors"
	"log/slog"
	"math/big"
	"sync"

	"degenerus/core/events"
	"degenerus/core/state"
	"degenerus/native/assets"
	"degenerus/native/coin"
	"degenerus/native/game"
	"degenerus/native/gate"
	"degenerus/native/traits"
	"degenerus/observability"
	"degenerus/observability/metrics"
	"degenerus/storage"
)

// Config bundles the module parameters the world is wired with.
type Config struct {
	Coin coin.Params
	Game game.Params
	Gate gate.Config
}

// DefaultConfig returns the production parameter set.
func DefaultConfig() Config {
	return Config{
		Coin: coin.DefaultParams(),
		Game: game.DefaultParams(),
		Gate: gate.DefaultConfig(),
	}
}

// World is the central controller wiring the engines over one durable
// manager. Every public operation is all-or-nothing: it runs against the
// manager's overlay and either commits every write or discards them.
type World struct {
	mu      sync.Mutex
	db      storage.Database
	manager *state.Manager

	coin   *coin.Engine
	gate   *gate.Engine
	traits *traits.Engine
	assets *assets.Engine
	game   *game.Engine

	events *eventRing
	log    *slog.Logger
}

// NewWorld wires the engines and seeds round one when the store is empty.
func NewWorld(db storage.Database, cfg Config, oracle gate.Oracle, now int64) (*World, error) {
	manager := state.NewManager(db)

	coinEngine := coin.NewEngine(cfg.Coin)
	gateEngine := gate.NewEngine(cfg.Gate)
	traitEngine := traits.NewEngine()
	assetEngine := assets.NewEngine()
	gameEngine := game.NewEngine(cfg.Game)

	ring := newEventRing(256)

	coinEngine.SetState(manager)
	coinEngine.SetEmitter(ring)

	gateEngine.SetState(manager)
	gateEngine.SetFeeSink(coinEngine)
	gateEngine.SetOracle(oracle)
	gateEngine.SetEmitter(ring)

	traitEngine.SetState(manager)
	assetEngine.SetState(manager)

	gameEngine.SetState(manager)
	gameEngine.SetLedger(coinEngine)
	gameEngine.SetGate(gateEngine)
	gameEngine.SetTraits(traitEngine)
	gameEngine.SetRegistry(assetEngine)
	gameEngine.SetAchievements(achievementLog{log: slog.Default()})
	gameEngine.SetEmitter(ring)

	w := &World{
		db:      db,
		manager: manager,
		coin:    coinEngine,
		gate:    gateEngine,
		traits:  traitEngine,
		assets:  assetEngine,
		game:    gameEngine,
		events:  ring,
		log:     slog.Default(),
	}

	round, err := manager.Round()
	if err != nil {
		return nil, err
	}
	if round.Number == 0 {
		err := w.run(func() error {
			if err := gameEngine.Genesis(now); err != nil {
				return err
			}
			seeded, err := manager.Round()
			if err != nil {
				return err
			}
			return gateEngine.Bootstrap(seeded.DayIndex)
		})
		if err != nil {
			return nil, err
		}
		w.log.Info("genesis round seeded")
	}
	return w, nil
}

// run executes one public operation against the overlay and commits or
// discards every write it produced.
func (w *World) run(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := fn(); err != nil {
		w.manager.Discard()
		return err
	}
	return w.manager.Commit()
}

// runRetryable commits even on the retry-later sentinels: an awaiting-
// randomness return must keep the gate request it just issued.
func (w *World) runRetryable(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := fn()
	if err != nil && !retryLater(err) {
		w.manager.Discard()
		return err
	}
	if cerr := w.manager.Commit(); cerr != nil {
		return cerr
	}
	return err
}

func retryLater(err error) bool {
	return errors.Is(err, game.ErrAwaitingRandomness) || errors.Is(err, game.ErrNothingToAdvance)
}

// Advance drives the phase machine one step.
func (w *World) Advance(caller [20]byte, capOverride bool, now int64) error {
	var phase string
	err := w.runRetryable(func() error {
		round, rerr := w.manager.Round()
		if rerr != nil {
			return rerr
		}
		phase = round.Phase.String()
		return w.game.Advance(caller, capOverride, now)
	})
	metrics.Game().ObserveAdvance(phase, advanceOutcome(err))
	w.refreshRoundGauges()
	return err
}

func advanceOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, game.ErrAwaitingRandomness):
		return "awaiting"
	case errors.Is(err, game.ErrNothingToAdvance):
		return "idle"
	default:
		return "error"
	}
}

// refreshRoundGauges mirrors the round snapshot into the exported gauges.
func (w *World) refreshRoundGauges() {
	w.mu.Lock()
	defer w.mu.Unlock()
	round, err := w.manager.Round()
	if err != nil {
		return
	}
	metrics.Game().SetRound(round.Number)
	prize, _ := new(big.Float).SetInt(round.PrizePool).Float64()
	reward, _ := new(big.Float).SetInt(round.RewardPool).Float64()
	metrics.Game().SetPools(prize, reward)
}

// ProcessSettlementBatch drives one bounded settlement window without the
// participation gate.
func (w *World) ProcessSettlementBatch(budget uint64, now int64) error {
	err := w.runRetryable(func() error { return w.game.ProcessSettlementBatch(budget, now) })
	w.refreshRoundGauges()
	return err
}

// PurchaseMints queues a mint order during the purchase window.
func (w *World) PurchaseMints(player [20]byte, count uint32, now int64) error {
	return w.run(func() error { return w.game.PurchaseMints(player, count, now) })
}

// BurnForReward burns owned assets for a reward-pool slice, possibly ending
// the round by extinction.
func (w *World) BurnForReward(caller [20]byte, ids []uint64, now int64) error {
	return w.run(func() error { return w.game.BurnForReward(caller, ids, now) })
}

// Stake commits principal toward a future round at the given risk radius.
func (w *World) Stake(player [20]byte, amount *big.Int, targetRound uint64, risk uint8) error {
	return w.run(func() error {
		round, err := w.manager.Round()
		if err != nil {
			return err
		}
		return w.coin.Stake(player, amount, targetRound, risk, round.Number, round.DayIndex)
	})
}

// DepositCoinflip burns a stake riding the current round's outcome.
func (w *World) DepositCoinflip(player [20]byte, amount *big.Int) error {
	return w.run(func() error {
		round, err := w.manager.Round()
		if err != nil {
			return err
		}
		return w.coin.DepositCoinflip(player, amount, round.Number, round.DayIndex)
	})
}

// Claim moves the player's accrued winnings to their spendable balance.
func (w *World) Claim(player [20]byte) (*big.Int, error) {
	var claimed *big.Int
	err := w.run(func() error {
		var err error
		claimed, err = w.coin.Claim(player)
		return err
	})
	return claimed, err
}

// Transfer moves spendable balance between players.
func (w *World) Transfer(from, to [20]byte, amount *big.Int) error {
	return w.run(func() error { return w.coin.Transfer(from, to, amount) })
}

// MintCredits issues new credit supply. Exposed for genesis funding and the
// development faucet.
func (w *World) MintCredits(to [20]byte, amount *big.Int) error {
	return w.run(func() error { return w.coin.Mint(to, amount) })
}

// RegisterCode claims an affiliate code for the owner.
func (w *World) RegisterCode(owner [20]byte, code [32]byte) error {
	return w.run(func() error { return w.coin.RegisterCode(owner, code) })
}

// BindReferral binds the player to a code, first code wins.
func (w *World) BindReferral(player [20]byte, code [32]byte) error {
	return w.run(func() error { return w.coin.BindReferral(player, code) })
}

// OptOutReferral permanently locks the player out of the referral program.
func (w *World) OptOutReferral(player [20]byte) error {
	return w.run(func() error { return w.coin.OptOutReferral(player) })
}

// ClaimAffiliate moves a code's pending earnings to the owner's claimable.
func (w *World) ClaimAffiliate(caller [20]byte, code [32]byte) (*big.Int, error) {
	var claimed *big.Int
	err := w.run(func() error {
		var err error
		claimed, err = w.coin.ClaimAffiliate(caller, code)
		return err
	})
	return claimed, err
}

// FulfillRandomness records an oracle callback. Mismatched ids or sources
// are silent no-ops per the gate protocol.
func (w *World) FulfillRandomness(requestID uint64, word [32]byte, source [20]byte) error {
	return w.run(func() error { return w.gate.Fulfill(requestID, word, source) })
}

// Nudge charges the escalating fee and queues a perturbation of the next
// entropy word.
func (w *World) Nudge(player [20]byte) (*big.Int, error) {
	var fee *big.Int
	err := w.run(func() error {
		var err error
		fee, err = w.gate.Nudge(player)
		return err
	})
	return fee, err
}

// RotateProvider swaps the oracle identity, permitted only while stalled.
// The stall check runs against the wall clock: an outage freezes the round's
// day-index, so the round snapshot can never observe its own stall.
func (w *World) RotateProvider(caller, newProvider [20]byte, now int64) error {
	return w.run(func() error {
		return w.gate.RotateProvider(caller, newProvider, w.game.DayIndex(now))
	})
}

// Round returns the current round snapshot.
func (w *World) Round() (*game.Round, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.manager.Round()
}

// PlayerView is the query-side account summary.
type PlayerView struct {
	Balance     *big.Int
	Claimable   *big.Int
	PendingFlip *big.Int
	FlipRound   uint64
	Luckbox     uint64
	LastBurnDay uint64
	TotalBurned *big.Int
	TotalStaked *big.Int
	TotalMints  uint64
	OwedMints   uint32
}

// Player assembles the account summary for queries.
func (w *World) Player(addr [20]byte) (*PlayerView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	account, err := w.manager.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	owed, err := w.assets.OwedCount(addr)
	if err != nil {
		return nil, err
	}
	return &PlayerView{
		Balance:     account.Balance,
		Claimable:   account.Claimable,
		PendingFlip: account.PendingFlip,
		FlipRound:   account.FlipRound,
		Luckbox:     account.Luckbox,
		LastBurnDay: account.LastBurnDay,
		TotalBurned: account.TotalBurned,
		TotalStaked: account.TotalStaked,
		TotalMints:  account.TotalMints,
		OwedMints:   owed,
	}, nil
}

// Leaderboard returns one of the top-8 boards.
func (w *World) Leaderboard(name string) (*coin.Leaderboard, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coin.LeaderboardOf(name)
}

// LaneBook returns the player's staking lanes for a round.
func (w *World) LaneBook(round uint64, player [20]byte) (*coin.LaneBook, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coin.LaneBook(round, player)
}

// Affiliate returns a code's record.
func (w *World) Affiliate(code [32]byte) (*coin.AffiliateRecord, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coin.AffiliateRecordOf(code)
}

// BountyPool reports the accumulated advance incentive.
func (w *World) BountyPool() (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coin.BountyPool()
}

// GateStatus reports the provider identity and whether the gate is stalled
// relative to the wall-clock day-index.
func (w *World) GateStatus(now int64) (provider [20]byte, stalled bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	provider, err = w.gate.Provider()
	if err != nil {
		return provider, false, err
	}
	stalled, err = w.gate.Stalled(w.game.DayIndex(now))
	if err == nil {
		metrics.Game().SetGateStalled(stalled)
	}
	return provider, stalled, err
}

// Exterminator names the player who ended a round by extinction.
func (w *World) Exterminator(round uint64) ([20]byte, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.game.Exterminator(round)
}

// Asset returns one asset record for queries.
func (w *World) Asset(id uint64) (*assets.Asset, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.assets.AssetOf(id)
}

// RecentEvents returns the newest buffered events, newest last.
func (w *World) RecentEvents() []events.Event {
	return w.events.Snapshot()
}

// Close releases the underlying store.
func (w *World) Close() error {
	return w.db.Close()
}

// achievementLog is the best-effort achievement collaborator. Trophy
// issuance lives outside this node; the hook records the grant.
type achievementLog struct {
	log *slog.Logger
}

func (a achievementLog) MintAchievement(player [20]byte, round uint64, payload uint64) error {
	a.log.Info("achievement granted",
		"player", hex.EncodeToString(player[:]),
		"round", round,
		"payload", payload,
	)
	return nil
}

// eventRing buffers the newest emitted events for the query surface.
type eventRing struct {
	mu  sync.Mutex
	buf []events.Event
	max int
}

func newEventRing(max int) *eventRing {
	return &eventRing{max: max}
}

// Emit implements events.Emitter.
func (r *eventRing) Emit(event events.Event) {
	observability.Events().RecordEvent(event.EventType())
	switch ev := event.(type) {
	case events.GateRequested:
		metrics.Game().ObserveGateRequest(ev.Retry)
	case events.BatchProgress:
		metrics.Game().ObserveBatchWindow(ev.Task)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, event)
	if len(r.buf) > r.max {
		r.buf = r.buf[len(r.buf)-r.max:]
	}
}

// Snapshot copies the buffered events, newest last.
func (r *eventRing) Snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.buf))
	copy(out, r.buf)
	return out
}
