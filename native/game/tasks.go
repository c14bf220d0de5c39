package game

import (
	"math/big"

	"degenerus/core/events"
	"degenerus/native/batch"
	"degenerus/native/traits"
)

// settlementTask settles the previous round's stake lanes and pending flips.
// Headline payouts (exterminator share, extermination jackpot, decade
// jackpots) run once at arm time; the population is the union of the stake
// and flip rosters, walked from an entropy-derived offset so the settlement
// order varies round to round.
type settlementTask struct {
	engine *Engine
	round  *Round
	prev   uint64
	won    bool

	loaded   bool
	offset   uint64
	stakers  [][20]byte
	flippers [][20]byte
}

func (e *Engine) settlementTask(round *Round) *settlementTask {
	return &settlementTask{
		engine: e,
		round:  round,
		prev:   round.Number - 1,
		won:    round.LastExterminatedTrait != traits.TimeoutTrait,
	}
}

func (t *settlementTask) load() error {
	if t.loaded {
		return nil
	}
	stakers, err := t.engine.ledger.StakeRoster(t.prev)
	if err != nil {
		return err
	}
	flippers, err := t.engine.ledger.FlipRoster(t.prev)
	if err != nil {
		return err
	}
	t.stakers = stakers
	t.flippers = flippers
	// Derived from durable state so resumed invocations agree on the walk.
	t.offset = batch.StartOffset(t.round.EntropyWord, uint64(len(stakers)+len(flippers)))
	t.loaded = true
	return nil
}

func (t *settlementTask) Arm(word [32]byte) (uint64, error) {
	if err := t.load(); err != nil {
		return 0, err
	}
	if t.won {
		if err := t.payExterminator(word); err != nil {
			return 0, err
		}
	}
	if err := t.payDecadeJackpots(word); err != nil {
		return 0, err
	}
	return uint64(len(t.stakers) + len(t.flippers)), nil
}

// payExterminator credits the exterminator's prize pool cut and runs the
// extermination jackpot over the exterminated trait's ticket holders.
func (t *settlementTask) payExterminator(word [32]byte) error {
	e := t.engine
	round := t.round
	exterminator, ok, err := e.state.Exterminator(t.prev)
	if err != nil {
		return err
	}
	if ok {
		share := bpsOf(round.PrizePool, exterminatorShareBps(t.prev))
		if share.Sign() > 0 {
			if err := e.ledger.Credit(exterminator, share); err != nil {
				return err
			}
			round.PrizePool = new(big.Int).Sub(round.PrizePool, share)
			e.emitter.Emit(events.JackpotWon{
				Round:  t.prev,
				Kind:   "exterminator",
				Trait:  round.LastExterminatedTrait,
				Winner: exterminator,
				Amount: share.String(),
			})
		}
		if e.achievements != nil {
			// Best effort: liveness never depends on the issuer.
			_ = e.achievements.MintAchievement(exterminator, t.prev, uint64(round.LastExterminatedTrait))
		}
	}

	// Extermination jackpot: four bucket draws over the exterminated
	// trait's tickets, chained through the entropy state.
	jackpotPool := new(big.Int).Set(round.PrizePool)
	state := seedEntropy(word, t.prev)
	trait := round.LastExterminatedTrait
	for i := uint64(0); i < 4; i++ {
		share := bpsOf(jackpotPool, TraitBucketShareBps)
		state = mixBucket(state, i, share)
		tickets, err := e.traits.Tickets(t.prev, trait)
		if err != nil {
			return err
		}
		if len(tickets) == 0 || share.Sign() <= 0 {
			continue
		}
		idx := drawTicket(state, trait, 200+i, uint64(len(tickets)))
		winner := tickets[idx]
		if err := e.ledger.Credit(winner, share); err != nil {
			return err
		}
		round.PrizePool = new(big.Int).Sub(round.PrizePool, share)
		e.emitter.Emit(events.JackpotWon{
			Round:  t.prev,
			Kind:   "extermination",
			Trait:  trait,
			Winner: winner,
			Amount: share.String(),
		})
	}
	return nil
}

// payDecadeJackpots pays the reward pool jackpots owed at decade and
// mid-decade round ends: one winner drawn from the flip roster, one from the
// stake roster.
func (t *settlementTask) payDecadeJackpots(word [32]byte) error {
	e := t.engine
	round := t.round
	state := seedEntropy(word, t.prev)
	entropyStep(state)

	if bps := bafJackpotBps(t.prev); bps > 0 && len(t.flippers) > 0 {
		amount := bpsOf(round.RewardPool, bps)
		if amount.Sign() > 0 {
			idx := drawTicket(state, 0, 300, uint64(len(t.flippers)))
			winner := t.flippers[idx]
			if err := e.ledger.Credit(winner, amount); err != nil {
				return err
			}
			round.RewardPool = new(big.Int).Sub(round.RewardPool, amount)
			e.emitter.Emit(events.JackpotWon{Round: t.prev, Kind: "baf", Winner: winner, Amount: amount.String()})
		}
	}
	if bps := decimatorBps(t.prev); bps > 0 && len(t.stakers) > 0 {
		amount := bpsOf(round.RewardPool, bps)
		if amount.Sign() > 0 {
			idx := drawTicket(state, 0, 301, uint64(len(t.stakers)))
			winner := t.stakers[idx]
			if err := e.ledger.Credit(winner, amount); err != nil {
				return err
			}
			round.RewardPool = new(big.Int).Sub(round.RewardPool, amount)
			e.emitter.Emit(events.JackpotWon{Round: t.prev, Kind: "decimator", Winner: winner, Amount: amount.String()})
		}
	}
	return nil
}

// Process maps positions onto the population through the start offset with
// wraparound, settling every participant exactly once.
func (t *settlementTask) Process(start, end uint64) error {
	if err := t.load(); err != nil {
		return err
	}
	nStakers := uint64(len(t.stakers))
	population := nStakers + uint64(len(t.flippers))
	for pos := start; pos < end; pos++ {
		idx := (pos + t.offset) % population
		if idx < nStakers {
			if _, err := t.engine.ledger.SettleStakes(t.prev, t.stakers[idx], t.won); err != nil {
				return err
			}
			continue
		}
		if _, err := t.engine.ledger.SettleFlip(t.prev, t.flippers[idx-nStakers], t.won); err != nil {
			return err
		}
	}
	return nil
}

func (t *settlementTask) Finish() error {
	return t.engine.ledger.ClearRound(t.prev)
}

// mintTask drains the queued mint orders through the asset registry at
// purchase close.
type mintTask struct {
	engine *Engine
	round  *Round

	loaded bool
	queue  []MintOrder
	word   [32]byte
}

func (e *Engine) mintTask(round *Round) *mintTask {
	return &mintTask{engine: e, round: round, word: round.EntropyWord}
}

func (t *mintTask) load() error {
	if t.loaded {
		return nil
	}
	queue, err := t.engine.state.MintQueue()
	if err != nil {
		return err
	}
	t.queue = queue
	t.loaded = true
	return nil
}

func (t *mintTask) Arm(word [32]byte) (uint64, error) {
	if err := t.load(); err != nil {
		return 0, err
	}
	t.word = word
	return uint64(len(t.queue)), nil
}

func (t *mintTask) Process(start, end uint64) error {
	if err := t.load(); err != nil {
		return err
	}
	for pos := start; pos < end; pos++ {
		order := t.queue[pos]
		if err := t.engine.registry.MintAirdrop(order.Player, order.Count, t.word); err != nil {
			return err
		}
	}
	return nil
}

func (t *mintTask) Finish() error {
	return t.engine.state.ClearMintQueue()
}

// jackpotTask distributes the purchase-close jackpot pro rata over the
// queued mint orders. Dust left by integer division rolls into the reward
// pool at teardown.
type jackpotTask struct {
	engine *Engine
	round  *Round

	loaded bool
	queue  []MintOrder
}

func (e *Engine) jackpotTask(round *Round) *jackpotTask {
	return &jackpotTask{engine: e, round: round}
}

func (t *jackpotTask) load() error {
	if t.loaded {
		return nil
	}
	queue, err := t.engine.state.MintQueue()
	if err != nil {
		return err
	}
	t.queue = queue
	t.loaded = true
	return nil
}

func (t *jackpotTask) Arm(word [32]byte) (uint64, error) {
	if err := t.load(); err != nil {
		return 0, err
	}
	return uint64(len(t.queue)), nil
}

func (t *jackpotTask) Process(start, end uint64) error {
	if err := t.load(); err != nil {
		return err
	}
	for pos := start; pos < end; pos++ {
		order := t.queue[pos]
		share := new(big.Int).Mul(t.round.ClosePerUnit, new(big.Int).SetUint64(uint64(order.Count)))
		if share.Sign() <= 0 {
			continue
		}
		if err := t.engine.ledger.Credit(order.Player, share); err != nil {
			return err
		}
		t.round.CloseJackpot = new(big.Int).Sub(t.round.CloseJackpot, share)
	}
	return nil
}

func (t *jackpotTask) Finish() error {
	// Dust and no-ticket remainders return to the reward pool.
	if t.round.CloseJackpot != nil && t.round.CloseJackpot.Sign() > 0 {
		t.round.RewardPool = new(big.Int).Add(t.round.RewardPool, t.round.CloseJackpot)
	}
	t.round.CloseJackpot = big.NewInt(0)
	t.round.ClosePerUnit = big.NewInt(0)
	return nil
}
