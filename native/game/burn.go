package game

import (
	"math/big"

	"degenerus/core/events"
	"degenerus/native/traits"
)

// PurchaseMints burns credit for queued mint entitlements while the purchase
// window is open. The payment seeds the next prize pool; the assets
// themselves are delivered by the mint drain batch at window close.
func (e *Engine) PurchaseMints(player [20]byte, count uint32, now int64) error {
	if e.state == nil {
		return errNilState
	}
	if count == 0 {
		return ErrNoAssets
	}
	round, err := e.state.Round()
	if err != nil {
		return err
	}
	if round.Phase != PhasePurchase || round.Delegate == DelegateMintPacking {
		return ErrWrongPhase
	}
	day := e.dayIndex(now)
	if day >= round.PurchaseDeadlineDay {
		return ErrWrongPhase
	}
	cost := new(big.Int).Mul(e.params.MintPrice, new(big.Int).SetUint64(uint64(count)))
	if err := e.ledger.Burn(player, cost); err != nil {
		return err
	}
	round.NextPrizePool = new(big.Int).Add(round.NextPrizePool, cost)
	if err := e.state.AppendMintQueue(MintOrder{Player: player, Count: count}); err != nil {
		return err
	}
	if err := e.ledger.TouchParticipation(player, day); err != nil {
		return err
	}
	if err := e.state.PutRound(round); err != nil {
		return err
	}
	e.emitter.Emit(events.MintsQueued{
		Player: player,
		Round:  round.Number,
		Count:  count,
		Paid:   cost.String(),
	})
	return nil
}

// BurnForReward destroys the caller's assets, consumes trait supply, pays a
// scaled reward pool slice, and ends the round on extinction naming the
// exterminated trait.
func (e *Engine) BurnForReward(caller [20]byte, ids []uint64, now int64) error {
	if e.state == nil {
		return errNilState
	}
	if len(ids) == 0 {
		return ErrNoAssets
	}
	round, err := e.state.Round()
	if err != nil {
		return err
	}
	if round.Phase != PhaseActive {
		return ErrWrongPhase
	}

	traitIDs, err := e.registry.BurnFromOwner(caller, ids)
	if err != nil {
		return err
	}
	result, err := e.traits.RecordBurn(round.Number, caller, traitIDs)
	if err != nil {
		return err
	}
	round.BurnedAssets += uint64(len(ids))

	reward := bpsOf(round.RewardPool, burnRewardBps)
	reward = bpsOf(reward, burnScaleBps(round.Number))
	if reward.Sign() > 0 {
		if err := e.ledger.Credit(caller, reward); err != nil {
			return err
		}
		round.RewardPool = new(big.Int).Sub(round.RewardPool, reward)
	}

	day := e.dayIndex(now)
	if err := e.ledger.TouchParticipation(caller, day); err != nil {
		return err
	}
	if e.achievements != nil {
		// Best effort: liveness never depends on the issuer.
		_ = e.achievements.MintAchievement(caller, round.Number, uint64(len(ids)))
	}
	e.emitter.Emit(events.AssetsBurned{
		Player: caller,
		Round:  round.Number,
		Assets: uint32(len(ids)),
		Reward: reward.String(),
	})

	if result.Ended {
		if err := e.endRound(round, result.Exterminated, caller, now); err != nil {
			return err
		}
	}
	return e.state.PutRound(round)
}

// Exterminator exposes the recorded round winner for queries.
func (e *Engine) Exterminator(round uint64) ([20]byte, bool, error) {
	if e.state == nil {
		return [20]byte{}, false, errNilState
	}
	return e.state.Exterminator(round)
}

// TimeoutTrait re-exports the sentinel for API callers.
const TimeoutTrait = traits.TimeoutTrait
