package coin

import (
	"math/big"

	"degenerus/core/events"
)

// DepositCoinflip burns the amount into a pending flip riding on the given
// round's outcome. One unresolved flip per player at a time.
func (e *Engine) DepositCoinflip(player [20]byte, amount *big.Int, round, dayIndex uint64) error {
	if err := e.checkAmount(amount); err != nil {
		return err
	}
	if amount.Cmp(e.params.MinFlip) < 0 {
		return ErrBelowMinimum
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return err
	}
	if account.PendingFlip.Sign() > 0 && account.FlipRound != round {
		return ErrFlipPending
	}
	fresh := account.PendingFlip.Sign() == 0
	if err := e.burnIn(player, amount, dayIndex); err != nil {
		return err
	}
	// Reload: burnIn rewrote the account.
	account, err = e.state.GetAccount(player)
	if err != nil {
		return err
	}
	account.PendingFlip = new(big.Int).Add(account.PendingFlip, amount)
	account.FlipRound = round
	if err := e.state.PutAccount(player, account); err != nil {
		return err
	}
	if fresh {
		if err := e.state.AppendFlipRoster(round, player); err != nil {
			return err
		}
	}
	e.emitter.Emit(events.FlipDeposited{Player: player, Round: round, Amount: amount.String()})
	return nil
}

// Stake burns principal into the 12-bucket lane book for a future round.
// Stakes landing on the same (round, player, risk) bucket merge; the fixed
// bucket count bounds storage per slot.
func (e *Engine) Stake(player [20]byte, amount *big.Int, targetRound uint64, risk uint8, currentRound, dayIndex uint64) error {
	if err := e.checkAmount(amount); err != nil {
		return err
	}
	if amount.Cmp(e.params.MinStake) < 0 {
		return ErrBelowMinimum
	}
	if risk < 1 || risk > MaxRisk {
		return ErrRiskRange
	}
	if targetRound <= currentRound || targetRound-currentRound > MaxStakeDistance {
		return ErrStakeDistance
	}
	distance := targetRound - currentRound
	if err := e.burnIn(player, amount, dayIndex); err != nil {
		return err
	}
	principal := e.params.CompoundPrincipal(amount, risk, distance)

	book, err := e.state.LaneBook(targetRound, player)
	if err != nil {
		return err
	}
	wasEmpty := book.Empty()
	bucket := book.Principals[risk-1]
	book.Principals[risk-1] = new(big.Int).Add(bucket, principal)
	if err := e.state.PutLaneBook(targetRound, player, book); err != nil {
		return err
	}
	if wasEmpty {
		if err := e.state.AppendStakeRoster(targetRound, player); err != nil {
			return err
		}
	}

	account, err := e.state.GetAccount(player)
	if err != nil {
		return err
	}
	account.TotalStaked = new(big.Int).Add(account.TotalStaked, amount)
	score := new(big.Int).Set(account.TotalStaked)
	if err := e.state.PutAccount(player, account); err != nil {
		return err
	}
	if err := e.bumpLeaderboard(BoardStakers, player, score); err != nil {
		return err
	}

	e.emitter.Emit(events.StakePlaced{
		Player:      player,
		TargetRound: targetRound,
		Risk:        risk,
		Burned:      amount.String(),
		Principal:   principal.String(),
	})
	return nil
}

// StakeRoster lists players holding lanes that settle at the given round.
func (e *Engine) StakeRoster(round uint64) ([][20]byte, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.StakeRoster(round)
}

// FlipRoster lists players with pending flips riding on the given round.
func (e *Engine) FlipRoster(round uint64) ([][20]byte, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.FlipRoster(round)
}

// SettleStakes resolves one player's lane book for a settled round. On a won
// round risk-1 lanes pay out and deeper lanes roll forward with decremented
// risk and boosted principal; on a lost round the whole book is forfeited.
// The returned amount is what was credited to the player.
func (e *Engine) SettleStakes(round uint64, player [20]byte, won bool) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	book, err := e.state.LaneBook(round, player)
	if err != nil {
		return nil, err
	}
	paid := big.NewInt(0)
	if book.Empty() {
		return paid, nil
	}
	if !won {
		forfeited := big.NewInt(0)
		for _, principal := range book.Principals {
			if principal != nil {
				forfeited.Add(forfeited, principal)
			}
		}
		if err := e.state.DeleteLaneBook(round, player); err != nil {
			return nil, err
		}
		e.emitter.Emit(events.LaneForfeited{Player: player, Round: round, Amount: forfeited.String()})
		return paid, nil
	}

	// Risk-1 bucket matures.
	if mature := book.Principals[0]; mature != nil && mature.Sign() > 0 {
		if err := e.Credit(player, mature); err != nil {
			return nil, err
		}
		paid = new(big.Int).Set(mature)
		account, err := e.state.GetAccount(player)
		if err != nil {
			return nil, err
		}
		account.Luckbox += luckboxPoints(mature, e.params.LuckboxDenom)
		if err := e.state.PutAccount(player, account); err != nil {
			return nil, err
		}
		e.emitter.Emit(events.LanePaid{Player: player, Round: round, Amount: mature.String()})
	}

	// Deeper buckets survive into the next round, one risk step shallower.
	next, err := e.state.LaneBook(round+1, player)
	if err != nil {
		return nil, err
	}
	nextWasEmpty := next.Empty()
	rolled := false
	for risk := 2; risk <= MaxRisk; risk++ {
		principal := book.Principals[risk-1]
		if principal == nil || principal.Sign() == 0 {
			continue
		}
		boosted := bpsShare(principal, e.params.WinBoostBps)
		next.Principals[risk-2] = new(big.Int).Add(next.Principals[risk-2], boosted)
		rolled = true
		e.emitter.Emit(events.LaneRolled{
			Player:    player,
			FromRound: round,
			Risk:      uint8(risk - 1),
			Principal: boosted.String(),
		})
	}
	if rolled {
		if err := e.state.PutLaneBook(round+1, player, next); err != nil {
			return nil, err
		}
		if nextWasEmpty {
			if err := e.state.AppendStakeRoster(round+1, player); err != nil {
				return nil, err
			}
		}
	}
	if err := e.state.DeleteLaneBook(round, player); err != nil {
		return nil, err
	}
	return paid, nil
}

// SettleFlip resolves one player's pending flip for a settled round. A win
// pays double minus the house edge; a loss zeroes the deposit.
func (e *Engine) SettleFlip(round uint64, player [20]byte, won bool) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return nil, err
	}
	if account.PendingFlip.Sign() == 0 || account.FlipRound != round {
		return big.NewInt(0), nil
	}
	stakeAmt := account.PendingFlip
	account.PendingFlip = big.NewInt(0)
	payout := big.NewInt(0)
	if won {
		payout = bpsShare(new(big.Int).Lsh(stakeAmt, 1), BpsDenominator-e.params.HouseEdgeBps)
		account.Claimable = new(big.Int).Add(account.Claimable, payout)
		account.Luckbox += luckboxPoints(payout, e.params.LuckboxDenom)
	}
	if err := e.state.PutAccount(player, account); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.FlipSettled{Player: player, Round: round, Won: won, Payout: payout.String()})
	return payout, nil
}

// ClearRound drops the settled round's rosters during batch teardown.
func (e *Engine) ClearRound(round uint64) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.state.ClearStakeRoster(round); err != nil {
		return err
	}
	return e.state.ClearFlipRoster(round)
}

// LaneBook exposes a player's lanes for a round.
func (e *Engine) LaneBook(round uint64, player [20]byte) (*LaneBook, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.LaneBook(round, player)
}
