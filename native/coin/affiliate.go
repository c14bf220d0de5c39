package coin

import (
	"errors"
	"math/big"

	"degenerus/core/events"
	"degenerus/core/types"
)

// ErrNotCodeOwner rejects affiliate claims from anyone but the registrant.
var ErrNotCodeOwner = errors.New("coin engine: caller does not own code")

var zeroCode [32]byte

// routeAffiliate carves the affiliate slice out of a referred burn: a
// rakeback returns to the buyer, the referrer's own referrer takes an
// upline cut and the remainder accrues to the code's pending claim.
func (e *Engine) routeAffiliate(player [20]byte, code [32]byte, amount *big.Int) error {
	if code == zeroCode || code == types.ReferralLocked {
		return nil
	}
	record, ok, err := e.state.Affiliate(code)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	share := bpsShare(amount, e.params.AffiliateShareBps)
	if share.Sign() <= 0 {
		return nil
	}
	rakeback := bpsShare(share, e.params.RakebackBps)
	if err := e.Credit(player, rakeback); err != nil {
		return err
	}
	remainder := new(big.Int).Sub(share, rakeback)

	uplineCut := big.NewInt(0)
	if record.Upline != zeroCode && record.Upline != types.ReferralLocked {
		upline, uplineOK, err := e.state.Affiliate(record.Upline)
		if err != nil {
			return err
		}
		if uplineOK {
			uplineCut = bpsShare(remainder, e.params.UplineBps)
			if uplineCut.Sign() > 0 {
				upline.PendingClaim = new(big.Int).Add(upline.PendingClaim, uplineCut)
				upline.TotalEarned = new(big.Int).Add(upline.TotalEarned, uplineCut)
				if err := e.state.PutAffiliate(record.Upline, upline); err != nil {
					return err
				}
				if err := e.bumpLeaderboard(BoardAffiliates, upline.Owner, upline.TotalEarned); err != nil {
					return err
				}
			}
		}
	}

	earned := new(big.Int).Sub(remainder, uplineCut)
	record.PendingClaim = new(big.Int).Add(record.PendingClaim, earned)
	record.TotalEarned = new(big.Int).Add(record.TotalEarned, earned)
	if err := e.state.PutAffiliate(code, record); err != nil {
		return err
	}
	if err := e.bumpLeaderboard(BoardAffiliates, record.Owner, record.TotalEarned); err != nil {
		return err
	}
	e.emitter.Emit(events.AffiliateEarned{
		Code:     code,
		Amount:   earned.String(),
		Rakeback: rakeback.String(),
		Upline:   uplineCut.String(),
	})
	return nil
}

// RegisterCode claims an affiliate code for the caller. The registrant's own
// referrer, if any, becomes the code's upline.
func (e *Engine) RegisterCode(owner [20]byte, code [32]byte) error {
	if e.state == nil {
		return errNilState
	}
	if code == zeroCode || code == types.ReferralLocked {
		return ErrUnknownCode
	}
	_, exists, err := e.state.Affiliate(code)
	if err != nil {
		return err
	}
	if exists {
		return ErrCodeTaken
	}
	account, err := e.state.GetAccount(owner)
	if err != nil {
		return err
	}
	upline := account.Referrer
	if upline == types.ReferralLocked {
		upline = zeroCode
	}
	record := &AffiliateRecord{
		Owner:        owner,
		Upline:       upline,
		TotalEarned:  big.NewInt(0),
		PendingClaim: big.NewInt(0),
	}
	return e.state.PutAffiliate(code, record)
}

// BindReferral attaches a player to an affiliate code. The first bind wins
// and is permanent.
func (e *Engine) BindReferral(player [20]byte, code [32]byte) error {
	if e.state == nil {
		return errNilState
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return err
	}
	if account.Referrer != zeroCode {
		return ErrReferralBound
	}
	record, ok, err := e.state.Affiliate(code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownCode
	}
	if record.Owner == player {
		return ErrSelfReferral
	}
	account.Referrer = code
	if err := e.state.PutAccount(player, account); err != nil {
		return err
	}
	e.emitter.Emit(events.ReferralBound{Player: player, Code: code})
	return nil
}

// OptOutReferral permanently locks the player out of the affiliate program
// by writing the all-ones sentinel. Only unbound players may opt out.
func (e *Engine) OptOutReferral(player [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return err
	}
	if account.Referrer != zeroCode {
		return ErrReferralBound
	}
	account.Referrer = types.ReferralLocked
	return e.state.PutAccount(player, account)
}

// ClaimAffiliate moves a code's accrued earnings into the owner's claimable.
func (e *Engine) ClaimAffiliate(caller [20]byte, code [32]byte) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	record, ok, err := e.state.Affiliate(code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownCode
	}
	if record.Owner != caller {
		return nil, ErrNotCodeOwner
	}
	if record.PendingClaim.Sign() <= 0 {
		return nil, ErrNothingToClaim
	}
	claimed := record.PendingClaim
	record.PendingClaim = big.NewInt(0)
	if err := e.state.PutAffiliate(code, record); err != nil {
		return nil, err
	}
	if err := e.Credit(caller, claimed); err != nil {
		return nil, err
	}
	return claimed, nil
}

// AffiliateRecordOf exposes a code's record for queries.
func (e *Engine) AffiliateRecordOf(code [32]byte) (*AffiliateRecord, bool, error) {
	if e.state == nil {
		return nil, false, errNilState
	}
	return e.state.Affiliate(code)
}
