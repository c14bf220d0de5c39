package types

import "math/big"

// ReferralLocked is the sentinel written into an account's referral slot when
// binding is permanently closed. It blocks any later bind attempt.
var ReferralLocked = func() [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = 0xff
	}
	return out
}()

// Account is the per-player economic record. Balance is the liquid PURGE
// credit; Claimable accrues payouts until an explicit claim moves them to the
// balance.
type Account struct {
	Balance   *big.Int
	Claimable *big.Int
	// PendingFlip is the coinflip deposit riding on FlipRound's outcome.
	PendingFlip *big.Int
	FlipRound   uint64
	// Luckbox accumulates secondary draw eligibility from deposits, stake
	// maturation and settlement.
	Luckbox uint64
	// LastBurnDay tags the day-index of the player's most recent burn; the
	// standard advance path requires participation this day-cycle.
	LastBurnDay uint64
	TotalBurned *big.Int
	TotalStaked *big.Int
	TotalMints  uint64
	// Referrer holds the bound affiliate code hash, zero when unbound, or
	// ReferralLocked when binding is closed.
	Referrer [32]byte
}

// NewAccount returns a zero-value account with allocated amounts.
func NewAccount() *Account {
	return &Account{
		Balance:     big.NewInt(0),
		Claimable:   big.NewInt(0),
		PendingFlip: big.NewInt(0),
		TotalBurned: big.NewInt(0),
		TotalStaked: big.NewInt(0),
	}
}

// Clone deep-copies the account so engine mutations stay transactional.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := *a
	clone.Balance = copyBig(a.Balance)
	clone.Claimable = copyBig(a.Claimable)
	clone.PendingFlip = copyBig(a.PendingFlip)
	clone.TotalBurned = copyBig(a.TotalBurned)
	clone.TotalStaked = copyBig(a.TotalStaked)
	return &clone
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
