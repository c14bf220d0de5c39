package assets

import "degenerus/native/traits"

// BulkBonusEvery grants one owed airdrop credit per this many units the
// player purchased, counted cumulatively across orders. Owed credits are
// folded into the player's next drop.
const BulkBonusEvery = 10

// MintCredit is the per-player bulk-bonus ledger: cumulative purchased units
// against credits already redeemed. Bonus units never count as purchases.
type MintCredit struct {
	Purchased uint64
	Redeemed  uint64
}

// Owed reports the accrued credits not yet folded into a drop.
func (c *MintCredit) Owed() uint32 {
	if c == nil {
		return 0
	}
	earned := c.Purchased / BulkBonusEvery
	if earned <= c.Redeemed {
		return 0
	}
	return uint32(earned - c.Redeemed)
}

// Clone returns a copy to protect internal references.
func (c *MintCredit) Clone() *MintCredit {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Asset is one non-fungible unit. Gen ties it to the round generation it was
// minted for; only current-generation assets are burnable.
type Asset struct {
	Owner [20]byte
	Trait uint16
	Gen   uint64
}

// Clone returns a copy to protect internal references.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// Supplies tracks the live per-trait population of one generation.
type Supplies struct {
	Remaining [traits.TraitCount]uint32
}

// Clone returns a copy to protect internal references.
func (s *Supplies) Clone() *Supplies {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// Meta is the registry bookkeeping record.
type Meta struct {
	// NextID seeds asset identifiers; ids are monotonic across generations.
	NextID uint64
	// BaseGen is the current live generation. Advancing it retires the
	// previous cohort.
	BaseGen uint64
	// CohortStart is the first asset id of the generation being minted.
	// CohortOpen marks that at least one drop has landed since the last
	// base advance.
	CohortStart uint64
	CohortOpen  bool
	// SweepPos and SweepEnd bound the retired id range still awaiting
	// dormant cleanup. Every id is scanned exactly once.
	SweepPos uint64
	SweepEnd uint64
}

// Clone returns a copy to protect internal references.
func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}
