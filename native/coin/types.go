package coin

import (
	"errors"
	"fmt"
	"math/big"
)

const (
	// BpsDenominator is the fixed denominator used for basis point math.
	BpsDenominator = 10_000
	// MaxRisk bounds the stake risk radius; lanes live in a fixed 12-bucket
	// array keyed by risk.
	MaxRisk = 12
	// MaxStakeDistance bounds how far ahead of the current round a stake may
	// target.
	MaxStakeDistance = 36
	// BoardSize is the leaderboard depth kept per board.
	BoardSize = 8
)

// Leaderboard names. Two independent boards are maintained.
const (
	BoardAffiliates = "affiliates"
	BoardStakers    = "stakers"
)

// LaneBook is the fixed per-(round, player) stake storage: one bucket per
// risk value, index risk-1. A zero principal marks an empty bucket.
type LaneBook struct {
	Principals [MaxRisk]*big.Int
}

// NewLaneBook returns a book with allocated buckets.
func NewLaneBook() *LaneBook {
	book := &LaneBook{}
	for i := range book.Principals {
		book.Principals[i] = big.NewInt(0)
	}
	return book
}

// Clone deep-copies the book.
func (b *LaneBook) Clone() *LaneBook {
	clone := NewLaneBook()
	if b == nil {
		return clone
	}
	for i, p := range b.Principals {
		if p != nil {
			clone.Principals[i] = new(big.Int).Set(p)
		}
	}
	return clone
}

// Empty reports whether every bucket is zero.
func (b *LaneBook) Empty() bool {
	if b == nil {
		return true
	}
	for _, p := range b.Principals {
		if p != nil && p.Sign() > 0 {
			return false
		}
	}
	return true
}

// BoardEntry is one leaderboard seat.
type BoardEntry struct {
	Player [20]byte
	Score  *big.Int
}

// Leaderboard is an ordered top-K list. A separate reverse player index in
// state provides O(1) membership checks.
type Leaderboard struct {
	Entries []BoardEntry
}

// Clone deep-copies the board.
func (l *Leaderboard) Clone() *Leaderboard {
	clone := &Leaderboard{}
	if l == nil {
		return clone
	}
	clone.Entries = make([]BoardEntry, len(l.Entries))
	for i, e := range l.Entries {
		clone.Entries[i] = BoardEntry{Player: e.Player, Score: new(big.Int).Set(e.Score)}
	}
	return clone
}

// AffiliateRecord tracks a registered referral code.
type AffiliateRecord struct {
	Owner        [20]byte
	Upline       [32]byte
	TotalEarned  *big.Int
	PendingClaim *big.Int
}

// Clone deep-copies the record.
func (r *AffiliateRecord) Clone() *AffiliateRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.TotalEarned = copyBig(r.TotalEarned)
	clone.PendingClaim = copyBig(r.PendingClaim)
	return &clone
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Params carries the economic policy constants. The growth and payout curves
// are tuned game balance preserved as black-box tables.
type Params struct {
	// MinFlip and MinStake floor deposit sizes.
	MinFlip  *big.Int
	MinStake *big.Int
	// HouseEdgeBps shaves the coinflip payout below 2x.
	HouseEdgeBps uint64
	// WinBoostBps multiplies a surviving lane's principal per winning round.
	WinBoostBps uint64
	// GrowthBaseBps and GrowthRiskBps set the per-round-of-distance
	// compounding applied at stake time: base + risk*riskStep.
	GrowthBaseBps uint64
	GrowthRiskBps uint64
	// LuckboxDenom converts deposited amounts into luckbox points.
	LuckboxDenom *big.Int
	// AffiliateShareBps routes a slice of every referred burn through the
	// affiliate program; RakebackBps of it returns to the buyer and
	// UplineBps of the referrer's cut passes through to their own referrer.
	AffiliateShareBps uint64
	RakebackBps       uint64
	UplineBps         uint64
	// BountyShareBps feeds the advance-caller bounty pool on every burn.
	BountyShareBps uint64
	// BountyPayoutBps is the slice of the pool paid per standard advance.
	BountyPayoutBps uint64
}

// DefaultParams returns the production policy table.
func DefaultParams() Params {
	return Params{
		MinFlip:           big.NewInt(1_000_000_000),
		MinStake:          big.NewInt(1_000_000_000),
		HouseEdgeBps:      475,
		WinBoostBps:       19_525,
		GrowthBaseBps:     500,
		GrowthRiskBps:     125,
		LuckboxDenom:      big.NewInt(1_000_000_000),
		AffiliateShareBps: 1_000,
		RakebackBps:       2_500,
		UplineBps:         1_000,
		BountyShareBps:    100,
		BountyPayoutBps:   500,
	}
}

// Validate ensures the policy values stay within basis point bounds.
func (p Params) Validate() error {
	if p.HouseEdgeBps >= BpsDenominator {
		return fmt.Errorf("house edge must be < %d bps", BpsDenominator)
	}
	if p.WinBoostBps <= BpsDenominator {
		return errors.New("win boost must exceed 1x")
	}
	for _, bps := range []uint64{p.AffiliateShareBps, p.RakebackBps, p.UplineBps, p.BountyShareBps, p.BountyPayoutBps} {
		if bps > BpsDenominator {
			return fmt.Errorf("share %d exceeds %d bps", bps, BpsDenominator)
		}
	}
	if p.LuckboxDenom == nil || p.LuckboxDenom.Sign() <= 0 {
		return errors.New("luckbox denominator must be positive")
	}
	return nil
}

// CompoundPrincipal applies the distance compounding at stake time:
// distance rounds of (base + risk*step) bps growth.
func (p Params) CompoundPrincipal(amount *big.Int, risk uint8, distance uint64) *big.Int {
	growth := new(big.Int).SetUint64(BpsDenominator + p.GrowthBaseBps + p.GrowthRiskBps*uint64(risk))
	denom := new(big.Int).SetUint64(BpsDenominator)
	out := new(big.Int).Set(amount)
	for i := uint64(0); i < distance; i++ {
		out.Mul(out, growth)
		out.Quo(out, denom)
	}
	return out
}
