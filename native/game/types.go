package game

import "math/big"

// Phase is the round sub-state. Phases only move forward within a round;
// Shutdown is terminal.
type Phase uint8

const (
	PhaseShutdown Phase = iota
	PhasePregame
	PhasePurchase
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseShutdown:
		return "shutdown"
	case PhasePregame:
		return "pregame"
	case PhasePurchase:
		return "purchase"
	case PhaseActive:
		return "active"
	}
	return "unknown"
}

// Delegate selects one of the fixed settlement code paths. Dispatch is a
// switch over this closed set.
type Delegate uint8

const (
	DelegateEndgame Delegate = iota
	DelegateMintPacking
	DelegateBondUpkeep
)

// Batch cursor slots persisted per concern.
const (
	cursorSettlement = "settlement"
	cursorMintDrain  = "mintdrain"
	cursorJackpot    = "jackpot"
)

const (
	// MaxDailyJackpots caps the per-round jackpot counter; reaching it
	// forces a timeout round end.
	MaxDailyJackpots = 10
	// CheckpointInterval marks the rounds that pay the checkpoint jackpot
	// at purchase close.
	CheckpointInterval = 100
	// TraitBucketShareBps is the jackpot slice paid per winning-trait
	// bucket; four buckets leave the remainder in the pool.
	TraitBucketShareBps = 2000
	// BpsDenominator for all pool math.
	BpsDenominator = 10_000
)

// dailyJackpotBps is the per-day prize pool slice schedule, indexed by the
// round's jackpot counter. Black-box policy table.
var dailyJackpotBps = [MaxDailyJackpots]uint64{610, 677, 746, 813, 881, 949, 1017, 1085, 1153, 1225}

// Round is the top-level progression unit.
type Round struct {
	Number   uint64
	Phase    Phase
	Delegate Delegate

	PrizePool     *big.Int
	NextPrizePool *big.Int
	RewardPool    *big.Int
	// CloseJackpot is the purchase-close payout distributed by the jackpot
	// batch over the queued mint orders; ClosePerUnit is the stable per-mint
	// share fixed when the window closes.
	CloseJackpot *big.Int
	ClosePerUnit *big.Int

	BurnedAssets   uint64
	JackpotCounter uint8
	DayIndex       uint64

	// EntropyWord is the last consumed gate word; round-end settlement for
	// this round draws from it.
	EntropyWord [32]byte
	// LastExterminatedTrait names how the previous round ended; the
	// timeout sentinel marks a jackpot-cap end with no exterminator.
	LastExterminatedTrait uint16

	// PurchaseDeadlineDay closes the purchase window.
	PurchaseDeadlineDay uint64

	StartedAt      int64
	LastProgressAt int64
}

// NewRound returns an initialized round with allocated pools.
func NewRound(number uint64) *Round {
	return &Round{
		Number:        number,
		Phase:         PhasePregame,
		PrizePool:     big.NewInt(0),
		NextPrizePool: big.NewInt(0),
		RewardPool:    big.NewInt(0),
		CloseJackpot:  big.NewInt(0),
		ClosePerUnit:  big.NewInt(0),
	}
}

// Clone deep-copies the round.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	clone := *r
	clone.PrizePool = copyBig(r.PrizePool)
	clone.NextPrizePool = copyBig(r.NextPrizePool)
	clone.RewardPool = copyBig(r.RewardPool)
	clone.CloseJackpot = copyBig(r.CloseJackpot)
	clone.ClosePerUnit = copyBig(r.ClosePerUnit)
	return &clone
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// MintOrder is one queued mint/airdrop entitlement drained at purchase
// close.
type MintOrder struct {
	Player [20]byte
	Count  uint32
}

// Params carries game scheduling configuration.
type Params struct {
	// DaySeconds is the day-index length.
	DaySeconds int64
	// PurchaseDays is how many day-indices the purchase window stays open.
	PurchaseDays uint64
	// IdleShutdownDays forces terminal shutdown after this many day-indices
	// without progress.
	IdleShutdownDays uint64
	// MintPrice is the credit burned per queued mint.
	MintPrice *big.Int
	// EndSupplyFlag offsets the trait extinction threshold.
	EndSupplyFlag uint32
}

// DefaultParams returns the production schedule.
func DefaultParams() Params {
	return Params{
		DaySeconds:       86_400,
		PurchaseDays:     2,
		IdleShutdownDays: 14,
		MintPrice:        big.NewInt(10_000_000_000),
		EndSupplyFlag:    0,
	}
}

// --- policy tables (tuned game balance, preserved as black boxes) ---

// rewardPoolNumerator returns the /200 numerator of the reward pool
// reallocation at purchase close.
func rewardPoolNumerator(round uint64) uint64 {
	var base uint64
	switch {
	case round <= 4:
		base = (8 + (round-1)*8) * 2
	case round <= 79:
		base = 64 + (round - 4)
	default:
		base = 130
	}
	base += 20
	if base > 196 {
		base = 196
	}
	return base
}

// mapJackpotBps is the purchase-close jackpot slice of the post-reallocation
// jackpot base.
func mapJackpotBps(round uint64) uint64 {
	if round%20 == 16 {
		return 4000
	}
	return 3000
}

// exterminatorShareBps is the exterminator's prize pool cut for the round
// that just ended.
func exterminatorShareBps(prev uint64) uint64 {
	if prev%10 == 4 && prev != 4 {
		return 4000
	}
	return 3000
}

// bafJackpotBps is the reward pool slice paid at decade round ends.
func bafJackpotBps(prev uint64) uint64 {
	if prev == 0 || prev%10 != 0 {
		return 0
	}
	if prev == 50 {
		return 2500
	}
	return 1000
}

// decimatorBps is the reward pool slice paid at mid-decade round ends.
func decimatorBps(prev uint64) uint64 {
	if prev%10 == 5 && prev >= 15 && prev%100 != 95 {
		return 1500
	}
	return 0
}

// burnScaleBps discounts the per-burn reward slice across the hundred-round
// cycle, floored at half.
func burnScaleBps(round uint64) uint64 {
	cycle := (round - 1) % 100
	discount := cycle * 5000 / 99
	scale := 10_000 - discount
	if scale < 5000 {
		scale = 5000
	}
	return scale
}

// burnRewardBps is the reward pool slice paid per burn action before
// scaling.
const burnRewardBps = 200
