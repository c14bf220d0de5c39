package core

import (
	"errors"
	"math/big"
	"testing"

	"degenerus/native/game"
	"degenerus/native/gate"
	"degenerus/storage"
)

type stubOracle struct {
	requests []oracleRequest
}

type oracleRequest struct {
	id  uint64
	day uint64
}

func (o *stubOracle) RequestWord(requestID uint64, dayIndex uint64) error {
	o.requests = append(o.requests, oracleRequest{id: requestID, day: dayIndex})
	return nil
}

func testAddr(b byte) [20]byte {
	var a [20]byte
	a[0] = b
	return a
}

// Drives one full round over a fresh store: genesis purchase window, mint
// queue drain, extinction burn, and the next round's settlement batch.
func TestWorldFullRoundLifecycle(t *testing.T) {
	db := storage.NewMemDB()
	oracle := &stubOracle{}
	t0 := int64(19676 * 86400)
	day1 := t0 + 86400
	day2 := t0 + 2*86400

	w, err := NewWorld(db, DefaultConfig(), oracle, t0)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	player := testAddr(1)

	round, err := w.Round()
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if round.Number != 1 || round.Phase != game.PhasePurchase {
		t.Fatalf("genesis round = %d phase %v", round.Number, round.Phase)
	}

	if err := w.MintCredits(player, big.NewInt(100_000_000_000)); err != nil {
		t.Fatalf("mint credits: %v", err)
	}
	if err := w.PurchaseMints(player, 1, t0); err != nil {
		t.Fatalf("purchase mints: %v", err)
	}

	// Same day: nothing to advance.
	if err := w.Advance(player, true, t0); !errors.Is(err, game.ErrNothingToAdvance) {
		t.Fatalf("same-day advance err = %v", err)
	}

	// Day rolls: the gate request must survive the retry-later return.
	if err := w.Advance(player, true, day1); !errors.Is(err, game.ErrAwaitingRandomness) {
		t.Fatalf("pre-word advance err = %v", err)
	}
	if len(oracle.requests) != 1 || oracle.requests[0].id != 1 {
		t.Fatalf("oracle requests = %+v", oracle.requests)
	}
	var word [32]byte
	word[0] = 0xd3
	word[31] = 0x41
	if err := w.FulfillRandomness(1, word, [20]byte{}); err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if err := w.Advance(player, true, day1); err != nil {
		t.Fatalf("day-1 advance: %v", err)
	}

	// Window close pipeline: reallocation, close jackpot, mint drain, active.
	steps := 0
	for {
		round, err = w.Round()
		if err != nil {
			t.Fatalf("round: %v", err)
		}
		if round.Phase == game.PhaseActive {
			break
		}
		if steps > 10 {
			t.Fatalf("purchase close never reached active, phase %v", round.Phase)
		}
		if err := w.Advance(player, true, day2); err != nil {
			t.Fatalf("close advance %d: %v", steps, err)
		}
		steps++
	}
	// Reallocation, then one invocation drains both the close jackpot and
	// the mint queue and goes active.
	if steps != 2 {
		t.Fatalf("close pipeline steps = %d, want 2", steps)
	}
	if got := round.RewardPool.Int64(); got != 1_800_000_000 {
		t.Fatalf("reward pool = %d", got)
	}
	if got := round.PrizePool.Int64(); got != 5_740_000_000 {
		t.Fatalf("prize pool = %d", got)
	}

	asset, ok, err := w.Asset(0)
	if err != nil || !ok {
		t.Fatalf("asset 0 = %v ok=%v", err, ok)
	}
	if asset.Owner != player {
		t.Fatalf("asset owner = %x", asset.Owner)
	}
	view, err := w.Player(player)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	// Close jackpot paid pro rata over the single queued mint.
	if view.Claimable.Int64() != 2_460_000_000 {
		t.Fatalf("claimable after close = %d", view.Claimable)
	}

	// Burning the sole asset exterminates its trait and ends the round.
	if err := w.BurnForReward(player, []uint64{0}, day2+100); err != nil {
		t.Fatalf("burn: %v", err)
	}
	round, err = w.Round()
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if round.Number != 2 || round.Phase != game.PhasePregame {
		t.Fatalf("post-burn round = %d phase %v", round.Number, round.Phase)
	}
	if round.LastExterminatedTrait != asset.Trait {
		t.Fatalf("exterminated trait = %d, want %d", round.LastExterminatedTrait, asset.Trait)
	}
	winner, ok, err := w.Exterminator(1)
	if err != nil || !ok || winner != player {
		t.Fatalf("exterminator = %x ok=%v err=%v", winner, ok, err)
	}

	// Settlement batch: headline payouts on arm, then the purchase window of
	// round two opens.
	if err := w.ProcessSettlementBatch(0, day2+200); err != nil {
		t.Fatalf("settlement: %v", err)
	}
	if err := w.ProcessSettlementBatch(0, day2+300); err != nil {
		t.Fatalf("bond upkeep: %v", err)
	}
	round, err = w.Round()
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if round.Phase != game.PhasePurchase {
		t.Fatalf("round 2 phase = %v", round.Phase)
	}

	// Close jackpot + burn reward + exterminator share + extermination
	// jackpot buckets.
	claimed, err := w.Claim(player)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Int64() != 7_432_400_000 {
		t.Fatalf("claimed = %d", claimed)
	}
	view, err = w.Player(player)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if view.Balance.Int64() != 97_432_400_000 {
		t.Fatalf("balance = %d", view.Balance)
	}

	// Reopening over the same store resumes without re-seeding genesis.
	w2, err := NewWorld(db, DefaultConfig(), oracle, day2+400)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	round, err = w2.Round()
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if round.Number != 2 || round.Phase != game.PhasePurchase {
		t.Fatalf("reopened round = %d phase %v", round.Number, round.Phase)
	}
}

// An oracle outage freezes the round's day-index, so the stall signal and the
// rotation window must follow the wall clock instead.
func TestGateStallSurfacesDuringOracleOutage(t *testing.T) {
	db := storage.NewMemDB()
	oracle := &stubOracle{}
	authority := testAddr(9)
	cfg := DefaultConfig()
	cfg.Gate.EmergencyAuthority = authority
	t0 := int64(19676 * 86400)
	day1 := t0 + 86400

	w, err := NewWorld(db, cfg, oracle, t0)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	player := testAddr(1)

	// Entropy requested on day one; the oracle never answers.
	if err := w.Advance(player, true, day1); !errors.Is(err, game.ErrAwaitingRandomness) {
		t.Fatalf("pre-word advance err = %v", err)
	}
	if _, stalled, err := w.GateStatus(day1); err != nil || stalled {
		t.Fatalf("stalled on day one: %v err=%v", stalled, err)
	}
	if err := w.RotateProvider(authority, testAddr(5), day1); !errors.Is(err, gate.ErrNotStalled) {
		t.Fatalf("healthy rotation err = %v", err)
	}

	// Twelve silent days later the gate reports stalled and the authority
	// may rotate, even though no word ever advanced the round's day-index.
	outage := t0 + 12*86400
	_, stalled, err := w.GateStatus(outage)
	if err != nil {
		t.Fatalf("gate status: %v", err)
	}
	if !stalled {
		t.Fatal("outage not reported as stall")
	}
	if err := w.RotateProvider(testAddr(3), testAddr(5), outage); !errors.Is(err, gate.ErrUnauthorized) {
		t.Fatalf("foreign rotation err = %v", err)
	}
	if err := w.RotateProvider(authority, testAddr(5), outage); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	provider, _, err := w.GateStatus(outage)
	if err != nil {
		t.Fatalf("gate status: %v", err)
	}
	if provider != testAddr(5) {
		t.Fatalf("provider = %x", provider)
	}
}

// A failed operation must leave no partial writes behind.
func TestWorldDiscardsFailedOperations(t *testing.T) {
	db := storage.NewMemDB()
	t0 := int64(19676 * 86400)
	w, err := NewWorld(db, DefaultConfig(), &stubOracle{}, t0)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	player := testAddr(2)
	if err := w.MintCredits(player, big.NewInt(15_000_000_000)); err != nil {
		t.Fatalf("mint credits: %v", err)
	}

	// Two mints cost more than the balance; the order must not survive.
	if err := w.PurchaseMints(player, 2, t0); err == nil {
		t.Fatalf("expected insufficient balance")
	}
	view, err := w.Player(player)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if view.Balance.Int64() != 15_000_000_000 {
		t.Fatalf("balance after failed purchase = %d", view.Balance)
	}
	round, err := w.Round()
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	if round.NextPrizePool.Sign() != 0 {
		t.Fatalf("next prize pool leaked: %s", round.NextPrizePool)
	}
}
