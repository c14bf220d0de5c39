package assets

import (
	"errors"
	"testing"
)

type memState struct {
	meta     *Meta
	assets   map[uint64]*Asset
	supplies map[uint64]*Supplies
	credits  map[[20]byte]*MintCredit
}

func newMemState() *memState {
	return &memState{
		meta:     &Meta{},
		assets:   make(map[uint64]*Asset),
		supplies: make(map[uint64]*Supplies),
		credits:  make(map[[20]byte]*MintCredit),
	}
}

func (m *memState) AssetMeta() (*Meta, error)       { return m.meta.Clone(), nil }
func (m *memState) PutAssetMeta(meta *Meta) error   { m.meta = meta.Clone(); return nil }
func (m *memState) DeleteAsset(id uint64) error     { delete(m.assets, id); return nil }
func (m *memState) PutAsset(id uint64, a *Asset) error {
	m.assets[id] = a.Clone()
	return nil
}

func (m *memState) Asset(id uint64) (*Asset, bool, error) {
	asset, ok := m.assets[id]
	if !ok {
		return nil, false, nil
	}
	return asset.Clone(), true, nil
}

func (m *memState) GenSupplies(gen uint64) (*Supplies, error) {
	if s, ok := m.supplies[gen]; ok {
		return s.Clone(), nil
	}
	return &Supplies{}, nil
}

func (m *memState) PutGenSupplies(gen uint64, s *Supplies) error {
	m.supplies[gen] = s.Clone()
	return nil
}

func (m *memState) MintCredit(player [20]byte) (*MintCredit, error) {
	if c, ok := m.credits[player]; ok {
		return c.Clone(), nil
	}
	return &MintCredit{}, nil
}

func (m *memState) PutMintCredit(player [20]byte, credit *MintCredit) error {
	m.credits[player] = credit.Clone()
	return nil
}

func addr(b byte) [20]byte {
	var a [20]byte
	a[0] = b
	return a
}

func word(b byte) [32]byte {
	var w [32]byte
	w[0] = b
	return w
}

func newTestEngine() (*Engine, *memState) {
	state := newMemState()
	engine := NewEngine()
	engine.SetState(state)
	return engine, state
}

func TestMintAirdropAssignsCohort(t *testing.T) {
	engine, state := newTestEngine()

	if err := engine.MintAirdrop(addr(1), 3, word(7)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if len(state.assets) != 3 {
		t.Fatalf("assets minted = %d, want 3", len(state.assets))
	}
	for id := uint64(0); id < 3; id++ {
		asset := state.assets[id]
		if asset == nil || asset.Owner != addr(1) || asset.Gen != 1 {
			t.Fatalf("asset %d = %+v", id, asset)
		}
	}
	supplies, err := engine.TraitSupplies()
	if err != nil {
		t.Fatalf("supplies: %v", err)
	}
	total := uint32(0)
	for _, n := range supplies {
		total += n
	}
	if total != 3 {
		t.Fatalf("cohort supply total = %d, want 3", total)
	}
	if state.meta.NextID != 3 || !state.meta.CohortOpen || state.meta.CohortStart != 0 {
		t.Fatalf("meta = %+v", state.meta)
	}
}

func TestMintAirdropBulkBonus(t *testing.T) {
	engine, state := newTestEngine()

	if err := engine.MintAirdrop(addr(1), 25, word(1)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	owed, err := engine.OwedCount(addr(1))
	if err != nil {
		t.Fatalf("owed: %v", err)
	}
	if owed != 2 {
		t.Fatalf("owed after 25 = %d, want 2", owed)
	}

	// Next drop folds the credits in; 30 cumulative purchased units have
	// earned three credits, two of which were just redeemed.
	if err := engine.MintAirdrop(addr(1), 5, word(2)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if state.meta.NextID != 32 {
		t.Fatalf("minted total = %d, want 32", state.meta.NextID)
	}
	owed, _ = engine.OwedCount(addr(1))
	if owed != 1 {
		t.Fatalf("owed after fold = %d, want 1", owed)
	}
}

func TestBulkBonusAccruesAcrossOrders(t *testing.T) {
	engine, _ := newTestEngine()

	// Two 5-unit orders earn the same credit as one 10-unit order.
	if err := engine.MintAirdrop(addr(1), 5, word(1)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if owed, _ := engine.OwedCount(addr(1)); owed != 0 {
		t.Fatalf("owed after 5 = %d, want 0", owed)
	}
	if err := engine.MintAirdrop(addr(1), 5, word(2)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if owed, _ := engine.OwedCount(addr(1)); owed != 1 {
		t.Fatalf("owed after 10 across orders = %d, want 1", owed)
	}

	if err := engine.MintAirdrop(addr(2), 10, word(3)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if owed, _ := engine.OwedCount(addr(2)); owed != 1 {
		t.Fatalf("owed after single 10 = %d, want 1", owed)
	}

	// Folding the credit redeems it; bonus units never accrue further credit.
	if err := engine.MintAirdrop(addr(1), 0, word(4)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if owed, _ := engine.OwedCount(addr(1)); owed != 0 {
		t.Fatalf("owed after redemption = %d, want 0", owed)
	}
}

func TestBurnFromOwnerChecks(t *testing.T) {
	engine, state := newTestEngine()
	if err := engine.MintAirdrop(addr(1), 2, word(3)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.AdvanceBaseID(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if _, err := engine.BurnFromOwner(addr(2), []uint64{0}); !errors.Is(err, ErrNotAssetOwner) {
		t.Fatalf("foreign burn err = %v", err)
	}
	if _, err := engine.BurnFromOwner(addr(1), []uint64{9}); !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("unknown burn err = %v", err)
	}

	wantTrait := state.assets[0].Trait
	traitIDs, err := engine.BurnFromOwner(addr(1), []uint64{0})
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	if len(traitIDs) != 1 || traitIDs[0] != wantTrait {
		t.Fatalf("burn traits = %v, want [%d]", traitIDs, wantTrait)
	}
	if _, ok := state.assets[0]; ok {
		t.Fatalf("asset 0 still present after burn")
	}
	if got := state.supplies[1].Remaining[wantTrait]; got != suppliesLess(state, wantTrait) {
		t.Fatalf("supply for trait %d = %d", wantTrait, got)
	}
}

func suppliesLess(state *memState, burned uint16) uint32 {
	// Count live gen-1 assets still carrying the trait.
	var n uint32
	for _, asset := range state.assets {
		if asset.Gen == 1 && asset.Trait == burned {
			n++
		}
	}
	return n
}

func TestBurnRejectsRetiredGeneration(t *testing.T) {
	engine, _ := newTestEngine()
	if err := engine.MintAirdrop(addr(1), 1, word(4)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.AdvanceBaseID(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := engine.MintAirdrop(addr(1), 1, word(5)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.AdvanceBaseID(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if _, err := engine.BurnFromOwner(addr(1), []uint64{0}); !errors.Is(err, ErrStaleAsset) {
		t.Fatalf("stale burn err = %v", err)
	}
	if _, err := engine.BurnFromOwner(addr(1), []uint64{1}); err != nil {
		t.Fatalf("current burn: %v", err)
	}
}

func TestDormantSweepWindows(t *testing.T) {
	engine, state := newTestEngine()
	if err := engine.MintAirdrop(addr(1), 40, word(6)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.AdvanceBaseID(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	// Second cohort retires the first.
	if err := engine.MintAirdrop(addr(2), 10, word(7)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.AdvanceBaseID(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state.meta.SweepPos != 0 || state.meta.SweepEnd != 40 {
		t.Fatalf("sweep window = [%d,%d), want [0,40)", state.meta.SweepPos, state.meta.SweepEnd)
	}

	invocations := 0
	for {
		worked, err := engine.ProcessDormantCleanup(16)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if worked == 0 {
			break
		}
		invocations++
	}
	if invocations != 3 {
		t.Fatalf("sweep invocations = %d, want 3", invocations)
	}
	if len(state.assets) != 10 {
		t.Fatalf("live assets after sweep = %d, want 10", len(state.assets))
	}
	for id := range state.assets {
		if id < 40 {
			t.Fatalf("retired asset %d survived the sweep", id)
		}
	}
}

func TestEmptyCohortRetiresEverything(t *testing.T) {
	engine, state := newTestEngine()
	if err := engine.MintAirdrop(addr(1), 5, word(8)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := engine.AdvanceBaseID(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := engine.AdvanceBaseID(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state.meta.SweepEnd != 5 {
		t.Fatalf("sweep end = %d, want 5", state.meta.SweepEnd)
	}
	for {
		worked, err := engine.ProcessDormantCleanup(500)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if worked == 0 {
			break
		}
	}
	if len(state.assets) != 0 {
		t.Fatalf("live assets = %d, want 0", len(state.assets))
	}
}
