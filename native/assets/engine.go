package assets

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"degenerus/native/traits"
)

var (
	errNilState = errors.New("assets engine: state not configured")

	// ErrUnknownAsset rejects operations on ids the registry never minted
	// or already reclaimed.
	ErrUnknownAsset = errors.New("assets engine: unknown asset")
	// ErrNotAssetOwner rejects burns of assets held by someone else.
	ErrNotAssetOwner = errors.New("assets engine: caller does not own asset")
	// ErrStaleAsset rejects burns of assets from a retired generation.
	ErrStaleAsset = errors.New("assets engine: asset generation retired")
)

type engineState interface {
	AssetMeta() (*Meta, error)
	PutAssetMeta(meta *Meta) error
	Asset(id uint64) (*Asset, bool, error)
	PutAsset(id uint64, asset *Asset) error
	DeleteAsset(id uint64) error
	GenSupplies(gen uint64) (*Supplies, error)
	PutGenSupplies(gen uint64, supplies *Supplies) error
	MintCredit(player [20]byte) (*MintCredit, error)
	PutMintCredit(player [20]byte, credit *MintCredit) error
}

// Engine is the non-fungible asset registry. Assets live for exactly one
// round generation: minted during the purchase drain, burnable while their
// generation is current, reclaimed by the dormant sweep afterwards.
type Engine struct {
	state engineState
}

// NewEngine constructs an asset registry engine.
func NewEngine() *Engine { return &Engine{} }

// SetState wires the engine to the durable ledger.
func (e *Engine) SetState(state engineState) { e.state = state }

// deriveTrait assigns a trait id from the round entropy word and the asset
// id, using the same xorshift chain the jackpot draws use.
func deriveTrait(word [32]byte, id uint64) uint16 {
	state := new(uint256.Int).SetBytes(word[:])
	state.Xor(state, uint256.NewInt(id))
	var t uint256.Int
	state.Xor(state, t.Lsh(state, 7))
	state.Xor(state, t.Rsh(state, 9))
	state.Xor(state, t.Lsh(state, 8))
	return uint16(state.Uint64() % uint64(traits.TraitCount))
}

// MintAirdrop mints count assets to the player, plus any owed credits from
// earlier bulk bonuses. Every BulkBonusEvery purchased units accrue one owed
// credit toward the player's next drop; the tally spans orders, so two
// 5-unit orders earn the same credit as one 10-unit order.
func (e *Engine) MintAirdrop(player [20]byte, count uint32, word [32]byte) error {
	if e.state == nil {
		return errNilState
	}
	meta, err := e.state.AssetMeta()
	if err != nil {
		return err
	}
	credit, err := e.state.MintCredit(player)
	if err != nil {
		return err
	}
	owed := credit.Owed()
	total := count + owed
	if total == 0 {
		return nil
	}
	gen := meta.BaseGen + 1
	supplies, err := e.state.GenSupplies(gen)
	if err != nil {
		return err
	}
	if !meta.CohortOpen {
		meta.CohortStart = meta.NextID
		meta.CohortOpen = true
	}
	for i := uint32(0); i < total; i++ {
		id := meta.NextID
		meta.NextID++
		trait := deriveTrait(word, id)
		asset := &Asset{Owner: player, Trait: trait, Gen: gen}
		if err := e.state.PutAsset(id, asset); err != nil {
			return err
		}
		supplies.Remaining[trait]++
	}
	if err := e.state.PutGenSupplies(gen, supplies); err != nil {
		return err
	}
	credit.Purchased += uint64(count)
	credit.Redeemed += uint64(owed)
	if err := e.state.PutMintCredit(player, credit); err != nil {
		return err
	}
	return e.state.PutAssetMeta(meta)
}

// BurnFromOwner removes the assets and returns their trait ids in call
// order. Every id must exist, belong to the owner, and be current
// generation; any violation aborts the whole burn.
func (e *Engine) BurnFromOwner(owner [20]byte, ids []uint64) ([]uint16, error) {
	if e.state == nil {
		return nil, errNilState
	}
	meta, err := e.state.AssetMeta()
	if err != nil {
		return nil, err
	}
	supplies, err := e.state.GenSupplies(meta.BaseGen)
	if err != nil {
		return nil, err
	}
	traitIDs := make([]uint16, 0, len(ids))
	for _, id := range ids {
		asset, ok, err := e.state.Asset(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownAsset, id)
		}
		if asset.Owner != owner {
			return nil, fmt.Errorf("%w: %d", ErrNotAssetOwner, id)
		}
		if asset.Gen != meta.BaseGen {
			return nil, fmt.Errorf("%w: %d", ErrStaleAsset, id)
		}
		if err := e.state.DeleteAsset(id); err != nil {
			return nil, err
		}
		if supplies.Remaining[asset.Trait] > 0 {
			supplies.Remaining[asset.Trait]--
		}
		traitIDs = append(traitIDs, asset.Trait)
	}
	if err := e.state.PutGenSupplies(meta.BaseGen, supplies); err != nil {
		return nil, err
	}
	return traitIDs, nil
}

// AdvanceBaseID retires the current generation and promotes the cohort
// minted since the last advance. The retired cohort's id range is appended
// to the dormant sweep window.
func (e *Engine) AdvanceBaseID() error {
	if e.state == nil {
		return errNilState
	}
	meta, err := e.state.AssetMeta()
	if err != nil {
		return err
	}
	meta.SweepPos = meta.SweepEnd
	if meta.CohortOpen {
		meta.SweepEnd = meta.CohortStart
		meta.CohortOpen = false
	} else {
		// Empty cohort: everything minted so far is retired.
		meta.SweepEnd = meta.NextID
	}
	meta.BaseGen++
	return e.state.PutAssetMeta(meta)
}

// CurrentBaseID reports the live generation counter.
func (e *Engine) CurrentBaseID() (uint64, error) {
	if e.state == nil {
		return 0, errNilState
	}
	meta, err := e.state.AssetMeta()
	if err != nil {
		return 0, err
	}
	return meta.BaseGen, nil
}

// OwedCount reports the player's accrued bulk-bonus credits.
func (e *Engine) OwedCount(player [20]byte) (uint32, error) {
	if e.state == nil {
		return 0, errNilState
	}
	credit, err := e.state.MintCredit(player)
	if err != nil {
		return 0, err
	}
	return credit.Owed(), nil
}

// TraitSupplies snapshots the cohort minted for the round about to open. It
// is read before AdvanceBaseID promotes that cohort.
func (e *Engine) TraitSupplies() ([traits.TraitCount]uint32, error) {
	if e.state == nil {
		return [traits.TraitCount]uint32{}, errNilState
	}
	meta, err := e.state.AssetMeta()
	if err != nil {
		return [traits.TraitCount]uint32{}, err
	}
	supplies, err := e.state.GenSupplies(meta.BaseGen + 1)
	if err != nil {
		return [traits.TraitCount]uint32{}, err
	}
	return supplies.Remaining, nil
}

// ProcessDormantCleanup scans up to budget retired ids and reclaims any
// asset records still present. Worked is the number of ids scanned; zero
// means the sweep window is drained.
func (e *Engine) ProcessDormantCleanup(budget uint64) (uint64, error) {
	if e.state == nil {
		return 0, errNilState
	}
	meta, err := e.state.AssetMeta()
	if err != nil {
		return 0, err
	}
	if meta.SweepPos >= meta.SweepEnd {
		return 0, nil
	}
	if budget == 0 {
		budget = 1
	}
	end := meta.SweepPos + budget
	if end > meta.SweepEnd {
		end = meta.SweepEnd
	}
	for id := meta.SweepPos; id < end; id++ {
		_, ok, err := e.state.Asset(id)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		if err := e.state.DeleteAsset(id); err != nil {
			return 0, err
		}
	}
	worked := end - meta.SweepPos
	meta.SweepPos = end
	if err := e.state.PutAssetMeta(meta); err != nil {
		return 0, err
	}
	return worked, nil
}

// AssetOf exposes one asset record for queries.
func (e *Engine) AssetOf(id uint64) (*Asset, bool, error) {
	if e.state == nil {
		return nil, false, errNilState
	}
	return e.state.Asset(id)
}
