package state

import "degenerus/native/assets"

type storedAssetMeta struct {
	NextID      uint64
	BaseGen     uint64
	CohortStart uint64
	CohortOpen  bool
	SweepPos    uint64
	SweepEnd    uint64
}

// AssetMeta loads the registry bookkeeping record, zeroed when absent.
func (m *Manager) AssetMeta() (*assets.Meta, error) {
	var stored storedAssetMeta
	if _, err := m.getRLP(assetMetaKey(), &stored); err != nil {
		return nil, err
	}
	return &assets.Meta{
		NextID:      stored.NextID,
		BaseGen:     stored.BaseGen,
		CohortStart: stored.CohortStart,
		CohortOpen:  stored.CohortOpen,
		SweepPos:    stored.SweepPos,
		SweepEnd:    stored.SweepEnd,
	}, nil
}

// PutAssetMeta persists the registry bookkeeping record.
func (m *Manager) PutAssetMeta(meta *assets.Meta) error {
	stored := storedAssetMeta{
		NextID:      meta.NextID,
		BaseGen:     meta.BaseGen,
		CohortStart: meta.CohortStart,
		CohortOpen:  meta.CohortOpen,
		SweepPos:    meta.SweepPos,
		SweepEnd:    meta.SweepEnd,
	}
	return m.putRLP(assetMetaKey(), &stored)
}

type storedAsset struct {
	Owner [20]byte
	Trait uint16
	Gen   uint64
}

// Asset loads one asset record; the flag reports presence.
func (m *Manager) Asset(id uint64) (*assets.Asset, bool, error) {
	var stored storedAsset
	found, err := m.getRLP(assetKey(id), &stored)
	if err != nil || !found {
		return nil, false, err
	}
	return &assets.Asset{Owner: stored.Owner, Trait: stored.Trait, Gen: stored.Gen}, true, nil
}

// PutAsset persists one asset record.
func (m *Manager) PutAsset(id uint64, asset *assets.Asset) error {
	stored := storedAsset{Owner: asset.Owner, Trait: asset.Trait, Gen: asset.Gen}
	return m.putRLP(assetKey(id), &stored)
}

// DeleteAsset reclaims one asset record.
func (m *Manager) DeleteAsset(id uint64) error {
	m.delete(assetKey(id))
	return nil
}

// GenSupplies loads one generation's live trait population, zeroed when
// absent.
func (m *Manager) GenSupplies(gen uint64) (*assets.Supplies, error) {
	var stored []uint32
	if _, err := m.getRLP(genSuppliesKey(gen), &stored); err != nil {
		return nil, err
	}
	supplies := &assets.Supplies{}
	for i := 0; i < len(stored) && i < len(supplies.Remaining); i++ {
		supplies.Remaining[i] = stored[i]
	}
	return supplies, nil
}

// PutGenSupplies persists one generation's live trait population.
func (m *Manager) PutGenSupplies(gen uint64, supplies *assets.Supplies) error {
	stored := make([]uint32, len(supplies.Remaining))
	copy(stored, supplies.Remaining[:])
	return m.putRLP(genSuppliesKey(gen), stored)
}

type storedMintCredit struct {
	Purchased uint64
	Redeemed  uint64
}

// MintCredit loads the player's bulk-bonus ledger, zeroed when absent.
func (m *Manager) MintCredit(player [20]byte) (*assets.MintCredit, error) {
	var stored storedMintCredit
	if _, err := m.getRLP(mintCreditKey(player), &stored); err != nil {
		return nil, err
	}
	return &assets.MintCredit{Purchased: stored.Purchased, Redeemed: stored.Redeemed}, nil
}

// PutMintCredit persists the player's bulk-bonus ledger.
func (m *Manager) PutMintCredit(player [20]byte, credit *assets.MintCredit) error {
	return m.putRLP(mintCreditKey(player), &storedMintCredit{
		Purchased: credit.Purchased,
		Redeemed:  credit.Redeemed,
	})
}
