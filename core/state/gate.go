package state

import (
	"math/big"

	"degenerus/native/gate"
)

type storedGateRequest struct {
	ID          uint64
	DayIndex    uint64
	RequestedAt *big.Int
	Fulfilled   bool
	Word        [32]byte
}

// GateRequest loads the single outstanding entropy request.
func (m *Manager) GateRequest() (*gate.Request, bool, error) {
	var stored storedGateRequest
	ok, err := m.getRLP(gateRequestKey(), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	request := &gate.Request{
		ID:        stored.ID,
		DayIndex:  stored.DayIndex,
		Fulfilled: stored.Fulfilled,
		Word:      stored.Word,
	}
	if stored.RequestedAt != nil {
		request.RequestedAt = stored.RequestedAt.Int64()
	}
	return request, true, nil
}

// PutGateRequest persists the outstanding entropy request.
func (m *Manager) PutGateRequest(request *gate.Request) error {
	return m.putRLP(gateRequestKey(), &storedGateRequest{
		ID:          request.ID,
		DayIndex:    request.DayIndex,
		RequestedAt: big.NewInt(request.RequestedAt),
		Fulfilled:   request.Fulfilled,
		Word:        request.Word,
	})
}

type storedGateMeta struct {
	Locked      bool
	NextID      uint64
	Provider    [20]byte
	NudgeQueue  uint64
	LastWordDay uint64
	ConsumedDay uint64
}

// GateMeta loads the gate bookkeeping, zeroed when absent.
func (m *Manager) GateMeta() (*gate.Meta, error) {
	var stored storedGateMeta
	if _, err := m.getRLP(gateMetaKey(), &stored); err != nil {
		return nil, err
	}
	return &gate.Meta{
		Locked:      stored.Locked,
		NextID:      stored.NextID,
		Provider:    stored.Provider,
		NudgeQueue:  stored.NudgeQueue,
		LastWordDay: stored.LastWordDay,
		ConsumedDay: stored.ConsumedDay,
	}, nil
}

// PutGateMeta persists the gate bookkeeping.
func (m *Manager) PutGateMeta(meta *gate.Meta) error {
	return m.putRLP(gateMetaKey(), &storedGateMeta{
		Locked:      meta.Locked,
		NextID:      meta.NextID,
		Provider:    meta.Provider,
		NudgeQueue:  meta.NudgeQueue,
		LastWordDay: meta.LastWordDay,
		ConsumedDay: meta.ConsumedDay,
	})
}
