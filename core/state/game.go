package state

import (
	"math/big"

	"degenerus/native/batch"
	"degenerus/native/game"
)

type storedRound struct {
	Number   uint64
	Phase    uint8
	Delegate uint8

	PrizePool     *big.Int
	NextPrizePool *big.Int
	RewardPool    *big.Int
	CloseJackpot  *big.Int
	ClosePerUnit  *big.Int

	BurnedAssets   uint64
	JackpotCounter uint8
	DayIndex       uint64

	EntropyWord           [32]byte
	LastExterminatedTrait uint16
	PurchaseDeadlineDay   uint64

	StartedAt      *big.Int
	LastProgressAt *big.Int
}

// Round loads the current round. The round record is created at genesis and
// always present afterwards.
func (m *Manager) Round() (*game.Round, error) {
	var stored storedRound
	ok, err := m.getRLP(roundKey(), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return game.NewRound(0), nil
	}
	round := &game.Round{
		Number:                stored.Number,
		Phase:                 game.Phase(stored.Phase),
		Delegate:              game.Delegate(stored.Delegate),
		PrizePool:             nonNil(stored.PrizePool),
		NextPrizePool:         nonNil(stored.NextPrizePool),
		RewardPool:            nonNil(stored.RewardPool),
		CloseJackpot:          nonNil(stored.CloseJackpot),
		ClosePerUnit:          nonNil(stored.ClosePerUnit),
		BurnedAssets:          stored.BurnedAssets,
		JackpotCounter:        stored.JackpotCounter,
		DayIndex:              stored.DayIndex,
		EntropyWord:           stored.EntropyWord,
		LastExterminatedTrait: stored.LastExterminatedTrait,
		PurchaseDeadlineDay:   stored.PurchaseDeadlineDay,
	}
	if stored.StartedAt != nil {
		round.StartedAt = stored.StartedAt.Int64()
	}
	if stored.LastProgressAt != nil {
		round.LastProgressAt = stored.LastProgressAt.Int64()
	}
	return round, nil
}

// PutRound persists the current round.
func (m *Manager) PutRound(round *game.Round) error {
	return m.putRLP(roundKey(), &storedRound{
		Number:                round.Number,
		Phase:                 uint8(round.Phase),
		Delegate:              uint8(round.Delegate),
		PrizePool:             nonNil(round.PrizePool),
		NextPrizePool:         nonNil(round.NextPrizePool),
		RewardPool:            nonNil(round.RewardPool),
		CloseJackpot:          nonNil(round.CloseJackpot),
		ClosePerUnit:          nonNil(round.ClosePerUnit),
		BurnedAssets:          round.BurnedAssets,
		JackpotCounter:        round.JackpotCounter,
		DayIndex:              round.DayIndex,
		EntropyWord:           round.EntropyWord,
		LastExterminatedTrait: round.LastExterminatedTrait,
		PurchaseDeadlineDay:   round.PurchaseDeadlineDay,
		StartedAt:             big.NewInt(round.StartedAt),
		LastProgressAt:        big.NewInt(round.LastProgressAt),
	})
}

type storedCursor struct {
	Status uint8
	Pos    uint64
	Size   uint64
	Step   uint64
	Round  uint64
}

// BatchCursor loads a named settlement cursor, idle when absent.
func (m *Manager) BatchCursor(name string) (batch.Cursor, error) {
	var stored storedCursor
	if _, err := m.getRLP(cursorKey(name), &stored); err != nil {
		return batch.Cursor{}, err
	}
	return batch.Cursor{
		Status: batch.Status(stored.Status),
		Pos:    stored.Pos,
		Size:   stored.Size,
		Step:   stored.Step,
		Round:  stored.Round,
	}, nil
}

// PutBatchCursor persists a named settlement cursor.
func (m *Manager) PutBatchCursor(name string, cursor batch.Cursor) error {
	return m.putRLP(cursorKey(name), &storedCursor{
		Status: uint8(cursor.Status),
		Pos:    cursor.Pos,
		Size:   cursor.Size,
		Step:   cursor.Step,
		Round:  cursor.Round,
	})
}

type storedMintOrder struct {
	Player [20]byte
	Count  uint32
}

// MintQueue loads the queued purchase-window mint orders.
func (m *Manager) MintQueue() ([]game.MintOrder, error) {
	var stored []storedMintOrder
	if _, err := m.getRLP(mintQueueKey(), &stored); err != nil {
		return nil, err
	}
	queue := make([]game.MintOrder, len(stored))
	for i, order := range stored {
		queue[i] = game.MintOrder{Player: order.Player, Count: order.Count}
	}
	return queue, nil
}

// AppendMintQueue enqueues one mint order.
func (m *Manager) AppendMintQueue(order game.MintOrder) error {
	var stored []storedMintOrder
	if _, err := m.getRLP(mintQueueKey(), &stored); err != nil {
		return err
	}
	stored = append(stored, storedMintOrder{Player: order.Player, Count: order.Count})
	return m.putRLP(mintQueueKey(), stored)
}

// ClearMintQueue drops the queue after the drain batch finishes.
func (m *Manager) ClearMintQueue() error {
	m.delete(mintQueueKey())
	return nil
}

// Exterminator resolves the recorded round winner.
func (m *Manager) Exterminator(round uint64) ([20]byte, bool, error) {
	var stored [20]byte
	ok, err := m.getRLP(exterminatorKey(round), &stored)
	return stored, ok, err
}

// PutExterminator records the player who ended a round by extinction.
func (m *Manager) PutExterminator(round uint64, player [20]byte) error {
	return m.putRLP(exterminatorKey(round), player)
}
