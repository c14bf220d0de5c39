package state

import (
	"math/big"

	"degenerus/core/types"
	"degenerus/native/coin"
)

type storedAccount struct {
	Balance     *big.Int
	Claimable   *big.Int
	PendingFlip *big.Int
	FlipRound   uint64
	Luckbox     uint64
	LastBurnDay uint64
	TotalBurned *big.Int
	TotalStaked *big.Int
	TotalMints  uint64
	Referrer    [32]byte
}

func newStoredAccount(a *types.Account) *storedAccount {
	return &storedAccount{
		Balance:     nonNil(a.Balance),
		Claimable:   nonNil(a.Claimable),
		PendingFlip: nonNil(a.PendingFlip),
		FlipRound:   a.FlipRound,
		Luckbox:     a.Luckbox,
		LastBurnDay: a.LastBurnDay,
		TotalBurned: nonNil(a.TotalBurned),
		TotalStaked: nonNil(a.TotalStaked),
		TotalMints:  a.TotalMints,
		Referrer:    a.Referrer,
	}
}

func (s *storedAccount) toAccount() *types.Account {
	return &types.Account{
		Balance:     nonNil(s.Balance),
		Claimable:   nonNil(s.Claimable),
		PendingFlip: nonNil(s.PendingFlip),
		FlipRound:   s.FlipRound,
		Luckbox:     s.Luckbox,
		LastBurnDay: s.LastBurnDay,
		TotalBurned: nonNil(s.TotalBurned),
		TotalStaked: nonNil(s.TotalStaked),
		TotalMints:  s.TotalMints,
		Referrer:    s.Referrer,
	}
}

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// GetAccount loads an account, returning a fresh zero account when absent.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	var stored storedAccount
	ok, err := m.getRLP(accountKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.NewAccount(), nil
	}
	return stored.toAccount(), nil
}

// PutAccount persists an account.
func (m *Manager) PutAccount(addr [20]byte, account *types.Account) error {
	return m.putRLP(accountKey(addr), newStoredAccount(account))
}

// TokenSupply loads the circulating supply.
func (m *Manager) TokenSupply() (*big.Int, error) {
	var stored *big.Int
	ok, err := m.getRLP(supplyKey(), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return nonNil(stored), nil
}

// PutTokenSupply persists the circulating supply.
func (m *Manager) PutTokenSupply(supply *big.Int) error {
	return m.putRLP(supplyKey(), nonNil(supply))
}

type storedLaneBook struct {
	Principals []*big.Int
}

// LaneBook loads a player's lane buckets for a round, empty when absent.
func (m *Manager) LaneBook(round uint64, player [20]byte) (*coin.LaneBook, error) {
	var stored storedLaneBook
	ok, err := m.getRLP(laneBookKey(round, player), &stored)
	if err != nil {
		return nil, err
	}
	book := coin.NewLaneBook()
	if !ok {
		return book, nil
	}
	for i := 0; i < len(stored.Principals) && i < len(book.Principals); i++ {
		book.Principals[i] = nonNil(stored.Principals[i])
	}
	return book, nil
}

// PutLaneBook persists a lane book.
func (m *Manager) PutLaneBook(round uint64, player [20]byte, book *coin.LaneBook) error {
	stored := storedLaneBook{Principals: make([]*big.Int, len(book.Principals))}
	for i, p := range book.Principals {
		stored.Principals[i] = nonNil(p)
	}
	return m.putRLP(laneBookKey(round, player), &stored)
}

// DeleteLaneBook drops a settled or forfeited lane book.
func (m *Manager) DeleteLaneBook(round uint64, player [20]byte) error {
	m.delete(laneBookKey(round, player))
	return nil
}

func (m *Manager) roster(key []byte) ([][20]byte, error) {
	var stored [][20]byte
	if _, err := m.getRLP(key, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (m *Manager) appendRoster(key []byte, player [20]byte) error {
	roster, err := m.roster(key)
	if err != nil {
		return err
	}
	return m.putRLP(key, append(roster, player))
}

// StakeRoster lists players with lanes settling at the round.
func (m *Manager) StakeRoster(round uint64) ([][20]byte, error) {
	return m.roster(stakeRosterKey(round))
}

// AppendStakeRoster records a first lane for (round, player).
func (m *Manager) AppendStakeRoster(round uint64, player [20]byte) error {
	return m.appendRoster(stakeRosterKey(round), player)
}

// ClearStakeRoster drops the roster after settlement.
func (m *Manager) ClearStakeRoster(round uint64) error {
	m.delete(stakeRosterKey(round))
	return nil
}

// FlipRoster lists players with flips riding on the round.
func (m *Manager) FlipRoster(round uint64) ([][20]byte, error) {
	return m.roster(flipRosterKey(round))
}

// AppendFlipRoster records a first flip for (round, player).
func (m *Manager) AppendFlipRoster(round uint64, player [20]byte) error {
	return m.appendRoster(flipRosterKey(round), player)
}

// ClearFlipRoster drops the roster after settlement.
func (m *Manager) ClearFlipRoster(round uint64) error {
	m.delete(flipRosterKey(round))
	return nil
}

type storedBoardEntry struct {
	Player [20]byte
	Score  *big.Int
}

// Leaderboard loads a named board, empty when absent.
func (m *Manager) Leaderboard(name string) (*coin.Leaderboard, error) {
	var stored []storedBoardEntry
	if _, err := m.getRLP(boardKey(name), &stored); err != nil {
		return nil, err
	}
	board := &coin.Leaderboard{Entries: make([]coin.BoardEntry, len(stored))}
	for i, entry := range stored {
		board.Entries[i] = coin.BoardEntry{Player: entry.Player, Score: nonNil(entry.Score)}
	}
	return board, nil
}

// PutLeaderboard persists a named board.
func (m *Manager) PutLeaderboard(name string, board *coin.Leaderboard) error {
	stored := make([]storedBoardEntry, len(board.Entries))
	for i, entry := range board.Entries {
		stored[i] = storedBoardEntry{Player: entry.Player, Score: nonNil(entry.Score)}
	}
	return m.putRLP(boardKey(name), stored)
}

// BoardRank resolves a player's seat in the reverse index.
func (m *Manager) BoardRank(name string, player [20]byte) (int, bool, error) {
	var rank uint64
	ok, err := m.getRLP(boardRankKey(name, player), &rank)
	if err != nil {
		return 0, false, err
	}
	return int(rank), ok, nil
}

// PutBoardRank writes the reverse index seat.
func (m *Manager) PutBoardRank(name string, player [20]byte, rank int) error {
	return m.putRLP(boardRankKey(name, player), uint64(rank))
}

// DeleteBoardRank clears an evicted player's reverse pointer.
func (m *Manager) DeleteBoardRank(name string, player [20]byte) error {
	m.delete(boardRankKey(name, player))
	return nil
}

type storedAffiliate struct {
	Owner        [20]byte
	Upline       [32]byte
	TotalEarned  *big.Int
	PendingClaim *big.Int
}

// Affiliate loads a referral code record.
func (m *Manager) Affiliate(code [32]byte) (*coin.AffiliateRecord, bool, error) {
	var stored storedAffiliate
	ok, err := m.getRLP(affiliateKey(code), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &coin.AffiliateRecord{
		Owner:        stored.Owner,
		Upline:       stored.Upline,
		TotalEarned:  nonNil(stored.TotalEarned),
		PendingClaim: nonNil(stored.PendingClaim),
	}, true, nil
}

// PutAffiliate persists a referral code record.
func (m *Manager) PutAffiliate(code [32]byte, record *coin.AffiliateRecord) error {
	return m.putRLP(affiliateKey(code), &storedAffiliate{
		Owner:        record.Owner,
		Upline:       record.Upline,
		TotalEarned:  nonNil(record.TotalEarned),
		PendingClaim: nonNil(record.PendingClaim),
	})
}

// BountyPool loads the advance-incentive pool.
func (m *Manager) BountyPool() (*big.Int, error) {
	var stored *big.Int
	ok, err := m.getRLP(bountyKey(), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return nonNil(stored), nil
}

// PutBountyPool persists the advance-incentive pool.
func (m *Manager) PutBountyPool(pool *big.Int) error {
	return m.putRLP(bountyKey(), nonNil(pool))
}
