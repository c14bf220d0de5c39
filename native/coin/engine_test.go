package coin

import (
	"math/big"
	"testing"

	"degenerus/core/types"
)

type laneKey struct {
	round  uint64
	player [20]byte
}

type boardKey struct {
	name   string
	player [20]byte
}

type memState struct {
	accounts   map[[20]byte]*types.Account
	supply     *big.Int
	lanes      map[laneKey]*LaneBook
	stakeRows  map[uint64][][20]byte
	flipRows   map[uint64][][20]byte
	boards     map[string]*Leaderboard
	ranks      map[boardKey]int
	affiliates map[[32]byte]*AffiliateRecord
	bounty     *big.Int
}

func newMemState() *memState {
	return &memState{
		accounts:   make(map[[20]byte]*types.Account),
		supply:     big.NewInt(0),
		lanes:      make(map[laneKey]*LaneBook),
		stakeRows:  make(map[uint64][][20]byte),
		flipRows:   make(map[uint64][][20]byte),
		boards:     make(map[string]*Leaderboard),
		ranks:      make(map[boardKey]int),
		affiliates: make(map[[32]byte]*AffiliateRecord),
		bounty:     big.NewInt(0),
	}
}

func (m *memState) GetAccount(addr [20]byte) (*types.Account, error) {
	if acct, ok := m.accounts[addr]; ok {
		return acct.Clone(), nil
	}
	return types.NewAccount(), nil
}

func (m *memState) PutAccount(addr [20]byte, acct *types.Account) error {
	m.accounts[addr] = acct.Clone()
	return nil
}

func (m *memState) TokenSupply() (*big.Int, error) { return new(big.Int).Set(m.supply), nil }

func (m *memState) PutTokenSupply(supply *big.Int) error {
	m.supply = new(big.Int).Set(supply)
	return nil
}

func (m *memState) LaneBook(round uint64, player [20]byte) (*LaneBook, error) {
	if book, ok := m.lanes[laneKey{round, player}]; ok {
		return book.Clone(), nil
	}
	return NewLaneBook(), nil
}

func (m *memState) PutLaneBook(round uint64, player [20]byte, book *LaneBook) error {
	m.lanes[laneKey{round, player}] = book.Clone()
	return nil
}

func (m *memState) DeleteLaneBook(round uint64, player [20]byte) error {
	delete(m.lanes, laneKey{round, player})
	return nil
}

func (m *memState) StakeRoster(round uint64) ([][20]byte, error) { return m.stakeRows[round], nil }

func (m *memState) AppendStakeRoster(round uint64, player [20]byte) error {
	m.stakeRows[round] = append(m.stakeRows[round], player)
	return nil
}

func (m *memState) ClearStakeRoster(round uint64) error {
	delete(m.stakeRows, round)
	return nil
}

func (m *memState) FlipRoster(round uint64) ([][20]byte, error) { return m.flipRows[round], nil }

func (m *memState) AppendFlipRoster(round uint64, player [20]byte) error {
	m.flipRows[round] = append(m.flipRows[round], player)
	return nil
}

func (m *memState) ClearFlipRoster(round uint64) error {
	delete(m.flipRows, round)
	return nil
}

func (m *memState) Leaderboard(name string) (*Leaderboard, error) {
	if board, ok := m.boards[name]; ok {
		return board.Clone(), nil
	}
	return &Leaderboard{}, nil
}

func (m *memState) PutLeaderboard(name string, board *Leaderboard) error {
	m.boards[name] = board.Clone()
	return nil
}

func (m *memState) BoardRank(name string, player [20]byte) (int, bool, error) {
	rank, ok := m.ranks[boardKey{name, player}]
	return rank, ok, nil
}

func (m *memState) PutBoardRank(name string, player [20]byte, rank int) error {
	m.ranks[boardKey{name, player}] = rank
	return nil
}

func (m *memState) DeleteBoardRank(name string, player [20]byte) error {
	delete(m.ranks, boardKey{name, player})
	return nil
}

func (m *memState) Affiliate(code [32]byte) (*AffiliateRecord, bool, error) {
	record, ok := m.affiliates[code]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *memState) PutAffiliate(code [32]byte, record *AffiliateRecord) error {
	m.affiliates[code] = record.Clone()
	return nil
}

func (m *memState) BountyPool() (*big.Int, error) { return new(big.Int).Set(m.bounty), nil }

func (m *memState) PutBountyPool(pool *big.Int) error {
	m.bounty = new(big.Int).Set(pool)
	return nil
}

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

func code(b byte) [32]byte {
	var c [32]byte
	c[31] = b
	return c
}

func newTestEngine(t *testing.T) (*Engine, *memState) {
	t.Helper()
	params := DefaultParams()
	if err := params.Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	engine := NewEngine(params)
	state := newMemState()
	engine.SetState(state)
	return engine, state
}

func fund(t *testing.T, engine *Engine, player [20]byte, amount int64) {
	t.Helper()
	if err := engine.Mint(player, big.NewInt(amount)); err != nil {
		t.Fatalf("mint: %v", err)
	}
}

func TestMintBurnSupply(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 5_000_000_000)
	if state.supply.Cmp(big.NewInt(5_000_000_000)) != 0 {
		t.Fatalf("supply = %s, want 5000000000", state.supply)
	}
	if err := engine.Burn(player, big.NewInt(2_000_000_000)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	balance, err := engine.BalanceOf(player)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(3_000_000_000)) != 0 {
		t.Fatalf("balance = %s, want 3000000000", balance)
	}
	if err := engine.Burn(player, big.NewInt(4_000_000_000)); err != ErrInsufficientBalance {
		t.Fatalf("over-burn err = %v, want ErrInsufficientBalance", err)
	}
}

func TestTransfer(t *testing.T) {
	engine, _ := newTestEngine(t)
	alice, bob := addr(1), addr(2)
	fund(t, engine, alice, 10)
	if err := engine.Transfer(alice, bob, big.NewInt(4)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	got, _ := engine.BalanceOf(bob)
	if got.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("bob balance = %s, want 4", got)
	}
	if err := engine.Transfer(alice, bob, big.NewInt(100)); err != ErrInsufficientBalance {
		t.Fatalf("overdraft err = %v", err)
	}
}

func TestClaimEmptyRejected(t *testing.T) {
	engine, _ := newTestEngine(t)
	if _, err := engine.Claim(addr(1)); err != ErrNothingToClaim {
		t.Fatalf("claim err = %v, want ErrNothingToClaim", err)
	}
}

func TestCoinflipDepositAndSettle(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 10_000_000_000)

	stake := big.NewInt(2_000_000_000)
	if err := engine.DepositCoinflip(player, stake, 7, 3); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := engine.DepositCoinflip(player, stake, 8, 3); err != ErrFlipPending {
		t.Fatalf("cross-round deposit err = %v, want ErrFlipPending", err)
	}
	// Same-round deposits merge without a second roster row.
	if err := engine.DepositCoinflip(player, stake, 7, 3); err != nil {
		t.Fatalf("merge deposit: %v", err)
	}
	if got := len(state.flipRows[7]); got != 1 {
		t.Fatalf("flip roster rows = %d, want 1", got)
	}

	payout, err := engine.SettleFlip(7, player, true)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	// 4e9 doubled, minus the house edge.
	want := big.NewInt(8_000_000_000 * (BpsDenominator - 475) / BpsDenominator)
	if payout.Cmp(want) != 0 {
		t.Fatalf("payout = %s, want %s", payout, want)
	}
	acct := state.accounts[player]
	if acct.PendingFlip.Sign() != 0 {
		t.Fatalf("pending flip not cleared: %s", acct.PendingFlip)
	}
	if acct.Claimable.Cmp(want) < 0 {
		t.Fatalf("claimable = %s, want at least %s", acct.Claimable, want)
	}
}

func TestCoinflipLossPaysNothing(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 10_000_000_000)
	if err := engine.DepositCoinflip(player, big.NewInt(1_000_000_000), 3, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	payout, err := engine.SettleFlip(3, player, false)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if payout.Sign() != 0 {
		t.Fatalf("loss payout = %s, want 0", payout)
	}
	if state.accounts[player].PendingFlip.Sign() != 0 {
		t.Fatal("pending flip survived a loss")
	}
}

func TestCoinflipFloor(t *testing.T) {
	engine, _ := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 10_000_000_000)
	if err := engine.DepositCoinflip(player, big.NewInt(1), 1, 1); err != ErrBelowMinimum {
		t.Fatalf("dust deposit err = %v, want ErrBelowMinimum", err)
	}
}

func TestStakeBounds(t *testing.T) {
	engine, _ := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 100_000_000_000)
	amount := big.NewInt(1_000_000_000)

	if err := engine.Stake(player, amount, 12, 0, 10, 1); err != ErrRiskRange {
		t.Fatalf("risk 0 err = %v", err)
	}
	if err := engine.Stake(player, amount, 12, MaxRisk+1, 10, 1); err != ErrRiskRange {
		t.Fatalf("risk 13 err = %v", err)
	}
	if err := engine.Stake(player, amount, 10, 1, 10, 1); err != ErrStakeDistance {
		t.Fatalf("same-round target err = %v", err)
	}
	if err := engine.Stake(player, amount, 10+MaxStakeDistance+1, 1, 10, 1); err != ErrStakeDistance {
		t.Fatalf("far target err = %v", err)
	}
}

func TestStakeCompoundsByDistance(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 100_000_000_000)
	amount := big.NewInt(10_000_000_000)

	if err := engine.Stake(player, amount, 13, 2, 10, 1); err != nil {
		t.Fatalf("stake: %v", err)
	}
	book := state.lanes[laneKey{13, player}]
	if book == nil {
		t.Fatal("lane book missing")
	}
	want := engine.Params().CompoundPrincipal(amount, 2, 3)
	if book.Principals[1].Cmp(want) != 0 {
		t.Fatalf("principal = %s, want %s", book.Principals[1], want)
	}
	if want.Cmp(amount) <= 0 {
		t.Fatal("compounding did not grow the principal")
	}
	if got := len(state.stakeRows[13]); got != 1 {
		t.Fatalf("stake roster rows = %d, want 1", got)
	}
}

func TestStakeSameBucketMerges(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 100_000_000_000)
	amount := big.NewInt(1_000_000_000)

	if err := engine.Stake(player, amount, 12, 3, 10, 1); err != nil {
		t.Fatalf("first stake: %v", err)
	}
	if err := engine.Stake(player, amount, 12, 3, 10, 1); err != nil {
		t.Fatalf("second stake: %v", err)
	}
	if got := len(state.stakeRows[12]); got != 1 {
		t.Fatalf("stake roster rows = %d, want 1", got)
	}
	book := state.lanes[laneKey{12, player}]
	want := new(big.Int).Lsh(engine.Params().CompoundPrincipal(amount, 3, 2), 1)
	if book.Principals[2].Cmp(want) != 0 {
		t.Fatalf("merged principal = %s, want %s", book.Principals[2], want)
	}
}

func TestRiskOnePaysOnWin(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 100_000_000_000)
	amount := big.NewInt(10_000_000_000)
	if err := engine.Stake(player, amount, 11, 1, 10, 1); err != nil {
		t.Fatalf("stake: %v", err)
	}
	principal := new(big.Int).Set(state.lanes[laneKey{11, player}].Principals[0])

	paid, err := engine.SettleStakes(11, player, true)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if paid.Cmp(principal) != 0 {
		t.Fatalf("paid = %s, want %s", paid, principal)
	}
	if _, ok := state.lanes[laneKey{11, player}]; ok {
		t.Fatal("settled lane book not deleted")
	}
	if state.accounts[player].Claimable.Cmp(principal) < 0 {
		t.Fatalf("claimable = %s, want at least %s", state.accounts[player].Claimable, principal)
	}
}

func TestRiskThreeTwoWinsThenLossForfeits(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 100_000_000_000)
	if err := engine.Stake(player, big.NewInt(10_000_000_000), 11, 3, 10, 1); err != nil {
		t.Fatalf("stake: %v", err)
	}

	// Rounds 11 and 12 won: the lane survives at risk 2 then risk 1,
	// growing by the win boost each time.
	paid, err := engine.SettleStakes(11, player, true)
	if err != nil {
		t.Fatalf("settle 11: %v", err)
	}
	if paid.Sign() != 0 {
		t.Fatalf("risk-3 lane paid early: %s", paid)
	}
	if state.lanes[laneKey{12, player}].Principals[1].Sign() == 0 {
		t.Fatal("lane did not roll to round 12 at risk 2")
	}
	if _, err := engine.SettleStakes(12, player, true); err != nil {
		t.Fatalf("settle 12: %v", err)
	}
	matured := state.lanes[laneKey{13, player}]
	if matured == nil || matured.Principals[0].Sign() == 0 {
		t.Fatal("lane did not roll to round 13 at risk 1")
	}

	// Round 13 lost: the whole book is forfeited.
	paid, err = engine.SettleStakes(13, player, false)
	if err != nil {
		t.Fatalf("settle 13: %v", err)
	}
	if paid.Sign() != 0 {
		t.Fatalf("forfeited lane paid %s", paid)
	}
	if _, ok := state.lanes[laneKey{13, player}]; ok {
		t.Fatal("forfeited lane book not deleted")
	}
	if state.accounts[player].Claimable.Sign() != 0 {
		t.Fatalf("claimable after forfeiture = %s, want 0", state.accounts[player].Claimable)
	}
}

func TestRollBoostsPrincipal(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 100_000_000_000)
	if err := engine.Stake(player, big.NewInt(10_000_000_000), 11, 2, 10, 1); err != nil {
		t.Fatalf("stake: %v", err)
	}
	before := new(big.Int).Set(state.lanes[laneKey{11, player}].Principals[1])
	if _, err := engine.SettleStakes(11, player, true); err != nil {
		t.Fatalf("settle: %v", err)
	}
	after := state.lanes[laneKey{12, player}].Principals[0]
	want := new(big.Int).Mul(before, big.NewInt(19_525))
	want.Quo(want, big.NewInt(BpsDenominator))
	if after.Cmp(want) != 0 {
		t.Fatalf("rolled principal = %s, want %s", after, want)
	}
}

func TestParticipationDayTag(t *testing.T) {
	engine, _ := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 10_000_000_000)
	if err := engine.DepositCoinflip(player, big.NewInt(1_000_000_000), 5, 42); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	got, err := engine.ParticipatedToday(player, 42)
	if err != nil {
		t.Fatalf("participated: %v", err)
	}
	if !got {
		t.Fatal("burn day 42 not recorded")
	}
	got, _ = engine.ParticipatedToday(player, 43)
	if got {
		t.Fatal("stale day reported as participation")
	}
}

func TestBountyFeedAndPay(t *testing.T) {
	engine, state := newTestEngine(t)
	player, caller := addr(1), addr(2)
	fund(t, engine, player, 100_000_000_000)
	if err := engine.DepositCoinflip(player, big.NewInt(100_000_000_000), 5, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	// 100 bps of the burn feeds the pool.
	if state.bounty.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Fatalf("pool = %s, want 1000000000", state.bounty)
	}
	payout, err := engine.PayBounty(caller)
	if err != nil {
		t.Fatalf("pay bounty: %v", err)
	}
	// 500 bps of the pool per advance.
	if payout.Cmp(big.NewInt(50_000_000)) != 0 {
		t.Fatalf("payout = %s, want 50000000", payout)
	}
	if state.bounty.Cmp(big.NewInt(950_000_000)) != 0 {
		t.Fatalf("pool after payout = %s", state.bounty)
	}
}

func TestReferralBinding(t *testing.T) {
	engine, _ := newTestEngine(t)
	owner, player := addr(1), addr(2)
	ref := code(0xaa)

	if err := engine.BindReferral(player, ref); err != ErrUnknownCode {
		t.Fatalf("bind unknown err = %v", err)
	}
	if err := engine.RegisterCode(owner, ref); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.RegisterCode(addr(3), ref); err != ErrCodeTaken {
		t.Fatalf("re-register err = %v", err)
	}
	if err := engine.BindReferral(owner, ref); err != ErrSelfReferral {
		t.Fatalf("self bind err = %v", err)
	}
	if err := engine.BindReferral(player, ref); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := engine.BindReferral(player, code(0xbb)); err != ErrReferralBound {
		t.Fatalf("rebind err = %v", err)
	}
	if err := engine.OptOutReferral(player); err != ErrReferralBound {
		t.Fatalf("opt-out after bind err = %v", err)
	}
}

func TestOptOutBlocksRouting(t *testing.T) {
	engine, state := newTestEngine(t)
	owner, player := addr(1), addr(2)
	ref := code(0xaa)
	if err := engine.RegisterCode(owner, ref); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.OptOutReferral(player); err != nil {
		t.Fatalf("opt out: %v", err)
	}
	if err := engine.BindReferral(player, ref); err != ErrReferralBound {
		t.Fatalf("bind after opt-out err = %v", err)
	}
	fund(t, engine, player, 100_000_000_000)
	if err := engine.DepositCoinflip(player, big.NewInt(100_000_000_000), 5, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if record := state.affiliates[ref]; record.TotalEarned.Sign() != 0 {
		t.Fatalf("opted-out burn routed %s to affiliate", record.TotalEarned)
	}
}

func TestAffiliateRouting(t *testing.T) {
	engine, state := newTestEngine(t)
	owner, player := addr(1), addr(2)
	ref := code(0xaa)
	if err := engine.RegisterCode(owner, ref); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.BindReferral(player, ref); err != nil {
		t.Fatalf("bind: %v", err)
	}
	fund(t, engine, player, 100_000_000_000)
	if err := engine.DepositCoinflip(player, big.NewInt(100_000_000_000), 5, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// 1000 bps share of 100e9 = 10e9; 2500 bps rakeback = 2.5e9 back to
	// the buyer; no upline, so the remaining 7.5e9 accrues to the code.
	record := state.affiliates[ref]
	wantEarned := big.NewInt(7_500_000_000)
	if record.TotalEarned.Cmp(wantEarned) != 0 {
		t.Fatalf("earned = %s, want %s", record.TotalEarned, wantEarned)
	}
	if record.PendingClaim.Cmp(wantEarned) != 0 {
		t.Fatalf("pending = %s, want %s", record.PendingClaim, wantEarned)
	}
	if state.accounts[player].Claimable.Cmp(big.NewInt(2_500_000_000)) != 0 {
		t.Fatalf("rakeback = %s, want 2500000000", state.accounts[player].Claimable)
	}

	claimed, err := engine.ClaimAffiliate(owner, ref)
	if err != nil {
		t.Fatalf("claim affiliate: %v", err)
	}
	if claimed.Cmp(wantEarned) != 0 {
		t.Fatalf("claimed = %s, want %s", claimed, wantEarned)
	}
	if _, err := engine.ClaimAffiliate(addr(9), ref); err != ErrNotCodeOwner {
		t.Fatalf("foreign claim err = %v", err)
	}
}

func TestUplinePassThrough(t *testing.T) {
	engine, state := newTestEngine(t)
	grand, parent, player := addr(1), addr(2), addr(3)
	grandCode, parentCode := code(0x01), code(0x02)

	if err := engine.RegisterCode(grand, grandCode); err != nil {
		t.Fatalf("register grand: %v", err)
	}
	if err := engine.BindReferral(parent, grandCode); err != nil {
		t.Fatalf("bind parent: %v", err)
	}
	// Parent registers after binding, so the grand code becomes upline.
	if err := engine.RegisterCode(parent, parentCode); err != nil {
		t.Fatalf("register parent: %v", err)
	}
	if err := engine.BindReferral(player, parentCode); err != nil {
		t.Fatalf("bind player: %v", err)
	}
	fund(t, engine, player, 100_000_000_000)
	if err := engine.DepositCoinflip(player, big.NewInt(100_000_000_000), 5, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// Remainder after rakeback is 7.5e9; 1000 bps of it passes upline.
	if got := state.affiliates[grandCode].TotalEarned; got.Cmp(big.NewInt(750_000_000)) != 0 {
		t.Fatalf("upline earned = %s, want 750000000", got)
	}
	if got := state.affiliates[parentCode].TotalEarned; got.Cmp(big.NewInt(6_750_000_000)) != 0 {
		t.Fatalf("parent earned = %s, want 6750000000", got)
	}
}

func TestLeaderboardSortedAndCapped(t *testing.T) {
	engine, state := newTestEngine(t)
	for i := 0; i < BoardSize+4; i++ {
		player := addr(byte(i + 1))
		score := big.NewInt(int64((i + 1) * 100))
		if err := engine.bumpLeaderboard(BoardStakers, player, score); err != nil {
			t.Fatalf("bump %d: %v", i, err)
		}
	}
	board := state.boards[BoardStakers]
	if len(board.Entries) != BoardSize {
		t.Fatalf("board size = %d, want %d", len(board.Entries), BoardSize)
	}
	seen := make(map[[20]byte]bool)
	for i, entry := range board.Entries {
		if seen[entry.Player] {
			t.Fatalf("duplicate entry at rank %d", i)
		}
		seen[entry.Player] = true
		if i > 0 && entry.Score.Cmp(board.Entries[i-1].Score) > 0 {
			t.Fatalf("board out of order at rank %d", i)
		}
		if rank, ok := state.ranks[boardKey{BoardStakers, entry.Player}]; !ok || rank != i {
			t.Fatalf("reverse rank for seat %d = %d (%v)", i, rank, ok)
		}
	}
	// Head is the highest score, evicted players lose their reverse rank.
	if board.Entries[0].Score.Cmp(big.NewInt(int64((BoardSize+4)*100))) != 0 {
		t.Fatalf("head score = %s", board.Entries[0].Score)
	}
	if _, ok := state.ranks[boardKey{BoardStakers, addr(1)}]; ok {
		t.Fatal("evicted player kept a reverse rank")
	}
}

func TestLeaderboardReseatExisting(t *testing.T) {
	engine, state := newTestEngine(t)
	for i := 0; i < 3; i++ {
		player := addr(byte(i + 1))
		if err := engine.bumpLeaderboard(BoardStakers, player, big.NewInt(int64((i+1)*10))); err != nil {
			t.Fatalf("bump: %v", err)
		}
	}
	// Player 1 grows past everyone: same seat count, new order.
	if err := engine.bumpLeaderboard(BoardStakers, addr(1), big.NewInt(1000)); err != nil {
		t.Fatalf("rebump: %v", err)
	}
	board := state.boards[BoardStakers]
	if len(board.Entries) != 3 {
		t.Fatalf("board size = %d, want 3", len(board.Entries))
	}
	if board.Entries[0].Player != addr(1) {
		t.Fatal("updated player did not reach the head")
	}
	if rank := state.ranks[boardKey{BoardStakers, addr(1)}]; rank != 0 {
		t.Fatalf("reverse rank = %d, want 0", rank)
	}
}

func TestClearRound(t *testing.T) {
	engine, state := newTestEngine(t)
	player := addr(1)
	fund(t, engine, player, 100_000_000_000)
	if err := engine.Stake(player, big.NewInt(1_000_000_000), 12, 1, 10, 1); err != nil {
		t.Fatalf("stake: %v", err)
	}
	if err := engine.DepositCoinflip(player, big.NewInt(1_000_000_000), 12, 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := engine.ClearRound(12); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(state.stakeRows[12]) != 0 || len(state.flipRows[12]) != 0 {
		t.Fatal("rosters survived ClearRound")
	}
}
