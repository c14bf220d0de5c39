package coin

import (
	"errors"
	"math/big"

	"degenerus/core/events"
	"degenerus/core/types"
)

var (
	errNilState = errors.New("coin engine: state not configured")

	// ErrInvalidAmount rejects non-positive amounts.
	ErrInvalidAmount = errors.New("coin engine: amount must be positive")
	// ErrInsufficientBalance rejects spends beyond the liquid balance.
	ErrInsufficientBalance = errors.New("coin engine: insufficient balance")
	// ErrBelowMinimum rejects deposits under the configured floor.
	ErrBelowMinimum = errors.New("coin engine: amount below minimum")
	// ErrRiskRange rejects stakes outside the 12-bucket risk space.
	ErrRiskRange = errors.New("coin engine: risk out of range")
	// ErrStakeDistance rejects stakes targeting the past or too far ahead.
	ErrStakeDistance = errors.New("coin engine: invalid stake distance")
	// ErrFlipPending rejects a second coinflip deposit while an earlier one
	// from another round is still unresolved.
	ErrFlipPending = errors.New("coin engine: unresolved coinflip deposit")
	// ErrNothingToClaim signals an empty claimable balance.
	ErrNothingToClaim = errors.New("coin engine: nothing to claim")
	// ErrUnknownCode rejects referral binds against unregistered codes.
	ErrUnknownCode = errors.New("coin engine: unknown affiliate code")
	// ErrCodeTaken rejects re-registration of an existing code.
	ErrCodeTaken = errors.New("coin engine: affiliate code already registered")
	// ErrReferralBound rejects any bind after the first: binding is
	// first-code-wins and permanent.
	ErrReferralBound = errors.New("coin engine: referral already bound")
	// ErrSelfReferral rejects binding a player to their own code.
	ErrSelfReferral = errors.New("coin engine: cannot bind own code")
)

type engineState interface {
	GetAccount(addr [20]byte) (*types.Account, error)
	PutAccount(addr [20]byte, account *types.Account) error
	TokenSupply() (*big.Int, error)
	PutTokenSupply(supply *big.Int) error

	LaneBook(round uint64, player [20]byte) (*LaneBook, error)
	PutLaneBook(round uint64, player [20]byte, book *LaneBook) error
	DeleteLaneBook(round uint64, player [20]byte) error
	StakeRoster(round uint64) ([][20]byte, error)
	AppendStakeRoster(round uint64, player [20]byte) error
	ClearStakeRoster(round uint64) error
	FlipRoster(round uint64) ([][20]byte, error)
	AppendFlipRoster(round uint64, player [20]byte) error
	ClearFlipRoster(round uint64) error

	Leaderboard(name string) (*Leaderboard, error)
	PutLeaderboard(name string, board *Leaderboard) error
	BoardRank(name string, player [20]byte) (int, bool, error)
	PutBoardRank(name string, player [20]byte, rank int) error
	DeleteBoardRank(name string, player [20]byte) error

	Affiliate(code [32]byte) (*AffiliateRecord, bool, error)
	PutAffiliate(code [32]byte, record *AffiliateRecord) error

	BountyPool() (*big.Int, error)
	PutBountyPool(pool *big.Int) error
}

// Engine owns the fungible credit and everything layered on it: coinflip
// deposits, stake lanes, leaderboards, affiliate accounting and the bounty
// pool.
type Engine struct {
	state   engineState
	params  Params
	emitter events.Emitter
}

// NewEngine constructs a coin engine with the given policy table.
func NewEngine(params Params) *Engine {
	return &Engine{params: params, emitter: events.NoopEmitter{}}
}

// SetState wires the engine to the durable ledger.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter wires the event emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

// Params exposes the active policy table.
func (e *Engine) Params() Params { return e.params }

// --- balances ---

// BalanceOf returns the liquid balance for an account.
func (e *Engine) BalanceOf(addr [20]byte) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	account, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return account.Balance, nil
}

// Mint creates new credit for an account.
func (e *Engine) Mint(to [20]byte, amount *big.Int) error {
	if err := e.checkAmount(amount); err != nil {
		return err
	}
	account, err := e.state.GetAccount(to)
	if err != nil {
		return err
	}
	account.Balance = new(big.Int).Add(account.Balance, amount)
	if err := e.state.PutAccount(to, account); err != nil {
		return err
	}
	return e.adjustSupply(amount)
}

// Burn destroys credit held by an account. It also serves as the fee sink
// for the randomness gate's nudges.
func (e *Engine) Burn(from [20]byte, amount *big.Int) error {
	if err := e.checkAmount(amount); err != nil {
		return err
	}
	account, err := e.state.GetAccount(from)
	if err != nil {
		return err
	}
	if account.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	account.Balance = new(big.Int).Sub(account.Balance, amount)
	if err := e.state.PutAccount(from, account); err != nil {
		return err
	}
	return e.adjustSupply(new(big.Int).Neg(amount))
}

// Transfer moves credit between accounts.
func (e *Engine) Transfer(from, to [20]byte, amount *big.Int) error {
	if err := e.checkAmount(amount); err != nil {
		return err
	}
	sender, err := e.state.GetAccount(from)
	if err != nil {
		return err
	}
	if sender.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	sender.Balance = new(big.Int).Sub(sender.Balance, amount)
	if err := e.state.PutAccount(from, sender); err != nil {
		return err
	}
	receiver, err := e.state.GetAccount(to)
	if err != nil {
		return err
	}
	receiver.Balance = new(big.Int).Add(receiver.Balance, amount)
	return e.state.PutAccount(to, receiver)
}

// Credit accrues a payout into the claimable bucket.
func (e *Engine) Credit(player [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return err
	}
	account.Claimable = new(big.Int).Add(account.Claimable, amount)
	return e.state.PutAccount(player, account)
}

// Claim moves the accrued claimable into the liquid balance.
func (e *Engine) Claim(player [20]byte) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return nil, err
	}
	if account.Claimable.Sign() <= 0 {
		return nil, ErrNothingToClaim
	}
	claimed := account.Claimable
	account.Claimable = big.NewInt(0)
	account.Balance = new(big.Int).Add(account.Balance, claimed)
	if err := e.state.PutAccount(player, account); err != nil {
		return nil, err
	}
	if err := e.adjustSupply(claimed); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.Claimed{Player: player, Amount: claimed.String()})
	return claimed, nil
}

func (e *Engine) checkAmount(amount *big.Int) error {
	if e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e *Engine) adjustSupply(delta *big.Int) error {
	supply, err := e.state.TokenSupply()
	if err != nil {
		return err
	}
	next := new(big.Int).Add(supply, delta)
	if next.Sign() < 0 {
		next = big.NewInt(0)
	}
	return e.state.PutTokenSupply(next)
}

// --- burn-ins: every credit entering the game flows through here ---

// burnIn destroys the deposit, records participation for the day-cycle,
// routes the affiliate split and feeds the bounty pool.
func (e *Engine) burnIn(player [20]byte, amount *big.Int, dayIndex uint64) error {
	account, err := e.state.GetAccount(player)
	if err != nil {
		return err
	}
	if account.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	account.Balance = new(big.Int).Sub(account.Balance, amount)
	account.TotalBurned = new(big.Int).Add(account.TotalBurned, amount)
	account.LastBurnDay = dayIndex
	account.Luckbox += luckboxPoints(amount, e.params.LuckboxDenom)
	referrer := account.Referrer
	if err := e.state.PutAccount(player, account); err != nil {
		return err
	}
	if err := e.adjustSupply(new(big.Int).Neg(amount)); err != nil {
		return err
	}
	if err := e.feedBounty(amount); err != nil {
		return err
	}
	return e.routeAffiliate(player, referrer, amount)
}

func luckboxPoints(amount, denom *big.Int) uint64 {
	points := new(big.Int).Quo(amount, denom)
	if !points.IsUint64() {
		return ^uint64(0)
	}
	return points.Uint64()
}

func (e *Engine) feedBounty(amount *big.Int) error {
	share := bpsShare(amount, e.params.BountyShareBps)
	if share.Sign() <= 0 {
		return nil
	}
	pool, err := e.state.BountyPool()
	if err != nil {
		return err
	}
	return e.state.PutBountyPool(new(big.Int).Add(pool, share))
}

func bpsShare(amount *big.Int, bps uint64) *big.Int {
	share := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return share.Quo(share, big.NewInt(BpsDenominator))
}

// --- participation & bounty ---

// ParticipatedToday reports whether the player burned credit this day-cycle.
func (e *Engine) ParticipatedToday(player [20]byte, dayIndex uint64) (bool, error) {
	if e.state == nil {
		return false, errNilState
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return false, err
	}
	return account.LastBurnDay == dayIndex && dayIndex != 0, nil
}

// TouchParticipation tags the player as active this day-cycle without a
// credit burn. Asset burns count toward the standard-advance check too.
func (e *Engine) TouchParticipation(player [20]byte, dayIndex uint64) error {
	if e.state == nil {
		return errNilState
	}
	account, err := e.state.GetAccount(player)
	if err != nil {
		return err
	}
	account.LastBurnDay = dayIndex
	return e.state.PutAccount(player, account)
}

// PayBounty pays the advance-caller incentive out of the bounty pool.
func (e *Engine) PayBounty(caller [20]byte) (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	pool, err := e.state.BountyPool()
	if err != nil {
		return nil, err
	}
	payout := bpsShare(pool, e.params.BountyPayoutBps)
	if payout.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if err := e.state.PutBountyPool(new(big.Int).Sub(pool, payout)); err != nil {
		return nil, err
	}
	if err := e.Credit(caller, payout); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.BountyPaid{Caller: caller, Amount: payout.String()})
	return payout, nil
}

// BountyPool exposes the current pool for queries.
func (e *Engine) BountyPool() (*big.Int, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.BountyPool()
}
