package events

const (
	TypeFlipDeposited  = "coin.flipDeposited"
	TypeFlipSettled    = "coin.flipSettled"
	TypeStakePlaced    = "coin.stakePlaced"
	TypeLanePaid       = "coin.lanePaid"
	TypeLaneRolled     = "coin.laneRolled"
	TypeLaneForfeited  = "coin.laneForfeited"
	TypeClaimed        = "coin.claimed"
	TypeReferralBound  = "coin.referralBound"
	TypeAffiliateEarn  = "coin.affiliateEarned"
	TypeBountyPaid     = "coin.bountyPaid"
	TypeBoardDisplaced = "coin.leaderboardDisplaced"
)

// FlipDeposited captures a coinflip entry riding on a round's outcome.
type FlipDeposited struct {
	Player [20]byte
	Round  uint64
	Amount string
}

func (FlipDeposited) EventType() string { return TypeFlipDeposited }

// FlipSettled captures a resolved coinflip deposit.
type FlipSettled struct {
	Player [20]byte
	Round  uint64
	Won    bool
	Payout string
}

func (FlipSettled) EventType() string { return TypeFlipSettled }

// StakePlaced captures a new or merged stake lane.
type StakePlaced struct {
	Player      [20]byte
	TargetRound uint64
	Risk        uint8
	Burned      string
	Principal   string
}

func (StakePlaced) EventType() string { return TypeStakePlaced }

// LanePaid captures a matured risk-1 lane payout.
type LanePaid struct {
	Player [20]byte
	Round  uint64
	Amount string
}

func (LanePaid) EventType() string { return TypeLanePaid }

// LaneRolled captures a surviving lane moving to the next round with
// decremented risk and boosted principal.
type LaneRolled struct {
	Player    [20]byte
	FromRound uint64
	Risk      uint8
	Principal string
}

func (LaneRolled) EventType() string { return TypeLaneRolled }

// LaneForfeited captures losses on a round the stake did not survive.
type LaneForfeited struct {
	Player [20]byte
	Round  uint64
	Amount string
}

func (LaneForfeited) EventType() string { return TypeLaneForfeited }

// Claimed captures accrued claimables moving into the liquid balance.
type Claimed struct {
	Player [20]byte
	Amount string
}

func (Claimed) EventType() string { return TypeClaimed }

// ReferralBound captures a first-code-wins referral binding.
type ReferralBound struct {
	Player [20]byte
	Code   [32]byte
}

func (ReferralBound) EventType() string { return TypeReferralBound }

// AffiliateEarned captures a routed affiliate split.
type AffiliateEarned struct {
	Code     [32]byte
	Amount   string
	Rakeback string
	Upline   string
}

func (AffiliateEarned) EventType() string { return TypeAffiliateEarn }

// BoardDisplaced captures an entry evicted from a full leaderboard.
type BoardDisplaced struct {
	Board  string
	Player [20]byte
}

func (BoardDisplaced) EventType() string { return TypeBoardDisplaced }

// BountyPaid captures the advance-caller incentive.
type BountyPaid struct {
	Caller [20]byte
	Amount string
}

func (BountyPaid) EventType() string { return TypeBountyPaid }
