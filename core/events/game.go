package events

const (
	TypePhaseChanged  = "game.phaseChanged"
	TypeRoundEnded    = "game.roundEnded"
	TypeDailyJackpot  = "game.dailyJackpot"
	TypeJackpotWon    = "game.jackpotWon"
	TypeMintsQueued   = "game.mintsQueued"
	TypeAssetsBurned  = "game.assetsBurned"
	TypeGameShutdown  = "game.shutdown"
	TypeBatchProgress = "game.batchProgress"
)

// PhaseChanged captures a forward phase transition within a round.
type PhaseChanged struct {
	Round uint64
	From  uint8
	To    uint8
}

func (PhaseChanged) EventType() string { return TypePhaseChanged }

// RoundEnded captures a round close, by extermination or timeout.
type RoundEnded struct {
	Round        uint64
	Exterminated uint16
	Timeout      bool
	Exterminator [20]byte
}

func (RoundEnded) EventType() string { return TypeRoundEnded }

// DailyJackpot captures one recurring jackpot payment.
type DailyJackpot struct {
	Round   uint64
	Day     uint64
	Counter uint8
	Amount  string
}

func (DailyJackpot) EventType() string { return TypeDailyJackpot }

// JackpotWon captures a single drawn winner inside any jackpot.
type JackpotWon struct {
	Round  uint64
	Kind   string
	Trait  uint16
	Winner [20]byte
	Amount string
}

func (JackpotWon) EventType() string { return TypeJackpotWon }

// MintsQueued captures a purchase-window mint order.
type MintsQueued struct {
	Player [20]byte
	Round  uint64
	Count  uint32
	Paid   string
}

func (MintsQueued) EventType() string { return TypeMintsQueued }

// AssetsBurned captures a burn-for-reward action.
type AssetsBurned struct {
	Player [20]byte
	Round  uint64
	Assets uint32
	Reward string
}

func (AssetsBurned) EventType() string { return TypeAssetsBurned }

// GameShutdown captures the terminal liveness shutdown.
type GameShutdown struct {
	Round uint64
	Day   uint64
}

func (GameShutdown) EventType() string { return TypeGameShutdown }

// BatchProgress captures one bounded settlement window.
type BatchProgress struct {
	Round  uint64
	Task   string
	Worked uint64
	Done   bool
}

func (BatchProgress) EventType() string { return TypeBatchProgress }
