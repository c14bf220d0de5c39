package config

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"degenerus/native/coin"
	"degenerus/native/game"
	"degenerus/native/gate"
)

// GameSection tunes round scheduling. Zero values defer to the production
// schedule.
type GameSection struct {
	DaySeconds       int64  `toml:"DaySeconds"`
	PurchaseDays     uint64 `toml:"PurchaseDays"`
	IdleShutdownDays uint64 `toml:"IdleShutdownDays"`
	// MintPrice is a base-unit decimal string, e.g. "10000000000".
	MintPrice     string `toml:"MintPrice"`
	EndSupplyFlag uint32 `toml:"EndSupplyFlag"`
}

// GateSection tunes the entropy gate.
type GateSection struct {
	// BaseNudgeFee is a base-unit decimal string.
	BaseNudgeFee string `toml:"BaseNudgeFee"`
	// EmergencyAuthority is a 20-byte hex address, optionally 0x-prefixed.
	EmergencyAuthority string `toml:"EmergencyAuthority"`
	// OracleEndpoint is the provider URL notified of entropy requests. Empty
	// means the provider polls instead.
	OracleEndpoint string `toml:"OracleEndpoint"`
}

// CoinSection tunes the ledger policy. Amounts are base-unit decimal strings;
// a zero bps field keeps the production value.
type CoinSection struct {
	MinFlip           string `toml:"MinFlip"`
	MinStake          string `toml:"MinStake"`
	HouseEdgeBps      uint64 `toml:"HouseEdgeBps"`
	WinBoostBps       uint64 `toml:"WinBoostBps"`
	GrowthBaseBps     uint64 `toml:"GrowthBaseBps"`
	GrowthRiskBps     uint64 `toml:"GrowthRiskBps"`
	LuckboxDenom      string `toml:"LuckboxDenom"`
	AffiliateShareBps uint64 `toml:"AffiliateShareBps"`
	RakebackBps       uint64 `toml:"RakebackBps"`
	UplineBps         uint64 `toml:"UplineBps"`
	BountyShareBps    uint64 `toml:"BountyShareBps"`
	BountyPayoutBps   uint64 `toml:"BountyPayoutBps"`
}

// GameParams resolves the configured schedule over the production defaults.
func (c *Config) GameParams() (game.Params, error) {
	params := game.DefaultParams()
	if c.Game.DaySeconds > 0 {
		params.DaySeconds = c.Game.DaySeconds
	}
	if c.Game.PurchaseDays > 0 {
		params.PurchaseDays = c.Game.PurchaseDays
	}
	if c.Game.IdleShutdownDays > 0 {
		params.IdleShutdownDays = c.Game.IdleShutdownDays
	}
	if c.Game.EndSupplyFlag > 0 {
		params.EndSupplyFlag = c.Game.EndSupplyFlag
	}
	if amount, ok, err := parseAmount("game.MintPrice", c.Game.MintPrice); err != nil {
		return game.Params{}, err
	} else if ok {
		params.MintPrice = amount
	}
	return params, nil
}

// GateConfig resolves the configured gate tunables over the defaults.
func (c *Config) GateConfig() (gate.Config, error) {
	cfg := gate.DefaultConfig()
	if amount, ok, err := parseAmount("gate.BaseNudgeFee", c.Gate.BaseNudgeFee); err != nil {
		return gate.Config{}, err
	} else if ok {
		cfg.BaseNudgeFee = amount
	}
	if trimmed := strings.TrimSpace(c.Gate.EmergencyAuthority); trimmed != "" {
		authority, err := parseAddress(trimmed)
		if err != nil {
			return gate.Config{}, fmt.Errorf("gate.EmergencyAuthority: %w", err)
		}
		cfg.EmergencyAuthority = authority
	}
	return cfg, nil
}

// CoinParams resolves the configured ledger policy over the defaults.
func (c *Config) CoinParams() (coin.Params, error) {
	params := coin.DefaultParams()
	if amount, ok, err := parseAmount("coin.MinFlip", c.Coin.MinFlip); err != nil {
		return coin.Params{}, err
	} else if ok {
		params.MinFlip = amount
	}
	if amount, ok, err := parseAmount("coin.MinStake", c.Coin.MinStake); err != nil {
		return coin.Params{}, err
	} else if ok {
		params.MinStake = amount
	}
	if amount, ok, err := parseAmount("coin.LuckboxDenom", c.Coin.LuckboxDenom); err != nil {
		return coin.Params{}, err
	} else if ok {
		params.LuckboxDenom = amount
	}
	overrideBps(&params.HouseEdgeBps, c.Coin.HouseEdgeBps)
	overrideBps(&params.WinBoostBps, c.Coin.WinBoostBps)
	overrideBps(&params.GrowthBaseBps, c.Coin.GrowthBaseBps)
	overrideBps(&params.GrowthRiskBps, c.Coin.GrowthRiskBps)
	overrideBps(&params.AffiliateShareBps, c.Coin.AffiliateShareBps)
	overrideBps(&params.RakebackBps, c.Coin.RakebackBps)
	overrideBps(&params.UplineBps, c.Coin.UplineBps)
	overrideBps(&params.BountyShareBps, c.Coin.BountyShareBps)
	overrideBps(&params.BountyPayoutBps, c.Coin.BountyPayoutBps)
	if err := params.Validate(); err != nil {
		return coin.Params{}, fmt.Errorf("coin params: %w", err)
	}
	return params, nil
}

func overrideBps(target *uint64, value uint64) {
	if value > 0 {
		*target = value
	}
}

func parseAmount(field, raw string) (*big.Int, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false, nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, false, fmt.Errorf("%s: invalid amount %q", field, raw)
	}
	return amount, true, nil
}

func parseAddress(raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, err
	}
	if len(decoded) != len(addr) {
		return addr, fmt.Errorf("expected 20 bytes, got %d", len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}
