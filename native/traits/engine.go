package traits

import (
	"errors"
	"fmt"
)

var (
	errNilState = errors.New("traits engine: state not configured")

	// ErrTraitRange rejects trait ids outside the fixed id space.
	ErrTraitRange = errors.New("traits engine: trait id out of range")
)

type engineState interface {
	TraitCounters(round uint64) (*Counters, error)
	PutTraitCounters(round uint64, c *Counters) error
	BurnCounts(round uint64) (*BurnCounts, error)
	PutBurnCounts(round uint64, b *BurnCounts) error
	AppendTraitTicket(round uint64, trait uint16, player [20]byte) error
	TraitTickets(round uint64, trait uint16) ([][20]byte, error)
}

// Engine owns the per-round trait supply ledger: it consumes counters on
// burn actions and names the exterminated trait that ends a round.
type Engine struct {
	state engineState
}

// NewEngine constructs a trait ledger engine.
func NewEngine() *Engine { return &Engine{} }

// SetState wires the engine to the durable ledger.
func (e *Engine) SetState(state engineState) { e.state = state }

// Rebuild snapshots the remaining supplies for a fresh round.
func (e *Engine) Rebuild(round uint64, supplies [TraitCount]uint32, endFlag uint32) error {
	if e.state == nil {
		return errNilState
	}
	counters := &Counters{Remaining: supplies, EndFlag: endFlag}
	if err := e.state.PutTraitCounters(round, counters); err != nil {
		return err
	}
	return e.state.PutBurnCounts(round, &BurnCounts{})
}

// BurnResult reports the ledger effect of one burn action.
type BurnResult struct {
	// Exterminated is the trait whose counter reached the terminal value,
	// valid only when Ended is true.
	Exterminated uint16
	Ended        bool
}

// RecordBurn consumes supply for every trait on the burned assets, tallies
// the per-day selection buckets, and grants the burner one jackpot ticket per
// trait. A counter reaching the end flag names the exterminated trait.
func (e *Engine) RecordBurn(round uint64, player [20]byte, traitIDs []uint16) (BurnResult, error) {
	if e.state == nil {
		return BurnResult{}, errNilState
	}
	counters, err := e.state.TraitCounters(round)
	if err != nil {
		return BurnResult{}, err
	}
	counts, err := e.state.BurnCounts(round)
	if err != nil {
		return BurnResult{}, err
	}
	result := BurnResult{}
	for _, trait := range traitIDs {
		if int(trait) >= TraitCount {
			return BurnResult{}, fmt.Errorf("%w: %d", ErrTraitRange, trait)
		}
		if counters.Remaining[trait] > 0 {
			counters.Remaining[trait]--
		}
		if !result.Ended && counters.Remaining[trait] <= counters.EndFlag {
			result.Exterminated = trait
			result.Ended = true
		}
		tallyBucket(counts, trait)
		if err := e.state.AppendTraitTicket(round, trait, player); err != nil {
			return BurnResult{}, err
		}
	}
	if err := e.state.PutTraitCounters(round, counters); err != nil {
		return BurnResult{}, err
	}
	if err := e.state.PutBurnCounts(round, counts); err != nil {
		return BurnResult{}, err
	}
	return result, nil
}

// tallyBucket maps a trait id into the daily selection buckets. Patterned
// ids (band 0) feed both a symbol and a color bucket; body ids (band 2) feed
// their own bucket; the remaining bands are drawn randomly and are not
// tallied.
func tallyBucket(counts *BurnCounts, trait uint16) {
	switch {
	case trait < 64:
		counts.Counts[trait&7]++
		counts.Counts[8+(trait>>3)]++
	case trait >= 128 && trait < 192:
		counts.Counts[16+(trait-128)]++
	}
}

// Remaining returns the current supply counter for a trait.
func (e *Engine) Remaining(round uint64, trait uint16) (uint32, error) {
	if int(trait) >= TraitCount {
		return 0, fmt.Errorf("%w: %d", ErrTraitRange, trait)
	}
	counters, err := e.state.TraitCounters(round)
	if err != nil {
		return 0, err
	}
	return counters.Remaining[trait], nil
}

// ResetBurnCounts zeroes the daily tally buckets after a jackpot draw so the
// next day-cycle selects from fresh burns only.
func (e *Engine) ResetBurnCounts(round uint64) error {
	if e.state == nil {
		return errNilState
	}
	return e.state.PutBurnCounts(round, &BurnCounts{})
}

// Tickets exposes the jackpot eligibility list for a trait this round.
func (e *Engine) Tickets(round uint64, trait uint16) ([][20]byte, error) {
	return e.state.TraitTickets(round, trait)
}

// WinningTraits derives the four daily winning traits from the entropy word
// and the burn tallies. The selection formulas are preserved as black-box
// policy: the heaviest-burned symbol paired with a random column, the
// heaviest color paired with a random symbol, the heaviest body, and a fully
// random backdrop.
func (e *Engine) WinningTraits(round uint64, word [32]byte) ([4]uint16, error) {
	counts, err := e.state.BurnCounts(round)
	if err != nil {
		return [4]uint16{}, err
	}
	return SelectWinningTraits(word, counts), nil
}

// SelectWinningTraits is the pure selection rule over the tally buckets.
func SelectWinningTraits(word [32]byte, counts *BurnCounts) [4]uint16 {
	rng := uint64(word[31]) | uint64(word[30])<<8 | uint64(word[29])<<16

	var out [4]uint16
	sym := maxBucket(counts.Counts[0:8])
	col := uint16(rng & 7)
	out[0] = col<<3 | sym

	maxColor := maxBucket(counts.Counts[8:16])
	randSym := uint16((rng >> 3) & 7)
	out[1] = 64 + (maxColor<<3 | randSym)

	out[2] = 128 + maxBucket(counts.Counts[16:80])

	out[3] = 192 + uint16((rng>>6)&63)
	return out
}

func maxBucket(counts []uint32) uint16 {
	best := uint16(0)
	bestVal := counts[0]
	for i := 1; i < len(counts); i++ {
		if counts[i] > bestVal {
			bestVal = counts[i]
			best = uint16(i)
		}
	}
	return best
}
