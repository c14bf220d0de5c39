package traits

// TraitCount is the size of the trait id space. Ids are laid out in four
// bands of 64: patterned ids (color<<3|symbol), accessory ids, body ids and
// backdrop ids.
const TraitCount = 256

// TimeoutTrait is the sentinel recorded when a round ends by jackpot cap
// instead of an extermination.
const TimeoutTrait uint16 = 420

// BurnBuckets is the number of per-day burn tally buckets feeding the daily
// winning-trait selection: 8 symbol buckets, 8 color buckets and 64 body
// buckets.
const BurnBuckets = 80

// Counters is the per-round remaining-supply snapshot. Values only move down
// within a round; the snapshot is rebuilt at the round boundary.
type Counters struct {
	Remaining [TraitCount]uint32
	// EndFlag is the terminal value a counter must reach to signal the
	// round's extermination. Zero unless a burn action carries an end
	// offset.
	EndFlag uint32
}

// Clone returns a copy to protect internal references.
func (c *Counters) Clone() *Counters {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// BurnCounts tallies burns per selection bucket for the current round.
type BurnCounts struct {
	Counts [BurnBuckets]uint32
}

// Clone returns a copy to protect internal references.
func (b *BurnCounts) Clone() *BurnCounts {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
