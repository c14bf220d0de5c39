package state

import "degenerus/native/traits"

type storedTraitCounters struct {
	Remaining []uint32
	EndFlag   uint32
}

// TraitCounters loads the per-round supply snapshot, zeroed when absent.
func (m *Manager) TraitCounters(round uint64) (*traits.Counters, error) {
	var stored storedTraitCounters
	if _, err := m.getRLP(traitCountersKey(round), &stored); err != nil {
		return nil, err
	}
	counters := &traits.Counters{EndFlag: stored.EndFlag}
	for i := 0; i < len(stored.Remaining) && i < len(counters.Remaining); i++ {
		counters.Remaining[i] = stored.Remaining[i]
	}
	return counters, nil
}

// PutTraitCounters persists the per-round supply snapshot.
func (m *Manager) PutTraitCounters(round uint64, counters *traits.Counters) error {
	stored := storedTraitCounters{
		Remaining: make([]uint32, len(counters.Remaining)),
		EndFlag:   counters.EndFlag,
	}
	copy(stored.Remaining, counters.Remaining[:])
	return m.putRLP(traitCountersKey(round), &stored)
}

// BurnCounts loads the daily selection tallies, zeroed when absent.
func (m *Manager) BurnCounts(round uint64) (*traits.BurnCounts, error) {
	var stored []uint32
	if _, err := m.getRLP(burnCountsKey(round), &stored); err != nil {
		return nil, err
	}
	counts := &traits.BurnCounts{}
	for i := 0; i < len(stored) && i < len(counts.Counts); i++ {
		counts.Counts[i] = stored[i]
	}
	return counts, nil
}

// PutBurnCounts persists the daily selection tallies.
func (m *Manager) PutBurnCounts(round uint64, counts *traits.BurnCounts) error {
	stored := make([]uint32, len(counts.Counts))
	copy(stored, counts.Counts[:])
	return m.putRLP(burnCountsKey(round), stored)
}

// TraitTickets lists the jackpot eligibility entries for (round, trait).
func (m *Manager) TraitTickets(round uint64, trait uint16) ([][20]byte, error) {
	return m.roster(traitTicketKey(round, trait))
}

// AppendTraitTicket grants one jackpot ticket.
func (m *Manager) AppendTraitTicket(round uint64, trait uint16, player [20]byte) error {
	return m.appendRoster(traitTicketKey(round, trait), player)
}
