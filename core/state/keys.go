package state

import "encoding/binary"

const (
	accountPrefix     = "degenerus/account/"
	supplyKeyLiteral  = "degenerus/supply"
	laneBookPrefix    = "degenerus/lane/"
	stakeRosterPrefix = "degenerus/roster/stake/"
	flipRosterPrefix  = "degenerus/roster/flip/"
	boardPrefix       = "degenerus/board/"
	boardRankPrefix   = "degenerus/boardrank/"
	affiliatePrefix   = "degenerus/affiliate/"
	bountyKeyLiteral  = "degenerus/bounty"

	gateRequestLiteral = "degenerus/gate/request"
	gateMetaLiteral    = "degenerus/gate/meta"

	traitCountersPrefix = "degenerus/traits/counters/"
	burnCountsPrefix    = "degenerus/traits/burncounts/"
	traitTicketPrefix   = "degenerus/traits/tickets/"

	roundKeyLiteral    = "degenerus/round"
	cursorPrefix       = "degenerus/cursor/"
	mintQueueLiteral   = "degenerus/mintqueue"
	exterminatorPrefix = "degenerus/exterminator/"

	assetMetaLiteral   = "degenerus/assets/meta"
	assetPrefix        = "degenerus/assets/asset/"
	genSuppliesPrefix  = "degenerus/assets/supplies/"
	mintCreditPrefix   = "degenerus/assets/credit/"
)

func u64Key(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func accountKey(addr [20]byte) []byte {
	return storageKey(accountPrefix, addr[:])
}

func supplyKey() []byte {
	return storageKey(supplyKeyLiteral, nil)
}

func laneBookKey(round uint64, player [20]byte) []byte {
	id := make([]byte, 8+20)
	binary.BigEndian.PutUint64(id, round)
	copy(id[8:], player[:])
	return storageKey(laneBookPrefix, id)
}

func stakeRosterKey(round uint64) []byte {
	return storageKey(stakeRosterPrefix, u64Key(round))
}

func flipRosterKey(round uint64) []byte {
	return storageKey(flipRosterPrefix, u64Key(round))
}

func boardKey(name string) []byte {
	return storageKey(boardPrefix, []byte(name))
}

func boardRankKey(name string, player [20]byte) []byte {
	id := make([]byte, len(name)+20)
	copy(id, name)
	copy(id[len(name):], player[:])
	return storageKey(boardRankPrefix, id)
}

func affiliateKey(code [32]byte) []byte {
	return storageKey(affiliatePrefix, code[:])
}

func bountyKey() []byte {
	return storageKey(bountyKeyLiteral, nil)
}

func gateRequestKey() []byte {
	return storageKey(gateRequestLiteral, nil)
}

func gateMetaKey() []byte {
	return storageKey(gateMetaLiteral, nil)
}

func traitCountersKey(round uint64) []byte {
	return storageKey(traitCountersPrefix, u64Key(round))
}

func burnCountsKey(round uint64) []byte {
	return storageKey(burnCountsPrefix, u64Key(round))
}

func traitTicketKey(round uint64, trait uint16) []byte {
	id := make([]byte, 8+2)
	binary.BigEndian.PutUint64(id, round)
	binary.BigEndian.PutUint16(id[8:], trait)
	return storageKey(traitTicketPrefix, id)
}

func roundKey() []byte {
	return storageKey(roundKeyLiteral, nil)
}

func cursorKey(name string) []byte {
	return storageKey(cursorPrefix, []byte(name))
}

func mintQueueKey() []byte {
	return storageKey(mintQueueLiteral, nil)
}

func exterminatorKey(round uint64) []byte {
	return storageKey(exterminatorPrefix, u64Key(round))
}

func assetMetaKey() []byte {
	return storageKey(assetMetaLiteral, nil)
}

func assetKey(id uint64) []byte {
	return storageKey(assetPrefix, u64Key(id))
}

func genSuppliesKey(gen uint64) []byte {
	return storageKey(genSuppliesPrefix, u64Key(gen))
}

func mintCreditKey(player [20]byte) []byte {
	return storageKey(mintCreditPrefix, player[:])
}
