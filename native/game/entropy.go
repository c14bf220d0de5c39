package game

import (
	"math/big"

	"github.com/holiman/uint256"
)

// entropyStep advances the 256-bit xorshift state in place.
func entropyStep(x *uint256.Int) *uint256.Int {
	var t uint256.Int
	x.Xor(x, t.Lsh(x, 7))
	x.Xor(x, t.Rsh(x, 9))
	x.Xor(x, t.Lsh(x, 8))
	return x
}

func wordState(word [32]byte) *uint256.Int {
	return new(uint256.Int).SetBytes(word[:])
}

// seedEntropy mixes the round number into the gate word: word ^ (round<<192).
func seedEntropy(word [32]byte, round uint64) *uint256.Int {
	state := wordState(word)
	mix := new(uint256.Int).Lsh(uint256.NewInt(round), 192)
	return state.Xor(state, mix)
}

// mixBucket folds the bucket index and its payout share into the entropy
// chain before stepping, so later buckets depend on earlier pool math.
func mixBucket(state *uint256.Int, bucket uint64, share *big.Int) *uint256.Int {
	mix := new(uint256.Int).Lsh(uint256.NewInt(bucket), 64)
	state.Xor(state, mix)
	if share != nil && share.Sign() > 0 {
		s, overflow := uint256.FromBig(share)
		if !overflow {
			state.Xor(state, s)
		}
	}
	return entropyStep(state)
}

// drawTicket picks a ticket index: (word ^ trait<<128 ^ salt<<192) mod n.
func drawTicket(state *uint256.Int, trait uint16, salt uint64, n uint64) uint64 {
	if n == 0 {
		return 0
	}
	slice := new(uint256.Int).Set(state)
	slice.Xor(slice, new(uint256.Int).Lsh(uint256.NewInt(uint64(trait)), 128))
	slice.Xor(slice, new(uint256.Int).Lsh(uint256.NewInt(salt), 192))
	mod := slice.Mod(slice, uint256.NewInt(n))
	return mod.Uint64()
}
