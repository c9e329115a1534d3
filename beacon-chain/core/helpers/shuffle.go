package helpers

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/hash"
)

// ComputeShuffledIndex returns the position in [0, indexCount) that index
// is permuted to by the seed-keyed "swap or not" shuffle, run for
// ShuffleRoundCount rounds.
func ComputeShuffledIndex(index, indexCount uint64, seed [32]byte) (uint64, error) {
	if index >= indexCount {
		return 0, errors.Errorf("index out of range: %d >= %d", index, indexCount)
	}
	rounds := params.BeaconConfig().ShuffleRoundCount
	for round := uint64(0); round < rounds; round++ {
		pivot := hashWithRound(seed, round, nil)
		pivotIdx := bytesToUint64(pivot[:8]) % indexCount
		flip := (pivotIdx + indexCount - index) % indexCount
		position := index
		if flip > position {
			position = flip
		}
		source := hashWithRound(seed, round, uint32Bytes(uint32(position/256)))
		byteV := source[(position%256)/8]
		bitV := (byteV >> (position % 8)) & 1
		if bitV == 1 {
			index = flip
		}
	}
	return index, nil
}

// UnshuffleList returns a new list where out[i] = input[ComputeShuffledIndex(i)],
// the materialized form of compute_committee's index comprehension. Named
// for its call sites: expanding a committee-sized slice out of the full
// shuffled validator set.
func UnshuffleList(input []primitives.ValidatorIndex, seed [32]byte) ([]primitives.ValidatorIndex, error) {
	n := uint64(len(input))
	if n == 0 {
		return input, nil
	}
	out := make([]primitives.ValidatorIndex, n)
	for i := uint64(0); i < n; i++ {
		si, err := ComputeShuffledIndex(i, n, seed)
		if err != nil {
			return nil, err
		}
		out[i] = input[si]
	}
	return out, nil
}

func hashWithRound(seed [32]byte, round uint64, suffix []byte) [32]byte {
	buf := make([]byte, 0, 32+1+len(suffix))
	buf = append(buf, seed[:]...)
	buf = append(buf, byte(round))
	buf = append(buf, suffix...)
	return hash.Hash(buf)
}

func uint32Bytes(x uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, x)
	return b
}

func bytesToUint64(b []byte) uint64 {
	v := uint64(0)
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}
