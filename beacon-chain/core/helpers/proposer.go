package helpers

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/hash"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

const maxRandomByte = uint64(1<<8 - 1)

// BeaconProposerIndex returns the proposer for st's current slot, computing
// and caching it on first request for this state.
func BeaconProposerIndex(st *state.BeaconState) (primitives.ValidatorIndex, error) {
	if idx, ok := st.ProposerIndexCacheLookup(st.Slot()); ok {
		return idx, nil
	}
	epoch := primitives.Epoch(uint64(st.Slot()) / uint64(params.BeaconConfig().SlotsPerEpoch))
	seed, err := Seed(st, epoch, params.BeaconConfig().DomainBeaconProposer)
	if err != nil {
		return 0, errors.Wrap(err, "could not get seed")
	}
	seedWithSlot := append(append([]byte{}, seed[:]...), bytesutil.Bytes8(uint64(st.Slot()))...)
	seedWithSlotHash := hash.Hash(seedWithSlot)

	active, err := ActiveValidatorIndices(st, epoch)
	if err != nil {
		return 0, err
	}
	idx, err := ComputeProposerIndex(st, active, seedWithSlotHash)
	if err != nil {
		return 0, err
	}
	st.ProposerIndexCacheStore(st.Slot(), idx)
	return idx, nil
}

// ComputeProposerIndex runs the effective-balance-weighted "random byte"
// selection: walk a stream of candidate indices derived from seed, each
// accepted with probability proportional to its effective balance, until
// one is accepted.
func ComputeProposerIndex(st *state.BeaconState, activeIndices []primitives.ValidatorIndex, seed [32]byte) (primitives.ValidatorIndex, error) {
	if len(activeIndices) == 0 {
		return 0, errors.New("empty active indices")
	}
	validators := st.Validators()
	total := uint64(len(activeIndices))
	i := uint64(0)
	buf := make([]byte, 32+8)
	copy(buf[:32], seed[:])
	for {
		shuffledIdx, err := ComputeShuffledIndex(i%total, total, seed)
		if err != nil {
			return 0, err
		}
		candidate := activeIndices[shuffledIdx]

		binary8 := bytesutil.Bytes8(i / 32)
		copy(buf[32:], binary8)
		randomByteSource := hash.Hash(buf)
		randomByte := uint64(randomByteSource[i%32])

		if uint64(validators[candidate].EffectiveBalance)*maxRandomByte >= params.BeaconConfig().MaxEffectiveBalance*randomByte {
			return candidate, nil
		}
		i++
	}
}
