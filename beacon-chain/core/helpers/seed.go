package helpers

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/hash"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

// Seed returns the randomness seed for epoch under domainType: the randao
// mix MinSeedLookahead+1 epochs back, mixed with the domain type and epoch
// to decorrelate shuffling, proposer selection, and sync-committee
// selection even when they consult the same mix.
func Seed(st *state.BeaconState, epoch primitives.Epoch, domainType [4]byte) ([32]byte, error) {
	lookaheadEpoch := epoch + params.BeaconConfig().EpochsPerHistoricalVector - params.BeaconConfig().MinSeedLookahead - 1
	mix, err := RandaoMix(st, lookaheadEpoch)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not get randao mix")
	}
	buf := make([]byte, 0, 4+8+32)
	buf = append(buf, domainType[:]...)
	buf = append(buf, bytesutil.Bytes8(uint64(epoch))...)
	buf = append(buf, mix...)
	return hash.Hash(buf), nil
}

// RandaoMix returns the randao mix active at epoch, from the ring buffer
// indexed modulo EpochsPerHistoricalVector.
func RandaoMix(st *state.BeaconState, epoch primitives.Epoch) ([]byte, error) {
	return st.RandaoMixAtIndex(uint64(epoch) % uint64(params.BeaconConfig().EpochsPerHistoricalVector))
}
