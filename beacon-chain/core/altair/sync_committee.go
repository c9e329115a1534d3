package altair

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/crypto/hash"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

const maxRandomByte = uint64(1<<8 - 1)

// ProcessSyncCommitteeUpdates rotates the sync committee once every
// EpochsPerSyncCommitteePeriod: the queued committee becomes active, and a
// freshly selected one is queued behind it.
func ProcessSyncCommitteeUpdates(st *state.BeaconState) error {
	nextEpoch := coretime.CurrentEpoch(st) + 1
	if uint64(nextEpoch)%uint64(params.BeaconConfig().EpochsPerSyncCommitteePeriod) != 0 {
		return nil
	}
	if err := st.SetCurrentSyncCommittee(st.NextSyncCommittee()); err != nil {
		return err
	}
	next, err := ComputeNextSyncCommittee(st)
	if err != nil {
		return err
	}
	return st.SetNextSyncCommittee(next)
}

// ComputeNextSyncCommittee selects SyncCommitteeSize active validators
// (with replacement, effective-balance weighted, same accept/reject walk
// BeaconProposerIndex uses) for the sync committee period starting at
// CurrentEpoch(st)+1, and aggregates their pubkeys.
func ComputeNextSyncCommittee(st *state.BeaconState) (*eth.SyncCommittee, error) {
	epoch := coretime.CurrentEpoch(st) + 1
	indices, err := nextSyncCommitteeIndices(st, epoch)
	if err != nil {
		return nil, err
	}

	pubkeys := make([][]byte, len(indices))
	var agg bls.PublicKey
	for i, idx := range indices {
		v, err := st.ValidatorAtIndex(idx)
		if err != nil {
			return nil, err
		}
		pubkeys[i] = v.PublicKey
		pk, err := bls.PublicKeyFromBytes(v.PublicKey)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pubkey for validator %d", idx)
		}
		if agg == nil {
			agg = pk
		} else {
			agg = agg.Aggregate(pk)
		}
	}
	return &eth.SyncCommittee{Pubkeys: pubkeys, AggregatePubkey: agg.Marshal()}, nil
}

func nextSyncCommitteeIndices(st *state.BeaconState, epoch primitives.Epoch) ([]primitives.ValidatorIndex, error) {
	active, err := helpers.ActiveValidatorIndices(st, epoch)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, errors.New("no active validators to select a sync committee from")
	}
	seed, err := helpers.Seed(st, epoch, params.BeaconConfig().DomainSyncCommittee)
	if err != nil {
		return nil, err
	}
	validators := st.Validators()
	total := uint64(len(active))

	indices := make([]primitives.ValidatorIndex, 0, params.BeaconConfig().SyncCommitteeSize)
	buf := make([]byte, 32+8)
	copy(buf[:32], seed[:])
	i := uint64(0)
	for uint64(len(indices)) < params.BeaconConfig().SyncCommitteeSize {
		shuffledIdx, err := helpers.ComputeShuffledIndex(i%total, total, seed)
		if err != nil {
			return nil, err
		}
		candidate := active[shuffledIdx]

		copy(buf[32:], bytesutil.Bytes8(i/32))
		randomByteSource := hash.Hash(buf)
		randomByte := uint64(randomByteSource[i%32])

		if uint64(validators[candidate].EffectiveBalance)*maxRandomByte >= params.BeaconConfig().MaxEffectiveBalance*randomByte {
			indices = append(indices, candidate)
		}
		i++
	}
	return indices, nil
}
