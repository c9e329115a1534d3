package helpers

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
)

// SlotCommitteeCount returns the number of committees in a single slot,
// clamped between 1 and MaxCommitteesPerSlot.
func SlotCommitteeCount(activeValidatorCount uint64) uint64 {
	perSlot := activeValidatorCount / uint64(params.BeaconConfig().SlotsPerEpoch) / params.BeaconConfig().TargetCommitteeSize
	if perSlot > params.BeaconConfig().MaxCommitteesPerSlot {
		return params.BeaconConfig().MaxCommitteesPerSlot
	}
	if perSlot == 0 {
		return 1
	}
	return perSlot
}

// ComputeCommittee slices the committeeIndex-th, count-many-way partition of
// the already-seed-shuffled indices list. Callers pass the output of
// UnshuffleList rather than recomputing the full shuffle per call.
func ComputeCommittee(shuffledIndices []primitives.ValidatorIndex, index, count uint64) ([]primitives.ValidatorIndex, error) {
	n := uint64(len(shuffledIndices))
	start := n * index / count
	end := n * (index + 1) / count
	if start > n || end > n {
		return nil, errors.New("index out of range")
	}
	return shuffledIndices[start:end], nil
}

// BeaconCommittee returns the committee for slot/committeeIndex, building
// (and caching on st) the epoch's full shuffled validator list the first
// time any committee in that epoch is requested.
func BeaconCommittee(st *state.BeaconState, slot primitives.Slot, committeeIndex primitives.CommitteeIndex) ([]primitives.ValidatorIndex, error) {
	epoch := primitives.Epoch(uint64(slot) / uint64(params.BeaconConfig().SlotsPerEpoch))
	shuffled, err := shuffledEpochIndices(st, epoch)
	if err != nil {
		return nil, err
	}
	committeesPerSlot := SlotCommitteeCount(uint64(len(shuffled)))
	offset := uint64(committeeIndex) + uint64(slot)%uint64(params.BeaconConfig().SlotsPerEpoch)*committeesPerSlot
	count := committeesPerSlot * uint64(params.BeaconConfig().SlotsPerEpoch)
	return ComputeCommittee(shuffled, offset, count)
}

// shuffledEpochIndices returns the full seed-shuffled active-validator list
// for epoch, consulting (and filling) st's shuffling cache.
func shuffledEpochIndices(st *state.BeaconState, epoch primitives.Epoch) ([]primitives.ValidatorIndex, error) {
	if cached, ok := st.ShufflingCacheLookup(epoch); ok {
		return cached, nil
	}
	active, err := ActiveValidatorIndices(st, epoch)
	if err != nil {
		return nil, err
	}
	seed, err := Seed(st, epoch, params.BeaconConfig().DomainBeaconAttester)
	if err != nil {
		return nil, errors.Wrap(err, "could not get seed")
	}
	shuffled, err := UnshuffleList(active, seed)
	if err != nil {
		return nil, errors.Wrap(err, "could not shuffle active indices")
	}
	st.ShufflingCacheStore(epoch, shuffled)
	return shuffled, nil
}

// CommitteeCountPerSlot returns SlotCommitteeCount evaluated against
// ActiveValidatorCount(st, epoch), for callers that haven't already
// materialized the active index list.
func CommitteeCountPerSlot(st *state.BeaconState, epoch primitives.Epoch) uint64 {
	return SlotCommitteeCount(ActiveValidatorCount(st, epoch))
}

// AttestingIndices returns the validator indices that set a bit in
// aggregationBits, relative to the attestation's own committee.
func AttestingIndices(st *state.BeaconState, slot primitives.Slot, committeeIndex primitives.CommitteeIndex, aggregationBits bitfield.Bitlist) ([]uint64, error) {
	committee, err := BeaconCommittee(st, slot, committeeIndex)
	if err != nil {
		return nil, err
	}
	indices := make([]uint64, 0, len(committee))
	for i, vIdx := range committee {
		if aggregationBits.BitAt(uint64(i)) {
			indices = append(indices, uint64(vIdx))
		}
	}
	return indices, nil
}
