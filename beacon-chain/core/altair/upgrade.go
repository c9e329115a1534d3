package altair

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
)

// UpgradeToAltair restructures pre (a Phase0 state at the Altair fork
// boundary) into an Altair state: pre's Phase0 pending attestations are
// translated into participation-flag bytes before the old fields are
// dropped, and both sync committees are seeded with the same initial
// selection (there being no prior committee to roll over from).
func UpgradeToAltair(pre *state.BeaconState) (*state.BeaconState, error) {
	post, err := state.UpgradeToAltair(pre)
	if err != nil {
		return nil, err
	}

	if err := translateParticipation(pre, post); err != nil {
		return nil, errors.Wrap(err, "could not translate participation")
	}

	committee, err := ComputeNextSyncCommittee(post)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute initial sync committee")
	}
	if err := post.SetCurrentSyncCommittee(committee); err != nil {
		return nil, err
	}
	if err := post.SetNextSyncCommittee(committee); err != nil {
		return nil, err
	}
	if pre.Mode() == state.ModePersistent {
		post.SetCachesPersistent()
	}
	return post, nil
}

// translateParticipation replays pre's Phase0 previous-epoch attestations
// against post's (already-zeroed) previous-epoch participation bytes, so a
// validator's recent attestation history isn't silently forgotten across
// the fork boundary.
func translateParticipation(pre *state.BeaconState, post *state.BeaconState) error {
	participation := make([]byte, post.NumValidators())
	for _, a := range pre.PreviousEpochAttestations() {
		flags, err := GetAttestationParticipationFlagIndices(pre, a.Data, a.InclusionDelay)
		if err != nil {
			return err
		}
		indices, err := helpers.AttestingIndices(pre, a.Data.Slot, a.Data.CommitteeIndex, a.AggregationBits)
		if err != nil {
			return err
		}
		for _, idx := range indices {
			if idx >= uint64(len(participation)) {
				continue
			}
			for _, f := range flags {
				participation[idx] = AddFlag(participation[idx], f)
			}
		}
	}
	return post.SetPreviousParticipation(participation)
}
