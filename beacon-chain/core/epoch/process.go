package epoch

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch/precompute"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
)

// ProcessEpoch runs every Phase0 epoch-boundary phase against st, in spec
// order: justification/finalization, rewards and penalties, registry churn,
// slashings, and the various ring-buffer resets. Altair and Bellatrix share
// this orchestration shape but pass core/altair's participation-flag delta
// functions to precompute.ProcessRewardsAndPenaltiesPrecompute in place of
// precompute.AttestationsDelta and ProposersDelta; see core/altair.
func ProcessEpoch(st *state.BeaconState) (*state.BeaconState, error) {
	vp, bp := precompute.New(st)
	vp, bp, err := precompute.ProcessAttestations(st, vp, bp)
	if err != nil {
		return nil, errors.Wrap(err, "could not process attestations for precompute")
	}

	st, err = ProcessJustificationAndFinalizationPreCompute(st, bp)
	if err != nil {
		return nil, errors.Wrap(err, "could not process justification")
	}

	st, err = precompute.ProcessRewardsAndPenaltiesPrecompute(st, bp, vp, precompute.AttestationsDelta, precompute.ProposersDelta)
	if err != nil {
		return nil, errors.Wrap(err, "could not process rewards and penalties")
	}

	if err := ProcessRegistryUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process registry updates")
	}

	if err := ProcessSlashings(st); err != nil {
		return nil, errors.Wrap(err, "could not process slashings")
	}

	if err := ProcessEth1DataReset(st); err != nil {
		return nil, errors.Wrap(err, "could not process eth1 data reset")
	}

	if err := ProcessEffectiveBalanceUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process effective balance updates")
	}

	if err := ProcessSlashingsReset(st); err != nil {
		return nil, errors.Wrap(err, "could not process slashings reset")
	}

	if err := ProcessRandaoMixesReset(st); err != nil {
		return nil, errors.Wrap(err, "could not process randao mixes reset")
	}

	if err := ProcessHistoricalRootsUpdate(st); err != nil {
		return nil, errors.Wrap(err, "could not process historical roots update")
	}

	if err := ProcessParticipationRecordUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process participation record updates")
	}

	return st, nil
}
