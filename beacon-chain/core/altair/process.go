package altair

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch/precompute"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
)

// ProcessEpoch runs Altair's epoch-boundary phases: the ring-buffer resets
// and registry/slashings machinery are unchanged from Phase0 and reused
// from core/epoch; justification, rewards, inactivity scoring, and
// participation/sync-committee bookkeeping are Altair's own.
func ProcessEpoch(st *state.BeaconState) (*state.BeaconState, error) {
	vp, bp, err := InitializePrecomputeValidators(st)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize precompute validators")
	}

	st, err = epoch.ProcessJustificationAndFinalizationPreCompute(st, bp)
	if err != nil {
		return nil, errors.Wrap(err, "could not process justification")
	}

	if err := ProcessInactivityScores(st, vp); err != nil {
		return nil, errors.Wrap(err, "could not process inactivity scores")
	}

	st, err = precompute.ProcessRewardsAndPenaltiesPrecompute(st, bp, vp, AttestationsDelta, ProposersDelta)
	if err != nil {
		return nil, errors.Wrap(err, "could not process rewards and penalties")
	}

	if err := epoch.ProcessRegistryUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process registry updates")
	}

	if err := epoch.ProcessSlashings(st); err != nil {
		return nil, errors.Wrap(err, "could not process slashings")
	}

	if err := epoch.ProcessEth1DataReset(st); err != nil {
		return nil, errors.Wrap(err, "could not process eth1 data reset")
	}

	if err := epoch.ProcessEffectiveBalanceUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process effective balance updates")
	}

	if err := epoch.ProcessSlashingsReset(st); err != nil {
		return nil, errors.Wrap(err, "could not process slashings reset")
	}

	if err := epoch.ProcessRandaoMixesReset(st); err != nil {
		return nil, errors.Wrap(err, "could not process randao mixes reset")
	}

	if err := epoch.ProcessHistoricalRootsUpdate(st); err != nil {
		return nil, errors.Wrap(err, "could not process historical roots update")
	}

	if err := ProcessParticipationFlagUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process participation flag updates")
	}

	if err := ProcessSyncCommitteeUpdates(st); err != nil {
		return nil, errors.Wrap(err, "could not process sync committee updates")
	}

	return st, nil
}
