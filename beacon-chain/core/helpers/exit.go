package helpers

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// InitiateValidatorExit sets validator idx's exit and withdrawable epochs,
// assigning it the next available exit epoch (respecting the per-epoch
// churn limit) if this is the first validator to queue for that epoch.
func InitiateValidatorExit(st *state.BeaconState, idx primitives.ValidatorIndex) error {
	v, err := st.ValidatorAtIndex(idx)
	if err != nil {
		return err
	}
	if v.ExitEpoch != eth.FarFutureEpoch {
		return nil
	}

	currentEpoch := time.CurrentEpoch(st)
	exitQueueEpoch := ComputeActivationExitEpoch(currentEpoch)
	exitQueueChurn := uint64(0)
	for _, val := range st.Validators() {
		if val.ExitEpoch == eth.FarFutureEpoch {
			continue
		}
		if val.ExitEpoch > exitQueueEpoch {
			exitQueueEpoch = val.ExitEpoch
		}
	}
	for _, val := range st.Validators() {
		if val.ExitEpoch == exitQueueEpoch {
			exitQueueChurn++
		}
	}

	activeValidatorCount := ActiveValidatorCount(st, currentEpoch)
	if exitQueueChurn >= ValidatorChurnLimit(activeValidatorCount) {
		exitQueueEpoch++
	}

	return st.UpdateValidatorAtIndex(idx, func(val *eth.Validator) error {
		val.ExitEpoch = exitQueueEpoch
		val.WithdrawableEpoch = exitQueueEpoch + params.BeaconConfig().EpochsPerSlashingsVector
		return nil
	})
}
