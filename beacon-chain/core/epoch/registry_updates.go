package epoch

import (
	"sort"

	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessRegistryUpdates queues eligible validators for activation, admits
// queued validators up to the churn limit, and ejects any active validator
// whose balance has fallen to or below the ejection threshold.
func ProcessRegistryUpdates(st *state.BeaconState) error {
	currentEpoch := coretime.CurrentEpoch(st)
	finalizedEpoch := st.FinalizedCheckpoint().Epoch

	for i, v := range st.Validators() {
		idx := primitives.ValidatorIndex(i)
		if helpers.IsEligibleForActivationQueue(v) {
			if err := st.UpdateValidatorAtIndex(idx, func(val *eth.Validator) error {
				val.ActivationEligibilityEpoch = currentEpoch + 1
				return nil
			}); err != nil {
				return err
			}
		}
		if v.IsActive(currentEpoch) && v.EffectiveBalance <= params.BeaconConfig().EjectionBalance {
			if err := helpers.InitiateValidatorExit(st, idx); err != nil {
				return err
			}
		}
	}

	activeValidatorCount := helpers.ActiveValidatorCount(st, currentEpoch)
	churnLimit := helpers.ValidatorChurnLimit(activeValidatorCount)
	exitEpoch := helpers.ComputeActivationExitEpoch(currentEpoch)

	validators := st.Validators()
	queue := make([]primitives.ValidatorIndex, 0, len(validators))
	for i, v := range validators {
		if helpers.IsEligibleForActivation(v, finalizedEpoch) {
			queue = append(queue, primitives.ValidatorIndex(i))
		}
	}
	// Ascending (activation_eligibility_epoch, validator_index): the
	// consensus spec's activation_queue sort key.
	sort.SliceStable(queue, func(i, j int) bool {
		a, b := validators[queue[i]], validators[queue[j]]
		if a.ActivationEligibilityEpoch != b.ActivationEligibilityEpoch {
			return a.ActivationEligibilityEpoch < b.ActivationEligibilityEpoch
		}
		return queue[i] < queue[j]
	})
	if uint64(len(queue)) > churnLimit {
		queue = queue[:churnLimit]
	}

	for _, idx := range queue {
		if err := st.UpdateValidatorAtIndex(idx, func(val *eth.Validator) error {
			val.ActivationEpoch = exitEpoch
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
