package helpers

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ActiveValidatorIndices returns every validator index active at epoch.
func ActiveValidatorIndices(st *state.BeaconState, epoch primitives.Epoch) ([]primitives.ValidatorIndex, error) {
	validators := st.Validators()
	indices := make([]primitives.ValidatorIndex, 0, len(validators))
	for i, v := range validators {
		if v.IsActive(epoch) {
			indices = append(indices, primitives.ValidatorIndex(i))
		}
	}
	return indices, nil
}

// ActiveValidatorCount returns len(ActiveValidatorIndices(st, epoch))
// without allocating the index slice, for callers that only need the count
// (churn limit, committee count).
func ActiveValidatorCount(st *state.BeaconState, epoch primitives.Epoch) uint64 {
	count := uint64(0)
	for _, v := range st.Validators() {
		if v.IsActive(epoch) {
			count++
		}
	}
	return count
}

// TotalBalance sums the effective balances of the given validator indices,
// floored at EffectiveBalanceIncrement so rewards math never divides by
// zero even on an all-empty committee.
func TotalBalance(st *state.BeaconState, indices []primitives.ValidatorIndex) uint64 {
	total := uint64(0)
	validators := st.Validators()
	for _, idx := range indices {
		if uint64(idx) >= uint64(len(validators)) || validators[idx] == nil {
			continue
		}
		total += validators[idx].EffectiveBalance
	}
	if total < params.BeaconConfig().EffectiveBalanceIncrement {
		return params.BeaconConfig().EffectiveBalanceIncrement
	}
	return total
}

// TotalActiveBalance sums effective balances of every validator active at
// epoch, floored at EffectiveBalanceIncrement like TotalBalance. It is
// recomputed on every call; the state's active-balance cache is not consulted.
func TotalActiveBalance(st *state.BeaconState, epoch primitives.Epoch) (uint64, error) {
	indices, err := ActiveValidatorIndices(st, epoch)
	if err != nil {
		return 0, err
	}
	return TotalBalance(st, indices), nil
}

// IsEligibleForActivationQueue reports whether v can be queued for
// activation: not yet queued, and bonded at or above the full deposit.
func IsEligibleForActivationQueue(v *eth.Validator) bool {
	return v.ActivationEligibilityEpoch == eth.FarFutureEpoch &&
		v.EffectiveBalance >= params.BeaconConfig().MaxEffectiveBalance
}

// IsEligibleForActivation reports whether v can activate this epoch: queued
// before (or at) the finalized checkpoint, and not yet activated.
func IsEligibleForActivation(v *eth.Validator, finalizedEpoch primitives.Epoch) bool {
	return v.ActivationEligibilityEpoch <= finalizedEpoch &&
		v.ActivationEpoch == eth.FarFutureEpoch
}

// ValidatorChurnLimit returns the max number of validators that may
// activate or exit in a single epoch, scaled by the active validator count.
func ValidatorChurnLimit(activeValidatorCount uint64) uint64 {
	limit := activeValidatorCount / params.BeaconConfig().ChurnLimitQuotient
	if limit < params.BeaconConfig().MinPerEpochChurnLimit {
		return params.BeaconConfig().MinPerEpochChurnLimit
	}
	return limit
}

// ComputeActivationExitEpoch returns the first epoch a validator activating
// or exiting at epoch may actually do so: epoch + 1 + MaxSeedLookahead.
func ComputeActivationExitEpoch(epoch primitives.Epoch) primitives.Epoch {
	return epoch + 1 + params.BeaconConfig().MaxSeedLookahead
}

// LastActivatedValidatorIndex returns the highest validator index with
// ActivationEpoch != FarFutureEpoch, or 0 when there is none.
func LastActivatedValidatorIndex(st *state.BeaconState) primitives.ValidatorIndex {
	last := primitives.ValidatorIndex(0)
	for i, v := range st.Validators() {
		if v.ActivationEpoch != eth.FarFutureEpoch && primitives.ValidatorIndex(i) > last {
			last = primitives.ValidatorIndex(i)
		}
	}
	return last
}
