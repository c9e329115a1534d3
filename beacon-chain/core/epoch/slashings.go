package epoch

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// ProcessSlashings applies the proportional slashing penalty: every
// validator that is slashed and withdrawable exactly
// EpochsPerSlashingsVector/2 epochs from now is charged a share
// of its effective balance proportional to the slashings vector's total
// relative to total active balance.
func ProcessSlashings(st *state.BeaconState) error {
	currentEpoch := coretime.CurrentEpoch(st)
	totalBalance, err := helpers.TotalActiveBalance(st, currentEpoch)
	if err != nil {
		return err
	}

	totalSlashings := uint64(0)
	for _, s := range st.Slashings() {
		totalSlashings += s
	}

	multiplier := params.BeaconConfig().ProportionalSlashingMultiplier
	if st.Version() >= version.Altair {
		multiplier = params.BeaconConfig().ProportionalSlashingMultiplierAltair
	}

	increment := params.BeaconConfig().EffectiveBalanceIncrement
	adjustedTotalSlashing := totalSlashings * multiplier
	if adjustedTotalSlashing > totalBalance {
		adjustedTotalSlashing = totalBalance
	}

	for i, v := range st.Validators() {
		if !v.Slashed {
			continue
		}
		if v.WithdrawableEpoch != currentEpoch+params.BeaconConfig().EpochsPerSlashingsVector/2 {
			continue
		}
		penaltyNumerator := v.EffectiveBalance / increment * adjustedTotalSlashing
		penalty := penaltyNumerator / totalBalance * increment
		if err := st.DecreaseBalance(primitives.ValidatorIndex(i), penalty); err != nil {
			return err
		}
	}
	return nil
}
