package blocks

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// SlashValidator queues slashedIndex for exit, burns its slashing-vector
// share, applies the minimum slashing penalty immediately, and splits the
// whistleblower reward between the reporting proposer and whistleblowerIndex
// (the proposer itself, when whistleblowerIndex is nil). Shared by
// ProcessProposerSlashings and ProcessAttesterSlashings: both bottom out
// here once they've established the slashing is valid.
func SlashValidator(st *state.BeaconState, slashedIndex primitives.ValidatorIndex, whistleblowerIndex *primitives.ValidatorIndex) error {
	epoch := coretime.CurrentEpoch(st)
	if err := helpers.InitiateValidatorExit(st, slashedIndex); err != nil {
		return errors.Wrap(err, "could not initiate validator exit")
	}

	v, err := st.ValidatorAtIndex(slashedIndex)
	if err != nil {
		return err
	}
	withdrawableEpoch := epoch + params.BeaconConfig().EpochsPerSlashingsVector
	if v.WithdrawableEpoch > withdrawableEpoch {
		withdrawableEpoch = v.WithdrawableEpoch
	}
	effectiveBalance := v.EffectiveBalance
	if err := st.UpdateValidatorAtIndex(slashedIndex, func(val *eth.Validator) error {
		val.Slashed = true
		val.WithdrawableEpoch = withdrawableEpoch
		return nil
	}); err != nil {
		return err
	}

	slashingsIndex := uint64(epoch) % uint64(params.BeaconConfig().EpochsPerSlashingsVector)
	current, err := st.SlashingAtIndex(slashingsIndex)
	if err != nil {
		return err
	}
	if err := st.UpdateSlashingsAtIndex(slashingsIndex, current+effectiveBalance); err != nil {
		return err
	}

	minSlashingQuotient := params.BeaconConfig().MinSlashingPenaltyQuotient
	if st.Version() >= version.Altair {
		minSlashingQuotient = params.BeaconConfig().MinSlashingPenaltyQuotientAltair
	}
	if err := st.DecreaseBalance(slashedIndex, effectiveBalance/minSlashingQuotient); err != nil {
		return err
	}

	proposerIndex, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return errors.Wrap(err, "could not determine proposer index")
	}
	if whistleblowerIndex == nil {
		whistleblowerIndex = &proposerIndex
	}
	whistleblowerReward := effectiveBalance / params.BeaconConfig().WhistleBlowerRewardQuotient
	var proposerReward uint64
	if st.Version() >= version.Altair {
		proposerReward = whistleblowerReward * params.BeaconConfig().ProposerWeight / params.BeaconConfig().WeightDenominator
	} else {
		proposerReward = whistleblowerReward / params.BeaconConfig().ProposerRewardQuotient
	}
	if err := st.IncreaseBalance(proposerIndex, proposerReward); err != nil {
		return err
	}
	if err := st.IncreaseBalance(*whistleblowerIndex, whistleblowerReward-proposerReward); err != nil {
		return err
	}
	return nil
}
