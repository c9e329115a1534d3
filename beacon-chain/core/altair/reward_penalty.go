package altair

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch/precompute"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
)

// AttestationsDelta implements Altair's get_flag_index_deltas, folded over
// all three participation flags: a reward proportional to the
// matching-balance share of total active balance when not leaking, a flat
// penalty for an eligible validator that did not set the flag or is slashed
// (a slashed validator never counts as participating), on every flag but
// TimelyHead.
func AttestationsDelta(st *state.BeaconState, bp *precompute.Balance, vp []*precompute.Validator) ([]uint64, []uint64, error) {
	rewards := make([]uint64, len(vp))
	penalties := make([]uint64, len(vp))

	cfg := params.BeaconConfig()
	totalIncrements := bp.CurrentEpoch / cfg.EffectiveBalanceIncrement

	prevEpoch := coretime.PrevEpoch(st)
	finality := st.FinalizedCheckpoint()
	inactivityLeak := uint64(prevEpoch)-uint64(finality.Epoch) > uint64(cfg.MinEpochsToInactivityPenalty)

	type flagSpec struct {
		index      uint8
		matchingBP uint64
		penalize   bool
	}
	flags := []flagSpec{
		{TimelySourceFlagIndex, bp.PrevEpochAttesters, true},
		{TimelyTargetFlagIndex, bp.PrevEpochTargetAttesters, true},
		{TimelyHeadFlagIndex, bp.PrevEpochHeadAttesters, false},
	}

	for i, v := range vp {
		if !v.IsActivePrevEpoch && !(v.IsSlashed && !v.IsWithdrawableCurrentEpoch) {
			continue
		}
		base := BaseReward(v.CurrentEpochEffectiveBalance, bp.CurrentEpoch)

		for _, f := range flags {
			w := weight(f.index)
			participated := !v.IsSlashed && flagSet(v, f.index)
			if participated {
				if !inactivityLeak {
					participatingIncrements := f.matchingBP / cfg.EffectiveBalanceIncrement
					rewards[i] += base * w * participatingIncrements / (totalIncrements * cfg.WeightDenominator)
				}
			} else if f.penalize {
				penalties[i] += base * w / cfg.WeightDenominator
			}
		}

		if inactivityLeak {
			penalties[i] += v.CurrentEpochEffectiveBalance * v.InactivityScore / (cfg.InactivityScoreBias * cfg.InactivityPenaltyQuotientAltair)
		}
	}
	return rewards, penalties, nil
}

// flagSet reads the flag that matters for reward purposes off v's
// previous-epoch attestation fields.
func flagSet(v *precompute.Validator, flagIndex uint8) bool {
	switch flagIndex {
	case TimelySourceFlagIndex:
		return v.IsPrevEpochAttester
	case TimelyTargetFlagIndex:
		return v.IsPrevEpochTargetAttester
	case TimelyHeadFlagIndex:
		return v.IsPrevEpochHeadAttester
	default:
		return false
	}
}

// ProposersDelta is a no-op in Altair's epoch-level accounting: the
// proposer's share of an attester's reward is credited immediately when the
// attestation is included in a block (see core/blocks' Altair attestation
// path), not deferred to epoch processing.
func ProposersDelta(st *state.BeaconState, bp *precompute.Balance, vp []*precompute.Validator) ([]uint64, error) {
	return make([]uint64, len(vp)), nil
}
