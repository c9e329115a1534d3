package precompute

import (
	"github.com/pkg/errors"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	stfmath "github.com/sentrychain/beacon-stf/math"
)

// DeltaFunc computes per-validator reward/penalty deltas from vp/bp: the
// shape of AttestationsDelta (and of altair.AttestationsDelta), so
// ProcessRewardsAndPenaltiesPrecompute can apply either interchangeably.
type DeltaFunc func(st *state.BeaconState, bp *Balance, vp []*Validator) ([]uint64, []uint64, error)

// ProposerDeltaFunc is ProposersDelta's shape: a single reward list, since a
// proposer is never penalized for someone else's attestation.
type ProposerDeltaFunc func(st *state.BeaconState, bp *Balance, vp []*Validator) ([]uint64, error)

// ProcessRewardsAndPenaltiesPrecompute applies attDelta's and proposerDelta's
// outputs to st's balances in one pass. The genesis epoch is skipped
// entirely: there is no previous epoch to have rewarded attestations for.
func ProcessRewardsAndPenaltiesPrecompute(st *state.BeaconState, bp *Balance, vp []*Validator, attDelta DeltaFunc, proposerDelta ProposerDeltaFunc) (*state.BeaconState, error) {
	if coretime.CurrentEpoch(st) == 0 {
		return st, nil
	}
	rewards, penalties, err := attDelta(st, bp, vp)
	if err != nil {
		return nil, errors.Wrap(err, "could not get attestation delta")
	}
	proposerRewards, err := proposerDelta(st, bp, vp)
	if err != nil {
		return nil, errors.Wrap(err, "could not get proposer delta")
	}
	for i := range rewards {
		idx := primitives.ValidatorIndex(i)
		if err := st.IncreaseBalance(idx, rewards[i]+proposerRewards[i]); err != nil {
			return nil, err
		}
		if err := st.DecreaseBalance(idx, penalties[i]); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// AttestationsDelta returns, for every validator, the reward or penalty
// earned from its previous-epoch source/target/head votes plus an
// inclusion-proximity bonus, and the inactivity-leak penalty once finality
// has stalled for more than MinEpochsToInactivityPenalty epochs.
func AttestationsDelta(st *state.BeaconState, bp *Balance, vp []*Validator) ([]uint64, []uint64, error) {
	rewards := make([]uint64, len(vp))
	penalties := make([]uint64, len(vp))

	prevEpoch := coretime.PrevEpoch(st)
	finality := st.FinalizedCheckpoint()
	finalityDelay := uint64(0)
	if uint64(prevEpoch) > uint64(finality.Epoch) {
		finalityDelay = uint64(prevEpoch) - uint64(finality.Epoch)
	}
	inactivityLeak := finalityDelay > uint64(params.BeaconConfig().MinEpochsToInactivityPenalty)

	for i, v := range vp {
		if !v.IsActivePrevEpoch {
			continue
		}
		base := baseReward(v.CurrentEpochEffectiveBalance, bp.CurrentEpoch)

		isSource := v.IsPrevEpochAttester && !v.IsSlashed
		isTarget := v.IsPrevEpochTargetAttester && !v.IsSlashed
		isHead := v.IsPrevEpochHeadAttester && !v.IsSlashed

		if isSource {
			if inactivityLeak {
				rewards[i] += base
			} else {
				rewards[i] += base * bp.PrevEpochAttesters / bp.CurrentEpoch
			}
			proposerReward := base / params.BeaconConfig().ProposerRewardQuotient
			if v.InclusionDistance > 0 {
				rewards[i] += (base - proposerReward) / uint64(v.InclusionDistance)
			}
		} else {
			penalties[i] += base
		}

		if isTarget {
			if inactivityLeak {
				rewards[i] += base
			} else {
				rewards[i] += base * bp.PrevEpochTargetAttesters / bp.CurrentEpoch
			}
		} else {
			penalties[i] += base
		}

		if isHead {
			if !inactivityLeak {
				rewards[i] += base * bp.PrevEpochHeadAttesters / bp.CurrentEpoch
			}
		} else {
			penalties[i] += base
		}

		if inactivityLeak {
			penalties[i] += v.CurrentEpochEffectiveBalance * finalityDelay / params.BeaconConfig().InactivityPenaltyQuotient
		}
	}
	return rewards, penalties, nil
}

// ProposersDelta rewards the proposer that included each previous-epoch
// attester's best attestation, proportional to that attester's own base
// reward.
func ProposersDelta(st *state.BeaconState, bp *Balance, vp []*Validator) ([]uint64, error) {
	rewards := make([]uint64, len(vp))
	for _, v := range vp {
		if !v.IsPrevEpochAttester || v.IsSlashed {
			continue
		}
		if uint64(v.ProposerIndex) >= uint64(len(rewards)) {
			return nil, errors.New("proposer index out of range")
		}
		base := baseReward(v.CurrentEpochEffectiveBalance, bp.CurrentEpoch)
		rewards[v.ProposerIndex] += base / params.BeaconConfig().ProposerRewardQuotient
	}
	return rewards, nil
}

// baseReward is get_base_reward: effective_balance scaled by BASE_REWARD_FACTOR,
// spread over BASE_REWARDS_PER_EPOCH components (source, target, head, plus
// the slot reserved for the inclusion-proximity bonus).
func baseReward(effectiveBalance, totalActiveBalance uint64) uint64 {
	return effectiveBalance * params.BeaconConfig().BaseRewardFactor /
		stfmath.IntegerSquareRoot(totalActiveBalance) / params.BeaconConfig().BaseRewardsPerEpoch
}
