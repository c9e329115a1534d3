package altair

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch/precompute"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
)

// ProcessInactivityScores nudges every eligible validator's inactivity
// score toward zero when it timely-targeted the previous epoch, and away
// from zero otherwise; during finality leaks the decay toward zero is
// suspended so scores (and the penalty they drive) keep climbing.
func ProcessInactivityScores(st *state.BeaconState, vp []*precompute.Validator) error {
	if coretime.CurrentEpoch(st) == 0 {
		return nil
	}
	cfg := params.BeaconConfig()

	prevEpoch := coretime.PrevEpoch(st)
	finality := st.FinalizedCheckpoint()
	inactivityLeak := uint64(prevEpoch)-uint64(finality.Epoch) > uint64(cfg.MinEpochsToInactivityPenalty)

	scores := append([]uint64(nil), st.InactivityScores()...)
	for i, v := range vp {
		if !v.IsActivePrevEpoch && !(v.IsSlashed && !v.IsWithdrawableCurrentEpoch) {
			continue
		}
		if i >= len(scores) {
			continue
		}
		if v.IsPrevEpochTargetAttester && !v.IsSlashed {
			if scores[i] > 0 {
				scores[i]--
			}
		} else {
			scores[i] += cfg.InactivityScoreBias
		}
		if !inactivityLeak {
			recovery := cfg.InactivityScoreRecoveryRate
			if recovery > scores[i] {
				recovery = scores[i]
			}
			scores[i] -= recovery
		}
	}
	return st.SetInactivityScores(scores)
}
