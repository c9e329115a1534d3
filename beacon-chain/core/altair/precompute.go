package altair

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch/precompute"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
)

// InitializePrecomputeValidators builds the same per-validator/balance
// snapshot core/epoch/precompute.New does for Phase0, then fills in the
// attestation-derived fields by reading Altair's flat participation-flag
// bytes instead of scanning pending-attestation lists.
func InitializePrecomputeValidators(st *state.BeaconState) ([]*precompute.Validator, *precompute.Balance, error) {
	vp, bp := precompute.New(st)

	prevParticipation := st.PreviousEpochParticipation()
	currParticipation := st.CurrentEpochParticipation()
	inactivityScores := st.InactivityScores()

	for i, v := range vp {
		if i < len(inactivityScores) {
			v.InactivityScore = inactivityScores[i]
		}
		if i < len(prevParticipation) {
			b := prevParticipation[i]
			v.IsPrevEpochAttester = HasFlag(b, TimelySourceFlagIndex)
			v.IsPrevEpochTargetAttester = HasFlag(b, TimelyTargetFlagIndex)
			v.IsPrevEpochHeadAttester = HasFlag(b, TimelyHeadFlagIndex)
		}
		if i < len(currParticipation) {
			b := currParticipation[i]
			v.IsCurrentEpochAttester = HasFlag(b, TimelySourceFlagIndex)
			v.IsCurrentEpochTargetAttester = HasFlag(b, TimelyTargetFlagIndex)
		}
		if v.IsSlashed {
			continue
		}
		if v.IsCurrentEpochAttester {
			bp.CurrentEpochAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsCurrentEpochTargetAttester {
			bp.CurrentEpochTargetAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsPrevEpochAttester {
			bp.PrevEpochAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsPrevEpochTargetAttester {
			bp.PrevEpochTargetAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsPrevEpochHeadAttester {
			bp.PrevEpochHeadAttesters += v.CurrentEpochEffectiveBalance
		}
	}
	return vp, bp, nil
}
