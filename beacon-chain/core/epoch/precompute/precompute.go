// Package precompute builds a per-validator, per-epoch snapshot of
// attestation participation once, so the justification/rewards/penalties
// phases of epoch processing can all read it instead of each re-scanning
// previous_epoch_attestations and current_epoch_attestations on their own.
package precompute

import (
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
)

// Validator tracks one validator's activity for the current and previous
// epoch: whether it was active, slashed or withdrawable, and whether (and
// how promptly) it attested to the correct source/target/head.
type Validator struct {
	IsSlashed                    bool
	IsWithdrawableCurrentEpoch   bool
	IsActiveCurrentEpoch         bool
	IsActivePrevEpoch            bool
	CurrentEpochEffectiveBalance uint64

	IsCurrentEpochAttester       bool
	IsCurrentEpochTargetAttester bool
	IsPrevEpochAttester          bool
	IsPrevEpochTargetAttester    bool
	IsPrevEpochHeadAttester      bool

	// ProposerIndex and InclusionDistance are only meaningful when
	// IsPrevEpochAttester is true: the proposer who included this
	// validator's best previous-epoch attestation, and how many slots
	// after the attested slot it was included.
	ProposerIndex     primitives.ValidatorIndex
	InclusionDistance primitives.Slot

	// InactivityScore mirrors the Altair+ state's inactivity_scores entry;
	// unused by Phase0.
	InactivityScore uint64
}

// Balance aggregates the effective balance of every validator matching each
// of the attestation categories Validator tracks, the inputs the
// justification rule and the attestation-reward formulas both need.
type Balance struct {
	CurrentEpoch                uint64
	PrevEpoch                   uint64
	CurrentEpochAttesters       uint64
	CurrentEpochTargetAttesters uint64
	PrevEpochAttesters          uint64
	PrevEpochTargetAttesters    uint64
	PrevEpochHeadAttesters      uint64
}

// New builds the per-validator status slice and the running Balance totals
// for st, from each validator's registry fields alone (activity, slashing,
// withdrawability, effective balance). Attestation-derived fields are filled
// in afterward by ProcessAttestations.
func New(st *state.BeaconState) ([]*Validator, *Balance) {
	currentEpoch := coretime.CurrentEpoch(st)
	prevEpoch := coretime.PrevEpoch(st)

	vp := make([]*Validator, st.NumValidators())
	bp := &Balance{}
	for i, v := range st.Validators() {
		p := &Validator{CurrentEpochEffectiveBalance: v.EffectiveBalance}
		if v.Slashed {
			p.IsSlashed = true
		}
		if v.WithdrawableEpoch <= currentEpoch {
			p.IsWithdrawableCurrentEpoch = true
		}
		if v.IsActive(currentEpoch) {
			p.IsActiveCurrentEpoch = true
			bp.CurrentEpoch += v.EffectiveBalance
		}
		if v.IsActive(prevEpoch) {
			p.IsActivePrevEpoch = true
			bp.PrevEpoch += v.EffectiveBalance
		}
		vp[i] = p
	}

	if bp.CurrentEpoch == 0 {
		bp.CurrentEpoch = 1
	}
	if bp.PrevEpoch == 0 {
		bp.PrevEpoch = 1
	}
	return vp, bp
}
