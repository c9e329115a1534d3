package precompute

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessAttestations folds every Phase0 pending attestation recorded this
// epoch into vp and bp: each attester gets its matching source/target/head
// flags OR'd in, and bp accumulates the attesting balance per category.
func ProcessAttestations(st *state.BeaconState, vp []*Validator, bp *Balance) ([]*Validator, *Balance, error) {
	for _, a := range st.PreviousEpochAttestations() {
		indices, err := helpers.AttestingIndices(st, a.Data.Slot, a.Data.CommitteeIndex, a.AggregationBits)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not get attesting indices")
		}
		votedSource, votedTarget, votedHead, err := attestedPrevEpoch(st, a)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not check previous epoch attestation")
		}
		record := &Validator{
			IsPrevEpochAttester:       votedSource,
			IsPrevEpochTargetAttester: votedTarget,
			IsPrevEpochHeadAttester:   votedHead,
		}
		vp = updateValidator(vp, record, indices, a)
	}

	for _, a := range st.CurrentEpochAttestations() {
		indices, err := helpers.AttestingIndices(st, a.Data.Slot, a.Data.CommitteeIndex, a.AggregationBits)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not get attesting indices")
		}
		votedSource, votedTarget, err := attestedCurrentEpoch(st, a)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not check current epoch attestation")
		}
		record := &Validator{
			IsCurrentEpochAttester:       votedSource,
			IsCurrentEpochTargetAttester: votedTarget,
		}
		vp = updateValidator(vp, record, indices, a)
	}

	bp = updateBalance(vp, bp)
	return vp, bp, nil
}

// updateValidator ORs record's flags into every validator in indices, and
// (for a previous-epoch attester) records the proposer and inclusion
// distance of a when a has the smallest inclusion delay seen so far for
// that validator.
func updateValidator(vp []*Validator, record *Validator, indices []uint64, a *eth.PendingAttestation) []*Validator {
	for _, i := range indices {
		v := vp[i]
		v.IsCurrentEpochAttester = v.IsCurrentEpochAttester || record.IsCurrentEpochAttester
		v.IsCurrentEpochTargetAttester = v.IsCurrentEpochTargetAttester || record.IsCurrentEpochTargetAttester
		v.IsPrevEpochAttester = v.IsPrevEpochAttester || record.IsPrevEpochAttester
		v.IsPrevEpochTargetAttester = v.IsPrevEpochTargetAttester || record.IsPrevEpochTargetAttester
		v.IsPrevEpochHeadAttester = v.IsPrevEpochHeadAttester || record.IsPrevEpochHeadAttester
		if record.IsPrevEpochAttester && (v.InclusionDistance == 0 || a.InclusionDelay < v.InclusionDistance) {
			v.ProposerIndex = a.ProposerIndex
			v.InclusionDistance = a.InclusionDelay
		}
	}
	return vp
}

// updateBalance sums CurrentEpochEffectiveBalance into bp's per-category
// totals for every non-slashed validator whose corresponding flag is set.
func updateBalance(vp []*Validator, bp *Balance) *Balance {
	for _, v := range vp {
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
	return bp
}

// attestedPrevEpoch reports whether a (already known to target the previous
// epoch) also matches the previous epoch's boundary root and, if so, its
// head block root.
func attestedPrevEpoch(st *state.BeaconState, a *eth.PendingAttestation) (votedSource, votedTarget, votedHead bool, err error) {
	votedSource = true
	votedTarget, err = sameTarget(st, a, coretime.PrevEpoch(st))
	if err != nil {
		return false, false, false, err
	}
	if !votedTarget {
		return votedSource, false, false, nil
	}
	votedHead, err = sameHead(st, a)
	if err != nil {
		return false, false, false, err
	}
	return votedSource, votedTarget, votedHead, nil
}

// attestedCurrentEpoch reports whether a matches the current epoch's
// boundary root.
func attestedCurrentEpoch(st *state.BeaconState, a *eth.PendingAttestation) (votedSource, votedTarget bool, err error) {
	votedSource = true
	votedTarget, err = sameTarget(st, a, coretime.CurrentEpoch(st))
	if err != nil {
		return false, false, err
	}
	return votedSource, votedTarget, nil
}

// sameHead reports whether a's claimed head block root matches the root
// actually recorded in st at a's slot.
func sameHead(st *state.BeaconState, a *eth.PendingAttestation) (bool, error) {
	root, err := st.BlockRootAtIndex(uint64(a.Data.Slot))
	if err != nil {
		return false, err
	}
	return bytes.Equal(root, a.Data.BeaconBlockRoot), nil
}

// sameTarget reports whether a's target root matches the root st records at
// the first slot of epoch, the boundary root the FFG vote must hit.
func sameTarget(st *state.BeaconState, a *eth.PendingAttestation, epoch primitives.Epoch) (bool, error) {
	root, err := st.BlockRootAtIndex(uint64(coretime.StartSlot(epoch)))
	if err != nil {
		return false, err
	}
	return bytes.Equal(root, a.Data.Target.Root), nil
}
