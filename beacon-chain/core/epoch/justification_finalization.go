// Package epoch implements the per-epoch phases of the state transition
// function: justification/finalization, registry updates, slashings, and the
// ring-buffer resets that run once every SlotsPerEpoch slots.
package epoch

import (
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch/precompute"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessJustificationAndFinalizationPreCompute applies the Casper FFG
// justification and finalization rules using bp's previous/current epoch
// attesting balances, rather than re-deriving them from attestations.
func ProcessJustificationAndFinalizationPreCompute(st *state.BeaconState, bp *precompute.Balance) (*state.BeaconState, error) {
	currentEpoch := coretime.CurrentEpoch(st)
	if currentEpoch <= 1 {
		return st, nil
	}

	oldPrevJustified := st.PreviousJustifiedCheckpoint()
	oldCurrJustified := st.CurrentJustifiedCheckpoint()

	if err := st.SetPreviousJustifiedCheckpoint(oldCurrJustified); err != nil {
		return nil, err
	}

	bits := st.JustificationBits()
	bits.Shift(1)
	if err := st.SetJustificationBits(bits); err != nil {
		return nil, err
	}

	prevEpoch := coretime.PrevEpoch(st)

	if 3*bp.PrevEpochTargetAttesters >= 2*bp.PrevEpoch {
		root, err := st.BlockRootAtIndex(uint64(coretime.StartSlot(prevEpoch)))
		if err != nil {
			return nil, err
		}
		if err := st.SetCurrentJustifiedCheckpoint(&eth.Checkpoint{Epoch: prevEpoch, Root: root}); err != nil {
			return nil, err
		}
		bits = st.JustificationBits()
		bits.SetBitAt(1, true)
		if err := st.SetJustificationBits(bits); err != nil {
			return nil, err
		}
	}

	if 3*bp.CurrentEpochTargetAttesters >= 2*bp.CurrentEpoch {
		root, err := st.BlockRootAtIndex(uint64(coretime.StartSlot(currentEpoch)))
		if err != nil {
			return nil, err
		}
		if err := st.SetCurrentJustifiedCheckpoint(&eth.Checkpoint{Epoch: currentEpoch, Root: root}); err != nil {
			return nil, err
		}
		bits = st.JustificationBits()
		bits.SetBitAt(0, true)
		if err := st.SetJustificationBits(bits); err != nil {
			return nil, err
		}
	}

	bits = st.JustificationBits()

	// The 2nd/3rd/4th most recent epochs are justified, source is the 4th
	// most recent: finalize it as a second-to-last finalization rule.
	if allBitsSet(bits, 1, 2, 3) && oldPrevJustified.Epoch+3 == currentEpoch {
		if err := st.SetFinalizedCheckpoint(oldPrevJustified); err != nil {
			return nil, err
		}
	}
	// The 2nd/3rd most recent epochs are justified, source is the 3rd most
	// recent.
	if allBitsSet(bits, 1, 2) && oldPrevJustified.Epoch+2 == currentEpoch {
		if err := st.SetFinalizedCheckpoint(oldPrevJustified); err != nil {
			return nil, err
		}
	}
	// The 1st/2nd/3rd most recent epochs are justified, source is the 3rd
	// most recent.
	if allBitsSet(bits, 0, 1, 2) && oldCurrJustified.Epoch+2 == currentEpoch {
		if err := st.SetFinalizedCheckpoint(oldCurrJustified); err != nil {
			return nil, err
		}
	}
	// The 1st/2nd most recent epochs are justified, source is the 2nd most
	// recent.
	if allBitsSet(bits, 0, 1) && oldCurrJustified.Epoch+1 == currentEpoch {
		if err := st.SetFinalizedCheckpoint(oldCurrJustified); err != nil {
			return nil, err
		}
	}

	return st, nil
}

// allBitsSet reports whether every bit index in idxs is set in bits.
func allBitsSet(bits bitfield.Bitvector4, idxs ...uint64) bool {
	for _, i := range idxs {
		if !bits.BitAt(i) {
			return false
		}
	}
	return true
}
