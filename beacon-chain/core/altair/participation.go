// Package altair implements the epoch and attestation processing Altair
// replaces relative to Phase0: flag-based participation tracking, weighted
// rewards, inactivity scores, and sync committee rotation.
package altair

import (
	"bytes"

	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// Participation flag bit positions, in the single byte Altair+ states keep
// per validator per epoch.
const (
	TimelySourceFlagIndex = uint8(0)
	TimelyTargetFlagIndex = uint8(1)
	TimelyHeadFlagIndex   = uint8(2)
)

// HasFlag reports whether bit flagIndex is set in b.
func HasFlag(b byte, flagIndex uint8) bool {
	return (b>>flagIndex)&1 == 1
}

// AddFlag returns b with bit flagIndex set.
func AddFlag(b byte, flagIndex uint8) byte {
	return b | (1 << flagIndex)
}

// weight returns the reward weight assigned to flagIndex.
func weight(flagIndex uint8) uint64 {
	cfg := params.BeaconConfig()
	switch flagIndex {
	case TimelySourceFlagIndex:
		return cfg.TimelySourceWeight
	case TimelyTargetFlagIndex:
		return cfg.TimelyTargetWeight
	case TimelyHeadFlagIndex:
		return cfg.TimelyHeadWeight
	default:
		return 0
	}
}

// GetAttestationParticipationFlagIndices returns which of the three timely
// flags data (included inclusionDelay slots after its own slot) qualifies
// for: source whenever the attestation's source equals the justified
// checkpoint for its target epoch (no flag at all otherwise), target when
// its target root matches the epoch boundary root and it was included
// within SlotsPerEpoch slots, and head when it also names the correct block
// root at its slot and was included promptly enough.
func GetAttestationParticipationFlagIndices(st *state.BeaconState, data *eth.AttestationData, inclusionDelay primitives.Slot) ([]uint8, error) {
	currentEpoch := coretime.CurrentEpoch(st)
	var justified *eth.Checkpoint
	if data.Target.Epoch == currentEpoch {
		justified = st.CurrentJustifiedCheckpoint()
	} else {
		justified = st.PreviousJustifiedCheckpoint()
	}
	if data.Source.Epoch != justified.Epoch || !bytes.Equal(data.Source.Root, justified.Root) {
		return nil, nil
	}

	targetRoot, err := st.BlockRootAtIndex(uint64(coretime.StartSlot(data.Target.Epoch)))
	if err != nil {
		return nil, err
	}
	matchingTarget := bytes.Equal(targetRoot, data.Target.Root)

	matchingHead := false
	if matchingTarget {
		headRoot, err := st.BlockRootAtIndex(uint64(data.Slot))
		if err != nil {
			return nil, err
		}
		matchingHead = bytes.Equal(headRoot, data.BeaconBlockRoot)
	}

	flags := []uint8{TimelySourceFlagIndex}
	if matchingTarget && inclusionDelay <= params.BeaconConfig().SlotsPerEpoch {
		flags = append(flags, TimelyTargetFlagIndex)
	}
	if matchingHead && inclusionDelay == params.BeaconConfig().MinAttestationInclusionDelay {
		flags = append(flags, TimelyHeadFlagIndex)
	}
	return flags, nil
}
