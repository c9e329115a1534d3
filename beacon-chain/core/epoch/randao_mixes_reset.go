package epoch

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
)

// ProcessRandaoMixesReset carries the current epoch's mixed randao value
// forward into next epoch's ring-buffer slot, so that slot has a mix to
// read even before any block in the new epoch contributes one.
func ProcessRandaoMixesReset(st *state.BeaconState) error {
	currentEpoch := coretime.CurrentEpoch(st)
	mix, err := helpers.RandaoMix(st, currentEpoch)
	if err != nil {
		return err
	}
	nextEpoch := currentEpoch + 1
	idx := uint64(nextEpoch) % uint64(params.BeaconConfig().EpochsPerHistoricalVector)
	var m [32]byte
	copy(m[:], mix)
	return st.UpdateRandaoMixAtIndex(idx, m)
}
