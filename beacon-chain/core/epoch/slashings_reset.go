package epoch

import (
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
)

// ProcessSlashingsReset zeroes out the slashings ring-buffer slot that next
// epoch is about to reuse.
func ProcessSlashingsReset(st *state.BeaconState) error {
	nextEpoch := coretime.CurrentEpoch(st) + 1
	idx := uint64(nextEpoch) % uint64(params.BeaconConfig().EpochsPerSlashingsVector)
	return st.UpdateSlashingsAtIndex(idx, 0)
}
