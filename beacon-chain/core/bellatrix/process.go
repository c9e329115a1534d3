package bellatrix

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/altair"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
)

// ProcessEpoch runs Bellatrix's epoch-boundary phases. The consensus spec
// defines Bellatrix's process_epoch as a direct alias of Altair's: the
// execution payload plays no part in epoch accounting.
func ProcessEpoch(st *state.BeaconState) (*state.BeaconState, error) {
	return altair.ProcessEpoch(st)
}
