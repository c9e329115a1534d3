package epoch

import (
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessHistoricalRootsUpdate appends the Merkle root of the current
// block_roots/state_roots vectors to historical_roots once every
// SlotsPerHistoricalRoot-aligned epoch boundary, the point at which those
// ring buffers are about to start overwriting this period's entries.
func ProcessHistoricalRootsUpdate(st *state.BeaconState) error {
	nextEpoch := coretime.CurrentEpoch(st) + 1
	epochsPerPeriod := uint64(params.BeaconConfig().SlotsPerHistoricalRoot) / uint64(params.BeaconConfig().SlotsPerEpoch)
	if uint64(nextEpoch)%epochsPerPeriod != 0 {
		return nil
	}
	batch := &eth.HistoricalBatch{
		BlockRoots: st.BlockRoots(),
		StateRoots: st.StateRoots(),
	}
	root, err := batch.HashTreeRoot()
	if err != nil {
		return err
	}
	return st.AppendHistoricalRoot(root)
}
