package epoch

import (
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessEth1DataReset clears the eth1 data vote accumulator at the close of
// every EpochsPerEth1VotingPeriod-long voting window.
func ProcessEth1DataReset(st *state.BeaconState) error {
	nextEpoch := coretime.CurrentEpoch(st) + 1
	if uint64(nextEpoch)%uint64(params.BeaconConfig().EpochsPerEth1VotingPeriod) == 0 {
		return st.SetEth1DataVotes([]*eth.Eth1Data{})
	}
	return nil
}
