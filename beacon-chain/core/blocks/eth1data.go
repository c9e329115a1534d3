package blocks

import (
	"bytes"

	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessEth1DataVote appends vote to st's eth1 voting-period ballot box,
// and adopts it as the canonical eth1Data once it holds a strict majority
// of the period's votes.
func ProcessEth1DataVote(st *state.BeaconState, vote *eth.Eth1Data) error {
	if err := st.AppendEth1DataVote(vote); err != nil {
		return err
	}
	count := uint64(0)
	for _, v := range st.Eth1DataVotes() {
		if eth1DataEqual(v, vote) {
			count++
		}
	}
	threshold := uint64(params.BeaconConfig().EpochsPerEth1VotingPeriod) * uint64(params.BeaconConfig().SlotsPerEpoch)
	if count*2 > threshold {
		return st.SetEth1Data(vote)
	}
	return nil
}

func eth1DataEqual(a, b *eth.Eth1Data) bool {
	if a == nil || b == nil {
		return a == b
	}
	return bytes.Equal(a.DepositRoot, b.DepositRoot) &&
		a.DepositCount == b.DepositCount &&
		bytes.Equal(a.BlockHash, b.BlockHash)
}
