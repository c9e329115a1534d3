package bellatrix_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/beacon-chain/core/altair"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/bellatrix"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/runtime/version"
	util "github.com/sentrychain/beacon-stf/testing/util"
)

func TestUpgradeToBellatrix_PreservesCoreFields(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	genesis, _, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	pre, err := altair.UpgradeToAltair(genesis)
	require.NoError(t, err)

	post, err := bellatrix.UpgradeToBellatrix(pre)
	require.NoError(t, err)

	require.Equal(t, version.Bellatrix, post.Version())
	require.Equal(t, pre.Slot(), post.Slot())
	require.Equal(t, pre.GenesisValidatorsRoot(), post.GenesisValidatorsRoot())
	require.Equal(t, pre.Balances(), post.Balances())
	require.Equal(t, pre.RandaoMixes(), post.RandaoMixes())
	require.Equal(t, pre.FinalizedCheckpoint(), post.FinalizedCheckpoint())
	require.Equal(t, pre.NumValidators(), post.NumValidators())
	require.Equal(t, pre.InactivityScores(), post.InactivityScores())
	require.Equal(t, pre.CurrentSyncCommittee(), post.CurrentSyncCommittee())
	require.Equal(t, pre.NextSyncCommittee(), post.NextSyncCommittee())

	require.Equal(t, cfg.AltairForkVersion, post.Fork().PreviousVersion)
	require.Equal(t, cfg.BellatrixForkVersion, post.Fork().CurrentVersion)
	require.Equal(t, cfg.BellatrixForkEpoch, post.Fork().Epoch)

	// Pre-merge: the payload header starts empty until the first execution
	// block fills it in.
	header := post.LatestExecutionPayloadHeader()
	require.NotNil(t, header)
	require.Empty(t, header.BlockHash)
	require.Equal(t, uint64(0), header.BlockNumber)

	require.Equal(t, state.ModePersistent, post.Mode())
}
