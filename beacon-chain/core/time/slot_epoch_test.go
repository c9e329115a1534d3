package time

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

func stateAtSlot(t *testing.T, slot primitives.Slot) *state.BeaconState {
	t.Helper()
	st, err := state.InitializeFromProtoPhase0(&eth.BeaconStatePhase0{Slot: slot})
	require.NoError(t, err)
	return st
}

func TestToEpoch(t *testing.T) {
	defer params.UseMinimalConfig()()
	spe := primitives.Slot(uint64(params.BeaconConfig().SlotsPerEpoch))

	tests := []struct {
		slot  primitives.Slot
		epoch primitives.Epoch
	}{
		{slot: 0, epoch: 0},
		{slot: spe - 1, epoch: 0},
		{slot: spe, epoch: 1},
		{slot: spe*3 + 2, epoch: 3},
	}
	for _, tt := range tests {
		require.Equal(t, tt.epoch, ToEpoch(tt.slot))
	}
}

func TestStartSlot(t *testing.T) {
	defer params.UseMinimalConfig()()
	spe := uint64(params.BeaconConfig().SlotsPerEpoch)

	for _, e := range []primitives.Epoch{0, 1, 5, 10} {
		require.Equal(t, primitives.Slot(uint64(e)*spe), StartSlot(e))
	}
}

func TestCurrentPrevNextEpoch(t *testing.T) {
	defer params.UseMinimalConfig()()
	spe := primitives.Slot(uint64(params.BeaconConfig().SlotsPerEpoch))

	st := stateAtSlot(t, 0)
	require.Equal(t, primitives.Epoch(0), CurrentEpoch(st))
	require.Equal(t, primitives.Epoch(0), PrevEpoch(st))
	require.Equal(t, primitives.Epoch(1), NextEpoch(st))

	st = stateAtSlot(t, spe*3)
	require.Equal(t, primitives.Epoch(3), CurrentEpoch(st))
	require.Equal(t, primitives.Epoch(2), PrevEpoch(st))
	require.Equal(t, primitives.Epoch(4), NextEpoch(st))
}

func TestCanUpgradeToAltair(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()
	cfg.AltairForkEpoch = 5
	params.OverrideBeaconConfig(cfg)

	spe := uint64(params.BeaconConfig().SlotsPerEpoch)
	require.False(t, CanUpgradeToAltair(1))
	require.False(t, CanUpgradeToAltair(primitives.Slot(spe)))
	require.True(t, CanUpgradeToAltair(primitives.Slot(5*spe)))
}

func TestCanUpgradeToBellatrix(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()
	cfg.BellatrixForkEpoch = 7
	params.OverrideBeaconConfig(cfg)

	spe := uint64(params.BeaconConfig().SlotsPerEpoch)
	require.False(t, CanUpgradeToBellatrix(primitives.Slot(spe)))
	require.True(t, CanUpgradeToBellatrix(primitives.Slot(7*spe)))
}

func TestIsEpochEnd(t *testing.T) {
	defer params.UseMinimalConfig()()
	spe := uint64(params.BeaconConfig().SlotsPerEpoch)

	require.True(t, IsEpochEnd(primitives.Slot(spe-1)))
	require.False(t, IsEpochEnd(primitives.Slot(spe)))
	require.True(t, IsEpochEnd(primitives.Slot(2*spe-1)))
}

func TestSyncCommitteePeriod(t *testing.T) {
	defer params.UseMinimalConfig()()
	epcs := uint64(params.BeaconConfig().EpochsPerSyncCommitteePeriod)

	require.Equal(t, uint64(0), SyncCommitteePeriod(0))
	require.Equal(t, uint64(1), SyncCommitteePeriod(primitives.Epoch(epcs)))
	require.Equal(t, uint64(2), SyncCommitteePeriod(primitives.Epoch(2*epcs+3)))
}
