package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

func validatorsState(t *testing.T, validators []*eth.Validator) *state.BeaconState {
	t.Helper()
	balances := make([]uint64, len(validators))
	for i := range balances {
		balances[i] = validators[i].EffectiveBalance
	}
	st, err := state.InitializeFromProtoPhase0(&eth.BeaconStatePhase0{
		Validators: validators,
		Balances:   balances,
	})
	require.NoError(t, err)
	return st
}

func TestActiveValidatorIndices(t *testing.T) {
	validators := []*eth.Validator{
		{ActivationEpoch: 0, ExitEpoch: eth.FarFutureEpoch},
		{ActivationEpoch: 5, ExitEpoch: eth.FarFutureEpoch},
		{ActivationEpoch: 0, ExitEpoch: 3},
	}
	st := validatorsState(t, validators)

	indices, err := ActiveValidatorIndices(st, 1)
	require.NoError(t, err)
	require.Equal(t, []primitives.ValidatorIndex{0, 2}, indices)

	indices, err = ActiveValidatorIndices(st, 5)
	require.NoError(t, err)
	require.Equal(t, []primitives.ValidatorIndex{0, 1}, indices)
}

func TestActiveValidatorCount(t *testing.T) {
	validators := []*eth.Validator{
		{ActivationEpoch: 0, ExitEpoch: eth.FarFutureEpoch},
		{ActivationEpoch: 0, ExitEpoch: eth.FarFutureEpoch},
	}
	st := validatorsState(t, validators)
	require.Equal(t, uint64(2), ActiveValidatorCount(st, 0))
}

func TestTotalBalance_FloorsAtIncrement(t *testing.T) {
	validators := []*eth.Validator{
		{EffectiveBalance: 1},
	}
	st := validatorsState(t, validators)

	total := TotalBalance(st, []primitives.ValidatorIndex{0})
	require.Equal(t, params.BeaconConfig().EffectiveBalanceIncrement, total)
}

func TestTotalBalance_IgnoresOutOfRangeIndices(t *testing.T) {
	validators := []*eth.Validator{
		{EffectiveBalance: params.BeaconConfig().MaxEffectiveBalance},
	}
	st := validatorsState(t, validators)

	total := TotalBalance(st, []primitives.ValidatorIndex{0, 7})
	require.Equal(t, params.BeaconConfig().MaxEffectiveBalance, total)
}

func TestIsEligibleForActivationQueue(t *testing.T) {
	eligible := &eth.Validator{ActivationEligibilityEpoch: eth.FarFutureEpoch, EffectiveBalance: params.BeaconConfig().MaxEffectiveBalance}
	require.True(t, IsEligibleForActivationQueue(eligible))

	alreadyQueued := &eth.Validator{ActivationEligibilityEpoch: 3, EffectiveBalance: params.BeaconConfig().MaxEffectiveBalance}
	require.False(t, IsEligibleForActivationQueue(alreadyQueued))

	underfunded := &eth.Validator{ActivationEligibilityEpoch: eth.FarFutureEpoch, EffectiveBalance: 1}
	require.False(t, IsEligibleForActivationQueue(underfunded))
}

func TestIsEligibleForActivation(t *testing.T) {
	v := &eth.Validator{ActivationEligibilityEpoch: 4, ActivationEpoch: eth.FarFutureEpoch}
	require.False(t, IsEligibleForActivation(v, 3))
	require.True(t, IsEligibleForActivation(v, 4))

	activated := &eth.Validator{ActivationEligibilityEpoch: 0, ActivationEpoch: 1}
	require.False(t, IsEligibleForActivation(activated, 10))
}

func TestValidatorChurnLimit(t *testing.T) {
	cfg := params.BeaconConfig()
	require.Equal(t, cfg.MinPerEpochChurnLimit, ValidatorChurnLimit(0))
	require.Equal(t, cfg.MinPerEpochChurnLimit, ValidatorChurnLimit(cfg.ChurnLimitQuotient))

	large := cfg.ChurnLimitQuotient * (cfg.MinPerEpochChurnLimit + 5)
	require.Equal(t, cfg.MinPerEpochChurnLimit+5, ValidatorChurnLimit(large))
}

func TestComputeActivationExitEpoch(t *testing.T) {
	cfg := params.BeaconConfig()
	require.Equal(t, primitives.Epoch(1+cfg.MaxSeedLookahead), ComputeActivationExitEpoch(0))
	require.Equal(t, primitives.Epoch(11+cfg.MaxSeedLookahead), ComputeActivationExitEpoch(10))
}

func TestLastActivatedValidatorIndex(t *testing.T) {
	validators := []*eth.Validator{
		{ActivationEpoch: 0},
		{ActivationEpoch: eth.FarFutureEpoch},
		{ActivationEpoch: 2},
	}
	st := validatorsState(t, validators)
	require.Equal(t, primitives.ValidatorIndex(2), LastActivatedValidatorIndex(st))
}
