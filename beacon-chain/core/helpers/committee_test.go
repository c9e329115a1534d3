package helpers_test

import (
	"testing"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	util "github.com/sentrychain/beacon-stf/testing/util"
)

func TestSlotCommitteeCount(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	require.Equal(t, uint64(1), helpers.SlotCommitteeCount(0))
	require.Equal(t, cfg.MaxCommitteesPerSlot, helpers.SlotCommitteeCount(uint64(cfg.SlotsPerEpoch)*cfg.TargetCommitteeSize*cfg.MaxCommitteesPerSlot*10))
}

func TestComputeCommittee_PartitionsTheFullList(t *testing.T) {
	indices := make([]primitives.ValidatorIndex, 100)
	for i := range indices {
		indices[i] = primitives.ValidatorIndex(i)
	}

	const count = 4
	seen := make(map[primitives.ValidatorIndex]bool)
	for i := uint64(0); i < count; i++ {
		committee, err := helpers.ComputeCommittee(indices, i, count)
		require.NoError(t, err)
		for _, idx := range committee {
			require.False(t, seen[idx], "index %d assigned to more than one committee slice", idx)
			seen[idx] = true
		}
	}
	require.Len(t, seen, len(indices))
}

func TestComputeCommittee_OutOfRange(t *testing.T) {
	indices := []primitives.ValidatorIndex{0, 1, 2}
	_, err := helpers.ComputeCommittee(indices, 5, 2)
	require.Error(t, err)
}

func TestBeaconCommitteeAndAttestingIndices(t *testing.T) {
	defer params.UseMinimalConfig()()

	st, _, err := util.DeterministicGenesisStatePhase0(32)
	require.NoError(t, err)

	committee, err := helpers.BeaconCommittee(st, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, committee)

	bits := bitfield.NewBitlist(uint64(len(committee)))
	bits.SetBitAt(0, true)
	indices, err := helpers.AttestingIndices(st, 0, 0, bits)
	require.NoError(t, err)
	require.Equal(t, []uint64{uint64(committee[0])}, indices)
}

func TestCommitteeCountPerSlot(t *testing.T) {
	defer params.UseMinimalConfig()()

	st, _, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	require.Equal(t, helpers.SlotCommitteeCount(helpers.ActiveValidatorCount(st, 0)), helpers.CommitteeCountPerSlot(st, 0))
}
