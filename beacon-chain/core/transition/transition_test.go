package transition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/transition"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	coreblocks "github.com/sentrychain/beacon-stf/consensus-types/blocks"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
	util "github.com/sentrychain/beacon-stf/testing/util"
)

// buildPhase0Block advances a clone of genesis to slot, fills in a minimal
// valid body (randao reveal, no operations), computes the real post-state
// root via CalculateStateRoot, and signs the result, mimicking a proposer's
// actual workflow.
func buildPhase0Block(t *testing.T, genesis *state.BeaconState, keys []bls.SecretKey, slot primitives.Slot) *eth.SignedBeaconBlockPhase0 {
	t.Helper()
	working := genesis.Copy()
	working.SetCachesTransient()
	working, err := transition.ProcessSlots(context.Background(), working, slot)
	require.NoError(t, err)

	proposerIdx, err := helpers.BeaconProposerIndex(working)
	require.NoError(t, err)

	parentHeaderRoot, err := working.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)

	epoch := coretime.CurrentEpoch(working)
	reveal, err := util.RandaoReveal(working, epoch, keys[proposerIdx])
	require.NoError(t, err)

	block := &eth.BeaconBlockPhase0{
		Slot:          slot,
		ProposerIndex: proposerIdx,
		ParentRoot:    parentHeaderRoot[:],
		StateRoot:     make([]byte, 32),
		Body:          util.EmptyBodyPhase0(reveal, working.Eth1Data()),
	}

	unsigned, err := coreblocks.NewSignedBeaconBlock(&eth.SignedBeaconBlockPhase0{Block: block})
	require.NoError(t, err)
	root, err := transition.CalculateStateRoot(context.Background(), genesis, unsigned)
	require.NoError(t, err)
	block.StateRoot = root[:]

	signed, err := util.SignBlockPhase0(genesis, block, keys[proposerIdx])
	require.NoError(t, err)
	return signed
}

func TestProcessSlots_EmptySlotAdvance(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	genesis, _, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)

	working := genesis.Copy()
	working.SetCachesTransient()

	target := primitives.Slot(uint64(cfg.SlotsPerEpoch) * 3)
	working, err = transition.ProcessSlots(context.Background(), working, target)
	require.NoError(t, err)

	require.Equal(t, target, working.Slot())
	require.Equal(t, len(genesis.Validators()), len(working.Validators()))
}

func TestProcessSlots_SlotInPast(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, _, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)

	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 4)
	require.NoError(t, err)

	_, err = transition.ProcessSlots(context.Background(), working, working.Slot()-1)
	require.ErrorIs(t, err, transition.ErrSlotRegression)
}

func TestExecuteStateTransition_ValidBlock(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 1)
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	post, err := transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.NoError(t, err)
	require.Equal(t, primitives.Slot(1), post.Slot())
	require.Equal(t, primitives.Slot(0), genesis.Slot())

	postRoot, err := post.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, signed.Block.StateRoot, postRoot[:])
}

func TestExecuteStateTransition_InvalidProposerSignature(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 1)
	// Flip every bit of the signature's first byte; everything else about the block stays
	// exactly as a real proposer would have sent it.
	badSig := append([]byte(nil), signed.Signature...)
	badSig[0] ^= 0xff
	signed.Signature = badSig

	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	pristine := genesis.Copy()
	_, err = transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.ErrorIs(t, err, transition.ErrInvalidBlockSignature)

	// pre is untouched by the rejected call.
	require.Equal(t, pristine.Slot(), genesis.Slot())
	require.Equal(t, pristine.Mode(), genesis.Mode())
}

func TestExecuteStateTransition_InvalidStateRoot(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 1)
	require.NoError(t, err)

	proposerIdx, err := helpers.BeaconProposerIndex(working)
	require.NoError(t, err)
	parentHeaderRoot, err := working.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	epoch := coretime.CurrentEpoch(working)
	reveal, err := util.RandaoReveal(working, epoch, keys[proposerIdx])
	require.NoError(t, err)

	badRoot := make([]byte, 32)
	badRoot[0] = 0xAB
	block := &eth.BeaconBlockPhase0{
		Slot:          1,
		ProposerIndex: proposerIdx,
		ParentRoot:    parentHeaderRoot[:],
		StateRoot:     badRoot,
		Body:          util.EmptyBodyPhase0(reveal, working.Eth1Data()),
	}
	signed, err := util.SignBlockPhase0(genesis, block, keys[proposerIdx])
	require.NoError(t, err)
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	_, err = transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.ErrorIs(t, err, transition.ErrInvalidStateRoot)
}

func TestAltairForkUpgrade_AcrossBoundary(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()
	require.Equal(t, primitives.Epoch(1), cfg.AltairForkEpoch)

	genesis, _, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	working := genesis.Copy()
	working.SetCachesTransient()

	boundary := coretime.StartSlot(cfg.AltairForkEpoch)
	working, err = transition.ProcessSlots(context.Background(), working, boundary+1)
	require.NoError(t, err)

	require.Equal(t, version.Altair, working.Version())
	require.Equal(t, len(working.Validators()), len(working.InactivityScores()))
	for _, s := range working.InactivityScores() {
		require.Equal(t, uint64(0), s)
	}
	require.NotNil(t, working.CurrentSyncCommittee())
	require.NotNil(t, working.NextSyncCommittee())
	require.Equal(t, len(genesis.Validators()), len(working.Validators()))
}
