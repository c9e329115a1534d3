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
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
	util "github.com/sentrychain/beacon-stf/testing/util"
)

// requireStateInvariants checks the structural invariants every state
// returned by the transition must satisfy, regardless of what the block
// did: parallel list lengths, effective-balance quantization, and the
// pubkey index staying a bijection.
func requireStateInvariants(t *testing.T, st *state.BeaconState) {
	t.Helper()
	cfg := params.BeaconConfig()

	require.Equal(t, st.NumValidators(), len(st.Balances()))
	if st.Version() >= version.Altair {
		require.Equal(t, st.NumValidators(), len(st.InactivityScores()))
	}
	for i, v := range st.Validators() {
		require.Zero(t, v.EffectiveBalance%cfg.EffectiveBalanceIncrement, "validator %d effective balance not quantized", i)
		require.LessOrEqual(t, v.EffectiveBalance, cfg.MaxEffectiveBalance)

		idx, ok := st.ValidatorIndexByPubkey(bytesutil.ToBytes48(v.PublicKey))
		require.True(t, ok)
		require.Equal(t, primitives.ValidatorIndex(i), idx)
	}
}

func TestExecuteStateTransition_PureAndDeterministic(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	genesisRoot, err := genesis.HashTreeRoot()
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 1)
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	post1, err := transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.NoError(t, err)
	post2, err := transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.NoError(t, err)

	root1, err := post1.HashTreeRoot()
	require.NoError(t, err)
	root2, err := post2.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, root1, root2, "two runs over the same inputs must agree bit for bit")

	// The input state is observably untouched by both runs.
	require.Equal(t, state.ModePersistent, genesis.Mode())
	genesisRootAfter, err := genesis.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, genesisRoot, genesisRootAfter)

	requireStateInvariants(t, post1)
}

func TestExecuteStateTransition_NoMutationOnRejectedBlock(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 1)
	// Wrong proposer claim: signature and header checks both reject it.
	signed.Block.ProposerIndex = (signed.Block.ProposerIndex + 1) % 16
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	genesisRoot, err := genesis.HashTreeRoot()
	require.NoError(t, err)
	_, err = transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.Error(t, err)

	genesisRootAfter, err := genesis.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, genesisRoot, genesisRootAfter)
	require.Equal(t, primitives.Slot(0), genesis.Slot())
}

func TestProcessSlots_RingBuffersOverwriteInPlace(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()
	ringLen := uint64(cfg.SlotsPerHistoricalRoot)

	genesis, _, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	// First run: stop two slots past one full ring revolution.
	target := primitives.Slot(ringLen + 2)
	a := genesis.Copy()
	a.SetCachesTransient()
	a, err = transition.ProcessSlots(context.Background(), a, target)
	require.NoError(t, err)
	require.Equal(t, target, a.Slot())
	require.Len(t, a.BlockRoots(), int(ringLen))
	require.Len(t, a.StateRoots(), int(ringLen))

	// Second run stops one slot earlier; its final state is exactly what
	// the first run hashed into the ring while processing that last slot.
	b := genesis.Copy()
	b.SetCachesTransient()
	b, err = transition.ProcessSlots(context.Background(), b, target-1)
	require.NoError(t, err)
	b.SetCachesPersistent()
	bRoot, err := b.HashTreeRoot()
	require.NoError(t, err)

	got, err := a.StateRootAtIndex(uint64(target-1) % ringLen)
	require.NoError(t, err)
	require.Equal(t, bRoot[:], got, "ring slot must hold the most recent root written at that index, not the first-revolution one")
}

func TestProcessSlots_SameSlotIsNoOp(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, _, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 3)
	require.NoError(t, err)

	again, err := transition.ProcessSlots(context.Background(), working, 3)
	require.NoError(t, err)
	require.Equal(t, primitives.Slot(3), again.Slot())
}

func TestProcessSlots_SkipSlotCacheMatchesDirectRun(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	genesis, _, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	parentRoot, err := genesis.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	target := coretime.StartSlot(1) + cfg.SlotsPerEpoch/2

	direct := genesis.Copy()
	direct.SetCachesTransient()
	direct, err = transition.ProcessSlots(context.Background(), direct, target)
	require.NoError(t, err)
	direct.SetCachesPersistent()
	directRoot, err := direct.HashTreeRoot()
	require.NoError(t, err)

	cache := transition.NewSkipSlotCache()
	opt := transition.WithSkipSlotCache(cache)

	first := genesis.Copy()
	first.SetCachesTransient()
	first, err = transition.ProcessSlotsUsingSkipSlotCache(context.Background(), parentRoot, first, target, opt)
	require.NoError(t, err)
	first.SetCachesPersistent()
	firstRoot, err := first.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, directRoot, firstRoot)

	// Second call hits the memoized state; mutating its result must not
	// corrupt the cache for the third call.
	second := genesis.Copy()
	second.SetCachesTransient()
	second, err = transition.ProcessSlotsUsingSkipSlotCache(context.Background(), parentRoot, second, target, opt)
	require.NoError(t, err)
	second.SetCachesTransient()
	require.NoError(t, second.SetSlot(second.Slot()+1))

	third := genesis.Copy()
	third.SetCachesTransient()
	third, err = transition.ProcessSlotsUsingSkipSlotCache(context.Background(), parentRoot, third, target, opt)
	require.NoError(t, err)
	third.SetCachesPersistent()
	thirdRoot, err := third.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, directRoot, thirdRoot)
}

func TestCalculateStateRoot_MatchesExecutedTransition(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 2)
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	calculated, err := transition.CalculateStateRoot(context.Background(), genesis, wrapped)
	require.NoError(t, err)

	post, err := transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.NoError(t, err)
	executed, err := post.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, executed, calculated)
	require.Equal(t, primitives.Slot(0), genesis.Slot(), "CalculateStateRoot must not advance the caller's state")
}

func TestExecuteStateTransitionNoVerifyAnySig_ReturnsVerifiableBatch(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 1)
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	batch, post, err := transition.ExecuteStateTransitionNoVerifyAnySig(context.Background(), genesis, wrapped)
	require.NoError(t, err)
	require.NotNil(t, post)

	// With an empty body the deferred batch carries exactly the proposer
	// envelope signature and the randao reveal (operation sets join it per
	// attestation/slashing/exit/sync aggregate), and verifies as a single
	// aggregate check.
	require.Len(t, batch.Signatures, 2)
	require.NoError(t, transition.VerifySignatureBatch(batch))

	// Corrupting one set fails the batch and names it.
	batch.Signatures[1] = append([]byte(nil), batch.Signatures[0]...)
	err = transition.VerifySignatureBatch(batch)
	require.ErrorIs(t, err, transition.ErrInvalidSignatureBatch)
	require.Contains(t, err.Error(), "randao_reveal")

	postRoot, err := post.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, signed.Block.StateRoot, postRoot[:])
}

func TestExecuteStateTransition_VerifyProposerToggle(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 1)
	badSig := append([]byte(nil), signed.Signature...)
	badSig[0] ^= 0xff
	signed.Signature = badSig
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	_, err = transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.ErrorIs(t, err, transition.ErrInvalidBlockSignature)

	// Skipping only the proposer check leaves the in-block signatures and
	// the state-root check on, and both still pass.
	post, err := transition.ExecuteStateTransition(context.Background(), genesis, wrapped, transition.WithVerifyProposer(false))
	require.NoError(t, err)
	require.Equal(t, primitives.Slot(1), post.Slot())
}

func TestExecuteStateTransition_VerifyStateRootToggle(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	signed := buildPhase0Block(t, genesis, keys, 1)
	badRoot := append([]byte(nil), signed.Block.StateRoot...)
	badRoot[0] ^= 0xff
	signed.Block.StateRoot = badRoot
	// Re-sign: the envelope covers the tampered root.
	resigned, err := util.SignBlockPhase0(genesis, signed.Block, keys[signed.Block.ProposerIndex])
	require.NoError(t, err)
	wrapped, err := coreblocks.NewSignedBeaconBlock(resigned)
	require.NoError(t, err)

	_, err = transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.ErrorIs(t, err, transition.ErrInvalidStateRoot)

	post, err := transition.ExecuteStateTransition(context.Background(), genesis, wrapped, transition.WithVerifyStateRoot(false))
	require.NoError(t, err)
	require.Equal(t, primitives.Slot(1), post.Slot())
}

func TestExecuteStateTransition_VerifySignaturesToggle(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)

	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 1)
	require.NoError(t, err)
	proposerIdx, err := helpers.BeaconProposerIndex(working)
	require.NoError(t, err)
	parentRoot, err := working.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)

	// A randao reveal signed by the wrong validator: structurally fine, so
	// only the in-block signature check can reject it.
	epoch := coretime.CurrentEpoch(working)
	wrongReveal, err := util.RandaoReveal(working, epoch, keys[(proposerIdx+1)%16])
	require.NoError(t, err)

	block := &eth.BeaconBlockPhase0{
		Slot:          1,
		ProposerIndex: proposerIdx,
		ParentRoot:    parentRoot[:],
		StateRoot:     make([]byte, 32),
		Body:          util.EmptyBodyPhase0(wrongReveal, working.Eth1Data()),
	}
	unsigned, err := coreblocks.NewSignedBeaconBlock(&eth.SignedBeaconBlockPhase0{Block: block})
	require.NoError(t, err)
	root, err := transition.CalculateStateRoot(context.Background(), genesis, unsigned)
	require.NoError(t, err)
	block.StateRoot = root[:]
	signed, err := util.SignBlockPhase0(genesis, block, keys[proposerIdx])
	require.NoError(t, err)
	wrapped, err := coreblocks.NewSignedBeaconBlock(signed)
	require.NoError(t, err)

	_, err = transition.ExecuteStateTransition(context.Background(), genesis, wrapped)
	require.Error(t, err)
	require.Contains(t, err.Error(), "randao")

	// Proposer and state-root checks stay on; only the in-block BLS
	// verification is skipped.
	post, err := transition.ExecuteStateTransition(context.Background(), genesis, wrapped, transition.WithVerifySignatures(false))
	require.NoError(t, err)
	postRoot, err := post.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, signed.Block.StateRoot, postRoot[:])
}
