package state

import (
	"testing"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

func minimalPhase0Raw() *eth.BeaconStatePhase0 {
	return &eth.BeaconStatePhase0{
		GenesisValidatorsRoot: make([]byte, 32),
		Fork:                  &eth.Fork{PreviousVersion: [4]byte{}, CurrentVersion: [4]byte{}},
		LatestBlockHeader:     &eth.BeaconBlockHeader{ParentRoot: make([]byte, 32), StateRoot: make([]byte, 32), BodyRoot: make([]byte, 32)},
		Eth1Data:              &eth.Eth1Data{DepositRoot: make([]byte, 32), BlockHash: make([]byte, 32)},
		Validators: []*eth.Validator{
			{PublicKey: append([]byte{0xAA}, make([]byte, 47)...), WithdrawalCredentials: make([]byte, 32)},
			{PublicKey: append([]byte{0xBB}, make([]byte, 47)...), WithdrawalCredentials: make([]byte, 32)},
		},
		Balances:                    []uint64{32e9, 32e9},
		RandaoMixes:                 [][]byte{make([]byte, 32)},
		Slashings:                   []uint64{0},
		JustificationBits:           bitfield.Bitvector4{0x00},
		PreviousJustifiedCheckpoint: &eth.Checkpoint{Root: make([]byte, 32)},
		CurrentJustifiedCheckpoint:  &eth.Checkpoint{Root: make([]byte, 32)},
		FinalizedCheckpoint:         &eth.Checkpoint{Root: make([]byte, 32)},
	}
}

func TestInitializeFromProtoPhase0_StartsPersistent(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)
	require.Equal(t, ModePersistent, st.Mode())
	require.Equal(t, 2, st.NumValidators())
}

func TestInitializeFromProtoPhase0_NilInput(t *testing.T) {
	_, err := InitializeFromProtoPhase0(nil)
	require.ErrorIs(t, err, ErrNilState)
}

func TestSetSlot_RequiresTransientMode(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)

	err = st.SetSlot(1)
	var modeErr *BadStateModeError
	require.ErrorAs(t, err, &modeErr)
	require.Equal(t, ModeTransient, modeErr.Expected)
	require.Equal(t, ModePersistent, modeErr.Actual)

	st.SetCachesTransient()
	require.NoError(t, st.SetSlot(1))
	require.Equal(t, primitives.Slot(1), st.Slot())
}

func TestHashTreeRoot_RequiresPersistentMode(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)

	st.SetCachesTransient()
	_, err = st.HashTreeRoot()
	var modeErr *BadStateModeError
	require.ErrorAs(t, err, &modeErr)
	require.Equal(t, ModePersistent, modeErr.Expected)

	st.SetCachesPersistent()
	_, err = st.HashTreeRoot()
	require.NoError(t, err)
}

func TestCopy_AliasesUntilTransient(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)

	clone := st.Copy()
	require.Equal(t, st.Mode(), clone.Mode())

	clone.SetCachesTransient()
	require.NoError(t, clone.SetBalanceAtIndex(0, 1))

	require.Equal(t, uint64(32e9), st.Balances()[0], "mutating the detached clone must not affect the parent")
	require.Equal(t, uint64(1), clone.Balances()[0])
}

func TestSetCachesTransient_Idempotent(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)
	st.SetCachesTransient()
	balances := st.Balances()
	st.SetCachesTransient()
	require.Same(t, &balances[0], &st.Balances()[0], "a second SetCachesTransient call on an already-transient state must be a no-op")
}

func TestValidatorIndexByPubkey(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)

	var key [48]byte
	key[0] = 0xAA
	idx, ok := st.ValidatorIndexByPubkey(key)
	require.True(t, ok)
	require.Equal(t, uint64(0), uint64(idx))

	var missing [48]byte
	missing[0] = 0xFF
	_, ok = st.ValidatorIndexByPubkey(missing)
	require.False(t, ok)
}

func TestCopy_PubkeyMapDetachesOnTransient(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)

	clone := st.Copy()
	clone.SetCachesTransient()

	var key [48]byte
	key[0] = 0xCC
	require.NoError(t, clone.AppendValidator(&eth.Validator{PublicKey: key[:], WithdrawalCredentials: make([]byte, 32)}, 32e9))

	_, ok := st.ValidatorIndexByPubkey(key)
	require.False(t, ok, "appending to the clone must not leak into the parent's pubkey index")
	_, ok = clone.ValidatorIndexByPubkey(key)
	require.True(t, ok)
}

func TestCopy_SnapshotSurvivesLaterMutations(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)
	st.SetCachesTransient()
	require.NoError(t, st.SetSlot(7))

	// Snapshot mid-mutation, the way the skip-slot cache does.
	snap := st.Copy()
	snap.SetCachesPersistent()

	// The original keeps mutating; the first write after the Copy detaches
	// it from the snapshot.
	require.NoError(t, st.SetSlot(8))
	require.NoError(t, st.SetBalanceAtIndex(0, 1))

	require.Equal(t, primitives.Slot(7), snap.Slot())
	require.Equal(t, uint64(32e9), snap.Balances()[0])
	require.Equal(t, primitives.Slot(8), st.Slot())
	require.Equal(t, uint64(1), st.Balances()[0])
}

func TestHashTreeRoot_StableAcrossModeRoundTrip(t *testing.T) {
	st, err := InitializeFromProtoPhase0(minimalPhase0Raw())
	require.NoError(t, err)
	root1, err := st.HashTreeRoot()
	require.NoError(t, err)

	// A transient round trip with no writes must not change the root.
	st.SetCachesTransient()
	st.SetCachesPersistent()
	root2, err := st.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, root1, root2)
}
