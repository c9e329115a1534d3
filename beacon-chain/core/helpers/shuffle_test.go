package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
)

func TestComputeShuffledIndex_IsPermutation(t *testing.T) {
	const n = 1000
	seed := [32]byte{123, 42}

	seen := make(map[uint64]bool, n)
	for i := uint64(0); i < n; i++ {
		si, err := ComputeShuffledIndex(i, n, seed)
		require.NoError(t, err)
		require.Less(t, si, uint64(n))
		require.False(t, seen[si], "shuffled index %d produced twice", si)
		seen[si] = true
	}
	require.Len(t, seen, n)
}

func TestComputeShuffledIndex_DifferentSeedsDiverge(t *testing.T) {
	const n = 100
	seedA := [32]byte{1, 128, 12}
	seedB := [32]byte{2, 128, 12}

	same := true
	for i := uint64(0); i < n; i++ {
		a, err := ComputeShuffledIndex(i, n, seedA)
		require.NoError(t, err)
		b, err := ComputeShuffledIndex(i, n, seedB)
		require.NoError(t, err)
		if a != b {
			same = false
		}
	}
	require.False(t, same, "two different seeds should not produce the same permutation")
}

func TestComputeShuffledIndex_IndexOutOfRange(t *testing.T) {
	_, err := ComputeShuffledIndex(10, 10, [32]byte{1})
	require.Error(t, err)
}

func TestComputeShuffledIndex_Deterministic(t *testing.T) {
	seed := [32]byte{9, 9, 9}
	a, err := ComputeShuffledIndex(5, 50, seed)
	require.NoError(t, err)
	b, err := ComputeShuffledIndex(5, 50, seed)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestUnshuffleList_MatchesComputeShuffledIndex(t *testing.T) {
	const n = 256
	seed := [32]byte{7, 1, 5}

	input := make([]primitives.ValidatorIndex, n)
	for i := range input {
		input[i] = primitives.ValidatorIndex(i)
	}

	out, err := UnshuffleList(input, seed)
	require.NoError(t, err)
	require.Len(t, out, n)

	for i := uint64(0); i < n; i++ {
		si, err := ComputeShuffledIndex(i, n, seed)
		require.NoError(t, err)
		require.Equal(t, input[si], out[i])
	}
}

func TestUnshuffleList_Empty(t *testing.T) {
	out, err := UnshuffleList(nil, [32]byte{1})
	require.NoError(t, err)
	require.Empty(t, out)
}
