package math_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	stfmath "github.com/sentrychain/beacon-stf/math"
)

func TestIntegerSquareRoot(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{16, 4},
		{17, 4},
		{63, 7},
		{64, 8},
		{1 << 62, 1 << 31},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, stfmath.IntegerSquareRoot(tt.n))
	}
}

func TestIntegerSquareRoot_MaxUint64(t *testing.T) {
	got := stfmath.IntegerSquareRoot(^uint64(0))
	require.Equal(t, uint64(4294967295), got)
}
