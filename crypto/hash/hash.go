// Package hash wraps the hashing primitive the rest of the module uses for
// Merkleization, so a single place controls which sha256 implementation is
// linked in: minio/sha256-simd picks the AVX2/SHA-extension path at runtime
// where available, and hashing dominates the state transition's profile.
package hash

import (
	"github.com/minio/sha256-simd"
)

// Hash returns the sha256 digest of data.
func Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// HashZeroHashes precomputes the "zero hash" at each Merkle tree depth:
// zeroHashes[0] is the 32-byte zero leaf itself (not hashed), and
// zeroHashes[i] == Hash(zeroHashes[i-1] || zeroHashes[i-1]).
func HashZeroHashes(depth int) [][32]byte {
	zeroHashes := make([][32]byte, depth+1)
	for i := 1; i <= depth; i++ {
		var buf [64]byte
		copy(buf[:32], zeroHashes[i-1][:])
		copy(buf[32:], zeroHashes[i-1][:])
		zeroHashes[i] = Hash(buf[:])
	}
	return zeroHashes
}
