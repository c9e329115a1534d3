// Package ssz adapts github.com/ferranbt/fastssz's Hasher to this module's
// HashTreeRoot methods. Every container type that participates in consensus
// hashing (BeaconState variants, Validator, Checkpoint, BeaconBlockHeader,
// Eth1Data, ...) implements HashTreeRootWith(*ssz.Hasher) error by hand, in
// the same style sszgen-generated *.ssz.go files use, and this
// package supplies the pool + root-extraction boilerplate around it so each
// type only writes its own field merkleization.
package ssz

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/sentrychain/beacon-stf/crypto/hash"
)

// HashTreeRootWith is implemented by every SSZ container in this module.
type HashTreeRootWith interface {
	HashTreeRootWith(hh *ssz.Hasher) error
}

var hasherPool ssz.HasherPool

// HashTreeRoot runs t's HashTreeRootWith against a pooled Hasher and returns
// the resulting 32-byte root.
func HashTreeRoot(t HashTreeRootWith) ([32]byte, error) {
	hh := hasherPool.Get()
	defer hasherPool.Put(hh)

	if err := t.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// VerifyMerkleBranch reports whether leaf, combined with branch, reproduces
// root at position index in a tree of the given depth. Used to verify a
// deposit's inclusion proof against eth1_data.deposit_root.
func VerifyMerkleBranch(root, leaf []byte, index int, branch [][]byte, depth uint64) bool {
	if uint64(len(branch)) < depth {
		return false
	}
	node := make([]byte, 32)
	copy(node, leaf)
	for i := uint64(0); i < depth; i++ {
		var buf [64]byte
		if (index>>i)&1 == 1 {
			copy(buf[:32], branch[i])
			copy(buf[32:], node)
		} else {
			copy(buf[:32], node)
			copy(buf[32:], branch[i])
		}
		h := hash.Hash(buf[:])
		node = h[:]
	}
	return string(node) == string(root)
}

// MerkleizeByteSlices merkleizes a list of fixed-size byte leaves (already
// 32-byte chunks) into hh at the given limit, mixing in the live length.
// Used for growable lists (validators, attestations, eth1_data_votes, ...).
func MerkleizeByteSlices(hh *ssz.Hasher, items [][]byte, limit uint64, fn func(*ssz.Hasher, []byte) error) error {
	subIndx := hh.Index()
	num := uint64(len(items))
	if num > limit {
		return ssz.ErrIncorrectListSize
	}
	for _, item := range items {
		if err := fn(hh, item); err != nil {
			return err
		}
	}
	hh.MerkleizeWithMixin(subIndx, num, limit)
	return nil
}
