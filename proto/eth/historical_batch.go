package eth

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

// HistoricalBatch is the per-SlotsPerHistoricalRoot-period snapshot rolled
// into BeaconState.historical_roots once its block/state root vectors fill
// up: the vectors themselves are discarded, only this batch's root is kept.
type HistoricalBatch struct {
	BlockRoots [][]byte
	StateRoots [][]byte
}

// HashTreeRootWith merkleizes the two root vectors, same shape as the state
// container's own block_roots/state_roots fields.
func (h *HistoricalBatch) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	if err := hashRootVector(hh, h.BlockRoots); err != nil {
		return err
	}
	if err := hashRootVector(hh, h.StateRoots); err != nil {
		return err
	}
	hh.Merkleize(idx)
	return nil
}

// HashTreeRoot returns h's Merkle root.
func (h *HistoricalBatch) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := h.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

func hashRootVector(hh *ssz.Hasher, items [][]byte) error {
	idx := hh.Index()
	for _, item := range items {
		hh.AppendBytes32(bytesutil.PadTo(item, 32))
	}
	hh.Merkleize(idx)
	return nil
}
