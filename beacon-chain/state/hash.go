package state

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/sentrychain/beacon-stf/config/params"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// HashTreeRoot returns the SSZ Merkle root of the full BeaconState. Only
// meaningful (and only allowed) in persistent mode, since a transient-mode
// state's fields are mid-mutation and its root would be a snapshot of
// nothing in particular.
//
// The root is memoized: once computed it is cached until the next
// SetCachesTransient call, which is the only way this state's fields can
// change (every mutator is itself mode-gated to transient).
func (b *BeaconState) HashTreeRoot() ([32]byte, error) {
	if err := b.requireMode(ModePersistent); err != nil {
		return [32]byte{}, err
	}
	if b.cachedRoot != nil {
		return *b.cachedRoot, nil
	}
	root, err := b.computeHashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	b.cachedRoot = &root
	return root, nil
}

func (b *BeaconState) computeHashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)

	if err := b.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// HashTreeRootWith merkleizes every field of the active fork's BeaconState
// container, in field order, onto hh. Written by hand in the style of
// sszgen-generated *.ssz.go files (see encoding/ssz's doc comment), since
// each fork adds fields to the same container shape.
func (b *BeaconState) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()

	hh.PutUint64(b.genesisTime)
	hh.PutBytes(pad32(b.genesisValidatorsRoot))
	hh.PutUint64(uint64(b.slot))
	if err := b.fork.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := b.latestBlockHeader.HashTreeRootWith(hh); err != nil {
		return err
	}
	hashByteVector(hh, b.blockRoots)
	hashByteVector(hh, b.stateRoots)
	hashByteList(hh, b.historicalRoots, b.cfg.HistoricalRootsLimit)
	if err := b.eth1Data.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := hashEth1DataList(hh, b.eth1DataVotes); err != nil {
		return err
	}
	hh.PutUint64(b.eth1DepositIndex)
	if err := hashValidatorList(hh, b.validators, b.cfg.ValidatorRegistryLimit); err != nil {
		return err
	}
	hashUint64List(hh, b.balances, b.cfg.ValidatorRegistryLimit)
	hashByteVector(hh, b.randaoMixes)
	hashUint64Vector(hh, b.slashings)

	if b.ver == version.Phase0 {
		if err := hashPendingAttestationList(hh, b.previousEpochAttestations, b.cfg); err != nil {
			return err
		}
		if err := hashPendingAttestationList(hh, b.currentEpochAttestations, b.cfg); err != nil {
			return err
		}
	} else {
		hh.PutBytes(b.previousEpochParticipation)
		hh.PutBytes(b.currentEpochParticipation)
	}

	hh.PutBytes(b.justificationBits)
	if err := b.previousJustifiedCheckpoint.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := b.currentJustifiedCheckpoint.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := b.finalizedCheckpoint.HashTreeRootWith(hh); err != nil {
		return err
	}

	if b.ver >= version.Altair {
		hashUint64List(hh, b.inactivityScores, b.cfg.ValidatorRegistryLimit)
		if err := hashSyncCommittee(hh, b.currentSyncCommittee); err != nil {
			return err
		}
		if err := hashSyncCommittee(hh, b.nextSyncCommittee); err != nil {
			return err
		}
	}

	if b.ver >= version.Bellatrix {
		if err := hashExecutionPayloadHeader(hh, b.latestExecutionPayloadHeader); err != nil {
			return err
		}
	}

	hh.Merkleize(idx)
	return nil
}

func pad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[:32]
	}
	out := make([]byte, 32)
	copy(out, b)
	return out
}

func hashByteVector(hh *ssz.Hasher, items [][]byte) {
	idx := hh.Index()
	for _, item := range items {
		hh.AppendBytes32(pad32(item))
	}
	hh.Merkleize(idx)
}

func hashByteList(hh *ssz.Hasher, items [][]byte, limit uint64) {
	idx := hh.Index()
	for _, item := range items {
		hh.AppendBytes32(pad32(item))
	}
	hh.MerkleizeWithMixin(idx, uint64(len(items)), limit)
}

func hashUint64Vector(hh *ssz.Hasher, items []uint64) {
	idx := hh.Index()
	for _, item := range items {
		hh.AppendUint64(item)
	}
	hh.FillUpTo32()
	hh.Merkleize(idx)
}

func hashUint64List(hh *ssz.Hasher, items []uint64, limit uint64) {
	idx := hh.Index()
	for _, item := range items {
		hh.AppendUint64(item)
	}
	hh.FillUpTo32()
	hh.MerkleizeWithMixin(idx, uint64(len(items)), limit)
}

func hashEth1DataList(hh *ssz.Hasher, items []*eth.Eth1Data) error {
	idx := hh.Index()
	for _, item := range items {
		if err := item.HashTreeRootWith(hh); err != nil {
			return err
		}
	}
	hh.MerkleizeWithMixin(idx, uint64(len(items)), 2048)
	return nil
}

// hashPendingAttestationList merkleizes the Phase0
// previous/current_epoch_attestations field as
// List[PendingAttestation, MAX_ATTESTATIONS * SLOTS_PER_EPOCH], the same
// mixed-in-length shape hashValidatorList/hashEth1DataList use. Each
// attestation's own contents (aggregation bits, data, inclusion delay,
// proposer index) are merkleized in, not just the list's length, so two
// states differing only in recorded attestations produce different roots.
func hashPendingAttestationList(hh *ssz.Hasher, items []*eth.PendingAttestation, cfg *params.BeaconChainConfig) error {
	idx := hh.Index()
	for _, item := range items {
		if err := item.HashTreeRootWith(hh); err != nil {
			return err
		}
	}
	limit := cfg.MaxAttestations * uint64(cfg.SlotsPerEpoch)
	hh.MerkleizeWithMixin(idx, uint64(len(items)), limit)
	return nil
}

func hashValidatorList(hh *ssz.Hasher, items []*eth.Validator, limit uint64) error {
	idx := hh.Index()
	for _, item := range items {
		if err := item.HashTreeRootWith(hh); err != nil {
			return err
		}
	}
	hh.MerkleizeWithMixin(idx, uint64(len(items)), limit)
	return nil
}

func hashSyncCommittee(hh *ssz.Hasher, c *eth.SyncCommittee) error {
	if c == nil {
		idx := hh.Index()
		hh.Merkleize(idx)
		return nil
	}
	return c.HashTreeRootWith(hh)
}

func hashExecutionPayloadHeader(hh *ssz.Hasher, h *eth.ExecutionPayloadHeader) error {
	if h == nil {
		idx := hh.Index()
		hh.Merkleize(idx)
		return nil
	}
	return h.HashTreeRootWith(hh)
}
