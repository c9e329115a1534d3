package state

import "github.com/sentrychain/beacon-stf/consensus-types/primitives"

// The caches below are populated lazily by core/helpers and invalidated by
// invalidateEpochCaches (called when a clone detaches, when the validator
// set changes, and after epoch processing). They are not part of the hashed
// state and never affect HashTreeRoot.

// ShufflingCacheLookup returns the full seed-shuffled active-validator list
// for epoch if it has already been computed for this state.
func (b *BeaconState) ShufflingCacheLookup(epoch primitives.Epoch) ([]primitives.ValidatorIndex, bool) {
	if b.shufflingCache == nil {
		return nil, false
	}
	indices, ok := b.shufflingCache[epoch]
	return indices, ok
}

// ShufflingCacheStore records indices as the shuffled list for epoch.
func (b *BeaconState) ShufflingCacheStore(epoch primitives.Epoch, indices []primitives.ValidatorIndex) {
	if b.shufflingCache == nil {
		b.shufflingCache = make(map[primitives.Epoch][]primitives.ValidatorIndex)
	}
	b.shufflingCache[epoch] = indices
}

// CommitteeCacheLookup returns a previously computed committee for
// (epoch, index, slot), if any.
func (b *BeaconState) CommitteeCacheLookup(epoch primitives.Epoch, index primitives.CommitteeIndex, slot primitives.Slot) ([]primitives.ValidatorIndex, bool) {
	if b.committeeCache == nil {
		return nil, false
	}
	c, ok := b.committeeCache[committeeCacheKey{epoch: epoch, index: index, slot: slot}]
	return c, ok
}

// CommitteeCacheStore records committee as the committee for
// (epoch, index, slot).
func (b *BeaconState) CommitteeCacheStore(epoch primitives.Epoch, index primitives.CommitteeIndex, slot primitives.Slot, committee []primitives.ValidatorIndex) {
	if b.committeeCache == nil {
		b.committeeCache = make(map[committeeCacheKey][]primitives.ValidatorIndex)
	}
	b.committeeCache[committeeCacheKey{epoch: epoch, index: index, slot: slot}] = committee
}

// ActiveBalanceCacheLookup returns the total active balance for epoch if it
// was the most recently computed one (the cache holds a single entry: epoch
// processing only ever needs current/previous epoch's total back to back).
func (b *BeaconState) ActiveBalanceCacheLookup(epoch primitives.Epoch) (uint64, bool) {
	if b.activeBalanceCache == nil || b.activeBalanceCache.epoch != epoch {
		return 0, false
	}
	return b.activeBalanceCache.total, true
}

// ActiveBalanceCacheStore records total as the active balance for epoch.
func (b *BeaconState) ActiveBalanceCacheStore(epoch primitives.Epoch, total uint64) {
	b.activeBalanceCache = &activeBalanceCacheEntry{epoch: epoch, total: total}
}

// ProposerIndexCacheLookup returns the proposer index for slot, if this
// state has already computed it.
func (b *BeaconState) ProposerIndexCacheLookup(slot primitives.Slot) (primitives.ValidatorIndex, bool) {
	if b.proposerIndexCache == nil {
		return 0, false
	}
	idx, ok := b.proposerIndexCache[slot]
	return idx, ok
}

// ProposerIndexCacheStore records idx as the proposer for slot.
func (b *BeaconState) ProposerIndexCacheStore(slot primitives.Slot, idx primitives.ValidatorIndex) {
	if b.proposerIndexCache == nil {
		b.proposerIndexCache = make(map[primitives.Slot]primitives.ValidatorIndex)
	}
	b.proposerIndexCache[slot] = idx
}
