package transition

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/altair"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/bellatrix"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/epoch"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/monitoring/tracing"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// ProcessSlot runs the per-slot bookkeeping common to every fork: caching
// the pre-transition state root and block root, regardless of whether a
// block is about to be applied at this slot.
func ProcessSlot(ctx context.Context, st *state.BeaconState) (*state.BeaconState, error) {
	if st == nil {
		return nil, ErrNilState
	}
	_, span := trace.StartSpan(ctx, "core.transition.ProcessSlot")
	defer span.End()
	// Hashing is a persistent-mode operation and mutation a transient-mode
	// one. The slot boundary needs both, so it brackets the root
	// computation with an explicit mode flip. The flips are O(1); the
	// state detaches from clones lazily, on first write.
	st.SetCachesPersistent()
	prevStateRoot, err := st.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute state root")
	}
	st.SetCachesTransient()
	if err := st.UpdateStateRootAtIndex(uint64(st.Slot())%uint64(params.BeaconConfig().SlotsPerHistoricalRoot), prevStateRoot); err != nil {
		return nil, err
	}

	header := st.LatestBlockHeader()
	zeroHash := params.BeaconConfig().ZeroHash
	if header.StateRoot == nil || bytes.Equal(header.StateRoot, zeroHash[:]) {
		header.StateRoot = prevStateRoot[:]
		if err := st.SetLatestBlockHeader(header); err != nil {
			return nil, err
		}
	}
	prevBlockRoot, err := st.LatestBlockHeader().HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute latest block header root")
	}
	if err := st.UpdateBlockRootAtIndex(uint64(st.Slot())%uint64(params.BeaconConfig().SlotsPerHistoricalRoot), prevBlockRoot); err != nil {
		return nil, err
	}
	return st, nil
}

// ProcessEpoch dispatches to the fork-appropriate epoch-boundary processing
// function, then drops the per-epoch caches the completed epoch populated.
func ProcessEpoch(ctx context.Context, st *state.BeaconState) (*state.BeaconState, error) {
	_, span := trace.StartSpan(ctx, "core.transition.ProcessEpoch")
	defer span.End()
	var err error
	switch st.Version() {
	case version.Phase0:
		st, err = epoch.ProcessEpoch(st)
	case version.Altair:
		st, err = altair.ProcessEpoch(st)
	case version.Bellatrix:
		st, err = bellatrix.ProcessEpoch(st)
	default:
		return nil, ErrUnknownFork
	}
	if err != nil {
		tracing.AnnotateError(span, err)
		return nil, err
	}
	st.InvalidateEpochCaches()
	return st, nil
}

// upgradeAtBoundary runs the fork-upgrade transform when st's (already
// incremented) slot lands exactly on a configured fork's activation epoch
// boundary, matching the consensus spec's process_slots ordering: epoch
// processing, then the slot counter advances into the new fork, then the
// upgrade runs against that post-increment slot. Sync-committee selection
// inside the Altair upgrade reads CurrentEpoch(st), so this ordering is
// consensus-critical, not cosmetic: running the upgrade one slot early
// would select the sync committee for the wrong period.
func upgradeAtBoundary(st *state.BeaconState) (*state.BeaconState, error) {
	if st.Version() == version.Phase0 && coretime.CanUpgradeToAltair(st.Slot()) {
		return altair.UpgradeToAltair(st)
	}
	if st.Version() == version.Altair && coretime.CanUpgradeToBellatrix(st.Slot()) {
		return bellatrix.UpgradeToBellatrix(st)
	}
	return st, nil
}

// ProcessSlots advances st to slot, running ProcessSlot for each slot from
// the current one up to (but not including) slot, ProcessEpoch on every epoch
// boundary, and the fork-upgrade transform immediately after, for however
// many slots are skipped along the way (including zero).
func ProcessSlots(ctx context.Context, st *state.BeaconState, slot primitives.Slot, opts ...Option) (*state.BeaconState, error) {
	if st == nil {
		return nil, ErrNilState
	}
	ctx, span := trace.StartSpan(ctx, "core.transition.ProcessSlots")
	defer span.End()
	if st.Slot() > slot {
		return nil, errors.Wrapf(ErrSlotRegression, "state slot %d, target slot %d", st.Slot(), slot)
	}
	o := resolveOptions(opts)

	for st.Slot() < slot {
		var err error
		st, err = ProcessSlot(ctx, st)
		if err != nil {
			tracing.AnnotateError(span, err)
			return nil, errors.Wrap(err, "could not process slot")
		}
		atEpochEnd := coretime.IsEpochEnd(st.Slot())
		if atEpochEnd {
			start := time.Now()
			st, err = ProcessEpoch(ctx, st)
			if err != nil {
				tracing.AnnotateError(span, err)
				return nil, errors.Wrap(err, "could not process epoch")
			}
			o.metrics().ObserveEpochTransition(time.Since(start))
		}
		if err := st.SetSlot(st.Slot() + 1); err != nil {
			return nil, errors.Wrap(err, "could not increment slot")
		}
		if atEpochEnd {
			st, err = upgradeAtBoundary(st)
			if err != nil {
				return nil, errors.Wrap(err, "could not upgrade fork")
			}
		}
	}
	return st, nil
}

// ProcessSlotsUsingSkipSlotCache is ProcessSlots, but first consults cache
// (DefaultSkipSlotCache when opts don't override it) for a state already
// advanced partway toward slot from parentRoot, and memoizes the result
// afterward. Disabling the cache (calling ProcessSlots directly) never
// changes the returned root; it only changes how much work gets redone.
func ProcessSlotsUsingSkipSlotCache(ctx context.Context, parentRoot [32]byte, st *state.BeaconState, slot primitives.Slot, opts ...Option) (*state.BeaconState, error) {
	o := resolveOptions(opts)
	cache := o.skipSlotCache()

	if cached, ok := cache.get(parentRoot); ok && cached.Slot() <= slot && cached.Slot() >= st.Slot() {
		st = cached
	}
	if st.Slot() >= slot {
		return st, nil
	}
	st, err := ProcessSlots(ctx, st, slot, opts...)
	if err != nil {
		return nil, err
	}
	cache.put(parentRoot, st)
	return st, nil
}
