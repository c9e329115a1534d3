// Package time converts between slots and epochs and answers "what point in
// the epoch cycle is this" questions the rest of the state transition
// function needs (current/previous/next epoch, sync-committee period
// boundaries, voting-period windows).
package time

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
)

// ToEpoch returns the epoch a slot belongs to.
func ToEpoch(s primitives.Slot) primitives.Epoch {
	return primitives.Epoch(uint64(s) / uint64(params.BeaconConfig().SlotsPerEpoch))
}

// StartSlot returns the first slot of epoch e.
func StartSlot(e primitives.Epoch) primitives.Slot {
	return primitives.Slot(uint64(e) * uint64(params.BeaconConfig().SlotsPerEpoch))
}

// CurrentEpoch returns the epoch of st's current slot.
func CurrentEpoch(st *state.BeaconState) primitives.Epoch {
	return ToEpoch(st.Slot())
}

// PrevEpoch returns the epoch before CurrentEpoch, saturating at the
// genesis epoch (0) rather than underflowing.
func PrevEpoch(st *state.BeaconState) primitives.Epoch {
	current := CurrentEpoch(st)
	if current == 0 {
		return 0
	}
	return current - 1
}

// NextEpoch returns the epoch after CurrentEpoch.
func NextEpoch(st *state.BeaconState) primitives.Epoch {
	return CurrentEpoch(st) + 1
}

// CanUpgradeToAltair reports whether s is the first slot of the
// configured Altair fork epoch, the point at which the upgrade transform
// must run before block processing.
func CanUpgradeToAltair(s primitives.Slot) bool {
	if params.BeaconConfig().AltairForkEpoch == 0 {
		return s == 0
	}
	epochStart := StartSlot(params.BeaconConfig().AltairForkEpoch)
	return s == epochStart
}

// CanUpgradeToBellatrix reports whether st's slot is the first slot of the
// configured Bellatrix fork epoch.
func CanUpgradeToBellatrix(s primitives.Slot) bool {
	epochStart := StartSlot(params.BeaconConfig().BellatrixForkEpoch)
	return s == epochStart
}

// SyncCommitteePeriod returns the sync-committee rotation period e falls in.
func SyncCommitteePeriod(e primitives.Epoch) uint64 {
	return uint64(e) / uint64(params.BeaconConfig().EpochsPerSyncCommitteePeriod)
}

// IsEpochEnd reports whether s is the last slot of its epoch, the point at
// which process_epoch runs.
func IsEpochEnd(s primitives.Slot) bool {
	return (uint64(s)+1)%uint64(params.BeaconConfig().SlotsPerEpoch) == 0
}
