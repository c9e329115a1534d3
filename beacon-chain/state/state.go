// Package state implements the CachedBeaconState (CBS): a single native
// struct that holds every fork's fields (fork-inapplicable fields are left
// nil/zero and gated by version), plus the derived caches and the
// transient/persistent storage-mode toggle.
//
// Cloning is copy-on-write: a clone shares the parent's backing storage
// and a refcount, and whichever side mutates first pays for the detach.
package state

import (
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sentrychain/beacon-stf/beacon-chain/state/stateutils"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// BeaconState is the CachedBeaconState. Zero value is invalid; construct via
// InitializeFromProtoPhase0/Altair/Bellatrix.
type BeaconState struct {
	ver int
	cfg *params.BeaconChainConfig
	mode StorageMode
	// sharedRef counts how many clones alias this state's backing storage.
	// Copy bumps it; the first mutation (or SetCachesTransient) on a shared
	// state detaches by deep-copying every field a mutator can touch.
	sharedRef *stateutils.Reference

	genesisTime           uint64
	genesisValidatorsRoot []byte
	slot                  primitives.Slot
	fork                  *eth.Fork
	latestBlockHeader     *eth.BeaconBlockHeader
	blockRoots            [][]byte
	stateRoots            [][]byte
	historicalRoots       [][]byte
	eth1Data              *eth.Eth1Data
	eth1DataVotes         []*eth.Eth1Data
	eth1DepositIndex      uint64
	validators            []*eth.Validator
	balances              []uint64
	randaoMixes           [][]byte
	slashings             []uint64

	// Phase0 only.
	previousEpochAttestations []*eth.PendingAttestation
	currentEpochAttestations  []*eth.PendingAttestation

	// Altair+.
	previousEpochParticipation []byte
	currentEpochParticipation  []byte
	inactivityScores           []uint64
	currentSyncCommittee       *eth.SyncCommittee
	nextSyncCommittee          *eth.SyncCommittee

	// Bellatrix+.
	latestExecutionPayloadHeader *eth.ExecutionPayloadHeader

	justificationBits           bitfield.Bitvector4
	previousJustifiedCheckpoint *eth.Checkpoint
	currentJustifiedCheckpoint  *eth.Checkpoint
	finalizedCheckpoint         *eth.Checkpoint

	// Derived caches. Rebuilt lazily; invalidated by epoch transition and by
	// validator-set changes.
	pubkeyToIndex map[stateutils.PubkeyBytes]primitives.ValidatorIndex
	shufflingCache map[primitives.Epoch][]primitives.ValidatorIndex
	committeeCache map[committeeCacheKey][]primitives.ValidatorIndex
	activeBalanceCache *activeBalanceCacheEntry
	proposerIndexCache map[primitives.Slot]primitives.ValidatorIndex

	// cachedRoot memoizes HashTreeRoot in persistent mode; invalidated on
	// every SetCachesTransient call (the only point at which the state can
	// change while the root is being relied upon).
	cachedRoot    *[32]byte
}

type committeeCacheKey struct {
	epoch primitives.Epoch
	index primitives.CommitteeIndex
	slot  primitives.Slot
}

type activeBalanceCacheEntry struct {
	epoch primitives.Epoch
	total uint64
}

// Version returns the fork this state is shaped for (version.Phase0,
// version.Altair, or version.Bellatrix).
func (b *BeaconState) Version() int {
	return b.ver
}

// Config returns the read-only consensus constants this state was built
// with.
func (b *BeaconState) Config() *params.BeaconChainConfig {
	return b.cfg
}

// Mode returns the current storage mode.
func (b *BeaconState) Mode() StorageMode {
	return b.mode
}

// InitializeFromProtoPhase0 constructs a CBS from a raw Phase0 state record.
// The CBS takes ownership of the given struct's slices (the caller should
// not retain a mutable reference); the returned state starts in persistent
// mode, since a state is always either built fresh at genesis or cloned
// from a parent.
func InitializeFromProtoPhase0(s *eth.BeaconStatePhase0) (*BeaconState, error) {
	if s == nil {
		return nil, ErrNilState
	}
	b := &BeaconState{
		ver:                         version.Phase0,
		cfg:                         params.BeaconConfig(),
		mode:                        ModePersistent,
		sharedRef:                   stateutils.NewRef(1),
		genesisTime:                 s.GenesisTime,
		genesisValidatorsRoot:       s.GenesisValidatorsRoot,
		slot:                        s.Slot,
		fork:                        s.Fork,
		latestBlockHeader:           s.LatestBlockHeader,
		blockRoots:                  s.BlockRoots,
		stateRoots:                  s.StateRoots,
		historicalRoots:             s.HistoricalRoots,
		eth1Data:                    s.Eth1Data,
		eth1DataVotes:               s.Eth1DataVotes,
		eth1DepositIndex:            s.Eth1DepositIndex,
		validators:                  s.Validators,
		balances:                    s.Balances,
		randaoMixes:                 s.RandaoMixes,
		slashings:                   s.Slashings,
		previousEpochAttestations:   s.PreviousEpochAttestations,
		currentEpochAttestations:    s.CurrentEpochAttestations,
		justificationBits:           s.JustificationBits,
		previousJustifiedCheckpoint: s.PreviousJustifiedCheckpoint,
		currentJustifiedCheckpoint:  s.CurrentJustifiedCheckpoint,
		finalizedCheckpoint:         s.FinalizedCheckpoint,
	}
	b.pubkeyToIndex = stateutils.BuildPubkeyIndexMap(b.validators)
	return b, nil
}

// InitializeFromProtoAltair constructs a CBS from a raw Altair state record.
func InitializeFromProtoAltair(s *eth.BeaconStateAltair) (*BeaconState, error) {
	if s == nil {
		return nil, ErrNilState
	}
	b := &BeaconState{
		ver:                         version.Altair,
		cfg:                         params.BeaconConfig(),
		mode:                        ModePersistent,
		sharedRef:                   stateutils.NewRef(1),
		genesisTime:                 s.GenesisTime,
		genesisValidatorsRoot:       s.GenesisValidatorsRoot,
		slot:                        s.Slot,
		fork:                        s.Fork,
		latestBlockHeader:           s.LatestBlockHeader,
		blockRoots:                  s.BlockRoots,
		stateRoots:                  s.StateRoots,
		historicalRoots:             s.HistoricalRoots,
		eth1Data:                    s.Eth1Data,
		eth1DataVotes:               s.Eth1DataVotes,
		eth1DepositIndex:            s.Eth1DepositIndex,
		validators:                  s.Validators,
		balances:                    s.Balances,
		randaoMixes:                 s.RandaoMixes,
		slashings:                   s.Slashings,
		previousEpochParticipation:  s.PreviousEpochParticipation,
		currentEpochParticipation:   s.CurrentEpochParticipation,
		inactivityScores:            s.InactivityScores,
		currentSyncCommittee:        s.CurrentSyncCommittee,
		nextSyncCommittee:           s.NextSyncCommittee,
		justificationBits:           s.JustificationBits,
		previousJustifiedCheckpoint: s.PreviousJustifiedCheckpoint,
		currentJustifiedCheckpoint:  s.CurrentJustifiedCheckpoint,
		finalizedCheckpoint:         s.FinalizedCheckpoint,
	}
	b.pubkeyToIndex = stateutils.BuildPubkeyIndexMap(b.validators)
	return b, nil
}

// InitializeFromProtoBellatrix constructs a CBS from a raw Bellatrix state
// record.
func InitializeFromProtoBellatrix(s *eth.BeaconStateBellatrix) (*BeaconState, error) {
	if s == nil {
		return nil, ErrNilState
	}
	b := &BeaconState{
		ver:                          version.Bellatrix,
		cfg:                          params.BeaconConfig(),
		mode:                         ModePersistent,
		sharedRef:                    stateutils.NewRef(1),
		genesisTime:                  s.GenesisTime,
		genesisValidatorsRoot:        s.GenesisValidatorsRoot,
		slot:                         s.Slot,
		fork:                         s.Fork,
		latestBlockHeader:            s.LatestBlockHeader,
		blockRoots:                   s.BlockRoots,
		stateRoots:                   s.StateRoots,
		historicalRoots:              s.HistoricalRoots,
		eth1Data:                     s.Eth1Data,
		eth1DataVotes:                s.Eth1DataVotes,
		eth1DepositIndex:             s.Eth1DepositIndex,
		validators:                   s.Validators,
		balances:                     s.Balances,
		randaoMixes:                  s.RandaoMixes,
		slashings:                    s.Slashings,
		previousEpochParticipation:   s.PreviousEpochParticipation,
		currentEpochParticipation:    s.CurrentEpochParticipation,
		inactivityScores:             s.InactivityScores,
		currentSyncCommittee:         s.CurrentSyncCommittee,
		nextSyncCommittee:            s.NextSyncCommittee,
		latestExecutionPayloadHeader: s.LatestExecutionPayloadHeader,
		justificationBits:            s.JustificationBits,
		previousJustifiedCheckpoint:  s.PreviousJustifiedCheckpoint,
		currentJustifiedCheckpoint:   s.CurrentJustifiedCheckpoint,
		finalizedCheckpoint:          s.FinalizedCheckpoint,
	}
	b.pubkeyToIndex = stateutils.BuildPubkeyIndexMap(b.validators)
	return b, nil
}

// Copy returns a clone of b. In either mode this is an O(1) struct copy
// plus a refcount bump: the clone's slice/map fields alias b's backing
// storage (structural sharing) until either side mutates, at which point
// the mutating side detaches by copying first.
func (b *BeaconState) Copy() *BeaconState {
	cp := *b
	// Both halves now share the same backing storage, so both carry the
	// same Reference; whichever mutates first pays for the detach.
	b.sharedRef.AddRef()
	return &cp
}

// SetCachesTransient flips the state into transient mode, the mutation
// window: every setter is gated on it. If the state still aliases a parent
// or sibling clone's backing storage, this is also the point it detaches.
func (b *BeaconState) SetCachesTransient() {
	if b.mode == ModeTransient {
		return
	}
	b.mode = ModeTransient
	b.cachedRoot = nil
	if b.sharedRef.Refs() > 1 {
		b.detachFields()
	}
}

// detachFields deep-copies every field a mutator might touch so this clone
// no longer aliases its parent's (or any sibling clone's) backing storage.
// In the native representation the arrays are already flat, so detaching is
// just a per-field copy.
func (b *BeaconState) detachFields() {
	b.sharedRef.MinusRef()
	b.sharedRef = stateutils.NewRef(1)

	b.genesisValidatorsRoot = append([]byte(nil), b.genesisValidatorsRoot...)
	b.fork = b.fork.Copy()
	b.latestBlockHeader = b.latestBlockHeader.Copy()
	b.blockRoots = deepCopy2D(b.blockRoots)
	b.stateRoots = deepCopy2D(b.stateRoots)
	b.historicalRoots = deepCopy2D(b.historicalRoots)
	b.eth1Data = b.eth1Data.Copy()
	b.eth1DataVotes = copyEth1DataSlice(b.eth1DataVotes)
	b.validators = copyValidatorSlice(b.validators)
	b.balances = append([]uint64(nil), b.balances...)
	b.randaoMixes = deepCopy2D(b.randaoMixes)
	b.slashings = append([]uint64(nil), b.slashings...)
	b.previousEpochAttestations = copyAttestationSlice(b.previousEpochAttestations)
	b.currentEpochAttestations = copyAttestationSlice(b.currentEpochAttestations)
	b.previousEpochParticipation = append([]byte(nil), b.previousEpochParticipation...)
	b.currentEpochParticipation = append([]byte(nil), b.currentEpochParticipation...)
	b.inactivityScores = append([]uint64(nil), b.inactivityScores...)
	b.currentSyncCommittee = b.currentSyncCommittee.Copy()
	b.nextSyncCommittee = b.nextSyncCommittee.Copy()
	b.latestExecutionPayloadHeader = b.latestExecutionPayloadHeader.Copy()
	jb := make(bitfield.Bitvector4, len(b.justificationBits))
	copy(jb, b.justificationBits)
	b.justificationBits = jb
	b.previousJustifiedCheckpoint = b.previousJustifiedCheckpoint.Copy()
	b.currentJustifiedCheckpoint = b.currentJustifiedCheckpoint.Copy()
	b.finalizedCheckpoint = b.finalizedCheckpoint.Copy()

	b.pubkeyToIndex = stateutils.CopyPubkeyIndexMap(b.pubkeyToIndex)
	// Derived caches were computed against data this state still holds, but
	// a detached clone is about to diverge from its siblings; drop them and
	// let lazy rebuilds repopulate against this clone's own history.
	b.invalidateEpochCaches()
}

// SetCachesPersistent flips the state into persistent mode. No data is
// copied (persistent mode is the sharing-friendly mode); callers must treat
// the state as read-only from this point on, enforced by every mutator
// method checking Mode() first.
func (b *BeaconState) SetCachesPersistent() {
	b.mode = ModePersistent
}

func deepCopy2D(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	for i, v := range in {
		out[i] = append([]byte(nil), v...)
	}
	return out
}

func copyEth1DataSlice(in []*eth.Eth1Data) []*eth.Eth1Data {
	out := make([]*eth.Eth1Data, len(in))
	for i, v := range in {
		out[i] = v.Copy()
	}
	return out
}

func copyValidatorSlice(in []*eth.Validator) []*eth.Validator {
	out := make([]*eth.Validator, len(in))
	for i, v := range in {
		out[i] = v.Copy()
	}
	return out
}

func copyAttestationSlice(in []*eth.PendingAttestation) []*eth.PendingAttestation {
	out := make([]*eth.PendingAttestation, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		cp := *v
		cp.Data = v.Data.Copy()
		out[i] = &cp
	}
	return out
}

// invalidateEpochCaches drops every derived cache keyed by epoch/committee,
// called when a clone detaches its storage, when the validator set changes,
// and again after epoch processing completes.
func (b *BeaconState) invalidateEpochCaches() {
	b.shufflingCache = nil
	b.committeeCache = nil
	b.activeBalanceCache = nil
	b.proposerIndexCache = nil
}

// InvalidateEpochCaches is the exported hook the epoch processor calls once
// a transition completes; the old epoch's shuffling/committee/proposer
// entries are unreachable from then on.
func (b *BeaconState) InvalidateEpochCaches() {
	b.invalidateEpochCaches()
}

// requireMode returns a BadStateModeError if the state is not in want mode.
func (b *BeaconState) requireMode(want StorageMode) error {
	if b.mode != want {
		return NewBadStateModeError(want, b.mode)
	}
	return nil
}

// ensureMutable gates every setter: the state must be in transient mode,
// and must own its backing storage outright before the write lands. The
// detach here (rather than only in SetCachesTransient) is what lets the
// skip-slot cache snapshot a mid-transition state without the original's
// further mutations bleeding into the snapshot.
func (b *BeaconState) ensureMutable() error {
	if b.mode != ModeTransient {
		return NewBadStateModeError(ModeTransient, b.mode)
	}
	if b.sharedRef.Refs() > 1 {
		b.detachFields()
	}
	return nil
}
