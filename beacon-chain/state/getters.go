package state

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sentrychain/beacon-stf/beacon-chain/state/stateutils"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// GenesisTime returns the state's genesis unix timestamp.
func (b *BeaconState) GenesisTime() uint64 { return b.genesisTime }

// GenesisValidatorsRoot returns the SSZ root of the genesis validator set,
// mixed into every signing domain.
func (b *BeaconState) GenesisValidatorsRoot() []byte { return b.genesisValidatorsRoot }

// Slot returns the state's current slot.
func (b *BeaconState) Slot() primitives.Slot { return b.slot }

// Fork returns the active fork record.
func (b *BeaconState) Fork() *eth.Fork { return b.fork }

// LatestBlockHeader returns the cached header of the most recently processed
// block (state_root zeroed until the next process_slot fills it in).
func (b *BeaconState) LatestBlockHeader() *eth.BeaconBlockHeader { return b.latestBlockHeader }

// BlockRoots returns the full block-roots ring buffer.
func (b *BeaconState) BlockRoots() [][]byte { return b.blockRoots }

// StateRoots returns the full state-roots ring buffer.
func (b *BeaconState) StateRoots() [][]byte { return b.stateRoots }

// BlockRootAtIndex returns the ring-buffer entry at i % len(blockRoots).
func (b *BeaconState) BlockRootAtIndex(i uint64) ([]byte, error) {
	if len(b.blockRoots) == 0 {
		return nil, errors.New("block roots not initialized")
	}
	return b.blockRoots[i%uint64(len(b.blockRoots))], nil
}

// StateRootAtIndex returns the ring-buffer entry at i % len(stateRoots).
func (b *BeaconState) StateRootAtIndex(i uint64) ([]byte, error) {
	if len(b.stateRoots) == 0 {
		return nil, errors.New("state roots not initialized")
	}
	return b.stateRoots[i%uint64(len(b.stateRoots))], nil
}

// HistoricalRoots returns the growable historical-roots list.
func (b *BeaconState) HistoricalRoots() [][]byte { return b.historicalRoots }

// Eth1Data returns the currently adopted eth1 vote.
func (b *BeaconState) Eth1Data() *eth.Eth1Data { return b.eth1Data }

// Eth1DataVotes returns the current-period eth1 votes.
func (b *BeaconState) Eth1DataVotes() []*eth.Eth1Data { return b.eth1DataVotes }

// Eth1DepositIndex returns the next deposit index to process.
func (b *BeaconState) Eth1DepositIndex() uint64 { return b.eth1DepositIndex }

// Validators returns the validator registry. Callers must not mutate the
// returned slice or its elements directly; use the Set*/Append* mutators.
func (b *BeaconState) Validators() []*eth.Validator { return b.validators }

// NumValidators returns len(Validators()).
func (b *BeaconState) NumValidators() int { return len(b.validators) }

// ValidatorAtIndex returns a copy of the validator at index i.
func (b *BeaconState) ValidatorAtIndex(i primitives.ValidatorIndex) (*eth.Validator, error) {
	if uint64(i) >= uint64(len(b.validators)) {
		return nil, errors.Errorf("validator index %d out of range", i)
	}
	if b.validators[i] == nil {
		return nil, ErrNilValidator
	}
	return b.validators[i].Copy(), nil
}

// ValidatorIndexByPubkey returns the index for pubkey, and whether it was
// found. O(1) via the pubkey->index cache, which stays a bijection over
// validators[*].pubkey as validators are appended.
func (b *BeaconState) ValidatorIndexByPubkey(pubkey [48]byte) (primitives.ValidatorIndex, bool) {
	var key stateutils.PubkeyBytes
	copy(key[:], pubkey[:])
	idx, ok := b.pubkeyToIndex[key]
	return idx, ok
}

// Balances returns the balance list. Parallel to Validators(): len(Balances())
// == len(Validators()) is a standing invariant.
func (b *BeaconState) Balances() []uint64 { return b.balances }

// BalanceAtIndex returns the balance of validator i.
func (b *BeaconState) BalanceAtIndex(i primitives.ValidatorIndex) (uint64, error) {
	if uint64(i) >= uint64(len(b.balances)) {
		return 0, errors.Errorf("balance index %d out of range", i)
	}
	return b.balances[i], nil
}

// RandaoMixAtIndex returns the ring-buffer randao mix at i % len(randaoMixes).
func (b *BeaconState) RandaoMixAtIndex(i uint64) ([]byte, error) {
	if len(b.randaoMixes) == 0 {
		return nil, errors.New("randao mixes not initialized")
	}
	return b.randaoMixes[i%uint64(len(b.randaoMixes))], nil
}

// RandaoMixes returns the full randao-mix ring.
func (b *BeaconState) RandaoMixes() [][]byte { return b.randaoMixes }

// SlashingAtIndex returns the slashings-ring entry at i % len(slashings).
func (b *BeaconState) SlashingAtIndex(i uint64) (uint64, error) {
	if len(b.slashings) == 0 {
		return 0, errors.New("slashings not initialized")
	}
	return b.slashings[i%uint64(len(b.slashings))], nil
}

// Slashings returns the full slashings ring.
func (b *BeaconState) Slashings() []uint64 { return b.slashings }

// PreviousEpochAttestations returns the Phase0 previous-epoch attestation
// list. Callers must check Version() == version.Phase0 first.
func (b *BeaconState) PreviousEpochAttestations() []*eth.PendingAttestation {
	return b.previousEpochAttestations
}

// CurrentEpochAttestations returns the Phase0 current-epoch attestation list.
func (b *BeaconState) CurrentEpochAttestations() []*eth.PendingAttestation {
	return b.currentEpochAttestations
}

// PreviousEpochParticipation returns the Altair+ previous-epoch
// participation-flag byte vector.
func (b *BeaconState) PreviousEpochParticipation() []byte { return b.previousEpochParticipation }

// CurrentEpochParticipation returns the Altair+ current-epoch
// participation-flag byte vector.
func (b *BeaconState) CurrentEpochParticipation() []byte { return b.currentEpochParticipation }

// InactivityScores returns the Altair+ per-validator inactivity scores.
func (b *BeaconState) InactivityScores() []uint64 { return b.inactivityScores }

// CurrentSyncCommittee returns the Altair+ active sync committee.
func (b *BeaconState) CurrentSyncCommittee() *eth.SyncCommittee { return b.currentSyncCommittee }

// NextSyncCommittee returns the Altair+ queued sync committee.
func (b *BeaconState) NextSyncCommittee() *eth.SyncCommittee { return b.nextSyncCommittee }

// LatestExecutionPayloadHeader returns the Bellatrix+ cached payload header.
func (b *BeaconState) LatestExecutionPayloadHeader() *eth.ExecutionPayloadHeader {
	return b.latestExecutionPayloadHeader
}

// JustificationBits returns the 4-bit recent-justification history.
func (b *BeaconState) JustificationBits() bitfield.Bitvector4 { return b.justificationBits }

// PreviousJustifiedCheckpoint returns the previous justified checkpoint.
func (b *BeaconState) PreviousJustifiedCheckpoint() *eth.Checkpoint {
	return b.previousJustifiedCheckpoint
}

// CurrentJustifiedCheckpoint returns the current justified checkpoint.
func (b *BeaconState) CurrentJustifiedCheckpoint() *eth.Checkpoint {
	return b.currentJustifiedCheckpoint
}

// FinalizedCheckpoint returns the finalized checkpoint.
func (b *BeaconState) FinalizedCheckpoint() *eth.Checkpoint { return b.finalizedCheckpoint }
