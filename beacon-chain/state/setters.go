package state

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sentrychain/beacon-stf/beacon-chain/state/stateutils"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// Every mutator below requires transient mode. This is a contract, not a
// hint: bulk epoch mutation in persistent mode fails loudly instead of
// silently racing a concurrent reader.

// SetSlot sets the state's slot.
func (b *BeaconState) SetSlot(slot primitives.Slot) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.slot = slot
	return nil
}

// SetFork replaces the fork record.
func (b *BeaconState) SetFork(fork *eth.Fork) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.fork = fork
	return nil
}

// SetLatestBlockHeader replaces the cached latest block header.
func (b *BeaconState) SetLatestBlockHeader(h *eth.BeaconBlockHeader) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.latestBlockHeader = h
	return nil
}

// UpdateBlockRootAtIndex overwrites the ring-buffer entry at i % len.
func (b *BeaconState) UpdateBlockRootAtIndex(i uint64, root [32]byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if len(b.blockRoots) == 0 {
		return errors.New("block roots not initialized")
	}
	b.blockRoots[i%uint64(len(b.blockRoots))] = root[:]
	return nil
}

// UpdateStateRootAtIndex overwrites the ring-buffer entry at i % len.
func (b *BeaconState) UpdateStateRootAtIndex(i uint64, root [32]byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if len(b.stateRoots) == 0 {
		return errors.New("state roots not initialized")
	}
	b.stateRoots[i%uint64(len(b.stateRoots))] = root[:]
	return nil
}

// AppendHistoricalRoot appends a rolled-up historical root.
func (b *BeaconState) AppendHistoricalRoot(root [32]byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.historicalRoots = append(b.historicalRoots, root[:])
	return nil
}

// SetEth1Data replaces the adopted eth1 vote.
func (b *BeaconState) SetEth1Data(e *eth.Eth1Data) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.eth1Data = e
	return nil
}

// SetEth1DataVotes replaces the whole votes list.
func (b *BeaconState) SetEth1DataVotes(v []*eth.Eth1Data) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.eth1DataVotes = v
	return nil
}

// AppendEth1DataVote appends a single eth1 vote.
func (b *BeaconState) AppendEth1DataVote(v *eth.Eth1Data) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.eth1DataVotes = append(b.eth1DataVotes, v)
	return nil
}

// SetEth1DepositIndex sets the next deposit index to process.
func (b *BeaconState) SetEth1DepositIndex(i uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.eth1DepositIndex = i
	return nil
}

// AppendValidator appends a new validator and its balance, and extends the
// pubkey->index cache incrementally; the cache stays a bijection over
// validators[*].pubkey since validators are immutable once appended.
func (b *BeaconState) AppendValidator(v *eth.Validator, balance uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	idx := primitives.ValidatorIndex(len(b.validators))
	b.validators = append(b.validators, v)
	b.balances = append(b.balances, balance)
	var key stateutils.PubkeyBytes
	copy(key[:], v.PublicKey)
	if b.pubkeyToIndex == nil {
		b.pubkeyToIndex = make(map[stateutils.PubkeyBytes]primitives.ValidatorIndex)
	}
	b.pubkeyToIndex[key] = idx
	b.invalidateEpochCaches()
	return nil
}

// UpdateValidatorAtIndex replaces the mutable fields of the validator at i
// (effective balance, slashed flag, epoch markers). The pubkey and
// withdrawal credentials of an already-appended validator never change.
func (b *BeaconState) UpdateValidatorAtIndex(i primitives.ValidatorIndex, fn func(*eth.Validator) error) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if uint64(i) >= uint64(len(b.validators)) {
		return errors.Errorf("validator index %d out of range", i)
	}
	if err := fn(b.validators[i]); err != nil {
		return err
	}
	// Activation/exit/slashing edits change which validators count as
	// active in upcoming epochs.
	b.invalidateEpochCaches()
	return nil
}

// SetBalances replaces the whole balance list in one batched write (used by
// the epoch processor's rewards/penalties phase).
func (b *BeaconState) SetBalances(balances []uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.balances = balances
	return nil
}

// SetBalanceAtIndex sets a single validator's balance.
func (b *BeaconState) SetBalanceAtIndex(i primitives.ValidatorIndex, balance uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if uint64(i) >= uint64(len(b.balances)) {
		return errors.Errorf("balance index %d out of range", i)
	}
	b.balances[i] = balance
	return nil
}

// IncreaseBalance adds delta to validator i's balance.
func (b *BeaconState) IncreaseBalance(i primitives.ValidatorIndex, delta uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if uint64(i) >= uint64(len(b.balances)) {
		return errors.Errorf("balance index %d out of range", i)
	}
	b.balances[i] += delta
	return nil
}

// DecreaseBalance subtracts delta from validator i's balance, saturating at
// 0.
func (b *BeaconState) DecreaseBalance(i primitives.ValidatorIndex, delta uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if uint64(i) >= uint64(len(b.balances)) {
		return errors.Errorf("balance index %d out of range", i)
	}
	if delta > b.balances[i] {
		b.balances[i] = 0
		return nil
	}
	b.balances[i] -= delta
	return nil
}

// UpdateRandaoMixAtIndex overwrites the ring-buffer entry at i % len.
func (b *BeaconState) UpdateRandaoMixAtIndex(i uint64, mix [32]byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if len(b.randaoMixes) == 0 {
		return errors.New("randao mixes not initialized")
	}
	b.randaoMixes[i%uint64(len(b.randaoMixes))] = mix[:]
	return nil
}

// SetSlashings replaces the whole slashings ring.
func (b *BeaconState) SetSlashings(s []uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.slashings = s
	return nil
}

// UpdateSlashingsAtIndex overwrites the ring-buffer entry at i % len.
func (b *BeaconState) UpdateSlashingsAtIndex(i uint64, v uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if len(b.slashings) == 0 {
		return errors.New("slashings not initialized")
	}
	b.slashings[i%uint64(len(b.slashings))] = v
	return nil
}

// SetPreviousEpochAttestations replaces the Phase0 previous-epoch
// attestation list.
func (b *BeaconState) SetPreviousEpochAttestations(a []*eth.PendingAttestation) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.previousEpochAttestations = a
	return nil
}

// SetCurrentEpochAttestations replaces the Phase0 current-epoch attestation
// list.
func (b *BeaconState) SetCurrentEpochAttestations(a []*eth.PendingAttestation) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.currentEpochAttestations = a
	return nil
}

// AppendCurrentEpochAttestation appends one Phase0 attestation record.
func (b *BeaconState) AppendCurrentEpochAttestation(a *eth.PendingAttestation) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.currentEpochAttestations = append(b.currentEpochAttestations, a)
	return nil
}

// AppendPreviousEpochAttestation appends one Phase0 attestation record to
// the previous-epoch list, for a late attestation whose target is the
// previous epoch.
func (b *BeaconState) AppendPreviousEpochAttestation(a *eth.PendingAttestation) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.previousEpochAttestations = append(b.previousEpochAttestations, a)
	return nil
}

// SetPreviousParticipation replaces the Altair+ previous-epoch
// participation-flag vector.
func (b *BeaconState) SetPreviousParticipation(p []byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.previousEpochParticipation = p
	return nil
}

// SetCurrentParticipation replaces the Altair+ current-epoch
// participation-flag vector.
func (b *BeaconState) SetCurrentParticipation(p []byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.currentEpochParticipation = p
	return nil
}

// UpdateParticipationFlag ORs flag into validator i's current-epoch
// participation byte if it improves on the existing record (never lowers a
// validator's recorded participation within the epoch).
func (b *BeaconState) UpdateParticipationFlag(i primitives.ValidatorIndex, flag byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if uint64(i) >= uint64(len(b.currentEpochParticipation)) {
		return errors.Errorf("participation index %d out of range", i)
	}
	b.currentEpochParticipation[i] |= flag
	return nil
}

// UpdatePreviousEpochParticipationFlag is UpdateParticipationFlag's
// counterpart for an attestation whose target is the previous epoch (a
// late but still in-window attestation).
func (b *BeaconState) UpdatePreviousEpochParticipationFlag(i primitives.ValidatorIndex, flag byte) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if uint64(i) >= uint64(len(b.previousEpochParticipation)) {
		return errors.Errorf("participation index %d out of range", i)
	}
	b.previousEpochParticipation[i] |= flag
	return nil
}

// SetInactivityScores replaces the Altair+ inactivity-score list.
func (b *BeaconState) SetInactivityScores(s []uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.inactivityScores = s
	return nil
}

// AppendInactivityScore appends one inactivity score (kept parallel to
// AppendValidator during registry growth).
func (b *BeaconState) AppendInactivityScore(score uint64) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.inactivityScores = append(b.inactivityScores, score)
	return nil
}

// SetCurrentSyncCommittee replaces the Altair+ active sync committee.
func (b *BeaconState) SetCurrentSyncCommittee(c *eth.SyncCommittee) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.currentSyncCommittee = c
	return nil
}

// SetNextSyncCommittee replaces the Altair+ queued sync committee.
func (b *BeaconState) SetNextSyncCommittee(c *eth.SyncCommittee) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.nextSyncCommittee = c
	return nil
}

// SetLatestExecutionPayloadHeader replaces the Bellatrix+ cached payload
// header.
func (b *BeaconState) SetLatestExecutionPayloadHeader(h *eth.ExecutionPayloadHeader) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.latestExecutionPayloadHeader = h
	return nil
}

// SetJustificationBits replaces the 4-bit justification history.
func (b *BeaconState) SetJustificationBits(bits bitfield.Bitvector4) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.justificationBits = bits
	return nil
}

// SetPreviousJustifiedCheckpoint replaces the previous justified checkpoint.
func (b *BeaconState) SetPreviousJustifiedCheckpoint(c *eth.Checkpoint) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.previousJustifiedCheckpoint = c
	return nil
}

// SetCurrentJustifiedCheckpoint replaces the current justified checkpoint.
func (b *BeaconState) SetCurrentJustifiedCheckpoint(c *eth.Checkpoint) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.currentJustifiedCheckpoint = c
	return nil
}

// SetFinalizedCheckpoint replaces the finalized checkpoint.
func (b *BeaconState) SetFinalizedCheckpoint(c *eth.Checkpoint) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	b.finalizedCheckpoint = c
	return nil
}
