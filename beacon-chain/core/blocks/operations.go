package blocks

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	coreblocks "github.com/sentrychain/beacon-stf/consensus-types/blocks"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// ProcessOperations verifies body's per-operation list lengths against the
// block-body limits, then applies every operation against st in the
// canonical order: proposer slashings, attester slashings, attestations,
// deposits, voluntary exits, followed (Altair+) by the sync aggregate. The
// Bellatrix execution payload is handled separately by the caller before
// randao processing, since its prev_randao check depends on the mix this
// block's randao reveal has not yet mixed in.
func ProcessOperations(st *state.BeaconState, body coreblocks.BeaconBlockBody) error {
	if err := verifyOperationLimits(body); err != nil {
		return err
	}

	if err := ProcessProposerSlashings(st, body.ProposerSlashings()); err != nil {
		return errors.Wrap(err, "could not process proposer slashings")
	}
	if err := ProcessAttesterSlashings(st, body.AttesterSlashings()); err != nil {
		return errors.Wrap(err, "could not process attester slashings")
	}
	if err := ProcessAttestations(st, body.Attestations()); err != nil {
		return errors.Wrap(err, "could not process attestations")
	}
	if err := ProcessDeposits(st, body.Deposits()); err != nil {
		return errors.Wrap(err, "could not process deposits")
	}
	if err := ProcessVoluntaryExits(st, body.VoluntaryExits()); err != nil {
		return errors.Wrap(err, "could not process voluntary exits")
	}

	if st.Version() >= version.Altair {
		agg, err := body.SyncAggregate()
		if err != nil {
			return errors.Wrap(err, "could not get sync aggregate")
		}
		if err := ProcessSyncAggregate(st, agg); err != nil {
			return errors.Wrap(err, "could not process sync aggregate")
		}
	}

	return nil
}

// ProcessOperationsNoVerifySignatures is ProcessOperations with every
// deferrable BLS check (attestations, attester slashings, voluntary exits,
// sync aggregate) turned into a signature set and returned for the
// caller's block-wide batch. Proposer slashings are still verified eagerly
// (their double-signed headers are the evidence being judged), and
// deposits keep their own internal batch, whose failures downgrade to a
// silent per-deposit skip rather than rejecting the block.
func ProcessOperationsNoVerifySignatures(st *state.BeaconState, body coreblocks.BeaconBlockBody) (*bls.SignatureBatch, error) {
	if err := verifyOperationLimits(body); err != nil {
		return nil, err
	}
	set := bls.NewSet()

	if err := ProcessProposerSlashings(st, body.ProposerSlashings()); err != nil {
		return nil, errors.Wrap(err, "could not process proposer slashings")
	}
	slashingSet, err := ProcessAttesterSlashingsNoVerifySignature(st, body.AttesterSlashings())
	if err != nil {
		return nil, errors.Wrap(err, "could not process attester slashings")
	}
	set.Join(slashingSet)
	attSet, err := ProcessAttestationsNoVerifySignature(st, body.Attestations())
	if err != nil {
		return nil, errors.Wrap(err, "could not process attestations")
	}
	set.Join(attSet)
	if err := ProcessDeposits(st, body.Deposits()); err != nil {
		return nil, errors.Wrap(err, "could not process deposits")
	}
	exitSet, err := ProcessVoluntaryExitsNoVerifySignature(st, body.VoluntaryExits())
	if err != nil {
		return nil, errors.Wrap(err, "could not process voluntary exits")
	}
	set.Join(exitSet)

	if st.Version() >= version.Altair {
		agg, err := body.SyncAggregate()
		if err != nil {
			return nil, errors.Wrap(err, "could not get sync aggregate")
		}
		syncSet, err := ProcessSyncAggregateNoVerifySignature(st, agg)
		if err != nil {
			return nil, errors.Wrap(err, "could not process sync aggregate")
		}
		set.Join(syncSet)
	}

	return set, nil
}

// verifyOperationLimits checks body's per-operation list lengths against
// the block-body limits.
func verifyOperationLimits(body coreblocks.BeaconBlockBody) error {
	cfg := params.BeaconConfig()
	if got := uint64(len(body.ProposerSlashings())); got > cfg.MaxProposerSlashings {
		return NewOperationLimitExceededError("proposer slashings", cfg.MaxProposerSlashings, got)
	}
	if got := uint64(len(body.AttesterSlashings())); got > cfg.MaxAttesterSlashings {
		return NewOperationLimitExceededError("attester slashings", cfg.MaxAttesterSlashings, got)
	}
	if got := uint64(len(body.Attestations())); got > cfg.MaxAttestations {
		return NewOperationLimitExceededError("attestations", cfg.MaxAttestations, got)
	}
	if got := uint64(len(body.Deposits())); got > cfg.MaxDeposits {
		return NewOperationLimitExceededError("deposits", cfg.MaxDeposits, got)
	}
	if got := uint64(len(body.VoluntaryExits())); got > cfg.MaxVoluntaryExits {
		return NewOperationLimitExceededError("voluntary exits", cfg.MaxVoluntaryExits, got)
	}
	return nil
}
