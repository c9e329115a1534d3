// Package transition implements the top-level state transition function:
// fork dispatch and upgrade, slot processing (including skipped slots),
// block processing, and the driver that ties them together the way a
// beacon node's block-processing pipeline and a validator client's
// proposer duty both need.
package transition

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	coreblocks "github.com/sentrychain/beacon-stf/consensus-types/blocks"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/monitoring/tracing"
)

// ExecuteStateTransition runs the full state transition for signed against
// st: advances slots up to the block's own, verifies its proposer
// signature, applies it, and checks the declared state root against the
// result. Each of the three checks is independently skippable via
// WithVerifyProposer, WithVerifySignatures, and WithVerifyStateRoot; all
// default to on.
//
//	def state_transition(state, signed_block, validate_result=True):
//	    process_slots(state, signed_block.message.slot)
//	    if validate_result:
//	        assert verify_block_signature(state, signed_block)
//	    process_block(state, signed_block.message)
//	    if validate_result:
//	        assert signed_block.message.state_root == hash_tree_root(state)
//	    return state
func ExecuteStateTransition(ctx context.Context, st *state.BeaconState, signed coreblocks.SignedBeaconBlock, opts ...Option) (*state.BeaconState, error) {
	if st == nil {
		return nil, ErrNilState
	}
	if signed == nil || signed.IsNil() {
		return nil, ErrNilBlock
	}
	ctx, span := trace.StartSpan(ctx, "core.transition.ExecuteStateTransition")
	defer span.End()
	o := resolveOptions(opts)
	start := time.Now()

	st = st.Copy()
	st.SetCachesTransient()

	b := signed.Block()
	st, err := ProcessSlots(ctx, st, b.Slot(), opts...)
	if err != nil {
		tracing.AnnotateError(span, err)
		return nil, errors.Wrap(err, "could not process slots")
	}

	if o.verifyProposer {
		if err := verifyProposerSignature(st, signed); err != nil {
			tracing.AnnotateError(span, err)
			return nil, errors.Wrap(err, "could not verify block signature")
		}
	}

	if o.verifySignatures {
		st, err = ProcessBlock(ctx, st, b)
	} else {
		_, st, err = ProcessBlockNoVerifySig(ctx, st, signed)
	}
	if err != nil {
		tracing.AnnotateError(span, err)
		return nil, errors.Wrapf(err, "could not process block in slot %d", b.Slot())
	}

	st.SetCachesPersistent()
	if o.verifyStateRoot {
		postStateRoot, err := st.HashTreeRoot()
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(postStateRoot[:], b.StateRoot()) {
			err := errors.Wrapf(ErrInvalidStateRoot, "wanted %#x, computed %#x", b.StateRoot(), postStateRoot)
			tracing.AnnotateError(span, err)
			return nil, err
		}
	}

	o.metrics().ObserveBlockProcessed(time.Since(start))
	return st, nil
}

// ExecuteStateTransitionNoVerifyAnySig is ExecuteStateTransition but
// defers every BLS check (block envelope signature, randao reveal,
// attestations, attester slashings, voluntary exits, sync aggregate): it
// returns their uncombined SignatureBatch instead, for a caller (e.g. a
// batch-verifying sync pipeline) to verify out of band, typically via
// VerifySignatureBatch. Deposit proofs of possession stay internal, since
// a failing one downgrades to skipping that deposit rather than rejecting
// the block. The declared state root is never checked.
func ExecuteStateTransitionNoVerifyAnySig(ctx context.Context, st *state.BeaconState, signed coreblocks.SignedBeaconBlock, opts ...Option) (*bls.SignatureBatch, *state.BeaconState, error) {
	if st == nil {
		return nil, nil, ErrNilState
	}
	if signed == nil || signed.IsNil() {
		return nil, nil, ErrNilBlock
	}
	ctx, span := trace.StartSpan(ctx, "core.transition.ExecuteStateTransitionNoVerifyAnySig")
	defer span.End()

	st = st.Copy()
	st.SetCachesTransient()

	b := signed.Block()
	st, err := ProcessSlots(ctx, st, b.Slot(), opts...)
	if err != nil {
		tracing.AnnotateError(span, err)
		return nil, nil, errors.Wrap(err, "could not process slots")
	}

	set, st, err := ProcessBlockNoVerifySig(ctx, st, signed)
	if err != nil {
		tracing.AnnotateError(span, err)
		return nil, nil, errors.Wrap(err, "could not process block")
	}
	st.SetCachesPersistent()
	return set, st, nil
}

// CalculateStateRoot runs the transition for signed against a copy of st
// (st itself is left untouched) without verifying any signature or the
// declared state root, and returns the resulting state's root: the
// primitive a proposer uses to fill in an unsigned block's state_root
// before signing it.
func CalculateStateRoot(ctx context.Context, st *state.BeaconState, signed coreblocks.SignedBeaconBlock, opts ...Option) ([32]byte, error) {
	if st == nil {
		return [32]byte{}, ErrNilState
	}
	if signed == nil || signed.IsNil() {
		return [32]byte{}, ErrNilBlock
	}
	ctx, span := trace.StartSpan(ctx, "core.transition.CalculateStateRoot")
	defer span.End()
	working := st.Copy()
	working.SetCachesTransient()

	b := signed.Block()
	working, err := ProcessSlots(ctx, working, b.Slot(), opts...)
	if err != nil {
		tracing.AnnotateError(span, err)
		return [32]byte{}, errors.Wrap(err, "could not process slots")
	}
	_, working, err = ProcessBlockNoVerifySig(ctx, working, signed)
	if err != nil {
		tracing.AnnotateError(span, err)
		return [32]byte{}, errors.Wrap(err, "could not process block")
	}
	working.SetCachesPersistent()
	return working.HashTreeRoot()
}

// VerifySignatureBatch runs the single aggregate pairing check over a batch
// returned by ExecuteStateTransitionNoVerifyAnySig. On failure it re-runs
// with bisection so the error names the first offending set.
func VerifySignatureBatch(batch *bls.SignatureBatch) error {
	if batch == nil {
		return nil
	}
	ok, err := batch.Verify()
	if err != nil {
		return errors.Wrap(err, "could not verify signature batch")
	}
	if ok {
		return nil
	}
	if _, verboseErr := batch.VerifyVerbosely(); verboseErr != nil {
		return errors.Wrap(ErrInvalidSignatureBatch, verboseErr.Error())
	}
	return ErrInvalidSignatureBatch
}

// verifyProposerSignature checks signed's envelope signature against the
// proposer's pubkey for the slot signed.Block() claims, without otherwise
// touching st.
func verifyProposerSignature(st *state.BeaconState, signed coreblocks.SignedBeaconBlock) error {
	b := signed.Block()
	proposerIndex, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return errors.Wrap(err, "could not determine proposer index")
	}
	if b.ProposerIndex() != proposerIndex {
		return errors.Errorf("block proposer index %d does not match expected %d", b.ProposerIndex(), proposerIndex)
	}
	proposer, err := st.ValidatorAtIndex(proposerIndex)
	if err != nil {
		return err
	}

	domain, err := signing.Domain(st.Fork(), uint64(coretime.ToEpoch(b.Slot())), params.BeaconConfig().DomainBeaconProposer, st.GenesisValidatorsRoot())
	if err != nil {
		return errors.Wrap(err, "could not compute proposer domain")
	}
	set, err := signing.BlockSignatureBatch(proposer.PublicKey, signed.Signature(), domain, b.HashTreeRoot)
	if err != nil {
		return errors.Wrap(err, "could not build block signature set")
	}
	ok, err := set.Verify()
	if err != nil {
		return errors.Wrap(ErrInvalidBlockSignature, err.Error())
	}
	if !ok {
		return ErrInvalidBlockSignature
	}
	return nil
}
