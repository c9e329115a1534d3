package transition

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/blocks"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	coreblocks "github.com/sentrychain/beacon-stf/consensus-types/blocks"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/monitoring/tracing"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// ProcessBlock applies b against st, verifying every in-block signature
// (randao reveal, operations) eagerly; the proposer envelope signature is
// not checked here (ExecuteStateTransition does that). Order: header, execution payload (Bellatrix+, ahead of randao so its
// prev_randao check sees the pre-block mix), randao, eth1 data, then every
// body operation.
func ProcessBlock(ctx context.Context, st *state.BeaconState, b coreblocks.BeaconBlock) (*state.BeaconState, error) {
	if b == nil {
		return nil, ErrNilBlock
	}
	_, span := trace.StartSpan(ctx, "core.transition.ProcessBlock")
	defer span.End()
	proposerIndex, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return nil, errors.Wrap(err, "could not determine proposer index")
	}
	if err := blocks.ProcessBlockHeader(st, b, uint64(proposerIndex)); err != nil {
		return nil, errors.Wrap(err, "could not process block header")
	}

	proposer, err := st.ValidatorAtIndex(proposerIndex)
	if err != nil {
		return nil, err
	}
	if st.Version() >= version.Bellatrix {
		payload, err := b.Body().ExecutionPayload()
		if err != nil {
			return nil, errors.Wrap(err, "could not get execution payload")
		}
		if err := blocks.ProcessExecutionPayload(st, payload); err != nil {
			return nil, errors.Wrap(err, "could not process execution payload")
		}
	}
	if err := blocks.ProcessRandao(st, b.Body().RandaoReveal(), proposer.PublicKey, true); err != nil {
		return nil, errors.Wrap(err, "could not process randao")
	}
	if err := blocks.ProcessEth1DataVote(st, b.Body().Eth1Data()); err != nil {
		return nil, errors.Wrap(err, "could not process eth1 data")
	}
	if err := blocks.ProcessOperations(st, b.Body()); err != nil {
		tracing.AnnotateError(span, err)
		return nil, errors.Wrap(err, "could not process operations")
	}
	return st, nil
}

// ProcessBlockNoVerifySig is ProcessBlock with every deferrable BLS check
// skipped: the proposer envelope signature, the randao reveal, and the
// per-operation sets (attestations, attester slashings, voluntary exits,
// sync aggregate) are all returned in one SignatureBatch for the caller to
// verify as a single aggregate pairing check.
func ProcessBlockNoVerifySig(ctx context.Context, st *state.BeaconState, signed coreblocks.SignedBeaconBlock) (*bls.SignatureBatch, *state.BeaconState, error) {
	if signed == nil || signed.IsNil() {
		return nil, nil, ErrNilBlock
	}
	_, span := trace.StartSpan(ctx, "core.transition.ProcessBlockNoVerifySig")
	defer span.End()
	b := signed.Block()

	proposerIndex, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not determine proposer index")
	}
	if err := blocks.ProcessBlockHeader(st, b, uint64(proposerIndex)); err != nil {
		return nil, nil, errors.Wrap(err, "could not process block header")
	}
	proposer, err := st.ValidatorAtIndex(proposerIndex)
	if err != nil {
		return nil, nil, err
	}

	domain, err := signing.Domain(st.Fork(), uint64(coretime.ToEpoch(b.Slot())), params.BeaconConfig().DomainBeaconProposer, st.GenesisValidatorsRoot())
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not compute proposer domain")
	}
	blockSet, err := signing.BlockSignatureBatch(proposer.PublicKey, signed.Signature(), domain, b.HashTreeRoot)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not build block signature set")
	}

	randaoEpoch := coretime.CurrentEpoch(st)
	randaoSet, err := signing.RandaoSignatureBatch(proposer.PublicKey, b.Body().RandaoReveal(), st.Fork(), st.GenesisValidatorsRoot(), uint64(randaoEpoch), params.BeaconConfig().DomainRandao)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not build randao signature set")
	}
	blockSet = blockSet.Join(randaoSet)

	if st.Version() >= version.Bellatrix {
		payload, err := b.Body().ExecutionPayload()
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not get execution payload")
		}
		if err := blocks.ProcessExecutionPayload(st, payload); err != nil {
			return nil, nil, errors.Wrap(err, "could not process execution payload")
		}
	}
	if err := blocks.ProcessRandao(st, b.Body().RandaoReveal(), proposer.PublicKey, false); err != nil {
		return nil, nil, errors.Wrap(err, "could not process randao")
	}
	if err := blocks.ProcessEth1DataVote(st, b.Body().Eth1Data()); err != nil {
		return nil, nil, errors.Wrap(err, "could not process eth1 data")
	}
	opSet, err := blocks.ProcessOperationsNoVerifySignatures(st, b.Body())
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not process operations")
	}
	blockSet = blockSet.Join(opSet)

	return blockSet, st, nil
}
