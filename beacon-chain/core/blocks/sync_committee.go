package blocks

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/altair"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessSyncAggregate verifies agg's aggregate signature against the
// active sync committee and credits participants (and the including
// proposer) a reward, penalizing committee members who did not
// participate.
func ProcessSyncAggregate(st *state.BeaconState, agg *eth.SyncAggregate) error {
	_, err := processSyncAggregate(st, agg, true)
	return err
}

// ProcessSyncAggregateNoVerifySignature is ProcessSyncAggregate with the
// aggregate signature check deferred: its set is returned for the caller's
// block-wide batch.
func ProcessSyncAggregateNoVerifySignature(st *state.BeaconState, agg *eth.SyncAggregate) (*bls.SignatureBatch, error) {
	return processSyncAggregate(st, agg, false)
}

func processSyncAggregate(st *state.BeaconState, agg *eth.SyncAggregate, verifySignature bool) (*bls.SignatureBatch, error) {
	if agg == nil {
		return nil, errors.New("nil sync aggregate")
	}
	committee := st.CurrentSyncCommittee()
	if committee == nil {
		return nil, errors.New("no current sync committee")
	}
	if uint64(len(committee.Pubkeys)) != agg.SyncCommitteeBits.Len() {
		return nil, errors.New("sync committee bits length does not match committee size")
	}

	participants := make([]bls.PublicKey, 0, len(committee.Pubkeys))
	indices := make([]primitives.ValidatorIndex, len(committee.Pubkeys))
	bits := make([]bool, len(committee.Pubkeys))
	for i, pk := range committee.Pubkeys {
		var key [48]byte
		copy(key[:], pk)
		idx, ok := st.ValidatorIndexByPubkey(key)
		if !ok {
			return nil, errors.New("sync committee references unknown validator")
		}
		indices[i] = idx
		if agg.SyncCommitteeBits.BitAt(uint64(i)) {
			bits[i] = true
			p, err := bls.PublicKeyFromBytes(pk)
			if err != nil {
				return nil, errors.Wrap(err, "could not deserialize sync committee pubkey")
			}
			participants = append(participants, p)
		}
	}

	previousSlot := primitives.Slot(0)
	if st.Slot() > 0 {
		previousSlot = st.Slot() - 1
	}
	blockRoot, err := st.BlockRootAtIndex(uint64(previousSlot))
	if err != nil {
		return nil, err
	}
	domain, err := signing.Domain(st.Fork(), uint64(coretime.ToEpoch(previousSlot)), params.BeaconConfig().DomainSyncCommittee, st.GenesisValidatorsRoot())
	if err != nil {
		return nil, errors.Wrap(err, "could not compute sync committee domain")
	}
	root, err := signing.ComputeSigningRoot(rootHTR(blockRoot), domain)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute signing root")
	}
	set := bls.NewSet()
	if len(participants) > 0 {
		if verifySignature {
			sig, err := bls.SignatureFromBytes(agg.SyncCommitteeSignature)
			if err != nil {
				return nil, errors.Wrap(err, "could not deserialize sync committee signature")
			}
			if !sig.FastAggregateVerify(participants, root) {
				return nil, errors.New("sync committee signature did not verify")
			}
		} else {
			aggregated := participants[0]
			for _, p := range participants[1:] {
				aggregated = aggregated.Aggregate(p)
			}
			set.AddSet(agg.SyncCommitteeSignature, aggregated, root, "sync aggregate")
		}
	}

	cfg := params.BeaconConfig()
	totalActiveBalance, err := helpers.TotalActiveBalance(st, coretime.CurrentEpoch(st))
	if err != nil {
		return nil, err
	}
	totalActiveIncrements := totalActiveBalance / cfg.EffectiveBalanceIncrement
	totalBaseRewards := altair.BaseRewardPerIncrement(totalActiveBalance) * totalActiveIncrements
	maxParticipantRewards := totalBaseRewards * cfg.SyncRewardWeight / cfg.WeightDenominator / uint64(cfg.SlotsPerEpoch)
	participantReward := maxParticipantRewards / cfg.SyncCommitteeSize
	proposerReward := participantReward * cfg.ProposerWeight / (cfg.WeightDenominator - cfg.ProposerWeight)

	proposerIndex, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return nil, errors.Wrap(err, "could not determine proposer index")
	}
	for i, idx := range indices {
		if bits[i] {
			if err := st.IncreaseBalance(idx, participantReward); err != nil {
				return nil, err
			}
			if err := st.IncreaseBalance(proposerIndex, proposerReward); err != nil {
				return nil, err
			}
		} else {
			if err := st.DecreaseBalance(idx, participantReward); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// rootHTR wraps a plain 32-byte root so it satisfies signing.HTR for a
// direct HashTreeRoot signing input.
type rootHTR []byte

func (r rootHTR) HashTreeRoot() ([32]byte, error) {
	var out [32]byte
	copy(out[:], r)
	return out, nil
}
