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
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// ProcessAttestations verifies and applies every attestation in atts
// against st, dispatching the actual per-attestation bookkeeping to the
// Phase0 append-only path or the Altair+ participation-flag path depending
// on st's fork.
func ProcessAttestations(st *state.BeaconState, atts []*eth.Attestation) error {
	for i, a := range atts {
		if err := VerifyAttestation(st, a); err != nil {
			return errors.Wrapf(err, "could not verify attestation %d", i)
		}
	}
	return applyAttestations(st, atts)
}

// ProcessAttestationsNoVerifySignature runs every per-attestation check
// except the aggregate signature, applies the attestations, and returns
// their signature sets for the caller to fold into the block-wide batch.
func ProcessAttestationsNoVerifySignature(st *state.BeaconState, atts []*eth.Attestation) (*bls.SignatureBatch, error) {
	set := bls.NewSet()
	for i, a := range atts {
		if err := VerifyAttestationNoVerifySignature(st, a); err != nil {
			return nil, errors.Wrapf(err, "could not verify attestation %d", i)
		}
		attSet, err := AttestationSignatureBatch(st, a)
		if err != nil {
			return nil, errors.Wrapf(err, "could not build signature set for attestation %d", i)
		}
		set.Join(attSet)
	}
	if err := applyAttestations(st, atts); err != nil {
		return nil, err
	}
	return set, nil
}

// applyAttestations records already-verified attestations against st.
func applyAttestations(st *state.BeaconState, atts []*eth.Attestation) error {
	if st.Version() >= version.Altair {
		return altair.ProcessAttestations(st, atts)
	}
	for i, a := range atts {
		if err := processAttestationPhase0(st, a); err != nil {
			return errors.Wrapf(err, "could not process attestation %d", i)
		}
	}
	return nil
}

// VerifyAttestation checks a's data for internal consistency, that its
// inclusion falls within the allowed delay window, and that its aggregate
// signature verifies against the attesting committee's pubkeys.
func VerifyAttestation(st *state.BeaconState, a *eth.Attestation) error {
	if err := VerifyAttestationNoVerifySignature(st, a); err != nil {
		return err
	}
	set, err := AttestationSignatureBatch(st, a)
	if err != nil {
		return err
	}
	ok, err := set.Verify()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("attestation signature did not verify")
	}
	return nil
}

// VerifyAttestationNoVerifySignature runs every check VerifyAttestation
// does except the aggregate signature itself; the caller verifies the set
// from AttestationSignatureBatch eagerly or as part of a batch.
func VerifyAttestationNoVerifySignature(st *state.BeaconState, a *eth.Attestation) error {
	if a == nil || a.Data == nil {
		return errors.New("nil attestation")
	}
	data := a.Data
	cfg := params.BeaconConfig()

	currEpoch := coretime.CurrentEpoch(st)
	prevEpoch := coretime.PrevEpoch(st)
	if data.Target.Epoch != currEpoch && data.Target.Epoch != prevEpoch {
		return errors.Errorf("expected target epoch (%d) to be the previous epoch (%d) or the current epoch (%d)", data.Target.Epoch, prevEpoch, currEpoch)
	}
	if data.Target.Epoch != coretime.ToEpoch(data.Slot) {
		return errors.New("target epoch does not match attestation slot")
	}
	if st.Slot() < data.Slot+cfg.MinAttestationInclusionDelay {
		return errors.Errorf("attestation slot %d + inclusion delay %d > state slot %d", data.Slot, cfg.MinAttestationInclusionDelay, st.Slot())
	}
	if st.Slot() > data.Slot+cfg.SlotsPerEpoch {
		return errors.Errorf("attestation slot %d is too old for state slot %d", data.Slot, st.Slot())
	}

	if data.Target.Epoch == currEpoch {
		justified := st.CurrentJustifiedCheckpoint()
		if data.Source.Epoch != justified.Epoch || !bytesEqual(data.Source.Root, justified.Root) {
			return errors.New("source check point does not match current justified checkpoint")
		}
	} else {
		justified := st.PreviousJustifiedCheckpoint()
		if data.Source.Epoch != justified.Epoch || !bytesEqual(data.Source.Root, justified.Root) {
			return errors.New("source check point does not match previous justified checkpoint")
		}
	}

	committee, err := helpers.BeaconCommittee(st, data.Slot, data.CommitteeIndex)
	if err != nil {
		return errors.Wrap(err, "could not get beacon committee")
	}
	if a.AggregationBits.Len() != uint64(len(committee)) {
		return errors.New("aggregation bits count does not match committee size")
	}

	indices, err := helpers.AttestingIndices(st, data.Slot, data.CommitteeIndex, a.AggregationBits)
	if err != nil {
		return errors.Wrap(err, "could not get attesting indices")
	}
	if len(indices) == 0 {
		return errors.New("attestation has no participating validators")
	}
	return nil
}

// AttestationSignatureBatch builds the single signature set a's aggregate
// signature contributes to the block-wide batch: the attesting indices'
// aggregated pubkey over a.Data's signing root.
func AttestationSignatureBatch(st *state.BeaconState, a *eth.Attestation) (*bls.SignatureBatch, error) {
	data := a.Data
	indices, err := helpers.AttestingIndices(st, data.Slot, data.CommitteeIndex, a.AggregationBits)
	if err != nil {
		return nil, errors.Wrap(err, "could not get attesting indices")
	}
	aggregated, err := aggregatePubkeysAtIndices(st, indices)
	if err != nil {
		return nil, err
	}
	domain, err := signing.Domain(st.Fork(), uint64(data.Target.Epoch), params.BeaconConfig().DomainBeaconAttester, st.GenesisValidatorsRoot())
	if err != nil {
		return nil, errors.Wrap(err, "could not compute attester domain")
	}
	root, err := signing.ComputeSigningRoot(data, domain)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute signing root")
	}
	set := bls.NewSet()
	set.AddSet(a.Signature, aggregated, root, "attestation")
	return set, nil
}

// aggregatePubkeysAtIndices aggregates the registered pubkeys of indices
// into one key, the verifier-side half of a FastAggregateVerify.
func aggregatePubkeysAtIndices(st *state.BeaconState, indices []uint64) (bls.PublicKey, error) {
	if len(indices) == 0 {
		return nil, errors.New("no indices to aggregate")
	}
	var aggregated bls.PublicKey
	for _, idx := range indices {
		v, err := st.ValidatorAtIndex(primitives.ValidatorIndex(idx))
		if err != nil {
			return nil, err
		}
		pk, err := bls.PublicKeyFromBytes(v.PublicKey)
		if err != nil {
			return nil, errors.Wrap(err, "could not deserialize validator public key")
		}
		if aggregated == nil {
			aggregated = pk
		} else {
			aggregated = aggregated.Aggregate(pk)
		}
	}
	return aggregated, nil
}

// processAttestationPhase0 records a as a PendingAttestation against the
// epoch its target falls in, Phase0's bookkeeping for rewards computed at
// the following epoch boundary.
func processAttestationPhase0(st *state.BeaconState, a *eth.Attestation) error {
	data := a.Data
	proposerIndex, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return errors.Wrap(err, "could not determine proposer index")
	}
	pending := &eth.PendingAttestation{
		AggregationBits: a.AggregationBits,
		Data:            data,
		InclusionDelay:  st.Slot() - data.Slot,
		ProposerIndex:   proposerIndex,
	}
	if data.Target.Epoch == coretime.CurrentEpoch(st) {
		return st.AppendCurrentEpochAttestation(pending)
	}
	return st.AppendPreviousEpochAttestation(pending)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
