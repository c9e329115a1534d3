package blocks

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessAttesterSlashings verifies and applies every attester slashing in
// slashings against st, in order. Each slashing must actually slash at least
// one still-slashable validator.
func ProcessAttesterSlashings(st *state.BeaconState, slashings []*eth.AttesterSlashing) error {
	for i, as := range slashings {
		if err := VerifyAttesterSlashing(st, as); err != nil {
			return errors.Wrapf(err, "could not verify attester slashing %d", i)
		}
		if err := applyAttesterSlashing(st, as, i); err != nil {
			return err
		}
	}
	return nil
}

// ProcessAttesterSlashingsNoVerifySignature is ProcessAttesterSlashings
// with both indexed attestations' signature checks deferred: their sets are
// returned for the caller's block-wide batch, while every structural check
// (slashable data pair, sorted indices) still runs eagerly.
func ProcessAttesterSlashingsNoVerifySignature(st *state.BeaconState, slashings []*eth.AttesterSlashing) (*bls.SignatureBatch, error) {
	set := bls.NewSet()
	for i, as := range slashings {
		if as == nil || as.Attestation_1 == nil || as.Attestation_2 == nil {
			return nil, errors.New("nil attester slashing")
		}
		if !IsSlashableAttestationData(as.Attestation_1.Data, as.Attestation_2.Data) {
			return nil, errors.Errorf("attester slashing %d: attestation data pair is not slashable", i)
		}
		for _, att := range []*eth.IndexedAttestation{as.Attestation_1, as.Attestation_2} {
			if err := validateIndexedAttestation(att); err != nil {
				return nil, errors.Wrapf(err, "attester slashing %d", i)
			}
			attSet, err := IndexedAttestationSignatureBatch(st, att)
			if err != nil {
				return nil, errors.Wrapf(err, "could not build signature set for attester slashing %d", i)
			}
			set.Join(attSet)
		}
		if err := applyAttesterSlashing(st, as, i); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// applyAttesterSlashing slashes every still-slashable validator both of
// as's attestations name, failing if none remain.
func applyAttesterSlashing(st *state.BeaconState, as *eth.AttesterSlashing, i int) error {
	slashableIndices := IntersectingAttestingIndices(as)
	currentEpoch := coretime.CurrentEpoch(st)
	slashedAny := false
	for _, idx := range slashableIndices {
		v, err := st.ValidatorAtIndex(primitives.ValidatorIndex(idx))
		if err != nil {
			return err
		}
		if !v.IsSlashable(currentEpoch) {
			continue
		}
		if err := SlashValidator(st, primitives.ValidatorIndex(idx), nil); err != nil {
			return errors.Wrapf(err, "could not slash validator %d", idx)
		}
		slashedAny = true
	}
	if !slashedAny {
		return errors.Errorf("attester slashing %d did not slash any validator", i)
	}
	return nil
}

// IntersectingAttestingIndices returns the sorted, deduplicated set of
// indices attesting_indices that both of as's indexed attestations claim,
// the only validators a valid attester slashing can actually slash.
func IntersectingAttestingIndices(as *eth.AttesterSlashing) []uint64 {
	set1 := make(map[uint64]bool, len(as.Attestation_1.AttestingIndices))
	for _, idx := range as.Attestation_1.AttestingIndices {
		set1[idx] = true
	}
	var out []uint64
	seen := make(map[uint64]bool)
	for _, idx := range as.Attestation_2.AttestingIndices {
		if set1[idx] && !seen[idx] {
			out = append(out, idx)
			seen[idx] = true
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// VerifyAttesterSlashing checks that as proves a slashable pair of
// attestations (double vote or surround vote) and that both indexed
// attestations are internally valid and signed.
func VerifyAttesterSlashing(st *state.BeaconState, as *eth.AttesterSlashing) error {
	if as == nil || as.Attestation_1 == nil || as.Attestation_2 == nil {
		return errors.New("nil attester slashing")
	}
	if !IsSlashableAttestationData(as.Attestation_1.Data, as.Attestation_2.Data) {
		return errors.New("attestation data pair is not slashable")
	}
	if err := IsValidIndexedAttestation(st, as.Attestation_1); err != nil {
		return errors.Wrap(err, "attestation 1 is not a valid indexed attestation")
	}
	if err := IsValidIndexedAttestation(st, as.Attestation_2); err != nil {
		return errors.Wrap(err, "attestation 2 is not a valid indexed attestation")
	}
	return nil
}

// IsSlashableAttestationData reports whether data1 and data2 constitute a
// double vote (same target epoch, different data) or a surround vote (one's
// source/target range strictly contains the other's).
func IsSlashableAttestationData(data1, data2 *eth.AttestationData) bool {
	if data1 == nil || data2 == nil {
		return false
	}
	root1, err1 := data1.HashTreeRoot()
	root2, err2 := data2.HashTreeRoot()
	if err1 != nil || err2 != nil {
		return false
	}
	doubleVote := root1 != root2 && data1.Target.Epoch == data2.Target.Epoch
	surroundVote := data1.Source.Epoch < data2.Source.Epoch && data2.Target.Epoch < data1.Target.Epoch
	return doubleVote || surroundVote
}

// IsValidIndexedAttestation checks that att's attesting indices are sorted,
// deduplicated, non-empty, and that the indices' aggregate pubkey's
// signature verifies against att's data root.
func IsValidIndexedAttestation(st *state.BeaconState, att *eth.IndexedAttestation) error {
	if err := validateIndexedAttestation(att); err != nil {
		return err
	}
	set, err := IndexedAttestationSignatureBatch(st, att)
	if err != nil {
		return err
	}
	ok, err := set.Verify()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("signature did not verify")
	}
	return nil
}

// validateIndexedAttestation runs the structural half of
// IsValidIndexedAttestation: non-empty, sorted, deduplicated indices.
func validateIndexedAttestation(att *eth.IndexedAttestation) error {
	if att == nil || len(att.AttestingIndices) == 0 {
		return errors.New("empty attesting indices")
	}
	for i := 1; i < len(att.AttestingIndices); i++ {
		if att.AttestingIndices[i] <= att.AttestingIndices[i-1] {
			return errors.New("attesting indices are not sorted and unique")
		}
	}
	return nil
}

// IndexedAttestationSignatureBatch builds the signature set att contributes
// to the block-wide batch: the named indices' aggregated pubkey over
// att.Data's signing root.
func IndexedAttestationSignatureBatch(st *state.BeaconState, att *eth.IndexedAttestation) (*bls.SignatureBatch, error) {
	aggregated, err := aggregatePubkeysAtIndices(st, att.AttestingIndices)
	if err != nil {
		return nil, err
	}
	domain, err := signing.Domain(st.Fork(), uint64(att.Data.Target.Epoch), params.BeaconConfig().DomainBeaconAttester, st.GenesisValidatorsRoot())
	if err != nil {
		return nil, errors.Wrap(err, "could not compute attester domain")
	}
	root, err := signing.ComputeSigningRoot(att.Data, domain)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute signing root")
	}
	set := bls.NewSet()
	set.AddSet(att.Signature, aggregated, root, "attester slashing")
	return set, nil
}
