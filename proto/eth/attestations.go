package eth

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/prysmaticlabs/go-bitfield"
	fieldparams "github.com/sentrychain/beacon-stf/config/fieldparams"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

// AttestationData is the payload a committee member attests to: a slot,
// committee index, head block root, and the source/target checkpoints used
// by the FFG justification rule.
type AttestationData struct {
	Slot            primitives.Slot
	CommitteeIndex  primitives.CommitteeIndex
	BeaconBlockRoot []byte
	Source          *Checkpoint
	Target          *Checkpoint
}

// Copy returns a deep copy of d.
func (d *AttestationData) Copy() *AttestationData {
	if d == nil {
		return nil
	}
	return &AttestationData{
		Slot:            d.Slot,
		CommitteeIndex:  d.CommitteeIndex,
		BeaconBlockRoot: append([]byte(nil), d.BeaconBlockRoot...),
		Source:          d.Source.Copy(),
		Target:          d.Target.Copy(),
	}
}

// HashTreeRootWith merkleizes the attestation data.
func (d *AttestationData) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutUint64(uint64(d.Slot))
	hh.PutUint64(uint64(d.CommitteeIndex))
	hh.PutBytes(bytesutil.PadTo(d.BeaconBlockRoot, fieldparams.RootLength))
	if err := d.Source.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := d.Target.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(idx)
	return nil
}

// HashTreeRoot returns d's SSZ root, the object an attestation's signature
// (and an indexed attestation's AggregateVerify) covers.
func (d *AttestationData) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := d.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// PendingAttestation is the Phase0 per-epoch attestation record kept in
// state (previous/current_epoch_attestations). Altair+ replace this with
// flat participation-flag bytes.
type PendingAttestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	InclusionDelay  primitives.Slot
	ProposerIndex   primitives.ValidatorIndex
}

// HashTreeRootWith merkleizes the pending attestation: the bitlist (with its
// implicit length bit), the attestation data, and the two scalar fields.
func (p *PendingAttestation) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()

	if len(p.AggregationBits) == 0 {
		return ssz.ErrBytesLength
	}
	hh.PutBitlist(p.AggregationBits, fieldparams.MaxValidatorsPerCommittee)

	if err := p.Data.HashTreeRootWith(hh); err != nil {
		return err
	}

	hh.PutUint64(uint64(p.InclusionDelay))
	hh.PutUint64(uint64(p.ProposerIndex))

	hh.Merkleize(idx)
	return nil
}

// Attestation is the block-body operation: a committee's aggregated vote
// plus the BLS aggregate signature over its data.
type Attestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	Signature       []byte
}

// IndexedAttestation is the verifier-facing form of an attestation: the
// concrete sorted validator indices that attested, used for
// FastAggregateVerify/AggregateVerify and for attester-slashing detection.
type IndexedAttestation struct {
	AttestingIndices []uint64
	Data             *AttestationData
	Signature        []byte
}

// AttesterSlashing proves two conflicting attestations by the same
// validator(s): either a double vote (same target epoch) or a surround
// vote.
type AttesterSlashing struct {
	Attestation_1 *IndexedAttestation
	Attestation_2 *IndexedAttestation
}
