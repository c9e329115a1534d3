// Package eth defines the plain consensus data types the state transition
// function operates on: BeaconState (per fork), Validator, blocks, and the
// block-body operations. These mirror the shapes generated protobuf/SSZ
// types expose, without depending on a protoc toolchain — each type
// implements HashTreeRootWith by hand, in the same style sszgen-generated
// *.ssz.go files use.
package eth

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	fieldparams "github.com/sentrychain/beacon-stf/config/fieldparams"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

// Fork records the current and previous fork versions and the epoch of the
// most recent fork.
type Fork struct {
	PreviousVersion [4]byte
	CurrentVersion  [4]byte
	Epoch           primitives.Epoch
}

// Copy returns a deep copy of f.
func (f *Fork) Copy() *Fork {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}

// HashTreeRootWith merkleizes the fork record's three fixed-size fields.
func (f *Fork) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutBytes(f.PreviousVersion[:])
	hh.PutBytes(f.CurrentVersion[:])
	hh.PutUint64(uint64(f.Epoch))
	hh.Merkleize(idx)
	return nil
}

// Checkpoint pins an epoch to a block root.
type Checkpoint struct {
	Epoch primitives.Epoch
	Root  []byte
}

// Copy returns a deep copy of c.
func (c *Checkpoint) Copy() *Checkpoint {
	if c == nil {
		return nil
	}
	return &Checkpoint{Epoch: c.Epoch, Root: append([]byte(nil), c.Root...)}
}

// HashTreeRootWith merkleizes the checkpoint.
func (c *Checkpoint) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutUint64(uint64(c.Epoch))
	hh.PutBytes(bytesutil.PadTo(c.Root, fieldparams.RootLength))
	hh.Merkleize(idx)
	return nil
}

// Eth1Data is the deposit-contract observation a proposer votes for.
type Eth1Data struct {
	DepositRoot  []byte
	DepositCount uint64
	BlockHash    []byte
}

// Copy returns a deep copy of e.
func (e *Eth1Data) Copy() *Eth1Data {
	if e == nil {
		return nil
	}
	return &Eth1Data{
		DepositRoot:  append([]byte(nil), e.DepositRoot...),
		DepositCount: e.DepositCount,
		BlockHash:    append([]byte(nil), e.BlockHash...),
	}
}

// HashTreeRootWith merkleizes the eth1 data vote.
func (e *Eth1Data) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutBytes(bytesutil.PadTo(e.DepositRoot, fieldparams.RootLength))
	hh.PutUint64(e.DepositCount)
	hh.PutBytes(bytesutil.PadTo(e.BlockHash, fieldparams.RootLength))
	hh.Merkleize(idx)
	return nil
}

// Validator is an immutable-once-appended registry entry. EffectiveBalance
// is mutated only by the epoch processor's hysteresis update; Slashed and
// the four epoch markers are mutated by registry updates and slashings.
type Validator struct {
	PublicKey                  []byte
	WithdrawalCredentials      []byte
	EffectiveBalance           uint64
	Slashed                    bool
	ActivationEligibilityEpoch primitives.Epoch
	ActivationEpoch            primitives.Epoch
	ExitEpoch                  primitives.Epoch
	WithdrawableEpoch          primitives.Epoch
}

// Copy returns a deep copy of v.
func (v *Validator) Copy() *Validator {
	if v == nil {
		return nil
	}
	cp := *v
	cp.PublicKey = append([]byte(nil), v.PublicKey...)
	cp.WithdrawalCredentials = append([]byte(nil), v.WithdrawalCredentials...)
	return &cp
}

// IsActive reports whether the validator is active at the given epoch.
func (v *Validator) IsActive(epoch primitives.Epoch) bool {
	return v.ActivationEpoch <= epoch && epoch < v.ExitEpoch
}

// IsSlashable reports whether the validator can still be slashed at epoch.
func (v *Validator) IsSlashable(epoch primitives.Epoch) bool {
	return !v.Slashed && v.ActivationEpoch <= epoch && epoch < v.WithdrawableEpoch
}

// FarFutureEpoch is the sentinel "never" epoch value used for unset
// activation/exit/withdrawable markers.
const FarFutureEpoch = primitives.Epoch(^uint64(0))

// HashTreeRootWith merkleizes the validator record.
func (v *Validator) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	if len(v.PublicKey) != fieldparams.BLSPubkeyLength {
		return errors.Errorf("public key has wrong length: %d", len(v.PublicKey))
	}
	hh.PutBytes(v.PublicKey)
	hh.PutBytes(bytesutil.PadTo(v.WithdrawalCredentials, fieldparams.RootLength))
	hh.PutUint64(v.EffectiveBalance)
	hh.PutBool(v.Slashed)
	hh.PutUint64(uint64(v.ActivationEligibilityEpoch))
	hh.PutUint64(uint64(v.ActivationEpoch))
	hh.PutUint64(uint64(v.ExitEpoch))
	hh.PutUint64(uint64(v.WithdrawableEpoch))
	hh.Merkleize(idx)
	return nil
}

// BeaconBlockHeader is the compact, body-less block envelope cached in
// state as `latest_block_header`.
type BeaconBlockHeader struct {
	Slot          primitives.Slot
	ProposerIndex primitives.ValidatorIndex
	ParentRoot    []byte
	StateRoot     []byte
	BodyRoot      []byte
}

// Copy returns a deep copy of h.
func (h *BeaconBlockHeader) Copy() *BeaconBlockHeader {
	if h == nil {
		return nil
	}
	cp := *h
	cp.ParentRoot = append([]byte(nil), h.ParentRoot...)
	cp.StateRoot = append([]byte(nil), h.StateRoot...)
	cp.BodyRoot = append([]byte(nil), h.BodyRoot...)
	return &cp
}

// HashTreeRootWith merkleizes the block header.
func (h *BeaconBlockHeader) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutUint64(uint64(h.Slot))
	hh.PutUint64(uint64(h.ProposerIndex))
	hh.PutBytes(bytesutil.PadTo(h.ParentRoot, fieldparams.RootLength))
	hh.PutBytes(bytesutil.PadTo(h.StateRoot, fieldparams.RootLength))
	hh.PutBytes(bytesutil.PadTo(h.BodyRoot, fieldparams.RootLength))
	hh.Merkleize(idx)
	return nil
}

// HashTreeRoot returns h's SSZ root directly, for call sites (like
// process_slot) that need it without going through the shared pool.
func (h *BeaconBlockHeader) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := h.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// SignedBeaconBlockHeader pairs a header with its proposer signature; used
// by proposer-slashing evidence.
type SignedBeaconBlockHeader struct {
	Header    *BeaconBlockHeader
	Signature []byte
}
