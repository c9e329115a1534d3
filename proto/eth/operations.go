package eth

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	fieldparams "github.com/sentrychain/beacon-stf/config/fieldparams"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

// ProposerSlashing proves a proposer double-signed two different block
// headers for the same slot.
type ProposerSlashing struct {
	Header_1 *SignedBeaconBlockHeader
	Header_2 *SignedBeaconBlockHeader
}

// DepositData is the deposit-contract-log payload: the depositor's pubkey,
// withdrawal credentials, amount, and a signature proving key possession.
type DepositData struct {
	PublicKey             []byte
	WithdrawalCredentials []byte
	Amount                uint64
	Signature             []byte
}

// HashTreeRootWith merkleizes the deposit data, signature included — this is
// the leaf the deposit-contract Merkle tree (and a deposit's inclusion
// proof) is built over.
func (d *DepositData) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	if len(d.PublicKey) != fieldparams.BLSPubkeyLength {
		return errors.Errorf("deposit data public key has wrong length: %d", len(d.PublicKey))
	}
	hh.PutBytes(d.PublicKey)
	hh.PutBytes(bytesutil.PadTo(d.WithdrawalCredentials, fieldparams.RootLength))
	hh.PutUint64(d.Amount)
	if len(d.Signature) != fieldparams.BLSSignatureLength {
		return errors.Errorf("deposit data signature has wrong length: %d", len(d.Signature))
	}
	hh.PutBytes(d.Signature)
	hh.Merkleize(idx)
	return nil
}

// HashTreeRoot returns d's SSZ root, the leaf verified against
// eth1_data.deposit_root via the deposit's Merkle proof.
func (d *DepositData) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := d.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// DepositMessage is DepositData minus its signature: the object the deposit
// signature itself is computed over, since a signature can't cover its own
// bytes.
type DepositMessage struct {
	PublicKey             []byte
	WithdrawalCredentials []byte
	Amount                uint64
}

// HashTreeRootWith merkleizes the deposit message.
func (d *DepositMessage) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	if len(d.PublicKey) != fieldparams.BLSPubkeyLength {
		return errors.Errorf("deposit message public key has wrong length: %d", len(d.PublicKey))
	}
	hh.PutBytes(d.PublicKey)
	hh.PutBytes(bytesutil.PadTo(d.WithdrawalCredentials, fieldparams.RootLength))
	hh.PutUint64(d.Amount)
	hh.Merkleize(idx)
	return nil
}

// HashTreeRoot returns d's SSZ root.
func (d *DepositMessage) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := d.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// Deposit is a block-body operation: deposit data plus its Merkle proof
// against the eth1 deposit-contract root.
type Deposit struct {
	Proof [][]byte
	Data  *DepositData
}

// VoluntaryExit is a validator's signed request to leave the active set at
// or after Epoch.
type VoluntaryExit struct {
	Epoch          primitives.Epoch
	ValidatorIndex primitives.ValidatorIndex
}

// HashTreeRootWith merkleizes the voluntary exit.
func (e *VoluntaryExit) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutUint64(uint64(e.Epoch))
	hh.PutUint64(uint64(e.ValidatorIndex))
	hh.Merkleize(idx)
	return nil
}

// HashTreeRoot returns e's SSZ root, the object a voluntary exit's signature
// covers.
func (e *VoluntaryExit) HashTreeRoot() ([32]byte, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := e.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// SignedVoluntaryExit is the block-body operation form.
type SignedVoluntaryExit struct {
	Exit      *VoluntaryExit
	Signature []byte
}
