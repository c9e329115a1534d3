// Package signing computes signing domains and signing roots, and wraps
// raw (pubkey, signature, message) triples into bls.SignatureBatch sets the
// block processor collects and the state transition driver verifies once.
package signing

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"

	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// forkData is the SSZ container domain derivation hashes:
// hash_tree_root(ForkData(current_version, genesis_validators_root))[:28]
// becomes the low 28 bytes of the domain.
type forkData struct {
	CurrentVersion        [4]byte
	GenesisValidatorsRoot []byte
}

func (f *forkData) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutBytes(f.CurrentVersion[:])
	hh.PutBytes(bytesutil.PadTo(f.GenesisValidatorsRoot, 32))
	hh.Merkleize(idx)
	return nil
}

// signingData is the SSZ container compute_signing_root hashes:
// hash_tree_root(SigningData(object_root, domain)).
type signingData struct {
	ObjectRoot [32]byte
	Domain     []byte
}

func (s *signingData) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutBytes(s.ObjectRoot[:])
	hh.PutBytes(bytesutil.PadTo(s.Domain, 32))
	hh.Merkleize(idx)
	return nil
}

func computeForkDataRoot(version [4]byte, genesisValidatorsRoot []byte) ([32]byte, error) {
	fd := &forkData{CurrentVersion: version, GenesisValidatorsRoot: genesisValidatorsRoot}
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := fd.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// ComputeForkDigest returns the first 4 bytes of the fork-data root, used to
// tag gossip topics and RPC status messages by fork.
func ComputeForkDigest(version []byte, genesisValidatorsRoot []byte) ([4]byte, error) {
	var v [4]byte
	copy(v[:], version)
	root, err := computeForkDataRoot(v, genesisValidatorsRoot)
	if err != nil {
		return [4]byte{}, err
	}
	var digest [4]byte
	copy(digest[:], root[:4])
	return digest, nil
}

// ComputeDomain mixes a domain type with a fork version and genesis
// validators root into the 32-byte signing domain: the first 4 bytes are
// the domain type, the remaining 28 come from the fork-data root.
func ComputeDomain(domainType [4]byte, forkVersion, genesisValidatorsRoot []byte) ([]byte, error) {
	var version [4]byte
	copy(version[:], forkVersion)
	root, err := computeForkDataRoot(version, genesisValidatorsRoot)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute fork data root")
	}
	domain := make([]byte, 32)
	copy(domain[:4], domainType[:])
	copy(domain[4:], root[:28])
	return domain, nil
}

// Domain returns the signing domain for domainType at epoch, selecting
// fork.PreviousVersion or fork.CurrentVersion depending on whether epoch
// precedes the fork's activation.
func Domain(fork *eth.Fork, epoch uint64, domainType [4]byte, genesisValidatorsRoot []byte) ([]byte, error) {
	if fork == nil {
		return nil, errors.New("nil fork")
	}
	var forkVersion []byte
	if epoch < uint64(fork.Epoch) {
		forkVersion = fork.PreviousVersion[:]
	} else {
		forkVersion = fork.CurrentVersion[:]
	}
	return ComputeDomain(domainType, forkVersion, genesisValidatorsRoot)
}

// HTR is any SSZ container this package can compute a signing root for.
type HTR interface {
	HashTreeRoot() ([32]byte, error)
}

// ComputeSigningRoot mixes domain into object's SSZ root, producing the
// 32-byte message a BLS signature over object actually covers.
func ComputeSigningRoot(object HTR, domain []byte) ([32]byte, error) {
	objRoot, err := object.HashTreeRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute object root")
	}
	sd := &signingData{ObjectRoot: objRoot, Domain: domain}
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := sd.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}

// ComputeDomainAndSign derives the signing domain for domainType at epoch
// using fork and genesisValidatorsRoot, computes object's signing
// root, and signs it with key.
func ComputeDomainAndSign(fork *eth.Fork, genesisValidatorsRoot []byte, epoch uint64, object HTR, domainType [4]byte, key bls.SecretKey) ([]byte, error) {
	domain, err := Domain(fork, epoch, domainType, genesisValidatorsRoot)
	if err != nil {
		return nil, err
	}
	root, err := ComputeSigningRoot(object, domain)
	if err != nil {
		return nil, err
	}
	return key.Sign(root[:]).Marshal(), nil
}

// VerifySigningRoot verifies a single (pubkey, signature) pair against
// object's signing root under domain, without batching. Used on paths that
// can't tolerate deferring verification (randao reveal, during fuzzing).
func VerifySigningRoot(object HTR, pubKey, signature, domain []byte) error {
	publicKey, err := bls.PublicKeyFromBytes(pubKey)
	if err != nil {
		return errors.Wrap(err, "could not convert bytes to public key")
	}
	sig, err := bls.SignatureFromBytes(signature)
	if err != nil {
		return errors.Wrap(err, "could not convert bytes to signature")
	}
	root, err := ComputeSigningRoot(object, domain)
	if err != nil {
		return errors.Wrap(err, "could not compute signing root")
	}
	if !sig.Verify(publicKey, root[:]) {
		return errors.New("signature did not verify")
	}
	return nil
}

// BlockSignatureBatch builds a single-set SignatureBatch for (pubkey,
// signature) over rootFn()'s signing root under domain, for joining into
// the block-wide batch instead of verifying eagerly.
func BlockSignatureBatch(pubKey, signature, domain []byte, rootFn func() ([32]byte, error)) (*bls.SignatureBatch, error) {
	publicKey, err := bls.PublicKeyFromBytes(pubKey)
	if err != nil {
		return nil, errors.Wrap(err, "could not convert bytes to public key")
	}
	objRoot, err := rootFn()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute object root")
	}
	sd := &signingData{ObjectRoot: objRoot, Domain: domain}
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := sd.HashTreeRootWith(hh); err != nil {
		return nil, err
	}
	root, err := hh.HashRoot()
	if err != nil {
		return nil, err
	}
	batch := bls.NewSet()
	batch.AddSet(signature, publicKey, root, "block_signature")
	return batch, nil
}

// RandaoSignatureBatch builds a single-set SignatureBatch for a randao
// reveal at epoch, for joining into the block-wide batch instead of
// verifying it eagerly (the ProcessRandao(..., verifySignature=false) path).
func RandaoSignatureBatch(pubKey, signature []byte, fork *eth.Fork, genesisValidatorsRoot []byte, epoch uint64, domainType [4]byte) (*bls.SignatureBatch, error) {
	publicKey, err := bls.PublicKeyFromBytes(pubKey)
	if err != nil {
		return nil, errors.Wrap(err, "could not convert bytes to public key")
	}
	root, err := RandaoSigningRoot(fork, genesisValidatorsRoot, epoch, domainType)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute randao signing root")
	}
	batch := bls.NewSet()
	batch.AddSet(signature, publicKey, root, "randao_reveal")
	return batch, nil
}

// RandaoSigningRoot returns the signing root for a randao reveal at epoch:
// the reveal signs the plain epoch number (as a basic SSZ uint64, which
// hash-tree-roots to its own little-endian bytes zero-padded to 32) rather
// than a whole container.
func RandaoSigningRoot(fork *eth.Fork, genesisValidatorsRoot []byte, epoch uint64, domainType [4]byte) ([32]byte, error) {
	domain, err := Domain(fork, epoch, domainType, genesisValidatorsRoot)
	if err != nil {
		return [32]byte{}, err
	}
	sd := &signingData{ObjectRoot: bytesutil.ToBytes32(bytesutil.Bytes8(epoch)), Domain: domain}
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)
	if err := sd.HashTreeRootWith(hh); err != nil {
		return [32]byte{}, err
	}
	return hh.HashRoot()
}
