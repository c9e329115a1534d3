// herumi.go implements the bls.PublicKey/SecretKey/Signature interfaces on
// top of github.com/herumi/bls-eth-go-binary/bls, the BLS12-381 binding.
// Initialization happens once, in init().
package bls

import (
	"github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
)

func init() {
	if err := bls.Init(bls.BLS12_381); err != nil {
		panic(errors.Wrap(err, "could not initialize BLS12-381 curve"))
	}
	if err := bls.SetETHmode(bls.EthModeDraft07); err != nil {
		panic(errors.Wrap(err, "could not set BLS ETH mode"))
	}
}

type publicKey struct{ p *bls.PublicKey }
type secretKey struct{ s *bls.SecretKey }
type signature struct{ s *bls.Sign }

// RandKey generates a new random secret key, for use in tests and genesis
// fixtures only — production signing keys come from a keystore collaborator
// outside this module's scope.
func RandKey() SecretKey {
	var sec bls.SecretKey
	sec.SetByCSPRNG()
	return &secretKey{s: &sec}
}

// SecretKeyFromBytes deserializes a 32-byte secret key.
func SecretKeyFromBytes(b []byte) (SecretKey, error) {
	if isZero(b) {
		return nil, ErrZeroKey
	}
	sec := &bls.SecretKey{}
	if err := sec.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize secret key")
	}
	return &secretKey{s: sec}, nil
}

// PublicKeyFromBytes deserializes a 48-byte compressed public key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if isZero(b) {
		return nil, ErrInfinitePubKey
	}
	pub := &bls.PublicKey{}
	if err := pub.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize public key")
	}
	return &publicKey{p: pub}, nil
}

// SignatureFromBytes deserializes a 96-byte compressed signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	if isZero(b) {
		return nil, ErrInfiniteSignature
	}
	sig := &bls.Sign{}
	if err := sig.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize signature")
	}
	return &signature{s: sig}, nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func (s *secretKey) PublicKey() PublicKey {
	return &publicKey{p: s.s.GetPublicKey()}
}

func (s *secretKey) Sign(msg []byte) Signature {
	return &signature{s: s.s.SignByte(msg)}
}

func (s *secretKey) Marshal() []byte {
	return s.s.Serialize()
}

func (p *publicKey) Marshal() []byte {
	return p.p.Serialize()
}

func (p *publicKey) Copy() PublicKey {
	cp := *p.p
	return &publicKey{p: &cp}
}

func (p *publicKey) Aggregate(p2 PublicKey) PublicKey {
	agg := *p.p
	agg.Add(p2.(*publicKey).p)
	return &publicKey{p: &agg}
}

func (p *publicKey) Eq(p2 PublicKey) bool {
	return p.p.IsEqual(p2.(*publicKey).p)
}

func (s *signature) Verify(pubKey PublicKey, msg []byte) bool {
	return s.s.VerifyByte(pubKey.(*publicKey).p, msg)
}

func (s *signature) AggregateVerify(pubKeys []PublicKey, msgs [][32]byte) bool {
	size := len(pubKeys)
	if size == 0 || size != len(msgs) {
		return false
	}
	pks := make([]bls.PublicKey, size)
	flat := make([]byte, 0, size*32)
	for i, pk := range pubKeys {
		pks[i] = *pk.(*publicKey).p
		flat = append(flat, msgs[i][:]...)
	}
	return s.s.AggregateVerifyNoCheck(pks, flat)
}

func (s *signature) FastAggregateVerify(pubKeys []PublicKey, msg [32]byte) bool {
	if len(pubKeys) == 0 {
		return false
	}
	pks := make([]bls.PublicKey, len(pubKeys))
	for i, pk := range pubKeys {
		pks[i] = *pk.(*publicKey).p
	}
	return s.s.FastAggregateVerify(pks, msg[:])
}

func (s *signature) Marshal() []byte {
	return s.s.Serialize()
}

func (s *signature) Copy() Signature {
	cp := *s.s
	return &signature{s: &cp}
}

// AggregateSignatures combines sigs into a single aggregate signature.
func AggregateSignatures(sigs []Signature) Signature {
	if len(sigs) == 0 {
		return nil
	}
	agg := *sigs[0].(*signature).s
	for _, sig := range sigs[1:] {
		agg.Add(sig.(*signature).s)
	}
	return &signature{s: &agg}
}

// VerifyMultipleSignatures verifies a batch of independent (sig, pubkey, msg)
// triples in one aggregate pairing call. sigs, pubKeys and msgs must be the
// same length, each index being one signature set.
func VerifyMultipleSignatures(sigs [][]byte, msgs [][32]byte, pubKeys []PublicKey) (bool, error) {
	size := len(sigs)
	if size == 0 {
		return true, nil
	}
	if size != len(pubKeys) || size != len(msgs) {
		return false, errors.New("mismatched number of signatures, pubkeys and messages")
	}
	signatures := make([]bls.Sign, size)
	rawKeys := make([]bls.PublicKey, size)
	flat := make([]byte, 0, size*32)
	for i := 0; i < size; i++ {
		if err := signatures[i].Deserialize(sigs[i]); err != nil {
			return false, errors.Wrapf(err, "could not deserialize signature at index %d", i)
		}
		rawKeys[i] = *pubKeys[i].(*publicKey).p
		flat = append(flat, msgs[i][:]...)
	}
	return bls.MultiVerify(signatures, rawKeys, flat), nil
}
