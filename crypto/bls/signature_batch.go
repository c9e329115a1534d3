package bls

import (
	"github.com/pkg/errors"
)

// SignatureBatch collects independent BLS signature sets for a single
// aggregate pairing check: the block processor's deferred-verification path
// appends one set per operation (the proposer envelope signature, the
// randao reveal, each attestation, each attester slashing's indexed
// attestations, each voluntary exit, the sync aggregate) and the caller
// verifies once at the end of block processing. Deposits are the one
// exception: a failing deposit proof of possession skips that deposit
// rather than rejecting the block, so their checks stay inside deposit
// processing instead of a fail-fast batch.
type SignatureBatch struct {
	Signatures  [][]byte
	PublicKeys  []PublicKey
	Messages    [][32]byte
	Descriptions []string
}

// NewSet returns an empty batch ready for Join calls.
func NewSet() *SignatureBatch {
	return &SignatureBatch{}
}

// Join appends other's sets onto s and returns s, so callers can chain:
// set := NewSet().Join(randaoSet).Join(attestationSet)...
func (s *SignatureBatch) Join(other *SignatureBatch) *SignatureBatch {
	if other == nil {
		return s
	}
	s.Signatures = append(s.Signatures, other.Signatures...)
	s.PublicKeys = append(s.PublicKeys, other.PublicKeys...)
	s.Messages = append(s.Messages, other.Messages...)
	s.Descriptions = append(s.Descriptions, other.Descriptions...)
	return s
}

// AddSet appends a single (sig, pubkey, msg) set to the batch, tagged with a
// human-readable description used by VerifyVerbosely's bisection.
func (s *SignatureBatch) AddSet(sig []byte, pubKey PublicKey, msg [32]byte, description string) {
	s.Signatures = append(s.Signatures, sig)
	s.PublicKeys = append(s.PublicKeys, pubKey)
	s.Messages = append(s.Messages, msg)
	s.Descriptions = append(s.Descriptions, description)
}

// Verify runs one aggregate pairing check across every set in the batch.
func (s *SignatureBatch) Verify() (bool, error) {
	return VerifyMultipleSignatures(s.Signatures, s.Messages, s.PublicKeys)
}

// VerifyVerbosely verifies the batch; on failure it bisects the batch to
// find and report the index (and description) of the first offending set,
// at the cost of up to log2(n) extra pairing checks. Intended for
// diagnostics only — the hot path should call Verify.
func (s *SignatureBatch) VerifyVerbosely() (bool, error) {
	ok, err := s.Verify()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	idx, err := s.findOffendingIndex(0, len(s.Signatures))
	if err != nil {
		return false, err
	}
	desc := "unknown"
	if idx < len(s.Descriptions) {
		desc = s.Descriptions[idx]
	}
	return false, errors.Errorf("signature set %d (%s) failed verification", idx, desc)
}

func (s *SignatureBatch) findOffendingIndex(lo, hi int) (int, error) {
	if hi-lo <= 1 {
		return lo, nil
	}
	mid := lo + (hi-lo)/2
	left := &SignatureBatch{
		Signatures: s.Signatures[lo:mid],
		PublicKeys: s.PublicKeys[lo:mid],
		Messages:   s.Messages[lo:mid],
	}
	ok, err := left.Verify()
	if err != nil {
		return 0, err
	}
	if !ok {
		return s.findOffendingIndex(lo, mid)
	}
	return s.findOffendingIndex(mid, hi)
}
