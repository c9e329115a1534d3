// Package bls wraps a BLS12-381 signature scheme behind a small interface so
// the rest of the module never imports the underlying curve library
// directly. The STF only ever needs: deserialize, verify, aggregate,
// aggregate-verify, and fast-aggregate-verify (all pubkeys signed the same
// message) — the shapes attestations, proposer signatures, randao reveals,
// sync committee signatures, and voluntary exits all reduce to.
package bls

// PublicKey is a deserialized BLS12-381 public key.
type PublicKey interface {
	Marshal() []byte
	Copy() PublicKey
	Aggregate(p2 PublicKey) PublicKey
	Eq(p2 PublicKey) bool
}

// SecretKey is a deserialized BLS12-381 secret key.
type SecretKey interface {
	PublicKey() PublicKey
	Sign(msg []byte) Signature
	Marshal() []byte
}

// Signature is a deserialized BLS12-381 signature.
type Signature interface {
	Verify(pubKey PublicKey, msg []byte) bool
	AggregateVerify(pubKeys []PublicKey, msgs [][32]byte) bool
	FastAggregateVerify(pubKeys []PublicKey, msg [32]byte) bool
	Marshal() []byte
	Copy() Signature
}

// Errors returned by this package's deserialization entry points.
type blsError string

func (e blsError) Error() string { return string(e) }

const (
	// ErrInfinitePubKey is returned when a pubkey is the additive identity,
	// which is never a valid validator key.
	ErrInfinitePubKey = blsError("received an infinite public key")
	// ErrInfiniteSignature is returned when a signature is the additive
	// identity, never valid for a real signing operation.
	ErrInfiniteSignature = blsError("received an infinite signature")
	// ErrZeroKey is returned for an all-zero secret key.
	ErrZeroKey = blsError("received a zero secret key")
)
