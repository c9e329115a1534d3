package stateutils

import (
	fieldparams "github.com/sentrychain/beacon-stf/config/fieldparams"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// PubkeyBytes is a fixed-size array so it can key a map without hashing a
// slice header (validator pubkeys are always BLSPubkeyLength bytes).
type PubkeyBytes [fieldparams.BLSPubkeyLength]byte

// BuildPubkeyIndexMap rebuilds the pubkey->index bijection from scratch.
// Called once at CBS construction; afterwards the CBS extends the map
// incrementally as validators are appended (see beacon-chain/state's
// AppendValidator), since rebuilding is O(n) but a single append is O(1).
func BuildPubkeyIndexMap(validators []*eth.Validator) map[PubkeyBytes]primitives.ValidatorIndex {
	m := make(map[PubkeyBytes]primitives.ValidatorIndex, len(validators))
	for i, v := range validators {
		var key PubkeyBytes
		copy(key[:], v.PublicKey)
		m[key] = primitives.ValidatorIndex(i)
	}
	return m
}

// CopyPubkeyIndexMap returns a shallow copy (the keys/values are value
// types, so a shallow copy is already a deep copy) used when a clone must
// detach from its parent's shared map before mutating the validator set.
func CopyPubkeyIndexMap(in map[PubkeyBytes]primitives.ValidatorIndex) map[PubkeyBytes]primitives.ValidatorIndex {
	out := make(map[PubkeyBytes]primitives.ValidatorIndex, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
