package blocks

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/crypto/hash"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

// epochObject hash-tree-roots to its own little-endian bytes, matching a
// basic SSZ uint64: the object a randao reveal's signature actually covers.
type epochObject uint64

func (e epochObject) HashTreeRoot() ([32]byte, error) {
	return bytesutil.ToBytes32(bytesutil.Bytes8(uint64(e))), nil
}

// ProcessRandao verifies the proposer's randao reveal for the current epoch
// (unless verifySignature is false, meaning the caller already folded the
// reveal into a pending signature batch) and mixes it into st's randao-mix
// ring.
func ProcessRandao(st *state.BeaconState, randaoReveal []byte, proposerPublicKey []byte, verifySignature bool) error {
	epoch := coretime.CurrentEpoch(st)
	if verifySignature {
		domain, err := signing.Domain(st.Fork(), uint64(epoch), params.BeaconConfig().DomainRandao, st.GenesisValidatorsRoot())
		if err != nil {
			return errors.Wrap(err, "could not compute randao domain")
		}
		if err := signing.VerifySigningRoot(epochObject(epoch), proposerPublicKey, randaoReveal, domain); err != nil {
			return errors.Wrap(err, "randao reveal did not verify")
		}
	}

	mix, err := helpers.RandaoMix(st, epoch)
	if err != nil {
		return errors.Wrap(err, "could not get current randao mix")
	}
	revealHash := hash.Hash(randaoReveal)
	mixed := xorBytes(mix, revealHash[:])
	return st.UpdateRandaoMixAtIndex(uint64(epoch), bytesutil.ToBytes32(mixed))
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}
