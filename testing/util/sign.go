package util

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	coreblocks "github.com/sentrychain/beacon-stf/consensus-types/blocks"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// SignBlockPhase0 signs b (whose StateRoot the caller has already filled
// in, typically via transition.CalculateStateRoot) with key, the way a
// validator client signs its proposer duty, using the exact same
// HashTreeRoot the state transition function later checks the signature
// against (consensus-types/blocks' block wrapper).
func SignBlockPhase0(st *state.BeaconState, b *eth.BeaconBlockPhase0, key bls.SecretKey) (*eth.SignedBeaconBlockPhase0, error) {
	wrapped, err := coreblocks.NewSignedBeaconBlock(&eth.SignedBeaconBlockPhase0{Block: b})
	if err != nil {
		return nil, err
	}
	root, err := wrapped.Block().HashTreeRoot()
	if err != nil {
		return nil, err
	}
	epoch := coretime.ToEpoch(b.Slot)
	domain, err := signing.Domain(st.Fork(), uint64(epoch), params.BeaconConfig().DomainBeaconProposer, st.GenesisValidatorsRoot())
	if err != nil {
		return nil, err
	}
	signingRoot, err := signing.ComputeSigningRoot(rootHTR(root), domain)
	if err != nil {
		return nil, err
	}
	return &eth.SignedBeaconBlockPhase0{
		Block:     b,
		Signature: key.Sign(signingRoot[:]).Marshal(),
	}, nil
}

// rootHTR adapts an already-computed root to signing.HTR.
type rootHTR [32]byte

func (r rootHTR) HashTreeRoot() ([32]byte, error) { return r, nil }

// RandaoReveal signs the randao reveal key's proposer owes at epoch, the
// way the validator client fills in a block's randao_reveal field before
// handing it to the beacon node.
func RandaoReveal(st *state.BeaconState, epoch primitives.Epoch, key bls.SecretKey) ([]byte, error) {
	root, err := signing.RandaoSigningRoot(st.Fork(), st.GenesisValidatorsRoot(), uint64(epoch), params.BeaconConfig().DomainRandao)
	if err != nil {
		return nil, err
	}
	return key.Sign(root[:]).Marshal(), nil
}
