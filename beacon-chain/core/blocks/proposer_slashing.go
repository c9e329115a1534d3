package blocks

import (
	"bytes"

	"github.com/pkg/errors"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessProposerSlashings verifies and applies every proposer slashing in
// slashings against st, in order.
func ProcessProposerSlashings(st *state.BeaconState, slashings []*eth.ProposerSlashing) error {
	for i, ps := range slashings {
		if err := VerifyProposerSlashing(st, ps); err != nil {
			return errors.Wrapf(err, "could not verify proposer slashing %d", i)
		}
		if err := SlashValidator(st, ps.Header_1.Header.ProposerIndex, nil); err != nil {
			return errors.Wrapf(err, "could not slash proposer for slashing %d", i)
		}
	}
	return nil
}

// VerifyProposerSlashing checks that ps proves a double-signed proposer:
// both headers share a slot and proposer index but disagree, the proposer
// is slashable, and both signatures verify.
func VerifyProposerSlashing(st *state.BeaconState, ps *eth.ProposerSlashing) error {
	if ps == nil || ps.Header_1 == nil || ps.Header_2 == nil || ps.Header_1.Header == nil || ps.Header_2.Header == nil {
		return errors.New("nil proposer slashing")
	}
	h1, h2 := ps.Header_1.Header, ps.Header_2.Header
	if h1.Slot != h2.Slot {
		return errors.New("headers do not share a slot")
	}
	if h1.ProposerIndex != h2.ProposerIndex {
		return errors.New("headers do not share a proposer index")
	}
	root1, err := h1.HashTreeRoot()
	if err != nil {
		return err
	}
	root2, err := h2.HashTreeRoot()
	if err != nil {
		return err
	}
	if bytes.Equal(root1[:], root2[:]) {
		return errors.New("headers are identical")
	}

	proposer, err := st.ValidatorAtIndex(h1.ProposerIndex)
	if err != nil {
		return errors.Wrap(err, "could not fetch proposer")
	}
	currentEpoch := coretime.CurrentEpoch(st)
	if !proposer.IsSlashable(currentEpoch) {
		return errors.New("proposer is not slashable")
	}

	domain, err := signing.Domain(st.Fork(), uint64(coretime.ToEpoch(h1.Slot)), params.BeaconConfig().DomainBeaconProposer, st.GenesisValidatorsRoot())
	if err != nil {
		return errors.Wrap(err, "could not compute domain for header 1")
	}
	if err := signing.VerifySigningRoot(h1, proposer.PublicKey, ps.Header_1.Signature, domain); err != nil {
		return errors.Wrap(err, "header 1 signature did not verify")
	}
	domain2, err := signing.Domain(st.Fork(), uint64(coretime.ToEpoch(h2.Slot)), params.BeaconConfig().DomainBeaconProposer, st.GenesisValidatorsRoot())
	if err != nil {
		return errors.Wrap(err, "could not compute domain for header 2")
	}
	if err := signing.VerifySigningRoot(h2, proposer.PublicKey, ps.Header_2.Signature, domain2); err != nil {
		return errors.Wrap(err, "header 2 signature did not verify")
	}
	return nil
}
