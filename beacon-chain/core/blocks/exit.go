package blocks

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ValidatorAlreadyExitedMsg reports a validator that already submitted an
// exit.
var ValidatorAlreadyExitedMsg = "has already submitted an exit, which will take place at epoch"

// ValidatorCannotExitYetMsg reports a validator that hasn't been active long
// enough to exit.
var ValidatorCannotExitYetMsg = "validator has not been active long enough to exit"

// ProcessVoluntaryExits applies every signed exit in exits against st,
// queuing each validator for exit once its conditions and signature check
// out.
func ProcessVoluntaryExits(st *state.BeaconState, exits []*eth.SignedVoluntaryExit) error {
	for i, signed := range exits {
		if signed == nil || signed.Exit == nil {
			return errors.New("nil voluntary exit in block body")
		}
		v, err := st.ValidatorAtIndex(signed.Exit.ValidatorIndex)
		if err != nil {
			return errors.Wrapf(err, "exit %d references unknown validator", i)
		}
		if err := VerifyExitAndSignature(v, st.Slot(), st.Fork(), signed, st.GenesisValidatorsRoot()); err != nil {
			return errors.Wrapf(err, "could not verify exit %d", i)
		}
		if err := helpers.InitiateValidatorExit(st, signed.Exit.ValidatorIndex); err != nil {
			return err
		}
	}
	return nil
}

// ProcessVoluntaryExitsNoVerifySignature is ProcessVoluntaryExits with the
// exits' signature checks deferred: their sets are returned for the
// caller's block-wide batch, while the eligibility conditions still run
// eagerly.
func ProcessVoluntaryExitsNoVerifySignature(st *state.BeaconState, exits []*eth.SignedVoluntaryExit) (*bls.SignatureBatch, error) {
	set := bls.NewSet()
	for i, signed := range exits {
		if signed == nil || signed.Exit == nil {
			return nil, errors.New("nil voluntary exit in block body")
		}
		v, err := st.ValidatorAtIndex(signed.Exit.ValidatorIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "exit %d references unknown validator", i)
		}
		if err := verifyExitConditions(v, st.Slot(), signed.Exit); err != nil {
			return nil, errors.Wrapf(err, "could not verify exit %d", i)
		}
		exitSet, err := ExitSignatureBatch(v, st.Fork(), st.GenesisValidatorsRoot(), signed)
		if err != nil {
			return nil, errors.Wrapf(err, "could not build signature set for exit %d", i)
		}
		set.Join(exitSet)
		if err := helpers.InitiateValidatorExit(st, signed.Exit.ValidatorIndex); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// ExitSignatureBatch builds the signature set signed contributes to the
// block-wide batch: validator's pubkey over the exit's signing root.
func ExitSignatureBatch(validator *eth.Validator, fork *eth.Fork, genesisValidatorsRoot []byte, signed *eth.SignedVoluntaryExit) (*bls.SignatureBatch, error) {
	pub, err := bls.PublicKeyFromBytes(validator.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "could not deserialize validator public key")
	}
	domain, err := signing.Domain(fork, uint64(signed.Exit.Epoch), params.BeaconConfig().DomainVoluntaryExit, genesisValidatorsRoot)
	if err != nil {
		return nil, err
	}
	root, err := signing.ComputeSigningRoot(signed.Exit, domain)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute signing root")
	}
	set := bls.NewSet()
	set.AddSet(signed.Signature, pub, root, "voluntary exit")
	return set, nil
}

// VerifyExitAndSignature checks validator's exit eligibility and the exit's
// BLS signature.
func VerifyExitAndSignature(validator *eth.Validator, slot primitives.Slot, fork *eth.Fork, signed *eth.SignedVoluntaryExit, genesisValidatorsRoot []byte) error {
	if signed == nil || signed.Exit == nil {
		return errors.New("nil exit")
	}
	if err := verifyExitConditions(validator, slot, signed.Exit); err != nil {
		return err
	}
	domain, err := signing.Domain(fork, uint64(signed.Exit.Epoch), params.BeaconConfig().DomainVoluntaryExit, genesisValidatorsRoot)
	if err != nil {
		return err
	}
	if err := signing.VerifySigningRoot(signed.Exit, validator.PublicKey, signed.Signature, domain); err != nil {
		return errors.Wrap(err, "exit signature did not verify")
	}
	return nil
}

// verifyExitConditions checks everything about a voluntary exit except its
// signature: the validator must be active, not already exiting, past the
// exit's stated epoch, and active long enough to satisfy the shard
// committee period.
func verifyExitConditions(validator *eth.Validator, slot primitives.Slot, exit *eth.VoluntaryExit) error {
	currentEpoch := coretime.ToEpoch(slot)
	if !validator.IsActive(currentEpoch) {
		return errors.New("non-active validator cannot exit")
	}
	if validator.ExitEpoch != eth.FarFutureEpoch {
		return errors.Errorf("validator %s: %v", ValidatorAlreadyExitedMsg, validator.ExitEpoch)
	}
	if currentEpoch < exit.Epoch {
		return errors.Errorf("expected current epoch >= exit epoch, received %d < %d", currentEpoch, exit.Epoch)
	}
	if currentEpoch < validator.ActivationEpoch+params.BeaconConfig().ShardCommitteePeriod {
		return errors.Errorf("%s: %d epochs vs required %d epochs",
			ValidatorCannotExitYetMsg, currentEpoch, validator.ActivationEpoch+params.BeaconConfig().ShardCommitteePeriod)
	}
	return nil
}
