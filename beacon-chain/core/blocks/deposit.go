package blocks

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
	"github.com/sentrychain/beacon-stf/encoding/ssz"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// ProcessDeposits applies every deposit in body, in order, against st.
// Deposits are fork-agnostic: the same domain (no fork version mixed in)
// is valid across Phase0/Altair/Bellatrix.
func ProcessDeposits(st *state.BeaconState, deposits []*eth.Deposit) error {
	domain, err := signing.ComputeDomain(params.BeaconConfig().DomainDeposit, nil, nil)
	if err != nil {
		return errors.Wrap(err, "could not compute deposit domain")
	}
	// Try to verify every new-validator deposit signature as one aggregate
	// pairing check first; only fall back to per-deposit verification (which
	// tolerates a deposit whose signature the spec says to silently skip)
	// when the batch fails.
	batchOK := verifyDepositBatch(deposits, domain) == nil
	for _, d := range deposits {
		if d == nil || d.Data == nil {
			return errors.New("nil deposit in block body")
		}
		if err := ProcessDeposit(st, d, !batchOK, domain); err != nil {
			return errors.Wrapf(err, "could not process deposit from %#x", bytesutil.Trunc32(d.Data.PublicKey))
		}
	}
	return nil
}

// ProcessDeposit verifies deposit's Merkle inclusion proof, then either
// credits an existing validator's balance or (after checking the deposit
// signature, unless the caller already verified it as part of a batch)
// appends a new validator.
func ProcessDeposit(st *state.BeaconState, d *eth.Deposit, verifySignature bool, domain []byte) error {
	if err := verifyDeposit(st, d); err != nil {
		return err
	}
	if err := st.SetEth1DepositIndex(st.Eth1DepositIndex() + 1); err != nil {
		return err
	}

	pubKey := d.Data.PublicKey
	amount := d.Data.Amount
	index, ok := st.ValidatorIndexByPubkey(bytesutil.ToBytes48(pubKey))
	if ok {
		return st.IncreaseBalance(index, amount)
	}

	if verifySignature {
		if err := verifyDepositSignature(d.Data, domain); err != nil {
			// The spec silently drops a deposit for a new pubkey whose proof
			// of possession doesn't verify, rather than rejecting the block.
			return nil
		}
	}

	effectiveBalance := amount - amount%params.BeaconConfig().EffectiveBalanceIncrement
	if effectiveBalance > params.BeaconConfig().MaxEffectiveBalance {
		effectiveBalance = params.BeaconConfig().MaxEffectiveBalance
	}
	v := &eth.Validator{
		PublicKey:                  pubKey,
		WithdrawalCredentials:      d.Data.WithdrawalCredentials,
		ActivationEligibilityEpoch: eth.FarFutureEpoch,
		ActivationEpoch:            eth.FarFutureEpoch,
		ExitEpoch:                  eth.FarFutureEpoch,
		WithdrawableEpoch:          eth.FarFutureEpoch,
		EffectiveBalance:           effectiveBalance,
	}
	if err := st.AppendValidator(v, amount); err != nil {
		return err
	}
	if st.Version() >= version.Altair {
		return st.AppendInactivityScore(0)
	}
	return nil
}

func verifyDeposit(st *state.BeaconState, d *eth.Deposit) error {
	eth1Data := st.Eth1Data()
	if eth1Data == nil {
		return errors.New("state has nil eth1data")
	}
	leaf, err := d.Data.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not hash deposit data")
	}
	if !ssz.VerifyMerkleBranch(
		eth1Data.DepositRoot,
		leaf[:],
		int(st.Eth1DepositIndex()),
		d.Proof,
		params.BeaconConfig().DepositContractTreeDepth+1,
	) {
		return errors.Errorf("deposit merkle branch did not verify against root %#x", eth1Data.DepositRoot)
	}
	return nil
}

// verifyDepositSignature checks a single deposit's proof-of-possession
// signature over its DepositMessage (DepositData minus the signature
// itself).
func verifyDepositSignature(d *eth.DepositData, domain []byte) error {
	msg := &eth.DepositMessage{
		PublicKey:             d.PublicKey,
		WithdrawalCredentials: d.WithdrawalCredentials,
		Amount:                d.Amount,
	}
	return signing.VerifySigningRoot(msg, d.PublicKey, d.Signature, domain)
}

// verifyDepositBatch aggregate-verifies every deposit's signature at once.
// Returns an error (causing the caller to fall back to per-deposit
// verification) if any single signature fails, since the per-deposit
// verification honors the spec's "skip rather than reject" rule for a
// failing proof-of-possession; a batch check can only confirm "all good."
func verifyDepositBatch(deposits []*eth.Deposit, domain []byte) error {
	if len(deposits) == 0 {
		return nil
	}
	pubKeys := make([]bls.PublicKey, len(deposits))
	sigs := make([][]byte, len(deposits))
	msgs := make([][32]byte, len(deposits))
	for i, d := range deposits {
		if d == nil || d.Data == nil {
			return errors.New("nil deposit")
		}
		pk, err := bls.PublicKeyFromBytes(d.Data.PublicKey)
		if err != nil {
			return err
		}
		root, err := signing.ComputeSigningRoot(&eth.DepositMessage{
			PublicKey:             d.Data.PublicKey,
			WithdrawalCredentials: d.Data.WithdrawalCredentials,
			Amount:                d.Data.Amount,
		}, domain)
		if err != nil {
			return err
		}
		pubKeys[i] = pk
		sigs[i] = d.Data.Signature
		msgs[i] = root
	}
	ok, err := bls.VerifyMultipleSignatures(sigs, msgs, pubKeys)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("one or more deposit signatures failed batch verification")
	}
	return nil
}
