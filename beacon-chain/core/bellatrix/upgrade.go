// Package bellatrix holds the handful of things Bellatrix changes relative
// to Altair at the state level: the fork-upgrade transform and the epoch
// processing entry point. Execution-payload processing lives in core/blocks;
// epoch and attestation processing are unchanged from core/altair.
package bellatrix

import "github.com/sentrychain/beacon-stf/beacon-chain/state"

// UpgradeToBellatrix restructures an Altair state into a Bellatrix one,
// adding the (initially empty) execution payload header.
func UpgradeToBellatrix(pre *state.BeaconState) (*state.BeaconState, error) {
	post, err := state.UpgradeToBellatrix(pre)
	if err != nil {
		return nil, err
	}
	if pre.Mode() == state.ModePersistent {
		post.SetCachesPersistent()
	}
	return post, nil
}
