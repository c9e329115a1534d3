package epoch

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessParticipationRecordUpdates rolls this epoch's pending attestations
// into the previous-epoch slot and clears the current one. Phase0 only:
// Altair+ replaced PendingAttestation lists with the participation-flag
// byte arrays reset in core/altair.
func ProcessParticipationRecordUpdates(st *state.BeaconState) error {
	if err := st.SetPreviousEpochAttestations(st.CurrentEpochAttestations()); err != nil {
		return err
	}
	return st.SetCurrentEpochAttestations([]*eth.PendingAttestation{})
}
