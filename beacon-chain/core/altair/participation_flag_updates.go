package altair

import "github.com/sentrychain/beacon-stf/beacon-chain/state"

// ProcessParticipationFlagUpdates rolls this epoch's participation bytes
// into the previous-epoch slot and zeroes the current one, the Altair+
// analogue of core/epoch's Phase0 pending-attestation roll-over.
func ProcessParticipationFlagUpdates(st *state.BeaconState) error {
	if err := st.SetPreviousParticipation(st.CurrentEpochParticipation()); err != nil {
		return err
	}
	return st.SetCurrentParticipation(make([]byte, st.NumValidators()))
}
