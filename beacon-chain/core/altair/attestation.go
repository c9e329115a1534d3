package altair

import (
	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessAttestations applies every attestation's participation flags
// directly against st's current-epoch participation bytes (Altair+'s
// replacement for Phase0's append-only PendingAttestation list), crediting
// the including proposer a reward for every flag it newly sets.
func ProcessAttestations(st *state.BeaconState, atts []*eth.Attestation) error {
	for _, a := range atts {
		if err := processAttestation(st, a); err != nil {
			return err
		}
	}
	return nil
}

func processAttestation(st *state.BeaconState, a *eth.Attestation) error {
	data := a.Data
	inclusionDelay := st.Slot() - data.Slot
	flags, err := GetAttestationParticipationFlagIndices(st, data, inclusionDelay)
	if err != nil {
		return errors.Wrap(err, "could not get participation flags")
	}

	totalActiveBalance, err := helpers.TotalActiveBalance(st, coretime.CurrentEpoch(st))
	if err != nil {
		return err
	}

	indices, err := helpers.AttestingIndices(st, data.Slot, data.CommitteeIndex, a.AggregationBits)
	if err != nil {
		return errors.Wrap(err, "could not get attesting indices")
	}

	isCurrentEpoch := data.Target.Epoch == coretime.CurrentEpoch(st)

	proposerRewardNumerator := uint64(0)
	for _, idx := range indices {
		var existing byte
		if isCurrentEpoch {
			p := st.CurrentEpochParticipation()
			if idx < uint64(len(p)) {
				existing = p[idx]
			}
		} else {
			p := st.PreviousEpochParticipation()
			if idx < uint64(len(p)) {
				existing = p[idx]
			}
		}
		vIdx := primitives.ValidatorIndex(idx)
		v, err := st.ValidatorAtIndex(vIdx)
		if err != nil {
			return err
		}
		base := BaseReward(v.EffectiveBalance, totalActiveBalance)
		for _, f := range flags {
			if HasFlag(existing, f) {
				continue
			}
			if isCurrentEpoch {
				if err := st.UpdateParticipationFlag(vIdx, f); err != nil {
					return err
				}
			} else {
				if err := st.UpdatePreviousEpochParticipationFlag(vIdx, f); err != nil {
					return err
				}
			}
			proposerRewardNumerator += base * weight(f)
		}
	}

	cfg := params.BeaconConfig()
	proposerRewardDenominator := (cfg.WeightDenominator - cfg.ProposerWeight) * cfg.WeightDenominator / cfg.ProposerWeight
	proposerReward := proposerRewardNumerator / proposerRewardDenominator

	proposerIndex, err := helpers.BeaconProposerIndex(st)
	if err != nil {
		return errors.Wrap(err, "could not determine proposer index")
	}
	return st.IncreaseBalance(proposerIndex, proposerReward)
}
