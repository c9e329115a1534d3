package epoch

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessEffectiveBalanceUpdates recomputes every validator's effective
// balance from its real balance, hysteresis-damped so a balance oscillating
// near a threshold doesn't flip the effective balance every epoch.
func ProcessEffectiveBalanceUpdates(st *state.BeaconState) error {
	cfg := params.BeaconConfig()
	hysteresisIncrement := cfg.EffectiveBalanceIncrement / cfg.HysteresisQuotient
	downwardThreshold := hysteresisIncrement * cfg.HysteresisDownwardMultiplier
	upwardThreshold := hysteresisIncrement * cfg.HysteresisUpwardMultiplier

	balances := st.Balances()
	for i, v := range st.Validators() {
		balance := balances[i]
		if balance+downwardThreshold < v.EffectiveBalance || v.EffectiveBalance+upwardThreshold < balance {
			newEffective := balance - balance%cfg.EffectiveBalanceIncrement
			if newEffective > cfg.MaxEffectiveBalance {
				newEffective = cfg.MaxEffectiveBalance
			}
			if newEffective != v.EffectiveBalance {
				if err := st.UpdateValidatorAtIndex(primitives.ValidatorIndex(i), func(val *eth.Validator) error {
					val.EffectiveBalance = newEffective
					return nil
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
