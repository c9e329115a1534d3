package altair

import (
	"github.com/sentrychain/beacon-stf/config/params"
	stfmath "github.com/sentrychain/beacon-stf/math"
)

// BaseRewardPerIncrement is the per-EffectiveBalanceIncrement reward unit
// Altair's weighted formula scales by each validator's own increment count,
// replacing Phase0's per-validator integer square root.
func BaseRewardPerIncrement(totalActiveBalance uint64) uint64 {
	cfg := params.BeaconConfig()
	return cfg.EffectiveBalanceIncrement * cfg.BaseRewardFactor / stfmath.IntegerSquareRoot(totalActiveBalance)
}

// BaseReward returns effectiveBalance's share of BaseRewardPerIncrement.
func BaseReward(effectiveBalance, totalActiveBalance uint64) uint64 {
	increments := effectiveBalance / params.BeaconConfig().EffectiveBalanceIncrement
	return increments * BaseRewardPerIncrement(totalActiveBalance)
}
